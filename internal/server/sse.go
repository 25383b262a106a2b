package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jonathan/skill-matcher/internal/pipeline"
)

// progressStream relays pipeline progress to the client as Server-Sent Events.
// Report may be called from several goroutines; one goroutine owns the
// connection until Close.
type progressStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	log     *slog.Logger
	events  chan pipeline.ProgressEvent
	done    chan struct{}
}

func newProgressStream(w http.ResponseWriter, log *slog.Logger) (*progressStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s := &progressStream{
		w:       w,
		flusher: flusher,
		log:     log,
		events:  make(chan pipeline.ProgressEvent, 16),
		done:    make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		for ev := range s.events {
			s.send("step", ev)
		}
	}()
	return s, nil
}

// Report queues a progress event.
func (s *progressStream) Report(ev pipeline.ProgressEvent) {
	s.events <- ev
}

// Close flushes queued progress. No Report may follow.
func (s *progressStream) Close() {
	close(s.events)
	<-s.done
}

// Fail sends the terminal error event.
func (s *progressStream) Fail(err error) {
	s.send("error", map[string]string{"error": err.Error()})
}

// Complete sends the terminal success event summarizing the new snapshot.
func (s *progressStream) Complete(res *pipeline.Result, postings int) {
	s.send("complete", map[string]any{
		"run_id":   res.RunID.String(),
		"status":   "completed",
		"postings": postings,
		"indexed":  res.Index.Len(),
		"fallback": res.UsedFallback,
	})
}

func (s *progressStream) send(event string, data any) {
	payload, err := json.Marshal(data)
	if err == nil {
		_, err = fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload)
	}
	if err != nil {
		s.log.Warn("server: writing SSE event", slog.String("event", event), slog.Any("error", err))
		return
	}
	s.flusher.Flush()
}
