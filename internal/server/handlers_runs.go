package server

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

func (s *Server) requireDB() error {
	if s.db == nil {
		return &ErrUnavailable{Feature: "run history database"}
	}
	return nil
}

func parseRunID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: "invalid run ID format"}
	}
	return id, nil
}

// handleListRuns returns the most recent pipeline runs
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if err := s.requireDB(); err != nil {
		s.errResponse(w, err)
		return
	}
	limit, err := intParam(r, "limit")
	if err != nil {
		s.errResponse(w, err)
		return
	}

	runs, err := s.db.ListRuns(r.Context(), limit)
	if err != nil {
		s.errResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}

// handleRunArtifacts returns artifacts for a specific run
func (s *Server) handleRunArtifacts(w http.ResponseWriter, r *http.Request) {
	if err := s.requireDB(); err != nil {
		s.errResponse(w, err)
		return
	}
	runID, err := parseRunID(r)
	if err != nil {
		s.errResponse(w, err)
		return
	}

	artifacts, err := s.db.ListArtifacts(r.Context(), runID)
	if err != nil {
		s.errResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"run_id":    runID.String(),
		"artifacts": artifacts,
		"count":     len(artifacts),
	})
}

// handleDeleteRun deletes a pipeline run and its artifacts
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if err := s.requireDB(); err != nil {
		s.errResponse(w, err)
		return
	}
	runID, err := parseRunID(r)
	if err != nil {
		s.errResponse(w, err)
		return
	}

	if err := s.db.DeleteRun(r.Context(), runID); err != nil {
		s.errResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleRebuild reruns the pipeline, streams its progress via SSE and swaps the
// served index when it completes
func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	if s.rebuild == nil {
		s.errResponse(w, &ErrUnavailable{Feature: "rebuild"})
		return
	}
	if !s.rebuildMu.TryLock() {
		s.errResponse(w, &ErrBusy{Operation: "rebuild"})
		return
	}
	defer s.rebuildMu.Unlock()

	stream, err := newProgressStream(w, s.log)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	res, postings, err := s.rebuild(r.Context(), stream.Report)
	stream.Close()
	if err != nil {
		s.log.Error("server: rebuild failed", slog.Any("error", err))
		stream.Fail(err)
		return
	}

	s.Load(res, postings)
	stream.Complete(res, len(postings))
}
