// Package pipeline orchestrates the skill pipeline: requirements inference, skill
// catalog, mention extraction, skill profiles and the matching index. Derived
// artifacts are reused from a cache when it holds them for the exact posting-id
// set of the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/skill-matcher/internal/cache"
	"github.com/jonathan/skill-matcher/internal/catalog"
	"github.com/jonathan/skill-matcher/internal/db"
	"github.com/jonathan/skill-matcher/internal/extraction"
	"github.com/jonathan/skill-matcher/internal/matching"
	"github.com/jonathan/skill-matcher/internal/profiles"
	"github.com/jonathan/skill-matcher/internal/requirements"
	"github.com/jonathan/skill-matcher/internal/textnorm"
	"github.com/jonathan/skill-matcher/internal/types"
)

// Step names reported through ProgressEvent.
const (
	StepRequirements = "requirements"
	StepCatalog      = "catalog"
	StepMentions     = "mentions"
	StepProfiles     = "profiles"
	StepIndex        = "index"
	StepPersist      = "persist"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
	Count   int    `json:"count"`
	Cached  bool   `json:"cached,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs. It may be called from
// several goroutines at once.
type ProgressCallback func(event ProgressEvent)

// Options configures a pipeline run. Every field is optional.
type Options struct {
	Catalog    catalog.Options
	Extraction extraction.Options
	// Cache holds derived artifacts between runs. Nil disables caching.
	Cache cache.Store
	// DB receives the run record and its artifacts. Nil disables persistence.
	DB         *db.DB
	Logger     *slog.Logger
	OnProgress ProgressCallback
}

// Result holds the artifacts of a run.
type Result struct {
	RunID        uuid.UUID
	Fingerprint  string
	Catalog      []types.CatalogEntry
	Mentions     []types.SkillMention
	Profiles     []types.SkillProfile
	Requirements []types.RequirementsProfile
	Index        *matching.Index
	// UsedFallback is set when text extraction found nothing and the taxonomy
	// correlations were used as mentions instead.
	UsedFallback bool
}

type runner struct {
	opts   Options
	log    *slog.Logger
	runID  uuid.UUID
	ids    []string
	result *Result
}

// Run executes the pipeline over postings and the taxonomy feed. Cache and
// database failures are logged and the affected artifact is recomputed or left
// unpersisted; only context cancellation aborts a run.
func Run(ctx context.Context, postings []types.Posting, taxonomy []types.TaxonomyEntry, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	ids := types.PostingIDs(postings)
	r := &runner{
		opts:  opts,
		log:   log,
		ids:   ids,
		runID: uuid.New(),
		result: &Result{
			Fingerprint: cache.Fingerprint(ids),
		},
	}

	if opts.DB != nil {
		runID, err := opts.DB.CreateRun(ctx, r.result.Fingerprint, len(postings))
		if err != nil {
			log.Warn("pipeline: failed to record run, continuing without persistence", slog.Any("error", err))
			r.opts.DB = nil
		} else {
			r.runID = runID
		}
	}
	r.result.RunID = r.runID
	log.Info("pipeline: starting run",
		slog.String("run_id", r.runID.String()),
		slog.Int("postings", len(postings)),
		slog.Int("taxonomy_rows", len(taxonomy)))

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.requirements(gCtx, postings)
	})
	g.Go(func() error {
		return r.skills(gCtx, postings, taxonomy)
	})
	if err := g.Wait(); err != nil {
		r.finish(ctx, db.RunStatusFailed)
		return nil, err
	}

	r.result.Index = matching.Build(r.result.Profiles)
	r.emit(StepIndex, fmt.Sprintf("Indexed %d postings", r.result.Index.Len()), r.result.Index.Len(), false)

	r.persist(ctx)
	r.finish(ctx, db.RunStatusCompleted)
	return r.result, nil
}

func (r *runner) requirements(ctx context.Context, postings []types.Posting) error {
	if reqs, ok := loadCached[types.RequirementsProfile](ctx, r, cache.KindRequirements); ok {
		r.result.Requirements = reqs
		r.emit(StepRequirements, "Loaded requirements from cache", len(reqs), true)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	reqs := requirements.InferAll(postings)
	r.result.Requirements = reqs
	storeCached(ctx, r, cache.KindRequirements, reqs)

	inferred := 0
	for _, req := range reqs {
		if req.EducationSource == types.SourceInferred || req.ExperienceSource == types.SourceInferred {
			inferred++
		}
	}
	r.emit(StepRequirements,
		fmt.Sprintf("Built requirements for %d postings (%d with inferred values)", len(reqs), inferred),
		len(reqs), false)
	return nil
}

func (r *runner) skills(ctx context.Context, postings []types.Posting, taxonomy []types.TaxonomyEntry) error {
	catalogKind := r.variant(cache.KindCatalog)
	mentionsKind := r.variant(cache.KindMentions)
	profilesKind := r.variant(cache.KindProfiles)

	entries, catalogHit := loadCached[types.CatalogEntry](ctx, r, catalogKind)
	mentions, mentionsHit := loadCached[types.SkillMention](ctx, r, mentionsKind)
	profs, profilesHit := loadCached[types.SkillProfile](ctx, r, profilesKind)
	if catalogHit && mentionsHit && profilesHit {
		r.result.Catalog, r.result.Mentions, r.result.Profiles = entries, mentions, profs
		r.result.UsedFallback = len(mentions) > 0 && mentions[0].Source == types.MentionSourceTaxonomy
		r.emit(StepCatalog, "Loaded skill catalog from cache", len(entries), true)
		r.emit(StepMentions, "Loaded skill mentions from cache", len(mentions), true)
		r.emit(StepProfiles, "Loaded skill profiles from cache", len(profs), true)
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	entries = catalog.Build(taxonomy, r.opts.Catalog)
	r.result.Catalog = entries
	r.emit(StepCatalog, fmt.Sprintf("Built skill catalog with %d skills", len(entries)), len(entries), false)

	if err := ctx.Err(); err != nil {
		return err
	}
	mentions = extraction.Extract(postings, catalog.Skills(entries), r.opts.Extraction)
	if len(mentions) == 0 && len(taxonomy) > 0 {
		mentions = FallbackMentions(taxonomy, r.ids)
		r.result.UsedFallback = len(mentions) > 0
		r.log.Warn("pipeline: text extraction found no skills, using taxonomy correlations",
			slog.Int("mentions", len(mentions)))
	}
	r.result.Mentions = mentions
	r.emit(StepMentions, fmt.Sprintf("Extracted %d skill mentions", len(mentions)), len(mentions), false)

	profs = profiles.Build(mentions)
	r.result.Profiles = profs
	r.emit(StepProfiles, fmt.Sprintf("Built %d skill profiles", len(profs)), len(profs), false)

	storeCached(ctx, r, catalogKind, entries)
	storeCached(ctx, r, mentionsKind, mentions)
	storeCached(ctx, r, profilesKind, profs)
	return nil
}

// FallbackMentions turns taxonomy rows into mentions, using the correlation
// coefficient as confidence. Only rows for one of postingIDs with a skill label
// and a correlation in (0, 1] are kept.
func FallbackMentions(taxonomy []types.TaxonomyEntry, postingIDs []string) []types.SkillMention {
	known := make(map[string]struct{}, len(postingIDs))
	for _, id := range postingIDs {
		known[id] = struct{}{}
	}

	out := make([]types.SkillMention, 0, len(taxonomy))
	for _, e := range taxonomy {
		if _, ok := known[e.PostingID]; !ok {
			continue
		}
		// NaN fails both comparisons.
		if !(e.Correlation > 0 && e.Correlation <= 1) {
			continue
		}
		skill := textnorm.Normalize(e.TaxonomySkill)
		if skill == "" {
			continue
		}
		out = append(out, types.SkillMention{
			PostingID:  e.PostingID,
			Skill:      skill,
			Confidence: e.Correlation,
			Source:     types.MentionSourceTaxonomy,
		})
	}
	return out
}

// skillParams are the settings skill artifacts depend on. Batch size and
// concurrency do not change the output and are left out.
type skillParams struct {
	MinFrequency  int     `json:"min_frequency"`
	MaxSkills     int     `json:"max_skills"`
	TopK          int     `json:"top_k"`
	MinSimilarity float64 `json:"min_similarity"`
}

// variant returns the cache kind for a skill artifact built with the run's
// options, or "" when the options cannot be encoded and caching is skipped.
func (r *runner) variant(kind string) string {
	c := r.opts.Catalog.Effective()
	e := r.opts.Extraction.Effective()
	v, err := cache.Variant(kind, skillParams{
		MinFrequency:  c.MinFrequency,
		MaxSkills:     c.MaxSkills,
		TopK:          e.TopK,
		MinSimilarity: e.MinSimilarity,
	})
	if err != nil {
		r.log.Warn("pipeline: not caching artifact", slog.String("kind", kind), slog.Any("error", err))
		return ""
	}
	return v
}

func loadCached[T any](ctx context.Context, r *runner, kind string) ([]T, bool) {
	if r.opts.Cache == nil || kind == "" {
		return nil, false
	}
	items, ok, err := cache.Load[T](ctx, r.opts.Cache, kind, r.ids)
	if err != nil {
		var corrupt *cache.CorruptEntryError
		if errors.As(err, &corrupt) {
			r.log.Warn("pipeline: discarding corrupt cache entry", slog.String("key", corrupt.Key))
		} else {
			r.log.Warn("pipeline: cache read failed", slog.String("kind", kind), slog.Any("error", err))
		}
		return nil, false
	}
	if ok {
		r.log.Debug("pipeline: cache hit", slog.String("kind", kind))
	}
	return items, ok
}

func storeCached[T any](ctx context.Context, r *runner, kind string, items []T) {
	if r.opts.Cache == nil || kind == "" {
		return
	}
	if err := cache.Save(ctx, r.opts.Cache, kind, r.ids, items); err != nil {
		r.log.Warn("pipeline: cache write failed", slog.String("kind", kind), slog.Any("error", err))
	}
}

func (r *runner) persist(ctx context.Context) {
	database := r.opts.DB
	if database == nil {
		return
	}
	res := r.result
	errs := []error{
		db.SaveArtifact(ctx, database, r.runID, db.ArtifactCatalog, res.Catalog),
		db.SaveArtifact(ctx, database, r.runID, db.ArtifactMentions, res.Mentions),
		db.SaveArtifact(ctx, database, r.runID, db.ArtifactProfiles, res.Profiles),
		db.SaveArtifact(ctx, database, r.runID, db.ArtifactRequirements, res.Requirements),
	}
	if err := errors.Join(errs...); err != nil {
		r.log.Warn("pipeline: failed to persist artifacts", slog.Any("error", err))
		return
	}
	r.emit(StepPersist, "Stored artifacts in database", 4, false)
}

func (r *runner) finish(ctx context.Context, status string) {
	if r.opts.DB == nil {
		return
	}
	if err := r.opts.DB.CompleteRun(context.WithoutCancel(ctx), r.runID, status); err != nil {
		r.log.Warn("pipeline: failed to complete run", slog.Any("error", err))
	}
}

func (r *runner) emit(step, message string, count int, cached bool) {
	r.log.Info("pipeline: "+step, slog.String("message", message), slog.Int("count", count), slog.Bool("cached", cached))
	if r.opts.OnProgress != nil {
		r.opts.OnProgress(ProgressEvent{
			Step:    step,
			Message: message,
			RunID:   r.runID.String(),
			Count:   count,
			Cached:  cached,
		})
	}
}
