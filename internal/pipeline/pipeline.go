// Package pipeline orchestrates the full ingestion run: a fixed table
// of steps (extraction sources, then reconciliation, then matching)
// executed in declared order, checkpointed after every step, resumable
// from any step by name or position.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/screamdb/etl-core/internal/aggregate"
	"github.com/screamdb/etl-core/internal/checkpoint"
	"github.com/screamdb/etl-core/internal/config"
	"github.com/screamdb/etl-core/internal/core"
	"github.com/screamdb/etl-core/internal/export"
	"github.com/screamdb/etl-core/internal/loader"
)

// Run status values. A run is partial when every step completed but at
// least one recorded item-level errors; failed means a structural error
// halted it.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusPartial   = "partial"
	StatusFailed    = "failed"
)

// FinalDatasetCheckpoint is the stable name the canonical output is
// checkpointed under. It survives the per-step checkpoint cleanup so
// the loader boundary can always find the latest dataset.
const FinalDatasetCheckpoint = "final_dataset"

// Options bounds one run.
type Options struct {
	MaxPages   int
	MaxItems   int
	ResumeFrom string
	Skip       []string
	Export     bool
}

// Report is the run-level summary handed back to the caller.
type Report struct {
	RunID      string                  `json:"run_id"`
	Status     string                  `json:"status"`
	Step       string                  `json:"step,omitempty"`
	StartedAt  time.Time               `json:"started_at"`
	Duration   time.Duration           `json:"duration"`
	Results    []core.ExtractionResult `json:"results"`
	Restored   []string                `json:"restored,omitempty"`
	Merge      aggregate.MergeStats    `json:"merge"`
	Dedup      aggregate.DedupStats    `json:"dedup"`
	Score      aggregate.ScoreStats    `json:"score"`
	MatchCount int                     `json:"match_count"`
	Load       loader.LoadStats        `json:"load"`
	ExportPath string                  `json:"export_path,omitempty"`
}

// state carries intermediate outputs between steps within one run.
type state struct {
	films    []core.Film
	rotten   []core.RTEnrichment
	episodes []core.Episode
	videos   []core.Video
	kaggle   []core.KaggleRecord
	imdb     []core.IMDBRating
	spark    []core.SparkStat
	matches  []core.MatchResult
}

// loadFunc reads a step's checkpointed output into target.
type loadFunc func(target any) (bool, error)

// step is one entry in the fixed step table. Source steps can be
// skipped; reconciliation steps cannot. snapshot/restore give the
// orchestrator a uniform handle on the step's output for
// checkpointing and resume.
type step struct {
	name     string
	source   bool
	run      func(ctx context.Context, st *state, rep *Report, params core.ExtractionParams) (*core.ExtractionResult, error)
	snapshot func(st *state) any
	restore  func(st *state, load loadFunc) (bool, error)
}

// Pipeline executes the step table against a checkpoint store and
// hands the result to the loader boundary.
type Pipeline struct {
	cfg    *config.Config
	store  *checkpoint.Store
	ld     loader.Loader
	logger *slog.Logger
	steps  []step
}

// New wires the production step table.
func New(cfg *config.Config, store *checkpoint.Store, ld loader.Loader, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if ld == nil {
		ld = loader.NewCountingLoader(logger)
	}
	p := &Pipeline{
		cfg:    cfg,
		store:  store,
		ld:     ld,
		logger: logger.With("component", "pipeline"),
	}
	p.steps = p.buildSteps()
	return p
}

// StepNames returns the step table order, for CLI help and validation.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.name
	}
	return names
}

// Run executes the pipeline. A structural failure in any step halts
// the run immediately with the last successful checkpoint intact; the
// returned report carries whatever was accomplished.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Report, error) {
	start := time.Now()
	rep := &Report{
		RunID:     uuid.NewString(),
		Status:    StatusRunning,
		StartedAt: start,
	}
	defer func() { rep.Duration = time.Since(start) }()

	resumeIdx, err := p.resolveResume(opts.ResumeFrom)
	if err != nil {
		rep.Status = StatusFailed
		return rep, err
	}

	skipped := make(map[string]bool, len(opts.Skip))
	for _, s := range opts.Skip {
		skipped[strings.TrimSpace(s)] = true
	}

	p.logger.Info("run started", "run_id", rep.RunID, "resume_from", opts.ResumeFrom, "skip", opts.Skip)

	st := &state{}
	params := core.ExtractionParams{MaxPages: opts.MaxPages, MaxItems: opts.MaxItems}
	partial := false
	for i, s := range p.steps {
		rep.Step = s.name
		if s.source && skipped[s.name] {
			p.logger.Info("step skipped", "step", s.name)
			continue
		}

		if i < resumeIdx {
			found, err := s.restore(st, func(target any) (bool, error) {
				return p.store.Load(stepCheckpoint(s.name), target)
			})
			if err != nil {
				rep.Status = StatusFailed
				return rep, fmt.Errorf("restore step %s: %w", s.name, err)
			}
			if !found {
				rep.Status = StatusFailed
				return rep, fmt.Errorf("cannot resume from %q: no checkpoint for earlier step %s", opts.ResumeFrom, s.name)
			}
			rep.Restored = append(rep.Restored, s.name)
			p.logger.Info("step restored from checkpoint", "step", s.name)
			continue
		}

		p.logger.Info("step started", "step", s.name, "position", i+1)
		res, err := s.run(ctx, st, rep, params)
		if err != nil {
			rep.Status = StatusFailed
			p.logger.Error("step failed", "step", s.name, "error", err)
			return rep, fmt.Errorf("step %s: %w", s.name, err)
		}
		if res != nil {
			rep.Results = append(rep.Results, *res)
			if len(res.Errors) > 0 {
				partial = true
			}
		}
		if err := p.store.Save(stepCheckpoint(s.name), s.snapshot(st)); err != nil {
			rep.Status = StatusFailed
			return rep, fmt.Errorf("checkpoint step %s: %w", s.name, err)
		}
	}

	if err := p.store.Save(FinalDatasetCheckpoint, st.films); err != nil {
		rep.Status = StatusFailed
		return rep, fmt.Errorf("checkpoint final dataset: %w", err)
	}

	loadStats, err := p.ld.Load(ctx, st.films, st.matches)
	if err != nil {
		rep.Status = StatusFailed
		return rep, fmt.Errorf("loader handoff: %w", err)
	}
	rep.Load = loadStats

	if opts.Export {
		path, err := p.export(ctx, st.films)
		if err != nil {
			rep.Status = StatusFailed
			return rep, fmt.Errorf("export: %w", err)
		}
		rep.ExportPath = path
	}

	if partial {
		rep.Status = StatusPartial
	} else {
		rep.Status = StatusCompleted
		p.cleanupStepCheckpoints()
	}
	rep.Step = ""
	p.logger.Info("run finished", "run_id", rep.RunID, "status", rep.Status,
		"films", len(st.films), "matches", len(st.matches), "duration", time.Since(start))
	return rep, nil
}

// RunSource executes a single source step standalone, without touching
// downstream steps or step checkpoints.
func (p *Pipeline) RunSource(ctx context.Context, name string, opts Options) (*core.ExtractionResult, error) {
	for _, s := range p.steps {
		if !s.source || s.name != name {
			continue
		}
		st := &state{}
		if name == "rotten_tomatoes" {
			// Enrichment needs the primary set; reuse its step checkpoint.
			if found, err := p.store.Load(stepCheckpoint("tmdb"), &st.films); err != nil {
				return nil, err
			} else if !found {
				return nil, fmt.Errorf("source %s needs a prior tmdb extraction checkpoint", name)
			}
		}
		params := core.ExtractionParams{MaxPages: opts.MaxPages, MaxItems: opts.MaxItems}
		res, err := s.run(ctx, st, &Report{}, params)
		if err != nil {
			return nil, err
		}
		return res, nil
	}
	return nil, fmt.Errorf("unknown source %q (expected one of %s)", name, strings.Join(p.SourceNames(), ", "))
}

// SourceNames returns the skippable source steps in table order.
func (p *Pipeline) SourceNames() []string {
	var names []string
	for _, s := range p.steps {
		if s.source {
			names = append(names, s.name)
		}
	}
	return names
}

// resolveResume maps a step name or 1-based position to a step index.
// An empty marker means a fresh run.
func (p *Pipeline) resolveResume(from string) (int, error) {
	from = strings.TrimSpace(from)
	if from == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(from); err == nil {
		if n < 1 || n > len(p.steps) {
			return 0, fmt.Errorf("resume-from position %d out of range 1..%d", n, len(p.steps))
		}
		return n - 1, nil
	}
	for i, s := range p.steps {
		if s.name == from {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown resume-from step %q (expected one of %s)", from, strings.Join(p.StepNames(), ", "))
}

func (p *Pipeline) export(ctx context.Context, films []core.Film) (string, error) {
	path, err := export.WriteParquet(p.cfg.Export.Dir, films, p.logger)
	if err != nil {
		return "", err
	}
	if p.cfg.Export.MinIOEndpoint != "" {
		pub, err := export.NewPublisher(p.cfg.Export, p.logger)
		if err != nil {
			return "", err
		}
		if _, err := pub.Publish(ctx, path); err != nil {
			return "", err
		}
	}
	return path, nil
}

// cleanupStepCheckpoints removes per-step checkpoints after a fully
// successful run. The final dataset checkpoint is kept.
func (p *Pipeline) cleanupStepCheckpoints() {
	for _, s := range p.steps {
		if err := p.store.Delete(stepCheckpoint(s.name)); err != nil {
			p.logger.Warn("checkpoint cleanup failed", "step", s.name, "error", err)
		}
	}
}

func stepCheckpoint(name string) string {
	return "step_" + name
}
