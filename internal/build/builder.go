package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docprep/internal/callout"
	"git.home.luguber.info/inful/docprep/internal/config"
	"git.home.luguber.info/inful/docprep/internal/docs"
	derrors "git.home.luguber.info/inful/docprep/internal/foundation/errors"
	"git.home.luguber.info/inful/docprep/internal/hooks"
	"git.home.luguber.info/inful/docprep/internal/logfields"
	"git.home.luguber.info/inful/docprep/internal/metrics"
	"git.home.luguber.info/inful/docprep/internal/state"
)

// Builder runs builds for one configuration. Concurrent Build calls are
// serialised.
type Builder struct {
	cfg      *config.Config
	registry *hooks.Registry
	recorder metrics.Recorder
	store    state.Store
	logger   *slog.Logger

	ownsStore bool
	dryRun    bool
	clean     bool

	mu sync.Mutex
}

// Option configures a Builder.
type Option func(*Builder)

// WithRegistry uses r instead of a registry with the default hooks.
func WithRegistry(r *hooks.Registry) Option {
	return func(b *Builder) { b.registry = r }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) {
		if r != nil {
			b.recorder = r
		}
	}
}

// WithStore sets the state store. The caller keeps ownership.
func WithStore(s state.Store) Option {
	return func(b *Builder) { b.store = s }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithDryRun processes documents without writing anything.
func WithDryRun(dryRun bool) Option {
	return func(b *Builder) { b.dryRun = dryRun }
}

// WithClean removes the output directory before the first build.
func WithClean(clean bool) Option {
	return func(b *Builder) { b.clean = clean }
}

// NewBuilder creates a builder for cfg. An output directory equal to the
// source directory or containing it is rejected. Without WithRegistry the
// default hooks are connected. The configured hook allowlist is applied to the
// registry. Incremental builds open the state database unless a store is
// supplied.
func NewBuilder(cfg *config.Config, opts ...Option) (*Builder, error) {
	if cfg == nil {
		return nil, derrors.ConfigError("configuration is required").Build()
	}
	if err := cfg.CheckOutputDir(); err != nil {
		return nil, derrors.ConfigError("output directory overlaps the source directory").
			WithCause(err).
			WithContext("source_dir", cfg.SourcePath()).
			WithContext("output_dir", cfg.OutputPath()).
			Fatal().
			Build()
	}

	b := &Builder{
		cfg:      cfg,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.registry == nil {
		b.registry = hooks.NewRegistry()
		if err := hooks.Setup(b.registry); err != nil {
			return nil, derrors.WrapError(err, derrors.CategoryHook, "register default hooks").Fatal().Build()
		}
	}
	b.registry.SetLogger(b.logger)
	if err := b.registry.Filter(cfg.Build.Hooks); err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryConfig, "apply hook allowlist").Fatal().Build()
	}

	if b.store == nil {
		if cfg.Build.Incremental {
			s, err := state.Open(cfg.StatePath())
			if err != nil {
				return nil, err
			}
			b.store = s
			b.ownsStore = true
		} else {
			b.store = state.NoopStore{}
		}
	}
	return b, nil
}

// Registry returns the hook registry used by the builder.
func (b *Builder) Registry() *hooks.Registry { return b.registry }

// Store returns the state store used by the builder.
func (b *Builder) Store() state.Store { return b.store }

// Close releases the state store when the builder opened it.
func (b *Builder) Close() error {
	if b.ownsStore {
		return b.store.Close()
	}
	return nil
}

// Convert runs the source-read hooks over a single text.
func (b *Builder) Convert(ctx context.Context, docName, text string) (string, error) {
	src := &hooks.Source{DocName: docName, Path: docName, Text: text}
	if err := b.registry.EmitSourceRead(ctx, src); err != nil {
		return "", err
	}
	return src.Text, nil
}

// Build runs one build. The summary is returned even when documents fail;
// the error is then a build error naming the number of failures.
func (b *Builder) Build(ctx context.Context) (*Summary, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	summary := &Summary{
		BuildID:   uuid.NewString(),
		StartedAt: time.Now(),
		DryRun:    b.dryRun,
	}
	logger := b.logger.With(logfields.BuildID(summary.BuildID))
	workers := b.cfg.Build.Workers
	b.recorder.SetWorkers(workers)

	err := b.run(ctx, logger, summary, workers)
	summary.Duration = time.Since(summary.StartedAt)

	outcome := metrics.OutcomeSuccess
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		outcome = metrics.OutcomeCanceled
	case err != nil:
		outcome = metrics.OutcomeFailed
	}
	b.recorder.ObserveBuildDuration(summary.Duration)
	b.recorder.IncBuildOutcome(outcome)

	if !b.dryRun && outcome != metrics.OutcomeCanceled {
		b.record(logger, summary, string(outcome))
	}

	b.registry.EmitBuildFinished(ctx, hooks.BuildSummary{
		BuildID:   summary.BuildID,
		Documents: summary.Documents,
		Failed:    len(summary.Failed),
		Duration:  summary.Duration,
	})

	if err != nil {
		logger.Error("Build failed", logfields.Error(err), logfields.DurationMS(ms(summary.Duration)))
		return summary, err
	}
	logger.Info("Build finished",
		logfields.Count(summary.Documents),
		slog.Int("written", summary.Written),
		slog.Int("skipped", summary.Skipped),
		slog.Int("callouts", summary.CalloutTotal()),
		logfields.DurationMS(ms(summary.Duration)))
	return summary, nil
}

func (b *Builder) run(ctx context.Context, logger *slog.Logger, summary *Summary, workers int) error {
	sourceDir := b.cfg.SourcePath()
	outputDir := b.cfg.OutputPath()

	if b.clean && !b.dryRun {
		if err := os.RemoveAll(outputDir); err != nil {
			return derrors.WrapError(err, derrors.CategoryFileSystem, "clean output directory").
				WithContext("path", outputDir).
				Build()
		}
		if err := b.store.Reset(ctx); err != nil {
			return derrors.WrapError(err, derrors.CategoryState, "reset state").Build()
		}
		b.clean = false
	}

	files, err := docs.Discover(sourceDir, b.cfg.Build.Suffixes, b.cfg.Sphinx.ExcludePatterns)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDiscovery, err)
	}
	files = withoutDir(files, outputDir)
	summary.Documents = len(files)
	logger.Info("Build started", logfields.Path(sourceDir), logfields.Count(len(files)), logfields.Workers(workers))

	stale, err := b.checkSnapshot(ctx, logger)
	if err != nil {
		return err
	}

	p := &processor{
		buildID:       summary.BuildID,
		outputDir:     outputDir,
		registry:      b.registry,
		store:         b.store,
		recorder:      b.recorder,
		logger:        logger,
		dryRun:        b.dryRun,
		ignoreState:   stale,
		countCallouts: b.calloutHookActive(),
	}
	results := runOrdered(ctx, files, workers, p.process)

	for i, r := range results {
		if !r.Ran {
			continue
		}
		if r.Err != nil {
			summary.Failed = append(summary.Failed, DocError{Path: files[i].RelativePath, Err: r.Err})
			continue
		}
		switch {
		case r.Value.skipped:
			summary.Skipped++
		case r.Value.changed && b.dryRun:
			summary.Changed = append(summary.Changed, files[i].RelativePath)
		case r.Value.changed:
			summary.Written++
		}
		summary.Bytes += int64(r.Value.bytes)
		summary.addCallouts(r.Value.callouts)
	}
	summary.sortChanged()

	if err := ctx.Err(); err != nil {
		return derrors.WrapError(err, derrors.CategoryRuntime, "build canceled").
			WithContext("processed", summary.Written+summary.Skipped).
			Build()
	}

	if !b.dryRun {
		removed, err := b.prune(ctx, logger, files, outputDir)
		summary.Removed = removed
		if err != nil {
			return err
		}

		assets, err := copyAssetDirs(b.cfg, sourceDir, outputDir)
		summary.Assets = assets
		if err != nil {
			return derrors.WrapError(err, derrors.CategoryFileSystem, "copy assets").Build()
		}
		if err := writeRendererConfig(b.cfg, outputDir); err != nil {
			return derrors.WrapError(err, derrors.CategoryFileSystem, "write renderer configuration").Build()
		}
	}

	if n := len(summary.Failed); n > 0 {
		return derrors.BuildError(fmt.Sprintf("%d of %d documents failed", n, summary.Documents)).
			WithSeverity(derrors.SeverityError).
			WithCause(fmt.Errorf("%w: %w", ErrDocument, summary.Failed[0])).
			WithContext("failed", n).
			Build()
	}
	return nil
}

// checkSnapshot drops incremental state produced under a different
// build-affecting configuration. Dry runs leave the store untouched and
// report the state as stale instead.
func (b *Builder) checkSnapshot(ctx context.Context, logger *slog.Logger) (bool, error) {
	snapshot := b.cfg.Snapshot()
	prev, ok, err := b.store.Meta(ctx, state.MetaConfigSnapshot)
	if err != nil {
		return false, derrors.WrapError(err, derrors.CategoryState, "read configuration snapshot").Build()
	}
	if ok && prev == snapshot {
		return false, nil
	}
	if b.dryRun {
		return true, nil
	}
	if ok {
		logger.Info("Configuration changed, rebuilding all documents")
	}
	if err := b.store.Reset(ctx); err != nil {
		return false, derrors.WrapError(err, derrors.CategoryState, "reset state").Build()
	}
	if err := b.store.SetMeta(ctx, state.MetaConfigSnapshot, snapshot); err != nil {
		return false, derrors.WrapError(err, derrors.CategoryState, "store configuration snapshot").Build()
	}
	return false, nil
}

// prune removes outputs and state of documents that no longer exist.
func (b *Builder) prune(ctx context.Context, logger *slog.Logger, files []docs.DocFile, outputDir string) (int, error) {
	known, err := b.store.List(ctx)
	if err != nil {
		return 0, derrors.WrapError(err, derrors.CategoryState, "list state").Build()
	}
	current := make(map[string]struct{}, len(files))
	for _, f := range files {
		current[f.RelativePath] = struct{}{}
	}

	removed := 0
	for _, rec := range known {
		if _, ok := current[rec.Path]; ok {
			continue
		}
		out := filepath.Join(outputDir, filepath.FromSlash(rec.Path))
		if err := os.Remove(out); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, derrors.WrapError(err, derrors.CategoryFileSystem, "remove stale output").
				WithContext("path", out).
				Build()
		}
		if err := b.store.Delete(ctx, rec.Path); err != nil {
			return removed, derrors.WrapError(err, derrors.CategoryState, "delete stale state").Build()
		}
		logger.Debug("Removed stale output", logfields.Path(rec.Path))
		removed++
	}
	return removed, nil
}

func (b *Builder) record(logger *slog.Logger, summary *Summary, outcome string) {
	err := b.store.RecordBuild(context.Background(), state.Build{
		ID:         summary.BuildID,
		StartedAt:  summary.StartedAt,
		FinishedAt: summary.StartedAt.Add(summary.Duration),
		Documents:  summary.Documents,
		Skipped:    summary.Skipped,
		Failed:     len(summary.Failed),
		Callouts:   summary.CalloutTotal(),
		Outcome:    outcome,
	})
	if err != nil {
		logger.Warn("Failed to record build", logfields.Error(err))
	}
}

func (b *Builder) calloutHookActive() bool {
	for _, reg := range b.registry.List(hooks.EventSourceRead) {
		if reg.Name == hooks.CalloutHookName {
			return true
		}
	}
	return false
}

// withoutDir drops files located below dir, so an output directory nested
// in the source tree is never read back as input.
func withoutDir(files []docs.DocFile, dir string) []docs.DocFile {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return files
	}
	prefix := abs + string(filepath.Separator)
	kept := files[:0]
	for _, f := range files {
		p, err := filepath.Abs(f.Path)
		if err == nil && strings.HasPrefix(p, prefix) {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

func ms(d time.Duration) float64 { return float64(d.Microseconds()) / 1000 }

// calloutCounts counts the callouts Rewrite will replace in text.
func calloutCounts(text string) map[callout.Kind]int {
	return callout.Scan(text).Counts()
}
