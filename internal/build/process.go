package build

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/docprep/internal/callout"
	"git.home.luguber.info/inful/docprep/internal/docs"
	derrors "git.home.luguber.info/inful/docprep/internal/foundation/errors"
	"git.home.luguber.info/inful/docprep/internal/hooks"
	"git.home.luguber.info/inful/docprep/internal/logfields"
	"git.home.luguber.info/inful/docprep/internal/metrics"
	"git.home.luguber.info/inful/docprep/internal/state"
)

type docResult struct {
	skipped  bool
	changed  bool
	bytes    int
	callouts map[callout.Kind]int
}

// processor handles single documents. It is shared by the workers of one
// build and holds no mutable state.
type processor struct {
	buildID       string
	outputDir     string
	registry      *hooks.Registry
	store         state.Store
	recorder      metrics.Recorder
	logger        *slog.Logger
	dryRun        bool
	ignoreState   bool
	countCallouts bool
}

func (p *processor) process(ctx context.Context, f docs.DocFile) (res docResult, err error) {
	start := time.Now()
	defer func() {
		p.recorder.ObserveDocumentDuration(time.Since(start))
		switch {
		case err != nil:
			p.recorder.IncDocumentResult(metrics.ResultFailed)
		case res.skipped:
			p.recorder.IncDocumentResult(metrics.ResultSkipped)
		default:
			p.recorder.IncDocumentResult(metrics.ResultSuccess)
			for k, n := range res.callouts {
				p.recorder.AddCallouts(string(k), n)
			}
		}
	}()

	if err := f.Load(); err != nil {
		return res, err
	}
	outPath := filepath.Join(p.outputDir, filepath.FromSlash(f.RelativePath))

	if p.unchanged(ctx, f, outPath) {
		p.logger.Debug("Document unchanged", logfields.DocName(f.DocName))
		return docResult{skipped: true}, nil
	}

	if p.countCallouts {
		res.callouts = calloutCounts(f.Content)
	}

	src := &hooks.Source{DocName: f.DocName, Path: f.Path, Text: f.Content}
	if err := p.registry.EmitSourceRead(ctx, src); err != nil {
		return res, err
	}
	out := []byte(src.Text)
	res.bytes = len(out)

	existing, readErr := os.ReadFile(outPath)
	res.changed = readErr != nil || !bytes.Equal(existing, out)
	if p.dryRun {
		return res, nil
	}

	if res.changed {
		if err := writeIfChanged(outPath, out); err != nil {
			return res, derrors.WrapError(err, derrors.CategoryFileSystem, "write document").
				WithContext("path", outPath).
				Build()
		}
	}
	if err := p.store.Put(ctx, state.Document{
		Path:        f.RelativePath,
		Fingerprint: f.Fingerprint,
		BuildID:     p.buildID,
	}); err != nil {
		return res, derrors.WrapError(err, derrors.CategoryState, "record document state").
			WithContext("path", f.RelativePath).
			Build()
	}

	p.logger.Debug("Document processed",
		logfields.DocName(f.DocName),
		slog.Bool("changed", res.changed),
		logfields.Count(len(res.callouts)))
	return res, nil
}

// unchanged reports whether the stored fingerprint matches and the output
// still exists.
func (p *processor) unchanged(ctx context.Context, f docs.DocFile, outPath string) bool {
	if p.ignoreState {
		return false
	}
	rec, ok, err := p.store.Get(ctx, f.RelativePath)
	if err != nil {
		p.logger.Warn("Failed to read document state", logfields.Path(f.RelativePath), logfields.Error(err))
		return false
	}
	if !ok || rec.Fingerprint != f.Fingerprint {
		return false
	}
	_, err = os.Stat(outPath)
	return err == nil
}
