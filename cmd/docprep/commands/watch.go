package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docprep/internal/build"
	"git.home.luguber.info/inful/docprep/internal/config"
	"git.home.luguber.info/inful/docprep/internal/metrics"
	"git.home.luguber.info/inful/docprep/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Interval time.Duration `help:"Override build.rebuild_interval"`
	Debounce time.Duration `default:"300ms" help:"Quiet window before a change triggers a build"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g, true)
	if err != nil {
		return err
	}
	if w.Interval > 0 {
		cfg.Build.RebuildInterval = w.Interval
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var wg sync.WaitGroup
	if cfg.Metrics.Enabled {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		srv, err := metrics.Listen(cfg.Metrics.Listen, reg)
		if err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Serve(ctx); err != nil {
				g.logger().Warn("Metrics server stopped", "error", err)
			}
		}()
	}
	defer wg.Wait()

	session := &watchSession{global: g, root: root, cmd: w, cfg: cfg, recorder: recorder}
	defer session.close()

	watcher, err := watch.New(session.options(cfg))
	if err != nil {
		return err
	}
	session.watcher = watcher
	return watcher.Run(ctx, session.build)
}

// watchSession owns the builder used across rebuilds and replaces it, along
// with the watched paths and schedule, when the configuration file changes.
type watchSession struct {
	global   *Global
	root     *CLI
	cmd      *WatchCmd
	cfg      *config.Config
	recorder metrics.Recorder
	builder  *build.Builder
	watcher  *watch.Watcher
}

// options derives watcher options from cfg. The state database is ignored
// as a file, since its directory may hold the source tree.
func (s *watchSession) options(cfg *config.Config) watch.Options {
	var ignoreFiles []string
	if state := cfg.StatePath(); state != ":memory:" && state != "" {
		ignoreFiles = []string{state, state + "-journal", state + "-wal", state + "-shm"}
	}
	return watch.Options{
		SourceDir:   cfg.SourcePath(),
		IgnoreDirs:  []string{cfg.OutputPath()},
		IgnoreFiles: ignoreFiles,
		ConfigPath:  existingFile(s.root.Config),
		Debounce:    s.cmd.Debounce,
		Interval:    cfg.Build.RebuildInterval,
		Logger:      s.global.logger(),
	}
}

func (s *watchSession) build(ctx context.Context, reason watch.Reason) error {
	if reason == watch.ReasonConfig {
		s.reload(ctx)
	}
	if s.builder == nil {
		b, err := build.NewBuilder(s.cfg,
			build.WithLogger(s.global.logger()),
			build.WithRecorder(s.recorder))
		if err != nil {
			return err
		}
		s.builder = b
	}

	summary, err := s.builder.Build(ctx)
	if summary != nil {
		_, _ = fmt.Fprintf(s.global.stdout(), "[%s] %s\n", reason, summary.String())
	}
	return err
}

// reload swaps in the configuration file's current content. On failure the
// last good configuration stays active.
func (s *watchSession) reload(ctx context.Context) {
	logger := s.global.logger()
	cfg, err := s.root.loadConfig(s.global, true)
	if err != nil {
		logger.Error("Configuration reload failed", "error", err)
		return
	}
	if s.cmd.Interval > 0 {
		cfg.Build.RebuildInterval = s.cmd.Interval
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration reload failed", "error", err)
		return
	}
	if s.watcher != nil {
		if err := s.watcher.Reconfigure(ctx, s.options(cfg)); err != nil {
			logger.Error("Configuration reload failed", "error", err)
			return
		}
	}
	logger.Info("Configuration reloaded")
	s.close()
	s.cfg = cfg
}

func (s *watchSession) close() {
	if s.builder == nil {
		return
	}
	if err := s.builder.Close(); err != nil {
		s.global.logger().Warn("Failed to close state store", "error", err)
	}
	s.builder = nil
}

func existingFile(path string) string {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path
	}
	return ""
}
