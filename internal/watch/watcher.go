package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	derrors "git.home.luguber.info/inful/docprep/internal/foundation/errors"
	"git.home.luguber.info/inful/docprep/internal/logfields"
)

// DefaultDebounce is the quiet window applied to filesystem events.
const DefaultDebounce = 300 * time.Millisecond

// BuildFunc runs one build. Errors are logged and do not stop the watcher.
type BuildFunc func(ctx context.Context, reason Reason) error

// Options configures a Watcher.
type Options struct {
	SourceDir   string
	IgnoreDirs  []string // directories below SourceDir that never trigger builds
	IgnoreFiles []string // single files below SourceDir that never trigger builds
	ConfigPath  string   // watched for reloads when set
	Debounce    time.Duration
	Interval    time.Duration // periodic rebuilds when positive
	Logger      *slog.Logger
}

// Watcher turns filesystem events into serialised builds.
type Watcher struct {
	opts     Options
	logger   *slog.Logger
	sched    gocron.Scheduler
	reconfig chan reconfigure
	stopped  chan struct{}

	mu      sync.Mutex
	timer   *time.Timer
	pending Reason
	wake    chan struct{}
}

type reconfigure struct {
	opts Options
	done chan error
}

// New validates opts and returns a watcher.
func New(opts Options) (*Watcher, error) {
	opts, err := normalize(opts)
	if err != nil {
		return nil, err
	}
	return &Watcher{
		opts:     opts,
		logger:   opts.Logger,
		reconfig: make(chan reconfigure),
		stopped:  make(chan struct{}),
		wake:     make(chan struct{}, 1),
	}, nil
}

func normalize(opts Options) (Options, error) {
	if opts.SourceDir == "" {
		return opts, derrors.ValidationError("source directory is required").Build()
	}
	abs, err := filepath.Abs(opts.SourceDir)
	if err != nil {
		return opts, derrors.WrapError(err, derrors.CategoryFileSystem, "resolve source directory").Build()
	}
	opts.SourceDir = abs
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return opts, derrors.FileSystemError("source directory not found").
			WithContext("path", abs).
			Fatal().
			Build()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	// A directory that holds the whole source tree would swallow every event.
	ignore := make([]string, 0, len(opts.IgnoreDirs))
	for _, d := range opts.IgnoreDirs {
		a, err := filepath.Abs(d)
		if err != nil {
			continue
		}
		if within(abs, a) {
			opts.Logger.Warn("Not ignoring directory that contains the source tree", logfields.Path(a))
			continue
		}
		ignore = append(ignore, a)
	}
	opts.IgnoreDirs = ignore

	files := make([]string, 0, len(opts.IgnoreFiles))
	for _, f := range opts.IgnoreFiles {
		if a, err := filepath.Abs(f); err == nil {
			files = append(files, a)
		}
	}
	opts.IgnoreFiles = files

	if opts.ConfigPath != "" {
		if opts.ConfigPath, err = filepath.Abs(opts.ConfigPath); err != nil {
			return opts, derrors.WrapError(err, derrors.CategoryConfig, "resolve config path").Build()
		}
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return opts, nil
}

// Run performs an initial build and then rebuilds on every change until
// ctx is done. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context, build BuildFunc) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryWatch, "create filesystem watcher").Fatal().Build()
	}
	defer func() { _ = fsw.Close() }()

	if err := w.watchPaths(fsw); err != nil {
		return err
	}
	if err := w.restartSchedule(); err != nil {
		return err
	}
	defer w.stopSchedule()

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.worker(ctx, build)
	}()

	w.logger.Info("Watching for changes",
		logfields.Path(w.opts.SourceDir),
		slog.Duration("interval", w.opts.Interval))
	w.request(ReasonInitial)

	stop := func() error {
		close(w.stopped)
		w.stopTimer()
		<-done
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return stop()
		case rc := <-w.reconfig:
			rc.done <- w.apply(fsw, rc.opts)
		case ev, ok := <-fsw.Events:
			if !ok {
				return stop()
			}
			w.handleEvent(fsw, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return stop()
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

// Reconfigure replaces the watched source tree, ignore lists, config path,
// debounce window and rebuild interval of a running watcher. It must be
// called while Run is active, typically from the BuildFunc handling a
// ReasonConfig build. On error the previous options stay in effect.
func (w *Watcher) Reconfigure(ctx context.Context, opts Options) error {
	if opts.Logger == nil {
		opts.Logger = w.logger
	}
	opts, err := normalize(opts)
	if err != nil {
		return err
	}
	rc := reconfigure{opts: opts, done: make(chan error, 1)}
	select {
	case w.reconfig <- rc:
	case <-w.stopped:
		return derrors.NewError(derrors.CategoryWatch, "watcher is not running").Build()
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-rc.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Watcher) apply(fsw *fsnotify.Watcher, opts Options) error {
	previous := w.opts
	for _, p := range fsw.WatchList() {
		_ = fsw.Remove(p)
	}

	w.setOptions(opts)
	err := w.watchPaths(fsw)
	if err == nil && opts.Interval != previous.Interval {
		err = w.restartSchedule()
	}
	if err != nil {
		for _, p := range fsw.WatchList() {
			_ = fsw.Remove(p)
		}
		w.setOptions(previous)
		if rerr := w.watchPaths(fsw); rerr != nil {
			w.logger.Warn("Failed to restore previous watches", logfields.Error(rerr))
		}
		if opts.Interval != previous.Interval {
			if rerr := w.restartSchedule(); rerr != nil {
				w.logger.Warn("Failed to restore previous schedule", logfields.Error(rerr))
			}
		}
		return err
	}

	w.logger.Info("Watch configuration updated",
		logfields.Path(opts.SourceDir),
		slog.Duration("interval", opts.Interval))
	return nil
}

func (w *Watcher) setOptions(opts Options) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.opts = opts
}

func (w *Watcher) watchPaths(fsw *fsnotify.Watcher) error {
	w.addDirsRecursive(fsw, w.opts.SourceDir)
	if w.opts.ConfigPath == "" {
		return nil
	}
	dir := filepath.Dir(w.opts.ConfigPath)
	if err := fsw.Add(dir); err != nil {
		return derrors.WrapError(err, derrors.CategoryWatch, "watch config directory").
			WithContext("path", dir).
			Build()
	}
	return nil
}

func (w *Watcher) restartSchedule() error {
	w.stopSchedule()
	if w.opts.Interval <= 0 {
		return nil
	}
	sched, err := w.schedule()
	if err != nil {
		return err
	}
	sched.Start()
	w.sched = sched
	return nil
}

func (w *Watcher) stopSchedule() {
	if w.sched == nil {
		return
	}
	if err := w.sched.Shutdown(); err != nil {
		w.logger.Warn("Scheduler shutdown failed", logfields.Error(err))
	}
	w.sched = nil
}

func (w *Watcher) worker(ctx context.Context, build BuildFunc) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.wake:
			reason := w.take()
			if reason == "" {
				continue
			}
			start := time.Now()
			err := build(ctx, reason)
			elapsed := float64(time.Since(start).Microseconds()) / 1000
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				w.logger.Warn("Rebuild failed",
					slog.String("reason", string(reason)),
					logfields.Error(err),
					logfields.DurationMS(elapsed))
				continue
			}
			w.logger.Debug("Rebuild complete",
				slog.String("reason", string(reason)),
				logfields.DurationMS(elapsed))
		}
	}
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, ev fsnotify.Event) {
	path := filepath.Clean(ev.Name)

	if w.opts.ConfigPath != "" && path == w.opts.ConfigPath {
		if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
			w.logger.Debug("Config change detected", logfields.Path(path), slog.String("op", ev.Op.String()))
			w.trigger(ReasonConfig)
		}
		return
	}
	if !within(path, w.opts.SourceDir) || w.ignoredDir(path) || w.ignoredFile(path) || shouldIgnoreEvent(path) {
		return
	}
	if ev.Op&fsnotify.Chmod == fsnotify.Chmod && ev.Op&^fsnotify.Chmod == 0 {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(path); err == nil && fi.IsDir() {
			w.addDirsRecursive(fsw, path)
		}
	}
	w.logger.Debug("File change detected", logfields.Path(path), slog.String("op", ev.Op.String()))
	w.trigger(ReasonChange)
}

func (w *Watcher) addDirsRecursive(fsw *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != w.opts.SourceDir && (shouldIgnoreEvent(path) || w.ignoredDir(path)) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			w.logger.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

func (w *Watcher) ignoredDir(path string) bool {
	for _, d := range w.opts.IgnoreDirs {
		if within(path, d) {
			return true
		}
	}
	return false
}

func (w *Watcher) ignoredFile(path string) bool {
	for _, f := range w.opts.IgnoreFiles {
		if path == f {
			return true
		}
	}
	return false
}

// trigger requests a build after the debounce window. Later triggers
// restart the window.
func (w *Watcher) trigger(reason Reason) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = merge(w.pending, reason)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, w.signal)
}

// request asks for a build without debouncing.
func (w *Watcher) request(reason Reason) {
	w.mu.Lock()
	w.pending = merge(w.pending, reason)
	w.mu.Unlock()
	w.signal()
}

func (w *Watcher) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Watcher) take() Reason {
	w.mu.Lock()
	defer w.mu.Unlock()
	r := w.pending
	w.pending = ""
	return r
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}
