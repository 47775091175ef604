package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/docprep/internal/foundation/errors"
	"git.home.luguber.info/inful/docprep/internal/metrics"
	"git.home.luguber.info/inful/docprep/internal/watch"
)

type testEnv struct {
	dir    string
	root   *CLI
	global *Global
	out    *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	out := &bytes.Buffer{}
	return &testEnv{
		dir:    dir,
		root:   &CLI{Config: filepath.Join(dir, "docprep.yaml")},
		global: &Global{Stdout: out, Stderr: &bytes.Buffer{}, Stdin: strings.NewReader("")},
		out:    out,
	}
}

func (e *testEnv) write(t *testing.T, rel, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (e *testEnv) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.dir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestInitThenBuild(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, (&InitCmd{}).Run(env.global, env.root))
	assert.FileExists(t, env.root.Config)
	assert.Contains(t, env.out.String(), "Wrote configuration")

	err := (&InitCmd{}).Run(env.global, env.root)
	require.Error(t, err)
	require.NoError(t, (&InitCmd{Force: true}).Run(env.global, env.root))

	env.write(t, "docs/index.md", "# Home\n\n> [!NOTE]\n> built\n")
	env.out.Reset()
	require.NoError(t, (&BuildCmd{Output: filepath.Join(env.dir, "site")}).Run(env.global, env.root))

	assert.Equal(t, "# Home\n\n```{note}\nbuilt\n```\n", env.read(t, "site/index.md"))
	assert.Contains(t, env.out.String(), "1 document (1 written")
}

func TestBuild_RequiresConfig(t *testing.T) {
	env := newTestEnv(t)
	err := (&BuildCmd{}).Run(env.global, env.root)
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryConfig))
}

func TestBuild_InvalidOverride(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, "docprep.yaml", "build:\n  source_dir: docs\n")
	err := (&BuildCmd{Output: filepath.Join(env.dir, "docs")}).Run(env.global, env.root)
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryValidation))

	err = (&BuildCmd{Output: env.dir}).Run(env.global, env.root)
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryValidation))
	assert.FileExists(t, filepath.Join(env.dir, "docprep.yaml"))
}

func TestBuild_OutputRelativeToWorkingDirectory(t *testing.T) {
	env := newTestEnv(t)
	env.root.Config = env.write(t, "config/docprep.yaml", "build:\n  source_dir: ../docs\n")
	env.write(t, "docs/index.md", "> [!TIP] here\n")
	t.Chdir(env.dir)

	require.NoError(t, (&BuildCmd{Output: "site"}).Run(env.global, env.root))
	assert.Equal(t, "```{tip}\nhere\n```\n", env.read(t, "site/index.md"))
	assert.NoDirExists(t, filepath.Join(env.dir, "config", "site"))
}

func TestConvert_FileToStdout(t *testing.T) {
	env := newTestEnv(t)
	path := env.write(t, "page.md", "> [!TIP] short\n")

	require.NoError(t, (&ConvertCmd{File: path}).Run(env.global, env.root))
	assert.Equal(t, "```{tip}\nshort\n```\n", env.out.String())
}

func TestConvert_StdinToFile(t *testing.T) {
	env := newTestEnv(t)
	env.global.Stdin = strings.NewReader("> [!CAUTION]\r\n> hot\r\n")
	target := filepath.Join(env.dir, "out", "page.md")

	require.NoError(t, (&ConvertCmd{File: "-", Output: target}).Run(env.global, env.root))
	assert.Equal(t, "```{caution}\nhot\n```\n", env.read(t, "out/page.md"))
	assert.Empty(t, env.out.String())
}

func TestConvert_Diff(t *testing.T) {
	env := newTestEnv(t)
	env.global.Stdin = strings.NewReader("a\n> [!NOTE]\n")

	require.NoError(t, (&ConvertCmd{Diff: true}).Run(env.global, env.root))
	assert.Equal(t, " a\n-> [!NOTE]\n+```{note}\n+```\n", env.out.String())
}

func TestConvert_MissingFile(t *testing.T) {
	env := newTestEnv(t)
	err := (&ConvertCmd{File: filepath.Join(env.dir, "missing.md")}).Run(env.global, env.root)
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryFileSystem))
}

func TestLint(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, "docprep.yaml", "build:\n  source_dir: docs\n")
	env.write(t, "docs/good.md", "> [!NOTE]\n> fine\n")

	require.NoError(t, (&LintCmd{Format: "text", Color: "never"}).Run(env.global, env.root))
	assert.Contains(t, env.out.String(), "1 file")

	env.write(t, "docs/bad.md", "> [!DANGER]\n> unknown\n")
	env.out.Reset()
	err := (&LintCmd{Format: "json", Color: "never"}).Run(env.global, env.root)
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryLint))
	assert.Equal(t, derrors.ExitLint, derrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
	assert.Contains(t, env.out.String(), "unknown-kind")
}

func TestLint_SingleFile(t *testing.T) {
	env := newTestEnv(t)
	path := env.write(t, "page.md", "plain\n")

	require.NoError(t, (&LintCmd{Path: path, Format: "text", Color: "never"}).Run(env.global, env.root))
}

func TestHooks(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, (&HooksCmd{}).Run(env.global, env.root))
	assert.Contains(t, env.out.String(), "source-read")
	assert.Contains(t, env.out.String(), "gfm_callouts")
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, "docprep.yaml", "build:\n  source_dir: docs\n  incremental: true\n")
	env.write(t, "docs/a.md", "a\n")

	require.NoError(t, (&HistoryCmd{Limit: 5}).Run(env.global, env.root))
	assert.Contains(t, env.out.String(), "No builds recorded")

	require.NoError(t, (&BuildCmd{}).Run(env.global, env.root))
	env.out.Reset()
	require.NoError(t, (&HistoryCmd{Limit: 5}).Run(env.global, env.root))
	assert.Contains(t, env.out.String(), "OUTCOME")
	assert.Contains(t, env.out.String(), "success")
}

func TestWatchSession_IgnoresStateFileNotItsDirectory(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, "docprep.yaml", "build:\n  source_dir: docs\n  incremental: true\n  state_path: state.db\n")
	env.write(t, "docs/index.md", "x\n")
	cfg, err := env.root.loadConfig(env.global, true)
	require.NoError(t, err)

	session := &watchSession{global: env.global, root: env.root, cmd: &WatchCmd{}}
	opts := session.options(cfg)
	assert.Equal(t, []string{filepath.Join(env.dir, "_build", "source")}, opts.IgnoreDirs)
	assert.Contains(t, opts.IgnoreFiles, filepath.Join(env.dir, "state.db"))
	assert.Equal(t, filepath.Join(env.dir, "docs"), opts.SourceDir)
}

func TestWatchSession_ReloadMovesSourceTree(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, "docprep.yaml", "build:\n  source_dir: docs\n  output_dir: out\n")
	env.write(t, "docs/a.md", "a\n")
	env.write(t, "manual/b.md", "> [!NOTE] moved\n")
	cfg, err := env.root.loadConfig(env.global, true)
	require.NoError(t, err)

	session := &watchSession{
		global:   env.global,
		root:     env.root,
		cmd:      &WatchCmd{Debounce: 20 * time.Millisecond},
		cfg:      cfg,
		recorder: metrics.NoopRecorder{},
	}
	defer session.close()
	w, err := watch.New(session.options(cfg))
	require.NoError(t, err)
	session.watcher = w

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func(context.Context, watch.Reason) error { return nil }) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	env.write(t, "docprep.yaml", "build:\n  source_dir: manual\n  output_dir: out\n")
	require.NoError(t, session.build(ctx, watch.ReasonConfig))
	assert.Equal(t, filepath.Join(env.dir, "manual"), session.cfg.SourcePath())
	assert.Equal(t, "```{note}\nmoved\n```\n", env.read(t, "out/b.md"))
	assert.Contains(t, env.out.String(), "[config]")

	env.write(t, "docprep.yaml", "build:\n  source_dir: missing\n  output_dir: out\n")
	require.NoError(t, session.build(ctx, watch.ReasonConfig))
	assert.Equal(t, filepath.Join(env.dir, "manual"), session.cfg.SourcePath())
}
