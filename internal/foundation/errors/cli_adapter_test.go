package errors

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, ExitOK},
		{"validation", ValidationError("bad flag").Build(), ExitUsage},
		{"config", ConfigError("bad config").Build(), ExitConfig},
		{"lint findings", LintError("2 warnings").Build(), ExitLint},
		{"hook", HookError("boom").Build(), ExitBuild},
		{"wrapped build", fmt.Errorf("ctx: %w", BuildError("failed").Build()), ExitBuild},
		{"filesystem", FileSystemError("missing").Build(), ExitFileSystem},
		{"watch", WatchError("watcher").Build(), ExitRuntime},
		{"internal", InternalError("bug").Build(), ExitInternal},
		{"unclassified", errors.New("unknown"), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, slog.Default())
	verbose := NewCLIErrorAdapter(true, slog.Default())

	assert.Equal(t, "", quiet.FormatError(nil))
	assert.Equal(t, "Error: unknown", quiet.FormatError(errors.New("unknown")))
	assert.Equal(t, "Internal error occurred (use -v for details)", quiet.FormatError(InternalError("bug").Build()))
	assert.Equal(t, "Error: [internal] bug", verbose.FormatError(InternalError("bug").Build()))

	cfgErr := WrapError(errors.New("no such file"), CategoryConfig, "load config").Build()
	assert.Equal(t, "Error: load config: no such file", quiet.FormatError(cfgErr))
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var logBuf, outBuf bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logBuf, nil)))
	adapter.out = &outBuf
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(ConfigError("bad config").WithContext("file", "x.yaml").Build())

	assert.Equal(t, ExitConfig, code)
	assert.Equal(t, "Error: bad config\n", outBuf.String())
	assert.Contains(t, logBuf.String(), "category=config")
	assert.Contains(t, logBuf.String(), "file=x.yaml")

	code = -1
	adapter.HandleError(nil)
	assert.Equal(t, -1, code)
}
