package logfields

import "log/slog"

// Canonical log field names shared by all packages.
const (
	KeyBuildID    = "build_id"
	KeyDocName    = "docname"
	KeyPath       = "path"
	KeyHook       = "hook"
	KeyEvent      = "event"
	KeyKind       = "kind"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyWorkers    = "workers"
	KeyRule       = "rule"
	KeyError      = "error"
)

func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func DocName(name string) slog.Attr   { return slog.String(KeyDocName, name) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Hook(name string) slog.Attr      { return slog.String(KeyHook, name) }
func Event(name string) slog.Attr     { return slog.String(KeyEvent, name) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Workers(n int) slog.Attr         { return slog.Int(KeyWorkers, n) }
func Rule(r string) slog.Attr         { return slog.String(KeyRule, r) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
