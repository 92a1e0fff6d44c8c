package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyUnit       = "unit"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeySource     = "source"
	KeyDest       = "dest"
	KeyFile       = "file"
	KeyLanguage   = "language"
	KeyOutcome    = "outcome"
	KeyCount      = "count"
	KeyBuildID    = "build_id"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyRemoteAddr = "remote_addr"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Unit(name string) slog.Attr      { return slog.String(KeyUnit, name) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Source(p string) slog.Attr       { return slog.String(KeySource, p) }
func Dest(p string) slog.Attr         { return slog.String(KeyDest, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Language(l string) slog.Attr     { return slog.String(KeyLanguage, l) }
func Outcome(o string) slog.Attr      { return slog.String(KeyOutcome, o) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func RemoteAddr(a string) slog.Attr   { return slog.String(KeyRemoteAddr, a) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
