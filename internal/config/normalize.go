package config

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// MissingSourcePolicy decides how the staleness oracle treats a missing source file.
type MissingSourcePolicy string

const (
	MissingSourceSkip  MissingSourcePolicy = "skip"
	MissingSourceFatal MissingSourcePolicy = "fatal"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// SlogLevel maps the configured level onto slog.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// normalizer maps case-insensitive, trimmed input onto a closed set of values.
type normalizer[T ~string] struct {
	values   map[string]T
	fallback T
}

func newNormalizer[T ~string](fallback T, values ...T) normalizer[T] {
	m := make(map[string]T, len(values))
	for _, v := range values {
		m[string(v)] = v
	}
	return normalizer[T]{values: m, fallback: fallback}
}

// normalize returns the canonical value and whether raw was recognized.
func (n normalizer[T]) normalize(raw string) (T, bool) {
	v, ok := n.values[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return n.fallback, false
	}
	return v, true
}

func (n normalizer[T]) valid() []string {
	out := make([]string, 0, len(n.values))
	for k := range n.values {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

var (
	logLevelNormalizer      = newNormalizer(LogLevelInfo, LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError)
	logFormatNormalizer     = newNormalizer(LogFormatText, LogFormatText, LogFormatJSON)
	missingSourceNormalizer = newNormalizer(MissingSourceSkip, MissingSourceSkip, MissingSourceFatal)
)

// NormalizeLogLevel converts raw input to a LogLevel, defaulting to info.
func NormalizeLogLevel(raw string) LogLevel {
	v, _ := logLevelNormalizer.normalize(raw)
	return v
}

// NormalizeLogFormat converts raw input to a LogFormat, defaulting to text.
func NormalizeLogFormat(raw string) LogFormat {
	v, _ := logFormatNormalizer.normalize(raw)
	return v
}

// NormalizationResult collects warnings about values that were rewritten.
type NormalizationResult struct {
	Warnings []string
}

// NormalizeConfig canonicalizes enum-like fields and list entries in place.
func NormalizeConfig(cfg *Config) NormalizationResult {
	var res NormalizationResult

	normalizeEnum(&res, "logging.level", &cfg.Logging.Level, logLevelNormalizer)
	normalizeEnum(&res, "logging.format", &cfg.Logging.Format, logFormatNormalizer)
	normalizeEnum(&res, "build.missing_source", &cfg.Build.MissingSource, missingSourceNormalizer)

	cfg.Build.SharedDirs = trimStringSlice(&res, "build.shared_dirs", cfg.Build.SharedDirs)
	cfg.Build.Keep = trimStringSlice(&res, "build.keep", cfg.Build.Keep)
	cfg.Render.NoHighlight = strings.ToLower(strings.TrimSpace(cfg.Render.NoHighlight))
	cfg.Render.FallbackLanguage = strings.ToLower(strings.TrimSpace(cfg.Render.FallbackLanguage))
	return res
}

func normalizeEnum[T ~string](res *NormalizationResult, label string, field *T, n normalizer[T]) {
	raw := string(*field)
	v, ok := n.normalize(raw)
	if !ok {
		res.Warnings = append(res.Warnings, fmt.Sprintf("unknown %s %q, using %q (valid: %s)", label, raw, v, strings.Join(n.valid(), ", ")))
	} else if string(v) != raw {
		res.Warnings = append(res.Warnings, fmt.Sprintf("normalized %s from %q to %q", label, raw, v))
	}
	*field = v
}

// trimStringSlice removes blank and duplicate entries, preserving order.
func trimStringSlice(res *NormalizationResult, label string, in []string) []string {
	if len(in) == 0 {
		return in
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		t := strings.TrimSpace(v)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) != len(in) {
		res.Warnings = append(res.Warnings, fmt.Sprintf("normalized %s list (%d -> %d entries)", label, len(in), len(out)))
	}
	return out
}
