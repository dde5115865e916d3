package filter

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
)

// Levels beyond the four slog defines. LevelNone disables logging entirely.
const (
	LevelTrace    slog.Level = slog.LevelDebug - 4
	LevelCritical slog.Level = slog.LevelError + 4
	LevelNone     slog.Level = math.MaxInt32
)

// ParseLevel converts a level name to a slog.Level. Matching is
// case-insensitive and accepts both short and long spellings.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "information", "info":
		return slog.LevelInfo, nil
	case "warning", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "critical", "fatal":
		return LevelCritical, nil
	case "none", "off":
		return LevelNone, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

// LevelName returns the canonical name of l.
func LevelName(l slog.Level) string {
	switch l {
	case LevelTrace:
		return "trace"
	case slog.LevelDebug:
		return "debug"
	case slog.LevelInfo:
		return "information"
	case slog.LevelWarn:
		return "warning"
	case slog.LevelError:
		return "error"
	case LevelCritical:
		return "critical"
	case LevelNone:
		return "none"
	default:
		return l.String()
	}
}

// ValidLevels returns the canonical level names, most verbose first.
func ValidLevels() []string {
	return []string{"trace", "debug", "information", "warning", "error", "critical", "none"}
}
