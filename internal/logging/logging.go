package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Init creates and sets the package-level default slog logger on stderr.
// Reports and feeds go to files/stdout, so stderr keeps them unmixed.
// jsonOutput selects JSONHandler for machine-collected runs (CI).
func Init(jsonOutput bool, level slog.Level) {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// ParseLevel converts a string ("debug", "info", "warn", "error") to slog.Level.
// Unknown strings default to LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// The three health states below are deliberately distinct log shapes: a
// failed fetch, a skipped target and an observed-but-unchanged target must
// never be conflated in operator-facing output.

// TargetOK records a target that completed its run, with the observed outcome
// (baseline, unchanged, changed, suppressed).
func TargetOK(name, outcome string, attrs ...any) {
	args := append([]any{"health", "ok", "name", name, "outcome", outcome}, attrs...)
	slog.Info("target processed", args...)
}

// TargetFailed records a target whose run failed at the given stage and was
// left unresolved for this execution.
func TargetFailed(name, stage string, err error) {
	slog.Error("target failed", "health", "failed", "name", name, "stage", stage, "error", err)
}

// TargetSkipped records a target that was not attempted at all.
func TargetSkipped(name, reason string) {
	slog.Warn("target skipped", "health", "skipped", "name", name, "reason", reason)
}
