// Package actionlog records every display-subsystem call of a run to a
// rotating file, one slog text record per call.
package actionlog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// ActionType names the device operation being logged.
type ActionType string

const (
	ActionCurrent ActionType = "CURRENT"
	ActionStatus  ActionType = "STATUS"
	ActionWrite   ActionType = "WRITE"
	ActionOpen    ActionType = "OPEN"
	ActionSleep   ActionType = "SLEEP"
	ActionFork    ActionType = "FORK"
	ActionFailed  ActionType = "FAILED"
)

// actionLevel maps queries to debug, mutations to info and failures to error.
func actionLevel(action ActionType) slog.Level {
	switch action {
	case ActionCurrent, ActionStatus, ActionSleep:
		return slog.LevelDebug
	case ActionFailed:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogConfig holds configuration for the action logger.
type LogConfig struct {
	Enabled        bool
	Level          slog.Level
	FilePath       string
	MaxSizeMB      int
	MaxFiles       int
	IncludeContent bool
	PreviewLength  int
}

// Logger emits action records through a slog text handler writing to a
// rotating file. A nil or disabled Logger drops everything.
type Logger struct {
	out     *rotatingFile
	handler slog.Handler
	config  LogConfig
	now     func() time.Time
}

// NewLogger opens the log file named by cfg.
func NewLogger(cfg LogConfig) (*Logger, error) {
	if !cfg.Enabled {
		return &Logger{config: cfg}, nil
	}
	out, err := openRotatingFile(cfg.FilePath, cfg.MaxSizeMB, cfg.MaxFiles)
	if err != nil {
		return nil, err
	}
	handler := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: cfg.Level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.MessageKey {
				a.Key = "action"
			}
			return a
		},
	})
	return &Logger{out: out, handler: handler, config: cfg, now: time.Now}, nil
}

// Enabled reports whether action would be written.
func (l *Logger) Enabled(action ActionType) bool {
	if l == nil || l.handler == nil {
		return false
	}
	return l.handler.Enabled(context.Background(), actionLevel(action))
}

// Log writes one record for action with the given attributes.
func (l *Logger) Log(action ActionType, attrs ...slog.Attr) {
	if !l.Enabled(action) {
		return
	}
	r := slog.NewRecord(l.now(), actionLevel(action), string(action), 0)
	r.AddAttrs(attrs...)
	if err := l.handler.Handle(context.Background(), r); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write log entry: %v\n", err)
	}
}

// preview returns the data attribute for a write, or false when content
// logging is off.
func (l *Logger) preview(b []byte) (slog.Attr, bool) {
	if l == nil || !l.config.IncludeContent {
		return slog.Attr{}, false
	}
	return slog.String("data", Preview(b, l.config.PreviewLength)), true
}

// Close closes the log file.
func (l *Logger) Close() error {
	if l == nil || l.out == nil {
		return nil
	}
	return l.out.Close()
}

// ParseLogLevel converts a config level name; unknown names mean info.
func ParseLogLevel(s string) slog.Level {
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

// Preview renders b as hex, truncated to maxLen bytes.
func Preview(b []byte, maxLen int) string {
	if maxLen > 0 && len(b) > maxLen {
		return fmt.Sprintf("% X ...", b[:maxLen])
	}
	return fmt.Sprintf("% X", b)
}
