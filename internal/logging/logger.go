package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options tunes the handler built by NewWithOptions.
type Options struct {
	// Format is "text" (default) or "json".
	Format string
	// File, when set, receives the log instead of Stderr and is rotated by size.
	File string
	// MaxSizeMB is the rotation threshold for File.
	MaxSizeMB int
	// MaxBackups is the number of rotated files kept.
	MaxBackups int
}

// New creates a configured application logger.
// It writes to Stderr (to separate from Stdout command output).
// It standardizes common keys (e.g., "error" -> "err").
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, handlerOptions(level)))
}

// NewWithOptions creates a logger honoring the logging section of the config.
// The returned closer releases the log file, if any.
func NewWithOptions(level slog.Level, opts Options) (*slog.Logger, io.Closer) {
	var out io.Writer = os.Stderr
	var closer io.Closer = io.NopCloser(nil)
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			Compress:   true,
		}
		out, closer = lj, lj
	}

	var h slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		h = slog.NewJSONHandler(out, handlerOptions(level))
	} else {
		h = slog.NewTextHandler(out, handlerOptions(level))
	}
	return slog.New(h), closer
}

// ParseLevel maps a config string to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func handlerOptions(level slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}
}
