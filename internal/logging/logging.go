package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	slogmulti "github.com/samber/slog-multi"
)

// Options selects log level and destinations.
type Options struct {
	Level string    // debug|info|warn|error; empty means warn
	Debug bool      // forces debug level
	File  string    // optional JSON log file, appended to
	Out   io.Writer // text handler destination; nil means stderr
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

// New builds a logger tagged with a fresh run id. The returned close func
// releases the log file, if one was opened.
func New(opt Options) (*slog.Logger, func() error, error) {
	level, err := ParseLevel(opt.Level)
	if err != nil {
		return nil, nil, err
	}
	if opt.Debug {
		level = slog.LevelDebug
	}
	out := opt.Out
	if out == nil {
		out = os.Stderr
	}
	hopts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(out, hopts)
	closer := func() error { return nil }
	if opt.File != "" {
		f, err := os.OpenFile(opt.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		h = slogmulti.Fanout(h, slog.NewJSONHandler(f, hopts))
		closer = f.Close
	}
	l := slog.New(h).With(slog.String("run", uuid.NewString()))
	return l, closer, nil
}
