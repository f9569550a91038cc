package optid

import (
	"context"
	"log/slog"
	"time"
)

// Operations reported through ResolutionLogger.
const (
	OpResolve        = "resolve"
	OpCandidate      = "candidate"
	OpRule           = "rule"
	OpIndexSkip      = "index.skip"
	OpIndexCollision = "index.collision"
	OpActivity       = "activity"
)

// ResolutionEvent describes one step of index construction or owner
// resolution.
type ResolutionEvent struct {
	Op        string
	Path      string
	Candidate string
	Owner     string
	Found     bool
	Examined  int
	Duration  time.Duration
	Err       error
}

// ResolutionLogger records resolution events.
type ResolutionLogger interface {
	LogResolution(ResolutionEvent)
}

// ResolutionLoggerFunc adapts a function to ResolutionLogger.
type ResolutionLoggerFunc func(ResolutionEvent)

// LogResolution implements ResolutionLogger.
func (f ResolutionLoggerFunc) LogResolution(event ResolutionEvent) {
	if f != nil {
		f(event)
	}
}

type noopResolutionLogger struct{}

func (noopResolutionLogger) LogResolution(ResolutionEvent) {}

// SlogLogger writes events to logger. Candidate and index skips are debug
// records, everything else is info.
func SlogLogger(logger *slog.Logger) ResolutionLogger {
	if logger == nil {
		return noopResolutionLogger{}
	}
	return ResolutionLoggerFunc(func(event ResolutionEvent) {
		level := slog.LevelInfo
		switch event.Op {
		case OpCandidate, OpIndexSkip:
			level = slog.LevelDebug
		case OpIndexCollision, OpRule, OpActivity:
			level = slog.LevelWarn
		}
		attrs := []slog.Attr{slog.String("op", event.Op)}
		if event.Path != "" {
			attrs = append(attrs, slog.String("path", event.Path))
		}
		if event.Candidate != "" {
			attrs = append(attrs, slog.String("candidate", event.Candidate))
		}
		if event.Owner != "" {
			attrs = append(attrs, slog.String("owner", event.Owner))
		}
		if event.Op == OpResolve {
			attrs = append(attrs,
				slog.Bool("found", event.Found),
				slog.Int("examined", event.Examined),
				slog.Duration("duration", event.Duration),
			)
		}
		if event.Err != nil {
			attrs = append(attrs, slog.String("error", event.Err.Error()))
		}
		logger.LogAttrs(context.Background(), level, "optid "+event.Op, attrs...)
	})
}

// WithLogger attaches a resolution logger to the generator.
func WithLogger(logger ResolutionLogger) Option {
	return func(cfg *config) {
		if logger == nil {
			cfg.logger = noopResolutionLogger{}
			return
		}
		cfg.logger = logger
	}
}
