package internal

import (
	"log/slog"
)

// RequestCycleListener observes request cycles.
type RequestCycleListener interface {
	OnBeginRequest(rc *RequestCycle)
	OnEndRequest(rc *RequestCycle)
	// OnException is called before the error is mapped to a response.
	OnException(rc *RequestCycle, err error)
}

// RequestLogger logs one line per request cycle.
type RequestLogger struct {
	logger *slog.Logger
	level  slog.Level
}

// NewRequestLogger creates a RequestLogger writing at level.
func NewRequestLogger(l *slog.Logger, level slog.Level) *RequestLogger {
	return &RequestLogger{logger: l, level: level}
}

func (l *RequestLogger) OnBeginRequest(*RequestCycle) {}

func (l *RequestLogger) OnException(*RequestCycle, error) {}

func (l *RequestLogger) OnEndRequest(rc *RequestCycle) {
	log := l.logger
	if log == nil {
		log = rc.Logger()
	}
	attrs := []slog.Attr{
		slog.String("method", rc.req.Method),
		slog.String("url", absolute(rc.url)),
		slog.String("target", targetName(rc.target)),
		slog.Int("status", rc.w.Status()),
		slog.Int64("size", rc.w.Size()),
		slog.Duration("duration", rc.Duration()),
	}
	if rc.sess != nil {
		attrs = append(attrs, slog.String("session_id", rc.sess.ID))
	}
	if rc.err != nil {
		attrs = append(attrs, slog.String("error", rc.err.Error()))
	}
	log.LogAttrs(rc.Context(), l.level, "request", attrs...)
}
