// Package logger builds slog loggers for loom applications.
//
// Loggers are decorated with context extractors, so request-scoped values
// such as the request id or the session id land on every line without being
// passed around explicitly:
//
//	log := logger.New(middlewares.RequestIDExtractor())
//	log.InfoContext(r.Context(), "page rendered", slog.String("target", "PageTarget"))
//	// {"level":"INFO","msg":"page rendered","target":"PageTarget","request_id":"01J..."}
//
// # Configuration
//
// NewFromConfig reads a Config, usually the "log" section of the settings file:
//
//	log:
//	  level: debug
//	  format: text
//	  sentry:
//	    dsn: https://key@sentry.example.com/1
//
// Format is json (default) or text. A Sentry DSN adds a second handler that
// turns errors into issues and keeps warnings as searchable logs. When
// Sentry fails to initialize, logging continues on the stream handler.
//
// # Handler decoration
//
// NewContextHandler wraps any slog.Handler:
//
//	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
//	log := slog.New(logger.NewContextHandler(h, extractors...))
//
// NewNope returns a logger that drops everything. It is the engine default.
package logger
