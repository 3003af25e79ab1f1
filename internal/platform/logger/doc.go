// Package logger provides structured logging for the application.
//
// It builds a JSON log/slog logger from configuration and carries
// request-scoped loggers, tagged with the request's trace ID, through
// context.Context.
package logger
