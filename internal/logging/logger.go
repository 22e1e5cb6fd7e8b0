package logging

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// contextKey is the type for context keys
type contextKey string

const (
	// RequestIDKey is the context key for request IDs
	RequestIDKey contextKey = "request_id"
	// UserIDKey is the context key for the authenticated user's id
	UserIDKey contextKey = "user_id"

	requestFieldsKey contextKey = "request_fields"
)

// requestFields holds values learned after the request logger was built.
type requestFields struct {
	mu      sync.Mutex
	userID  int64
	hasUser bool
}

// Logger wraps zerolog for application logging
type Logger struct {
	logger zerolog.Logger
}

// Config holds logging configuration
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, text
	Output io.Writer
}

// New creates a new logger with the given configuration
func New(cfg Config) *Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "text" {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}).
			Level(level).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(output).
			Level(level).
			With().
			Timestamp().
			Logger()
	}

	return &Logger{logger: logger}
}

// SetGlobalLogger sets the global logger instance
func SetGlobalLogger(logger *Logger) {
	log.Logger = logger.logger
}

// Zerolog exposes the underlying logger for components that take one directly.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.logger
}

// Info logs an info message
func (l *Logger) Info(msg string) {
	l.logger.Info().Msg(msg)
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(err error, msg string) {
	l.logger.Fatal().Err(err).Msg(msg)
}

// WithRequestID stores a request id on the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// TrackRequest attaches a holder that later WithUserID calls fill in.
func TrackRequest(ctx context.Context) context.Context {
	return context.WithValue(ctx, requestFieldsKey, &requestFields{})
}

// WithUserID stores the authenticated user's id on the context and on any tracked request.
func WithUserID(ctx context.Context, userID int64) context.Context {
	if fields, ok := ctx.Value(requestFieldsKey).(*requestFields); ok {
		fields.mu.Lock()
		fields.userID, fields.hasUser = userID, true
		fields.mu.Unlock()
	}
	return context.WithValue(ctx, UserIDKey, userID)
}

// TrackedUserID returns the user id recorded for a tracked request.
func TrackedUserID(ctx context.Context) (int64, bool) {
	fields, ok := ctx.Value(requestFieldsKey).(*requestFields)
	if !ok {
		return 0, false
	}
	fields.mu.Lock()
	defer fields.mu.Unlock()
	return fields.userID, fields.hasUser
}

// RequestID returns the request id stored on the context, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// WithContext returns a logger with context values from the global logger
func WithContext(ctx context.Context) *zerolog.Logger {
	logger := log.With()

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		logger = logger.Str("request_id", requestID)
	}
	if userID, ok := ctx.Value(UserIDKey).(int64); ok {
		logger = logger.Int64("user_id", userID)
	}

	contextLogger := logger.Logger()
	return &contextLogger
}
