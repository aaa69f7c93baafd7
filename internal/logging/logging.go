package logging

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

const ErrorKey string = "error"
const logAttributesNumber = 8 // Preallocate for common attributes. Go will reallocate if more is added to the slice.

type ctxKey struct{}

// NewLogger creates a new JSON logger writing to stdout at the given level
// ("debug", "info", "warn", "error"; anything else means info).
// It sets the logger as the default slog logger and returns it.
func NewLogger(level string) *slog.Logger {
	return NewLoggerTo(os.Stdout, level)
}

// NewLoggerTo is NewLogger with an explicit destination.
func NewLoggerTo(w io.Writer, level string) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// RequestLogger is a middleware that creates a request-scoped logger with the request ID
// and stores it in the context for use by all downstream handlers and layers.
func RequestLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.With(
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
			next.ServeHTTP(w, r.WithContext(NewContextWithLogger(r.Context(), log)))
		})
	}
}

// FromContext retrieves the request-scoped logger from context.
// If no logger is found, returns the default slog logger.
func FromContext(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return log
	}
	return slog.Default()
}

// NewContextWithLogger creates a new context with the given logger attached.
// Useful for tests or background jobs where there's no HTTP request.
func NewContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// LogBuilder provides a fluent API for building structured log entries.
// It reduces verbosity by eliminating repeated slog.String() calls inside log.Error, log.Warn, and log.Info functions.
type LogBuilder struct {
	logger *slog.Logger
	attrs  []any
}

// Log creates a LogBuilder from context, extracting the request-scoped logger.
func Log(ctx context.Context) *LogBuilder {
	return With(FromContext(ctx))
}

// With creates a LogBuilder from an existing slog.Logger.
func With(logger *slog.Logger) *LogBuilder {
	return &LogBuilder{
		logger: logger,
		attrs:  make([]any, 0, logAttributesNumber),
	}
}

// Layer adds the "layer" field (e.g., "routes", "handler", "repository").
func (b *LogBuilder) Layer(layer string) *LogBuilder {
	return b.Str("layer", layer)
}

// Op adds the "operation" field (e.g., "AddToLibrary", "Login").
func (b *LogBuilder) Op(operation string) *LogBuilder {
	return b.Str("operation", operation)
}

// User adds the "user_id" field.
func (b *LogBuilder) User(userID string) *LogBuilder {
	return b.Str("user_id", userID)
}

// Track adds the "track_ref" field.
func (b *LogBuilder) Track(trackRef string) *LogBuilder {
	return b.Str("track_ref", trackRef)
}

// Entry adds the "entry_id" field for a stored library entry.
func (b *LogBuilder) Entry(id int64) *LogBuilder {
	b.attrs = append(b.attrs, slog.Int64("entry_id", id))
	return b
}

func (b *LogBuilder) Str(key, value string) *LogBuilder {
	b.attrs = append(b.attrs, slog.String(key, value))
	return b
}

func (b *LogBuilder) Int(key string, value int) *LogBuilder {
	b.attrs = append(b.attrs, slog.Int(key, value))
	return b
}

func (b *LogBuilder) Time(key string, value time.Time) *LogBuilder {
	b.attrs = append(b.attrs, slog.Time(key, value))
	return b
}

func (b *LogBuilder) Dur(key string, value time.Duration) *LogBuilder {
	b.attrs = append(b.attrs, slog.Duration(key, value))
	return b
}

func (b *LogBuilder) Bool(key string, value bool) *LogBuilder {
	b.attrs = append(b.attrs, slog.Bool(key, value))
	return b
}

func (b *LogBuilder) Any(key string, value any) *LogBuilder {
	b.attrs = append(b.attrs, slog.Any(key, value))
	return b
}

// Err adds the "error" field from an error. A nil error adds nothing.
func (b *LogBuilder) Err(err error) *LogBuilder {
	if err != nil {
		b.attrs = append(b.attrs, slog.String(ErrorKey, err.Error()))
	}
	return b
}

func (b *LogBuilder) Info(msg string)  { b.logger.Info(msg, b.attrs...) }
func (b *LogBuilder) Warn(msg string)  { b.logger.Warn(msg, b.attrs...) }
func (b *LogBuilder) Error(msg string) { b.logger.Error(msg, b.attrs...) }
func (b *LogBuilder) Debug(msg string) { b.logger.Debug(msg, b.attrs...) }
