package middleware

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Logger is the global structured logger instance used throughout the application.
var Logger *slog.Logger

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	ServiceIDKey contextKey = "service_id"
	TraceIDKey   contextKey = "trace_id"
)

// Fiber locals populated by the request pipeline.
const (
	LocalRequestID = "requestid"
	LocalServiceID = "serviceID"
	LocalTraceID   = "traceID"
)

// contextAttrs are copied from the context into every record.
var contextAttrs = []contextKey{RequestIDKey, ServiceIDKey, TraceIDKey}

// ctxHandler adds the request, trace and calling service ids of the context
// to each record.
type ctxHandler struct {
	slog.Handler
}

func (h *ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, key := range contextAttrs {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			r.AddAttrs(slog.String(string(key), v))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ctxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ctxHandler{h.Handler.WithAttrs(attrs)}
}

func (h *ctxHandler) WithGroup(name string) slog.Handler {
	return &ctxHandler{h.Handler.WithGroup(name)}
}

func init() {
	Logger = NewLogger(os.Getenv("APP_ENV"))
}

// NewLogger builds the context-aware logger for env: JSON in production,
// text otherwise. Debug records are kept only in development.
func NewLogger(env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if env == "development" {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if env == "production" || env == "prod" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(&ctxHandler{handler})
}

// WithServiceID stores the calling service subject for downstream logging.
func WithServiceID(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, ServiceIDKey, sub)
}

// ContextMiddleware copies the request and trace ids from the fiber locals
// into the user context, where services and repositories can log them.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		for local, key := range map[string]contextKey{LocalRequestID: RequestIDKey, LocalTraceID: TraceIDKey} {
			if v, ok := c.Locals(local).(string); ok {
				ctx = context.WithValue(ctx, key, v)
			}
		}
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// StructuredLogger logs one record per request. Server errors are logged at
// error level and rejected requests at warn.
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		attrs := []any{
			slog.Int("status", status),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
			slog.Duration("latency", time.Since(start)),
		}
		// Known only once token verification ran.
		if sid, ok := c.Locals(LocalServiceID).(string); ok {
			attrs = append(attrs, slog.String("caller", sid))
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}

		level := slog.LevelInfo
		switch {
		case err != nil || status >= fiber.StatusInternalServerError:
			level = slog.LevelError
		case status >= fiber.StatusBadRequest:
			level = slog.LevelWarn
		}
		Logger.Log(c.UserContext(), level, "request", attrs...)
		return err
	}
}
