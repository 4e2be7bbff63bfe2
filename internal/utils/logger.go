package utils

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"

	loggerKey    = "logger"
	requestIDKey = "request_id"
)

// Logger is the logging surface handlers depend on.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	LogError(err error, msg string, args ...any)
}

type SlogLogger struct {
	logger *slog.Logger
}

func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	return &SlogLogger{logger: logger}
}

// NewLogger writes JSON at info level in production and text at debug level elsewhere.
func NewLogger(environment string) *SlogLogger {
	return newLogger(environment, os.Stdout)
}

func newLogger(environment string, w io.Writer) *SlogLogger {
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	var handler slog.Handler
	if environment == "production" {
		opts.Level = slog.LevelInfo
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return NewSlogLogger(slog.New(handler).With("service", "examprep-service"))
}

func (l *SlogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *SlogLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *SlogLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *SlogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

func (l *SlogLogger) With(args ...any) Logger { return l.with(args...) }

func (l *SlogLogger) with(args ...any) *SlogLogger {
	return &SlogLogger{logger: l.logger.With(args...)}
}

func (l *SlogLogger) LogError(err error, msg string, args ...any) {
	l.logger.Error(msg, append([]any{"error", err}, args...)...)
}

// Slog exposes the underlying logger for services.
func (l *SlogLogger) Slog() *slog.Logger {
	return l.logger
}

func statusLevel(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// RequestLogger tags each request with an ID, taken from X-Request-ID or
// generated, and echoes it in the response. Handlers get a logger carrying
// that ID via GetLoggerFromContext. One access line is written per request.
func RequestLogger(base *SlogLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Set(requestIDKey, id)

		reqLogger := base.with("request_id", id)
		c.Set(loggerKey, Logger(reqLogger))

		c.Next()

		status := c.Writer.Status()
		reqLogger.logger.Log(c.Request.Context(), statusLevel(status), "HTTP Request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status_code", status,
			"duration", time.Since(start).String(),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent())
	}
}

// RequestID returns the ID assigned by RequestLogger, or "".
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// GetLoggerFromContext returns the request logger, or fallback outside RequestLogger.
func GetLoggerFromContext(c *gin.Context, fallback Logger) Logger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(Logger); ok {
			return l
		}
	}
	return fallback
}
