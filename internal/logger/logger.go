package logger

import (
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const requestIDHeader = "X-Request-ID"

type Logger struct {
	*logrus.Entry
}

// New builds the service logger. Local env = pretty console; others = JSON.
func New(environment, level string) *Logger {
	return NewWithOutput(environment, level, os.Stdout)
}

func NewWithOutput(environment, level string, out io.Writer) *Logger {
	base := logrus.New()

	if environment == "" || environment == "local" {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
			ForceColors:     true,
		})
	} else {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	}

	base.SetOutput(out)
	base.SetLevel(parseLevel(level))

	return &Logger{Entry: logrus.NewEntry(base)}
}

// parseLevel accepts any logrus level name; unknown or empty means info.
func parseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// Discard is a logger for tests.
func Discard() *Logger {
	return NewWithOutput("test", "error", io.Discard)
}

// Component returns a child logger tagged with the component name.
func (l *Logger) Component(name string) *Logger {
	return &Logger{Entry: l.Entry.WithField("component", name)}
}

// WithRequest attaches request metadata and returns an entry
func (l *Logger) WithRequest(r *http.Request) *logrus.Entry {
	return l.WithFields(logrus.Fields{
		"req_id":     RequestID(r),
		"method":     r.Method,
		"path":       r.URL.Path,
		"remote_ip":  r.RemoteAddr,
		"user_agent": r.UserAgent(),
	})
}

// WithError standardizes error logging
func (l *Logger) WithError(err error) *logrus.Entry {
	if err == nil {
		return l.Entry
	}
	return l.Entry.WithField("error", err.Error())
}

// RequestID returns the caller supplied request id, or a fresh one.
func RequestID(r *http.Request) string {
	if id := r.Header.Get(requestIDHeader); id != "" {
		return id
	}
	id := uuid.New().String()
	r.Header.Set(requestIDHeader, id)
	return id
}

// Middleware logs one line per request with status and latency, and echoes
// the request id back to the caller.
func (l *Logger) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			entry := l.WithRequest(c.Request())
			c.Response().Header().Set(requestIDHeader, c.Request().Header.Get(requestIDHeader))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			entry = entry.WithFields(logrus.Fields{
				"status":      c.Response().Status,
				"duration_ms": time.Since(start).Milliseconds(),
			})
			switch {
			case c.Response().Status >= http.StatusInternalServerError:
				entry.Error("request failed")
			case c.Response().Status >= http.StatusBadRequest:
				entry.Warn("request rejected")
			default:
				entry.Info("request served")
			}
			return nil
		}
	}
}
