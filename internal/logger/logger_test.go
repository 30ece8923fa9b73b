package logger

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFormatterOutsideLocal(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("production", "info", &buf)
	log.WithError(errors.New("boom")).Warn("something broke")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "something broke", line["msg"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "warning", line["level"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("production", "warn", &buf)
	log.Info("hidden")
	assert.Empty(t, buf.String())
}

func TestWithErrorNil(t *testing.T) {
	log := Discard()
	assert.Same(t, log.Entry, log.WithError(nil))
}

func TestRequestIDPreserved(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	r.Header.Set("X-Request-ID", "abc-123")
	assert.Equal(t, "abc-123", RequestID(r))

	fresh := httptest.NewRequest(http.MethodGet, "/", nil)
	id := RequestID(fresh)
	assert.Len(t, id, 36)
	assert.Equal(t, id, RequestID(fresh), "generated id is sticky for the request")
}

func TestMiddlewareLogsStatus(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("production", "info", &buf)

	e := echo.New()
	e.Use(log.Middleware())
	e.GET("/missing", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "nope")
	})

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set("X-Request-ID", "req-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "req-1", rec.Header().Get("X-Request-ID"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "request rejected", line["msg"])
	assert.Equal(t, float64(404), line["status"])
	assert.Equal(t, "req-1", line["req_id"])
}

func TestParseLevel(t *testing.T) {
	tests := map[string]logrus.Level{
		"":        logrus.InfoLevel,
		"debug":   logrus.DebugLevel,
		"WARN":    logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"trace":   logrus.TraceLevel,
		"loud":    logrus.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}
