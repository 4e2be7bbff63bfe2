package utils

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(buf *bytes.Buffer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestLogger(newLogger("production", buf)))
	router.GET("/ok", func(c *gin.Context) {
		GetLoggerFromContext(c, nil).Info("inside handler")
		c.String(http.StatusOK, RequestID(c))
	})
	router.GET("/boom", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})
	return router
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	var lines []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		var line map[string]any
		require.NoError(t, dec.Decode(&line))
		lines = append(lines, line)
	}
	return lines
}

func TestRequestLogger_GeneratesID(t *testing.T) {
	var buf bytes.Buffer
	router := newTestRouter(&buf)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	id := w.Header().Get(RequestIDHeader)
	require.NotEmpty(t, id)
	assert.Equal(t, id, w.Body.String())

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "inside handler", lines[0]["msg"])
	assert.Equal(t, id, lines[0]["request_id"])
	assert.Equal(t, "HTTP Request", lines[1]["msg"])
	assert.Equal(t, "INFO", lines[1]["level"])
	assert.Equal(t, "examprep-service", lines[1]["service"])
}

func TestRequestLogger_KeepsIncomingIDAndLevelsByStatus(t *testing.T) {
	var buf bytes.Buffer
	router := newTestRouter(&buf)

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "ERROR", lines[0]["level"])
	assert.Equal(t, "req-42", lines[0]["request_id"])
	assert.EqualValues(t, 500, lines[0]["status_code"])
}

func TestGetLoggerFromContext_Fallback(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	fallback := newLogger("development", &bytes.Buffer{})
	assert.Same(t, fallback, GetLoggerFromContext(c, fallback))
}
