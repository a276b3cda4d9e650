package obs

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "prod").Info("hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	newLogger(&buf, "dev").Debug("dbg")
	assert.Contains(t, buf.String(), "dbg")

	buf.Reset()
	newLogger(&buf, "test").Info("quiet")
	assert.Empty(t, buf.String())
}

func TestRequestIDPropagation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware{}.RequestID())
	var seen string
	r.GET("/x", func(c *gin.Context) {
		seen = RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-1", seen)
	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestReadyz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ok := HealthHandlers{Checks: map[string]ReadinessCheck{"mongo": func(context.Context) error { return nil }}}
	down := HealthHandlers{Checks: map[string]ReadinessCheck{"kafka": func(context.Context) error { return errors.New("no brokers") }}}

	for _, tc := range []struct {
		h    HealthHandlers
		code int
	}{{ok, http.StatusOK}, {down, http.StatusServiceUnavailable}} {
		r := gin.New()
		r.GET("/readyz", tc.h.Readyz)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		require.Equal(t, tc.code, w.Code)
	}
}
