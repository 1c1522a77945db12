package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/savetide/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAllowedOrigin(t *testing.T) {
	extension := "chrome-extension://abcdefg12345"
	tests := []struct {
		name    string
		origin  string
		allowed []string
		want    bool
	}{
		{"exact", extension, []string{extension}, true},
		{"prefix wildcard", extension, []string{"chrome-extension://*"}, true},
		{"second entry", "https://savetide.app", []string{"chrome-extension://*", "https://savetide.app"}, true},
		{"different site", "http://evil.com", []string{"chrome-extension://*"}, false},
		{"prefix must match from start", "http://chrome-extension.evil.com", []string{"chrome-extension://*"}, false},
		{"empty origin", "", []string{"chrome-extension://*"}, false},
		{"nothing configured", extension, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isAllowedOrigin(tt.origin, tt.allowed); got != tt.want {
				t.Errorf("isAllowedOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

func TestAllowedOrigin(t *testing.T) {
	tests := []struct {
		name           string
		origin         string
		allowedOrigins []string
		want           string
	}{
		{"any origin", "http://localhost:5173", []string{"*"}, "*"},
		{"wildcard echoes origin", "chrome-extension://abc", []string{"chrome-extension://*"}, "chrome-extension://abc"},
		{"star after specific entries", "http://other.dev", []string{"https://savetide.app", "*"}, "*"},
		{"not allowed", "http://evil.com", []string{"https://savetide.app"}, ""},
		{"later specific entry", "https://savetide.app", []string{"chrome-extension://*", "https://savetide.app"}, "https://savetide.app"},
		{"no origin header", "", []string{"*"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := allowedOrigin(tt.origin, tt.allowedOrigins); got != tt.want {
				t.Errorf("allowedOrigin() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	extension := "chrome-extension://abcdefg12345"
	tests := []struct {
		name            string
		origin          string
		allowed         []string
		method          string
		wantStatus      int
		wantAllowOrigin string
		wantCredentials bool
	}{
		{"extension GET", extension, []string{"chrome-extension://*"}, http.MethodGet, http.StatusOK, extension, true},
		{"extension preflight", extension, []string{"chrome-extension://*"}, http.MethodOptions, http.StatusNoContent, extension, true},
		{"any origin", "https://www.walmart.com", []string{"*"}, http.MethodGet, http.StatusOK, "*", false},
		{"rejected origin", "http://evil.com", []string{"chrome-extension://*"}, http.MethodGet, http.StatusOK, "", false},
		{"no origin header", "", []string{"*"}, http.MethodGet, http.StatusOK, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(CORSMiddleware(tt.allowed))
			router.GET("/ping", func(c *gin.Context) {
				c.String(http.StatusOK, "pong")
			})

			req := httptest.NewRequest(tt.method, "/ping", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantAllowOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantCredentials {
				assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
			}
		})
	}
}

func TestCORSMiddleware_PreflightRequest(t *testing.T) {
	router := gin.New()
	router.Use(CORSMiddleware([]string{"chrome-extension://*"}))
	router.POST("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	req := httptest.NewRequest(http.MethodOptions, "/test", nil)
	req.Header.Set("Origin", "chrome-extension://abcdefg12345")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "chrome-extension://abcdefg12345", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
	assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
	assert.Equal(t, requestIDHeader, w.Header().Get("Access-Control-Expose-Headers"))
}

// fieldLogger remembers the fields bound with With
type fieldLogger struct {
	logger.Logger
	fields []logger.Field
}

func (l *fieldLogger) With(fields ...logger.Field) logger.Logger {
	return &fieldLogger{Logger: l.Logger, fields: append(append([]logger.Field{}, l.fields...), fields...)}
}

func TestRequestIDMiddleware(t *testing.T) {
	newRouter := func(seen *string, scoped *bool) *gin.Engine {
		router := gin.New()
		router.Use(RequestIDMiddleware(&fieldLogger{Logger: logger.NewNop()}))
		router.GET("/test", func(c *gin.Context) {
			*seen = c.GetString(requestIDKey)
			l, ok := logger.FromContext(c.Request.Context(), nil).(*fieldLogger)
			*scoped = ok && len(l.fields) == 1 && l.fields[0].Key == "request_id"
			c.Status(http.StatusOK)
		})
		return router
	}

	t.Run("propagates incoming id", func(t *testing.T) {
		var seen string
		var scoped bool
		router := newRouter(&seen, &scoped)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(requestIDHeader, "req-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-123", seen)
		assert.Equal(t, "req-123", w.Header().Get(requestIDHeader))
		assert.True(t, scoped, "request context should carry a request-scoped logger")
	})

	t.Run("generates uuid when missing", func(t *testing.T) {
		var seen string
		var scoped bool
		router := newRouter(&seen, &scoped)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		_, err := uuid.Parse(seen)
		require.NoError(t, err)
		assert.Equal(t, seen, w.Header().Get(requestIDHeader))
	})

	t.Run("replaces oversized id", func(t *testing.T) {
		var seen string
		var scoped bool
		router := newRouter(&seen, &scoped)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(requestIDHeader, string(make([]byte, 200)))
		router.ServeHTTP(httptest.NewRecorder(), req)

		_, err := uuid.Parse(seen)
		assert.NoError(t, err)
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RecoveryMiddleware(logger.NewNop()))
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal_error","message":"An unexpected error occurred"}`, w.Body.String())
}

func TestLoggerMiddleware_DoesNotAlterResponse(t *testing.T) {
	router := gin.New()
	router.Use(LoggerMiddleware(logger.NewNop()))
	router.GET("/fail", func(c *gin.Context) {
		_ = c.Error(assert.AnError)
		c.Status(http.StatusBadGateway)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))

	assert.Equal(t, http.StatusBadGateway, w.Code)
}
