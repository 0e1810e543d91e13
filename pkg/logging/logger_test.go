package logging

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNew(t *testing.T) {
	logger, err := New(false, "debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = New(true, "not-a-level")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestMiddleware_LevelFollowsStatus(t *testing.T) {
	tests := []struct {
		status  int
		level   zapcore.Level
		message string
	}{
		{http.StatusOK, zapcore.InfoLevel, "request served"},
		{http.StatusTooManyRequests, zapcore.WarnLevel, "request rejected"},
		{http.StatusInternalServerError, zapcore.ErrorLevel, "request failed"},
	}

	for _, tc := range tests {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			r := gin.New()
			r.Use(func(c *gin.Context) { c.Set(RequestIDKey, "req-1") }, Middleware(zap.New(core)))
			r.GET("/stations/:id", func(c *gin.Context) { c.Status(tc.status) })

			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/stations/s1", nil))

			entries := logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tc.level, entries[0].Level)
			assert.Equal(t, tc.message, entries[0].Message)

			fields := entries[0].ContextMap()
			assert.Equal(t, "/stations/:id", fields["path"])
			assert.EqualValues(t, tc.status, fields["status"])
			assert.Equal(t, "req-1", fields["request_id"])
		})
	}
}
