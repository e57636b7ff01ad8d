package logger

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

func TestGinMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(GinRequestIDKey, "req-42")
		c.Next()
	})
	r.Use(GinMiddleware(zap.New(core)))
	r.GET("/api/products/:id", func(c *gin.Context) {
		c.Set(GinUserIDKey, "u-1")
		assert.Equal(t, "req-42", GetRequestID(c.Request.Context()))
		GetGinLogger(c).Debug("inside handler")
		c.Status(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products/abc", nil))

	inside := logs.FilterMessage("inside handler").All()
	require.Len(t, inside, 1)
	assert.Equal(t, "req-42", inside[0].ContextMap()["request_id"])

	reqs := logs.FilterMessage("HTTP Request").All()
	require.Len(t, reqs, 1)
	assert.Equal(t, zapcore.WarnLevel, reqs[0].Level)
	fields := reqs[0].ContextMap()
	assert.EqualValues(t, 404, fields["status"])
	assert.Equal(t, "/api/products/:id", fields["route"])
	assert.Equal(t, "u-1", fields["user_id"])
}

func TestRecovery(t *testing.T) {
	t.Run("uses responder", func(t *testing.T) {
		core, logs := observer.New(zapcore.ErrorLevel)
		r := gin.New()
		r.Use(Recovery(zap.New(core), func(c *gin.Context) {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		}))
		r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"success":false}`, w.Body.String())
		assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
	})

	t.Run("bare status without responder", func(t *testing.T) {
		r := gin.New()
		r.Use(Recovery(zap.NewNop(), nil))
		r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Empty(t, w.Body.String())
	})
}
