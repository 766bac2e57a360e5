package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xiebiao/bookstore-inventory/pkg/jwt"
	"github.com/xiebiao/bookstore-inventory/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	r := gin.New()
	r.Use(RequestLogger(zap.New(core), 20*time.Millisecond))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/slow", func(c *gin.Context) {
		time.Sleep(30 * time.Millisecond)
		c.Status(http.StatusOK)
	})

	t.Run("生成请求ID", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/ok")
		id := w.Header().Get(RequestIDHeader)
		require.NotEmpty(t, id)

		entries := logs.TakeAll()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		assert.Equal(t, id, entries[0].ContextMap()["request_id"])
		assert.EqualValues(t, 200, entries[0].ContextMap()["status"])
	})

	t.Run("沿用客户端请求ID", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/ok", RequestIDHeader, "req-123")
		assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "req-123", logs.TakeAll()[0].ContextMap()["request_id"])
	})

	t.Run("4xx记为Warn", func(t *testing.T) {
		serve(r, http.MethodGet, "/missing")
		entries := logs.TakeAll()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	})

	t.Run("慢请求告警", func(t *testing.T) {
		serve(r, http.MethodGet, "/slow")
		assert.Equal(t, 1, logs.FilterMessage("slow request").Len())
		logs.TakeAll()
	})
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)

	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := serve(r, http.MethodGet, "/boom")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"code":50000,"message":"系统内部错误"}`, w.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestMetrics(t *testing.T) {
	metrics.InitMetrics()

	r := gin.New()
	r.Use(Metrics())
	r.GET("/books/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/books/:id", "200")
	before := testutil.ToFloat64(counter)

	serve(r, http.MethodGet, "/books/1")
	serve(r, http.MethodGet, "/books/2")

	assert.Equal(t, before+2, testutil.ToFloat64(counter), "按路由模板聚合")
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.HTTPRequestsInProgress))

	unmatched := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404")
	before = testutil.ToFloat64(unmatched)
	serve(r, http.MethodGet, "/nope")
	assert.Equal(t, before+1, testutil.ToFloat64(unmatched))
}

func TestTracing(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	r := gin.New()
	r.Use(Tracing())
	r.GET("/books/:id", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	serve(r, http.MethodGet, "/books/7")

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /books/:id", spans[0].Name())
	assert.Equal(t, "Error", spans[0].Status().Code.String())
}

func TestRequireAdmin(t *testing.T) {
	manager := jwt.NewManager("secret", "bookstore-inventory", time.Hour)

	build := func(enabled bool) *gin.Engine {
		r := gin.New()
		r.POST("/books", NewAuthMiddleware(manager, enabled).RequireAdmin(), func(c *gin.Context) {
			c.String(http.StatusOK, GetOperator(c))
		})
		return r
	}

	t.Run("关闭时放行", func(t *testing.T) {
		w := serve(build(false), http.MethodPost, "/books")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
	})

	r := build(true)

	t.Run("格式错误", func(t *testing.T) {
		w := serve(r, http.MethodPost, "/books", "Authorization", "Token abc")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("过期", func(t *testing.T) {
		expired := jwt.NewManager("secret", "bookstore-inventory", -time.Minute)
		token, _, err := expired.GenerateToken("ops", jwt.RoleAdmin)
		require.NoError(t, err)

		w := serve(r, http.MethodPost, "/books", "Authorization", "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "40102")
	})

	t.Run("管理员注入操作人", func(t *testing.T) {
		token, _, err := manager.GenerateToken("ops", jwt.RoleAdmin)
		require.NoError(t, err)

		w := serve(r, http.MethodPost, "/books", "Authorization", "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ops", w.Body.String())
	})
}
