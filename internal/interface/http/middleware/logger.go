package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-inventory/pkg/response"
	"github.com/xiebiao/bookstore-inventory/pkg/tracing"
)

// RequestIDHeader 请求ID响应头,客户端传入时沿用
const RequestIDHeader = "X-Request-ID"

// RequestLogger 请求日志中间件
//
// 1. 生成请求ID并写入响应头
// 2. 把带request_id的Logger放入Context,response.Error会用它记录内部错误
// 3. 结束后按状态码分级输出,超过slowThreshold额外告警
//
// 不记录请求体和Authorization头
func RequestLogger(log *zap.Logger, slowThreshold time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		fields := []zap.Field{zap.String("request_id", requestID)}
		if traceID := tracing.ExtractTraceID(c.Request.Context()); traceID != "" {
			fields = append(fields,
				zap.String("trace_id", traceID),
				zap.String("span_id", tracing.ExtractSpanID(c.Request.Context())),
			)
		}
		reqLog := log.With(fields...)
		c.Set(response.LoggerKey, reqLog)

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		logFields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		}
		if op := GetOperator(c); op != "" {
			logFields = append(logFields, zap.String("operator", op))
		}
		if len(c.Errors) > 0 {
			logFields = append(logFields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			reqLog.Error("request", logFields...)
		case status >= 400:
			reqLog.Warn("request", logFields...)
		default:
			reqLog.Info("request", logFields...)
		}

		if slowThreshold > 0 && latency > slowThreshold {
			reqLog.Warn("slow request", zap.String("path", c.Request.URL.Path), zap.Duration("latency", latency))
		}
	}
}

// Recovery panic恢复,返回统一错误响应
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.Stack("stack"),
		)
		response.ErrorWithCode(c, 50000, "系统内部错误")
		c.Abort()
	})
}
