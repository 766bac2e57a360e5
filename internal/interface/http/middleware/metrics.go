package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookstore-inventory/pkg/metrics"
)

// Metrics HTTP指标中间件
// path标签使用路由模板(/api/v1/books/:id),避免按id产生高基数标签
// 未匹配路由统一记为unmatched
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !metrics.Enabled() {
			c.Next()
			return
		}

		metrics.IncGauge(metrics.HTTPRequestsInProgress)
		defer metrics.DecGauge(metrics.HTTPRequestsInProgress)

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metrics.IncCounterVec(metrics.HTTPRequestsTotal, map[string]string{
			"method": c.Request.Method,
			"path":   path,
			"status": strconv.Itoa(c.Writer.Status()),
		})
		metrics.ObserveHistogramVec(metrics.HTTPRequestDuration, map[string]string{
			"method": c.Request.Method,
			"path":   path,
		}, time.Since(start).Seconds())
	}
}
