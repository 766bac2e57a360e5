package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/bookstore-inventory/pkg/errors"
	"github.com/xiebiao/bookstore-inventory/pkg/jwt"
	"github.com/xiebiao/bookstore-inventory/pkg/response"
)

// operatorKey 当前操作人在gin.Context中的键
const operatorKey = "operator"

// AuthMiddleware 写操作鉴权中间件
// 设计说明：
// 1. 只保护写接口(POST/PUT/PATCH/DELETE),读接口公开
// 2. enabled=false时直接放行(本地开发默认关闭)
// 3. Token由bookctl token签发,要求role=admin
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	enabled    bool
}

// NewAuthMiddleware 创建鉴权中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, enabled bool) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		enabled:    enabled,
	}
}

// Enabled 是否开启鉴权
func (m *AuthMiddleware) Enabled() bool {
	return m.enabled
}

// RequireAdmin 要求管理员Token
// 使用方式：
//
//	books.POST("", authMiddleware.RequireAdmin(), bookHandler.CreateBook)
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.enabled {
			c.Next()
			return
		}

		// 格式：Authorization: Bearer <token>
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			response.ErrorWithCode(c, apperrors.ErrCodeInvalidToken, "Token格式错误")
			c.Abort()
			return
		}

		claims, err := m.jwtManager.ParseToken(parts[1])
		if err != nil {
			response.Error(c, err) // ErrTokenExpired / ErrInvalidToken
			c.Abort()
			return
		}

		if claims.Role != jwt.RoleAdmin {
			response.Error(c, apperrors.ErrForbidden)
			c.Abort()
			return
		}

		c.Set(operatorKey, claims.Operator())
		c.Next()
	}
}

// GetOperator 从Context获取当前操作人,未鉴权时返回空字符串
func GetOperator(c *gin.Context) string {
	if v, exists := c.Get(operatorKey); exists {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
