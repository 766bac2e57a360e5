package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/xiebiao/bookstore-inventory/pkg/errors"
)

// RoleAdmin 允许执行写操作(上架、修改、删除、购买)的角色
const RoleAdmin = "admin"

// Manager JWT管理器
// 设计说明：
// 1. 库存服务只签发单个Access Token(HS256),由bookctl token命令生成
// 2. 没有用户体系,Subject记录操作者标识
type Manager struct {
	secret string
	issuer string
	expire time.Duration
}

// NewManager 创建JWT管理器
func NewManager(secret, issuer string, expire time.Duration) *Manager {
	return &Manager{
		secret: secret,
		issuer: issuer,
		expire: expire,
	}
}

// Claims 自定义JWT Claims
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Operator 操作者标识
func (c *Claims) Operator() string {
	return c.Subject
}

// GenerateToken 生成Token
func (m *Manager) GenerateToken(subject, role string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.expire)

	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   subject,
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.secret))
	if err != nil {
		return "", time.Time{}, apperrors.Wrap(err, "生成Token失败")
	}
	return token, expiresAt, nil
}

// ParseToken 解析并验证Token
// 校验签名算法、签名、exp/nbf和签发者
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("非法的签名算法: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	}, jwt.WithIssuer(m.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}
