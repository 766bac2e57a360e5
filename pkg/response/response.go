package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/bookstore-inventory/pkg/errors"
)

// LoggerKey 请求级Logger在gin.Context中的键（由日志中间件写入）
const LoggerKey = "logger"

// Response 统一响应结构
// 设计说明：
// 1. Code是业务错误码，0表示成功
// 2. Message是用户友好的提示信息
// 3. Data是业务数据，成功时返回，失败时为null
// 4. HTTP状态码由业务错误码推导（见apperrors.HTTPStatus）
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应（Code=0表示成功）
func Success(c *gin.Context, data interface{}) {
	SuccessWithMessage(c, "success", data)
}

// SuccessWithMessage 带自定义提示的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: message,
		Data:    data,
	})
}

// Created 资源创建成功（201）
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应（自动处理AppError）
// 用法：
//
//	book, err := h.getBook.Execute(ctx, id)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)

	// 内部错误只记日志，不返回给客户端
	if appErr.Err != nil {
		loggerFrom(c).Error("request failed",
			zap.Int("code", appErr.Code),
			zap.String("message", appErr.Message),
			zap.Error(appErr.Err),
		)
	}

	c.JSON(appErr.HTTPStatus(), Response{
		Code:    appErr.Code,
		Message: appErr.Message,
		Data:    nil,
	})
}

// ErrorWithCode 自定义错误码和消息
func ErrorWithCode(c *gin.Context, code int, message string) {
	c.JSON(apperrors.HTTPStatus(code), Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

func loggerFrom(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(LoggerKey); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return zap.L()
}
