package book

import (
	"errors"

	apperrors "github.com/xiebiao/bookstore-inventory/pkg/errors"
)

// 图书领域错误定义
// 三类可预期错误需要区分返回:参数错误(ValidationError)、图书不存在(NotFound)、库存不足(InsufficientStock)
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrInsufficientStock 库存不足
	ErrInsufficientStock = apperrors.New(apperrors.ErrCodeInsufficientStock, "库存不足")

	// ErrInvalidID 无效的图书ID
	ErrInvalidID = apperrors.New(apperrors.ErrCodeInvalidParams, "图书ID必须为正整数")

	// ErrInvalidQuantity 无效的购买数量
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "购买数量必须在1-100之间")

	// ErrEmptyUpdate 更新请求未包含任何字段
	ErrEmptyUpdate = apperrors.New(apperrors.ErrCodeInvalidParams, "至少需要提供一个更新字段")
)

// IsValidationError 是否为参数校验错误
func IsValidationError(err error) bool {
	return errors.Is(err, apperrors.ErrInvalidParams)
}
