package book

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/xiebiao/bookstore-inventory/pkg/errors"
)

// CreateParams 上架图书参数
// 校验规则:
// - name: 必填,最长60字符
// - author: 3-30字符
// - quantity: 整数,[1,100]
// - price: 非负,最多两位小数(存储为DECIMAL(10,2))
type CreateParams struct {
	Name     string  `json:"name" validate:"required,max=60"`
	Author   string  `json:"author" validate:"required,min=3,max=30"`
	Quantity int     `json:"quantity" validate:"min=1,max=100"`
	Price    float64 `json:"price" validate:"min=0,max=99999999.99,cents"`
}

// UpdateParams 部分更新参数,nil表示不修改该字段
type UpdateParams struct {
	Name     *string  `json:"name" validate:"omitnil,min=1,max=60"`
	Author   *string  `json:"author" validate:"omitnil,min=3,max=30"`
	Quantity *int     `json:"quantity" validate:"omitnil,min=1,max=100"`
	Price    *float64 `json:"price" validate:"omitnil,min=0,max=99999999.99,cents"`
}

// IsEmpty 是否没有任何待更新字段
func (p UpdateParams) IsEmpty() bool {
	return p.Name == nil && p.Author == nil && p.Quantity == nil && p.Price == nil
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// structValidator 懒加载validator实例(validator内部缓存结构体元信息,全局复用)
func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// 错误信息中使用json字段名
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("cents", isCents)
	})
	return validate
}

// isCents 金额最多两位小数
func isCents(fl validator.FieldLevel) bool {
	cents := fl.Field().Float() * 100
	return math.Abs(cents-math.Round(cents)) < 1e-4
}

// ValidateID 校验图书ID
func ValidateID(id uint) error {
	if id == 0 {
		return ErrInvalidID
	}
	return nil
}

// ValidatePurchaseQuantity 校验购买数量
func ValidatePurchaseQuantity(quantity int) error {
	if quantity < MinQuantity || quantity > MaxQuantity {
		return ErrInvalidQuantity
	}
	return nil
}

// ValidateCreate 校验上架参数,会去除name/author首尾空白
func ValidateCreate(params *CreateParams) error {
	params.Name = strings.TrimSpace(params.Name)
	params.Author = strings.TrimSpace(params.Author)
	return validateStruct(params)
}

// ValidateUpdate 校验部分更新参数
func ValidateUpdate(params *UpdateParams) error {
	if params.IsEmpty() {
		return ErrEmptyUpdate
	}
	if params.Name != nil {
		trimmed := strings.TrimSpace(*params.Name)
		params.Name = &trimmed
	}
	if params.Author != nil {
		trimmed := strings.TrimSpace(*params.Author)
		params.Author = &trimmed
	}
	return validateStruct(params)
}

func validateStruct(s interface{}) error {
	err := structValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.Wrap(err, "参数校验失败")
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return &apperrors.AppError{
		Code:    apperrors.ErrCodeInvalidParams,
		Message: "参数错误: " + strings.Join(msgs, "; "),
	}
}

// describe 字段错误 → 中文提示
func describe(fe validator.FieldError) string {
	field := fe.Field()
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s不能为空", field)
	case "min":
		if isString {
			return fmt.Sprintf("%s长度不能少于%s个字符", field, fe.Param())
		}
		return fmt.Sprintf("%s不能小于%s", field, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%s长度不能超过%s个字符", field, fe.Param())
		}
		return fmt.Sprintf("%s不能大于%s", field, fe.Param())
	case "cents":
		return fmt.Sprintf("%s最多保留两位小数", field)
	default:
		return fmt.Sprintf("%s格式不正确", field)
	}
}
