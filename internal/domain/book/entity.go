package book

import (
	"time"
)

// 库存与购买数量的取值范围
const (
	MinQuantity = 1
	MaxQuantity = 100
)

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. 存在的Book记录一定满足Quantity>0,库存归零时记录被删除
// 2. 价格为非负数,持久化为DECIMAL(10,2)
type Book struct {
	ID        uint
	Name      string  // 书名
	Author    string  // 作者
	Quantity  int     // 库存数量
	Price     float64 // 单价
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary 列表项(只包含id/name/author)
type Summary struct {
	ID     uint
	Name   string
	Author string
}

// Receipt 购买凭证
// Title/Author/Price取自扣减前的记录,即使图书因售罄被删除也能反映所购商品
type Receipt struct {
	BookID    uint
	Title     string
	Author    string
	Price     float64
	Quantity  int  // 本次购买数量
	Remaining int  // 购买后剩余库存
	SoldOut   bool // 是否售罄(记录已删除)
}

// NewBook 创建新图书(工厂方法)
// 参数需调用方先通过ValidateCreate校验
func NewBook(params CreateParams) *Book {
	now := time.Now()
	return &Book{
		Name:      params.Name,
		Author:    params.Author,
		Quantity:  params.Quantity,
		Price:     params.Price,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Purchase 购买(领域行为)
// 业务规则:
// - 购买数量在[1,100]之间
// - 购买数量不能超过当前库存,否则不做任何修改
// - 返回的凭证捕获扣减前的书名/作者/价格
func (b *Book) Purchase(quantity int) (*Receipt, error) {
	if quantity < MinQuantity || quantity > MaxQuantity {
		return nil, ErrInvalidQuantity
	}
	if quantity > b.Quantity {
		return nil, ErrInsufficientStock
	}

	receipt := &Receipt{
		BookID:   b.ID,
		Title:    b.Name,
		Author:   b.Author,
		Price:    b.Price,
		Quantity: quantity,
	}

	b.Quantity -= quantity
	b.UpdatedAt = time.Now()

	receipt.Remaining = b.Quantity
	receipt.SoldOut = b.Quantity == 0
	return receipt, nil
}

// Apply 部分更新,只覆盖提供的字段
func (b *Book) Apply(params UpdateParams) {
	if params.Name != nil {
		b.Name = *params.Name
	}
	if params.Author != nil {
		b.Author = *params.Author
	}
	if params.Quantity != nil {
		b.Quantity = *params.Quantity
	}
	if params.Price != nil {
		b.Price = *params.Price
	}
	b.UpdatedAt = time.Now()
}

// Summary 列表投影
func (b *Book) Summary() Summary {
	return Summary{ID: b.ID, Name: b.Name, Author: b.Author}
}
