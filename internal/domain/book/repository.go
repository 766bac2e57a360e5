package book

import (
	"context"
)

//go:generate mockgen -source=repository.go -destination=mocks/repository_mock.go -package=mocks

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 实现需要通过context参与Transactor开启的事务
// 3. 对不存在的记录执行更新/删除时返回ErrBookNotFound
type Repository interface {
	// Create 创建图书,回填ID与时间戳
	Create(ctx context.Context, b *Book) error

	// FindByID 根据ID查找图书
	FindByID(ctx context.Context, id uint) (*Book, error)

	// LockByID 悲观锁查询图书(SELECT ... FOR UPDATE)
	// 必须在事务中调用,锁定到事务结束
	LockByID(ctx context.Context, id uint) (*Book, error)

	// List 按ID升序返回图书
	List(ctx context.Context, filter ListFilter) ([]*Book, error)

	// Update 覆盖写入name/author/quantity/price
	Update(ctx context.Context, b *Book) error

	// DecrQuantity 条件扣减库存(原子操作)
	// UPDATE books SET quantity = quantity - ? WHERE id = ? AND quantity >= ?
	// 库存不足返回ErrInsufficientStock
	DecrQuantity(ctx context.Context, id uint, quantity int) error

	// Delete 删除图书(软删除)
	Delete(ctx context.Context, id uint) error
}

// Transactor 事务边界
// fn返回error时回滚,返回nil时提交
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ListFilter 列表查询条件
type ListFilter struct {
	Keyword string // 匹配书名或作者
}
