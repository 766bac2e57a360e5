package mysql

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookstore-inventory/internal/domain/book"
	apperrors "github.com/xiebiao/bookstore-inventory/pkg/errors"
)

// bookRepository 图书仓储实现
// 设计说明:
// 1. 实现domain/book/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. gorm.ErrRecordNotFound转换为book.ErrBookNotFound,其余数据库错误包装为内部错误
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)

	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建图书失败")
	}

	// 回填自增ID
	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	if err := r.getDB(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

// LockByID 悲观锁查询图书
// SELECT ... FOR UPDATE 锁定行直到事务结束,必须通过getDB(ctx)使用事务DB
func (r *bookRepository) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := r.getDB(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "锁定图书失败")
	}
	return toBookEntity(&model), nil
}

// likeEscaper 关键词按字面匹配,转义LIKE通配符
// 转义符用'!':SQLite没有默认转义符,MySQL与SQLite对反斜杠字面量解析不同
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// List 查询图书列表(按ID升序)
func (r *bookRepository) List(ctx context.Context, filter book.ListFilter) ([]*book.Book, error) {
	query := r.getDB(ctx).Model(&BookModel{})

	if filter.Keyword != "" {
		keyword := "%" + likeEscaper.Replace(filter.Keyword) + "%"
		query = query.Where("name LIKE ? ESCAPE '!' OR author LIKE ? ESCAPE '!'", keyword, keyword)
	}

	var models []BookModel
	if err := query.Order("id ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询图书列表失败")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books, nil
}

// Update 更新图书信息
// Select显式列出字段,零值也会写入
func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)

	result := r.getDB(ctx).Model(model).
		Select("name", "author", "quantity", "price").
		Updates(model)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新图书失败")
	}
	if result.RowsAffected == 0 {
		// MySQL只统计实际发生变化的行,值未变化时也是0
		if _, err := r.FindByID(ctx, b.ID); err != nil {
			return err
		}
	}

	b.UpdatedAt = model.UpdatedAt
	return nil
}

// DecrQuantity 条件扣减库存(原子操作)
// UPDATE books SET quantity = quantity - ? WHERE id = ? AND quantity >= ? AND deleted_at IS NULL
func (r *bookRepository) DecrQuantity(ctx context.Context, id uint, quantity int) error {
	db := r.getDB(ctx)
	result := db.Model(&BookModel{}).
		Where("id = ?", id).
		Where("quantity >= ?", quantity). // 防止库存为负
		Update("quantity", gorm.Expr("quantity - ?", quantity))

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新库存失败")
	}

	if result.RowsAffected == 0 {
		// 图书不存在或库存不足,再查一次确定原因
		var model BookModel
		if err := db.First(&model, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return book.ErrBookNotFound
			}
			return apperrors.Wrap(err, "查询图书失败")
		}
		return book.ErrInsufficientStock
	}

	return nil
}

// Delete 删除图书(软删除)
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	result := r.getDB(ctx).Delete(&BookModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除图书失败")
	}
	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}
	return nil
}

func (r *bookRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ID:        b.ID,
		Name:      b.Name,
		Author:    b.Author,
		Quantity:  b.Quantity,
		Price:     b.Price,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel) *book.Book {
	return &book.Book{
		ID:        model.ID,
		Name:      model.Name,
		Author:    model.Author,
		Quantity:  model.Quantity,
		Price:     model.Price,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
