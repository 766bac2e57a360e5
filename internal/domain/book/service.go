package book

import (
	"context"
)

//go:generate mockgen -source=service.go -destination=mocks/service_mock.go -package=mocks

// Service 图书领域服务接口
// 设计说明:
// 1. 所有入参先校验,校验失败不访问存储
// 2. 读-改-写操作在同一事务内完成,行锁+条件更新防止并发超卖
type Service interface {
	// GetBook 根据ID获取图书
	GetBook(ctx context.Context, id uint) (*Book, error)

	// ListBooks 查询图书列表
	ListBooks(ctx context.Context, filter ListFilter) ([]*Book, error)

	// CreateBook 上架图书
	CreateBook(ctx context.Context, params CreateParams) (*Book, error)

	// UpdateBook 部分更新图书
	UpdateBook(ctx context.Context, id uint, params UpdateParams) (*Book, error)

	// DeleteBook 删除图书,返回被删除的记录
	DeleteBook(ctx context.Context, id uint) (*Book, error)

	// PurchaseBook 购买图书(库存核销)
	// 业务规则:
	// - 图书不存在 → ErrBookNotFound
	// - 购买数量超过库存 → ErrInsufficientStock,不做修改
	// - 剩余库存为0 → 删除记录
	// - 返回扣减前记录的凭证
	// 非幂等:重复调用会持续扣减直到NotFound或库存不足
	PurchaseBook(ctx context.Context, id uint, quantity int) (*Receipt, error)
}

// service 领域服务实现
type service struct {
	repo Repository
	tx   Transactor
}

// NewService 创建图书领域服务
func NewService(repo Repository, tx Transactor) Service {
	return &service{repo: repo, tx: tx}
}

// GetBook 根据ID获取图书
func (s *service) GetBook(ctx context.Context, id uint) (*Book, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// ListBooks 查询图书列表
func (s *service) ListBooks(ctx context.Context, filter ListFilter) ([]*Book, error) {
	return s.repo.List(ctx, filter)
}

// CreateBook 上架图书
func (s *service) CreateBook(ctx context.Context, params CreateParams) (*Book, error) {
	if err := ValidateCreate(&params); err != nil {
		return nil, err
	}

	b := NewBook(params)
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBook 部分更新图书
func (s *service) UpdateBook(ctx context.Context, id uint, params UpdateParams) (*Book, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	if err := ValidateUpdate(&params); err != nil {
		return nil, err
	}

	var updated *Book
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		b, err := s.repo.LockByID(ctx, id)
		if err != nil {
			return err
		}

		b.Apply(params)
		if err := s.repo.Update(ctx, b); err != nil {
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteBook 删除图书
func (s *service) DeleteBook(ctx context.Context, id uint) (*Book, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	var deleted *Book
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		b, err := s.repo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			return err
		}
		deleted = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// PurchaseBook 购买图书
func (s *service) PurchaseBook(ctx context.Context, id uint, quantity int) (*Receipt, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	if err := ValidatePurchaseQuantity(quantity); err != nil {
		return nil, err
	}

	var receipt *Receipt
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		// 1. 锁定图书行
		b, err := s.repo.LockByID(ctx, id)
		if err != nil {
			return err
		}

		// 2. 校验库存并生成凭证(库存不足时实体不变)
		r, err := b.Purchase(quantity)
		if err != nil {
			return err
		}

		// 3. 售罄删除,否则条件扣减
		if r.SoldOut {
			err = s.repo.Delete(ctx, id)
		} else {
			err = s.repo.DecrQuantity(ctx, id, quantity)
		}
		if err != nil {
			return err
		}

		receipt = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}
