package book_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/xiebiao/bookstore-inventory/internal/domain/book"
	bookmock "github.com/xiebiao/bookstore-inventory/internal/domain/book/mocks"
	apperrors "github.com/xiebiao/bookstore-inventory/pkg/errors"
)

var ctx = context.Background()

type fixture struct {
	repo *bookmock.MockRepository
	tx   *bookmock.MockTransactor
	svc  book.Service
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	repo := bookmock.NewMockRepository(ctrl)
	tx := bookmock.NewMockTransactor(ctrl)
	return &fixture{repo: repo, tx: tx, svc: book.NewService(repo, tx)}
}

// expectTx 事务直接执行回调并透传其返回值
func (f *fixture) expectTx() {
	f.tx.EXPECT().Transaction(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		})
}

func TestPurchaseBook(t *testing.T) {
	t.Run("部分购买条件扣减库存", func(t *testing.T) {
		f := newFixture(t)
		f.expectTx()
		f.repo.EXPECT().LockByID(gomock.Any(), uint(7)).
			Return(&book.Book{ID: 7, Name: "The Midnight Library", Author: "Matt Haig", Quantity: 12, Price: 14.99}, nil)
		f.repo.EXPECT().DecrQuantity(gomock.Any(), uint(7), 2).Return(nil)

		receipt, err := f.svc.PurchaseBook(ctx, 7, 2)
		require.NoError(t, err)

		assert.Equal(t, "The Midnight Library", receipt.Title)
		assert.Equal(t, 14.99, receipt.Price)
		assert.Equal(t, 2, receipt.Quantity)
		assert.Equal(t, 10, receipt.Remaining)
		assert.False(t, receipt.SoldOut)
	})

	t.Run("买光库存删除记录", func(t *testing.T) {
		f := newFixture(t)
		f.expectTx()
		f.repo.EXPECT().LockByID(gomock.Any(), uint(1)).
			Return(&book.Book{ID: 1, Name: "X", Author: "Y", Quantity: 5, Price: 10}, nil)
		f.repo.EXPECT().Delete(gomock.Any(), uint(1)).Return(nil)

		receipt, err := f.svc.PurchaseBook(ctx, 1, 5)
		require.NoError(t, err)

		assert.Equal(t, &book.Receipt{BookID: 1, Title: "X", Author: "Y", Price: 10, Quantity: 5, Remaining: 0, SoldOut: true}, receipt)
	})

	t.Run("库存不足不写入", func(t *testing.T) {
		f := newFixture(t)
		f.expectTx()
		f.repo.EXPECT().LockByID(gomock.Any(), uint(2)).Return(&book.Book{ID: 2, Quantity: 3}, nil)

		receipt, err := f.svc.PurchaseBook(ctx, 2, 4)
		assert.ErrorIs(t, err, book.ErrInsufficientStock)
		assert.Nil(t, receipt)
	})

	t.Run("图书不存在", func(t *testing.T) {
		f := newFixture(t)
		f.expectTx()
		f.repo.EXPECT().LockByID(gomock.Any(), uint(404)).Return(nil, book.ErrBookNotFound)

		_, err := f.svc.PurchaseBook(ctx, 404, 1)
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})

	t.Run("参数错误不访问存储", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.PurchaseBook(ctx, 0, 1)
		assert.ErrorIs(t, err, book.ErrInvalidID)

		_, err = f.svc.PurchaseBook(ctx, 1, 0)
		assert.ErrorIs(t, err, book.ErrInvalidQuantity)

		_, err = f.svc.PurchaseBook(ctx, 1, 101)
		assert.ErrorIs(t, err, book.ErrInvalidQuantity)
	})

	t.Run("存储错误原样返回", func(t *testing.T) {
		f := newFixture(t)
		f.expectTx()
		dbErr := apperrors.Wrap(errors.New("deadlock"), "更新库存失败")
		f.repo.EXPECT().LockByID(gomock.Any(), uint(9)).Return(&book.Book{ID: 9, Quantity: 10}, nil)
		f.repo.EXPECT().DecrQuantity(gomock.Any(), uint(9), 1).Return(dbErr)

		_, err := f.svc.PurchaseBook(ctx, 9, 1)
		assert.ErrorIs(t, err, dbErr)
		assert.False(t, book.IsValidationError(err))
	})
}

func TestCreateBook(t *testing.T) {
	t.Run("创建成功", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, b *book.Book) error {
			assert.Equal(t, "Dune", b.Name)
			assert.Equal(t, 100, b.Quantity)
			b.ID = 42
			return nil
		})

		created, err := f.svc.CreateBook(ctx, book.CreateParams{Name: " Dune ", Author: "Frank Herbert", Quantity: 100, Price: 9.5})
		require.NoError(t, err)
		assert.Equal(t, uint(42), created.ID)
	})

	t.Run("数量为0校验失败", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.CreateBook(ctx, book.CreateParams{Name: "Dune", Author: "Frank Herbert", Quantity: 0})
		assert.True(t, book.IsValidationError(err))
	})
}

func TestUpdateBook(t *testing.T) {
	t.Run("部分更新", func(t *testing.T) {
		f := newFixture(t)
		f.expectTx()
		f.repo.EXPECT().LockByID(gomock.Any(), uint(5)).
			Return(&book.Book{ID: 5, Name: "Old", Author: "Someone", Quantity: 10, Price: 1}, nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

		quantity := 20
		updated, err := f.svc.UpdateBook(ctx, 5, book.UpdateParams{Quantity: &quantity})
		require.NoError(t, err)
		assert.Equal(t, 20, updated.Quantity)
		assert.Equal(t, "Old", updated.Name)
	})

	t.Run("空更新", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.UpdateBook(ctx, 5, book.UpdateParams{})
		assert.ErrorIs(t, err, book.ErrEmptyUpdate)
	})

	t.Run("图书不存在", func(t *testing.T) {
		f := newFixture(t)
		f.expectTx()
		f.repo.EXPECT().LockByID(gomock.Any(), uint(5)).Return(nil, book.ErrBookNotFound)

		name := "New"
		_, err := f.svc.UpdateBook(ctx, 5, book.UpdateParams{Name: &name})
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})
}

func TestDeleteBook(t *testing.T) {
	t.Run("返回被删除的记录", func(t *testing.T) {
		f := newFixture(t)
		f.expectTx()
		f.repo.EXPECT().LockByID(gomock.Any(), uint(3)).Return(&book.Book{ID: 3, Name: "Gone"}, nil)
		f.repo.EXPECT().Delete(gomock.Any(), uint(3)).Return(nil)

		deleted, err := f.svc.DeleteBook(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, "Gone", deleted.Name)
	})

	t.Run("图书不存在", func(t *testing.T) {
		f := newFixture(t)
		f.expectTx()
		f.repo.EXPECT().LockByID(gomock.Any(), uint(3)).Return(nil, book.ErrBookNotFound)

		_, err := f.svc.DeleteBook(ctx, 3)
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})

	t.Run("非法ID", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.DeleteBook(ctx, 0)
		assert.ErrorIs(t, err, book.ErrInvalidID)
	})
}

func TestGetAndListBooks(t *testing.T) {
	f := newFixture(t)
	f.repo.EXPECT().FindByID(gomock.Any(), uint(1)).Return(&book.Book{ID: 1}, nil)
	f.repo.EXPECT().List(gomock.Any(), book.ListFilter{Keyword: "Haig"}).Return([]*book.Book{{ID: 1}}, nil)

	got, err := f.svc.GetBook(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint(1), got.ID)

	list, err := f.svc.ListBooks(ctx, book.ListFilter{Keyword: "Haig"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.svc.GetBook(ctx, 0)
	assert.ErrorIs(t, err, book.ErrInvalidID)
}
