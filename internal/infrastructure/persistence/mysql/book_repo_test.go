package mysql

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xiebiao/bookstore-inventory/internal/domain/book"
	"github.com/xiebiao/bookstore-inventory/internal/infrastructure/config"
)

var ctx = context.Background()

// newTestDB 每个测试独立的SQLite内存库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		Database: config.DatabaseConfig{
			Driver:      config.DriverSQLite,
			SQLitePath:  fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
			AutoMigrate: true,
		},
	}
	db, cleanup, err := NewDB(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(cleanup)
	return db
}

func seed(t *testing.T, repo book.Repository, name, author string, quantity int, price float64) *book.Book {
	t.Helper()
	b := book.NewBook(book.CreateParams{Name: name, Author: author, Quantity: quantity, Price: price})
	require.NoError(t, repo.Create(ctx, b))
	return b
}

func TestBookRepository_CreateAndFind(t *testing.T) {
	repo := NewBookRepository(newTestDB(t))

	created := seed(t, repo, "The Midnight Library", "Matt Haig", 12, 14.99)
	require.NotZero(t, created.ID)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Midnight Library", found.Name)
	assert.Equal(t, "Matt Haig", found.Author)
	assert.Equal(t, 12, found.Quantity)
	assert.InDelta(t, 14.99, found.Price, 0.001)

	_, err = repo.FindByID(ctx, created.ID+100)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}

func TestBookRepository_List(t *testing.T) {
	repo := NewBookRepository(newTestDB(t))
	seed(t, repo, "The Midnight Library", "Matt Haig", 12, 14.99)
	seed(t, repo, "The Night Circus", "Erin Morgenstern", 8, 12.5)
	seed(t, repo, "Where the Crawdads Sing", "Delia Owens", 15, 10.99)

	all, err := repo.List(ctx, book.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Less(t, all[0].ID, all[1].ID)
	assert.Less(t, all[1].ID, all[2].ID)

	filtered, err := repo.List(ctx, book.ListFilter{Keyword: "Circus"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "The Night Circus", filtered[0].Name)

	night, err := repo.List(ctx, book.ListFilter{Keyword: "night"})
	require.NoError(t, err)
	assert.Len(t, night, 2, "Midnight与Night都匹配")

	byAuthor, err := repo.List(ctx, book.ListFilter{Keyword: "Owens"})
	require.NoError(t, err)
	assert.Len(t, byAuthor, 1)
}

func TestBookRepository_ListKeywordIsLiteral(t *testing.T) {
	repo := NewBookRepository(newTestDB(t))
	seed(t, repo, "The Midnight Library", "Matt Haig", 12, 14.99)
	seed(t, repo, "100% Go", "Rob Pike", 3, 20)
	seed(t, repo, "snake_case guide", "Ann Lee", 3, 20)
	seed(t, repo, "Wow! Go", "Ann Lee", 3, 20)

	for _, tt := range []struct {
		keyword string
		want    []string
	}{
		{"_", []string{"snake_case guide"}},
		{"%", []string{"100% Go"}},
		{"!", []string{"Wow! Go"}},
		{"0%", []string{"100% Go"}},
		{"e_c", []string{"snake_case guide"}},
		{"M_dnight", nil},
	} {
		books, err := repo.List(ctx, book.ListFilter{Keyword: tt.keyword})
		require.NoError(t, err, tt.keyword)

		var names []string
		for _, b := range books {
			names = append(names, b.Name)
		}
		assert.Equal(t, tt.want, names, tt.keyword)
	}
}

func TestBookRepository_Update(t *testing.T) {
	repo := NewBookRepository(newTestDB(t))
	b := seed(t, repo, "Old Name", "Someone", 10, 5)

	b.Name = "New Name"
	b.Price = 0
	require.NoError(t, repo.Update(ctx, b))

	found, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", found.Name)
	assert.Zero(t, found.Price, "零值也应写入")

	missing := &book.Book{ID: 999, Name: "x", Author: "xyz", Quantity: 1}
	assert.ErrorIs(t, repo.Update(ctx, missing), book.ErrBookNotFound)
}

func TestBookRepository_DecrQuantity(t *testing.T) {
	repo := NewBookRepository(newTestDB(t))
	b := seed(t, repo, "The Night Circus", "Erin Morgenstern", 8, 12.5)

	require.NoError(t, repo.DecrQuantity(ctx, b.ID, 3))
	found, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, found.Quantity)

	err = repo.DecrQuantity(ctx, b.ID, 6)
	assert.ErrorIs(t, err, book.ErrInsufficientStock)
	found, _ = repo.FindByID(ctx, b.ID)
	assert.Equal(t, 5, found.Quantity, "库存不足时不修改")

	assert.ErrorIs(t, repo.DecrQuantity(ctx, 999, 1), book.ErrBookNotFound)
}

func TestBookRepository_Delete(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookRepository(db)
	b := seed(t, repo, "Gone Girl", "Gillian Flynn", 1, 9)

	require.NoError(t, repo.Delete(ctx, b.ID))

	_, err := repo.FindByID(ctx, b.ID)
	assert.ErrorIs(t, err, book.ErrBookNotFound)

	// 软删除:记录仍在表中
	var count int64
	require.NoError(t, db.Unscoped().Model(&BookModel{}).Where("id = ?", b.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	assert.ErrorIs(t, repo.Delete(ctx, b.ID), book.ErrBookNotFound)
	assert.ErrorIs(t, repo.DecrQuantity(ctx, b.ID, 1), book.ErrBookNotFound)
}

func TestTxManager_Rollback(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookRepository(db)
	txm := NewTxManager(db)
	b := seed(t, repo, "Rollback", "Tester", 10, 1)

	errAbort := errors.New("abort")
	err := txm.Transaction(ctx, func(ctx context.Context) error {
		if err := repo.DecrQuantity(ctx, b.ID, 4); err != nil {
			return err
		}
		return errAbort
	})
	assert.ErrorIs(t, err, errAbort)

	found, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, found.Quantity, "事务回滚后库存不变")
}

func TestPurchase_WithRealStore(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookRepository(db)
	svc := book.NewService(repo, NewTxManager(db))

	t.Run("买光后记录删除", func(t *testing.T) {
		b := seed(t, repo, "X", "YYY", 5, 10)

		receipt, err := svc.PurchaseBook(ctx, b.ID, 5)
		require.NoError(t, err)
		assert.Equal(t, "X", receipt.Title)
		assert.Equal(t, "YYY", receipt.Author)
		assert.InDelta(t, 10, receipt.Price, 0.001)
		assert.Equal(t, 5, receipt.Quantity)
		assert.True(t, receipt.SoldOut)

		_, err = svc.GetBook(ctx, b.ID)
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})

	t.Run("库存不足记录不变", func(t *testing.T) {
		b := seed(t, repo, "Three Left", "Someone", 3, 1)

		_, err := svc.PurchaseBook(ctx, b.ID, 4)
		assert.ErrorIs(t, err, book.ErrInsufficientStock)

		found, err := svc.GetBook(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, found.Quantity)
	})

	t.Run("非幂等:重复购买持续扣减", func(t *testing.T) {
		b := seed(t, repo, "Repeat", "Someone", 5, 1)

		for _, want := range []int{3, 1} {
			receipt, err := svc.PurchaseBook(ctx, b.ID, 2)
			require.NoError(t, err)
			assert.Equal(t, want, receipt.Remaining)
		}
		_, err := svc.PurchaseBook(ctx, b.ID, 2)
		assert.ErrorIs(t, err, book.ErrInsufficientStock)
	})
}

func TestPurchase_ConcurrentNeverOversells(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookRepository(db)
	svc := book.NewService(repo, NewTxManager(db))
	b := seed(t, repo, "Hot Item", "Popular", 10, 20)

	const buyers = 20
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		rejected  atomic.Int32
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.PurchaseBook(ctx, b.ID, 1)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, book.ErrBookNotFound), errors.Is(err, book.ErrInsufficientStock):
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), succeeded.Load())
	assert.Equal(t, int32(buyers-10), rejected.Load())

	_, err := repo.FindByID(ctx, b.ID)
	assert.ErrorIs(t, err, book.ErrBookNotFound, "售罄后记录被删除")
}
