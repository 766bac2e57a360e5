package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBook_Purchase(t *testing.T) {
	t.Run("部分购买扣减库存", func(t *testing.T) {
		b := &Book{ID: 3, Name: "The Night Circus", Author: "Erin Morgenstern", Quantity: 8, Price: 12.5}

		receipt, err := b.Purchase(3)
		require.NoError(t, err)

		assert.Equal(t, 5, b.Quantity)
		assert.Equal(t, &Receipt{
			BookID:    3,
			Title:     "The Night Circus",
			Author:    "Erin Morgenstern",
			Price:     12.5,
			Quantity:  3,
			Remaining: 5,
			SoldOut:   false,
		}, receipt)
	})

	t.Run("买光库存标记售罄", func(t *testing.T) {
		b := &Book{ID: 1, Name: "X", Author: "Y", Quantity: 5, Price: 10}

		receipt, err := b.Purchase(5)
		require.NoError(t, err)

		assert.True(t, receipt.SoldOut)
		assert.Equal(t, 0, receipt.Remaining)
		assert.Equal(t, "X", receipt.Title)
		assert.Equal(t, 10.0, receipt.Price)
		assert.Equal(t, 5, receipt.Quantity)
	})

	t.Run("库存不足不修改实体", func(t *testing.T) {
		b := &Book{ID: 2, Quantity: 3}

		receipt, err := b.Purchase(4)
		assert.ErrorIs(t, err, ErrInsufficientStock)
		assert.Nil(t, receipt)
		assert.Equal(t, 3, b.Quantity)
	})

	t.Run("购买数量越界", func(t *testing.T) {
		b := &Book{ID: 2, Quantity: 100}

		for _, q := range []int{0, -1, 101} {
			_, err := b.Purchase(q)
			assert.ErrorIs(t, err, ErrInvalidQuantity, "quantity=%d", q)
		}
		assert.Equal(t, 100, b.Quantity)
	})
}

func TestBook_Apply(t *testing.T) {
	b := &Book{ID: 1, Name: "Old", Author: "Someone", Quantity: 10, Price: 9.9}
	name := "New"
	price := 19.9

	b.Apply(UpdateParams{Name: &name, Price: &price})

	assert.Equal(t, "New", b.Name)
	assert.Equal(t, "Someone", b.Author)
	assert.Equal(t, 10, b.Quantity)
	assert.Equal(t, 19.9, b.Price)
	assert.False(t, b.UpdatedAt.IsZero())
}

func TestNewBook(t *testing.T) {
	b := NewBook(CreateParams{Name: "The Midnight Library", Author: "Matt Haig", Quantity: 12, Price: 14.99})

	assert.Zero(t, b.ID)
	assert.Equal(t, 12, b.Quantity)
	assert.Equal(t, Summary{Name: "The Midnight Library", Author: "Matt Haig"}, b.Summary())
	assert.Equal(t, b.CreatedAt, b.UpdatedAt)
}
