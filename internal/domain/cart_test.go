package domain_test

import (
	"math/rand"
	"strconv"
	"testing"
	"time"

	"github.com/DRSN-tech/insumos-backend/internal/domain"
	"github.com/DRSN-tech/insumos-backend/pkg/e"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func product(id string, price int64) domain.Product {
	return domain.Product{
		ID:    id,
		Title: "Producto " + id,
		SKU:   "SKU-" + id,
		Price: decimal.NewFromInt(price),
	}
}

func TestCart_Add(t *testing.T) {
	t.Run("new product gets a single line with quantity 1", func(t *testing.T) {
		cart := domain.NewCart()

		assert.True(t, cart.Add(product("a", 100), now))

		require.Equal(t, 1, cart.Len())
		line, ok := cart.Line("a")
		require.True(t, ok)
		assert.Equal(t, 1, line.Quantity)
	})

	t.Run("adding a present product leaves the cart unchanged", func(t *testing.T) {
		cart := domain.NewCart()
		cart.Add(product("a", 100), now)
		require.NoError(t, cart.SetQuantity("a", 3))
		before := cart.Snapshot()

		assert.False(t, cart.Add(product("a", 100), now.Add(time.Minute)))

		assert.Equal(t, before, cart.Snapshot())
	})

	t.Run("insertion order is display order", func(t *testing.T) {
		cart := domain.NewCart()
		cart.Add(product("b", 1), now)
		cart.Add(product("a", 1), now)
		cart.Add(product("c", 1), now)

		ids := make([]string, 0, cart.Len())
		for _, l := range cart.Lines {
			ids = append(ids, l.Product.ID)
		}
		assert.Equal(t, []string{"b", "a", "c"}, ids)
	})
}

func TestCart_NoticeWindow(t *testing.T) {
	cart := domain.NewCart()
	assert.False(t, cart.NoticeVisible(now))

	cart.Add(product("a", 1), now)
	assert.True(t, cart.NoticeVisible(now))
	assert.True(t, cart.NoticeVisible(now.Add(3999*time.Millisecond)))
	assert.False(t, cart.NoticeVisible(now.Add(domain.AddedNoticeWindow)))

	// повторное добавление не продлевает окно
	cart.Add(product("a", 1), now.Add(3*time.Second))
	assert.False(t, cart.NoticeVisible(now.Add(5*time.Second)))
}

func TestCart_SetQuantity(t *testing.T) {
	cart := domain.NewCart()
	cart.Add(product("a", 100), now)

	for _, q := range []int{0, -1, -100} {
		err := cart.SetQuantity("a", q)
		assert.ErrorIs(t, err, e.ErrInvalidQuantity)
		assert.ErrorIs(t, err, e.ErrValidation)
		line, _ := cart.Line("a")
		assert.Equal(t, 1, line.Quantity)
	}

	require.NoError(t, cart.SetQuantity("a", 7))
	require.NoError(t, cart.SetQuantity("a", 7))
	line, _ := cart.Line("a")
	assert.Equal(t, 7, line.Quantity)

	require.NoError(t, cart.SetQuantity("a", 1_000_000))
	line, _ = cart.Line("a")
	assert.Equal(t, 1_000_000, line.Quantity)

	assert.NoError(t, cart.SetQuantity("missing", 2))
	assert.Equal(t, 1, cart.Len())
}

func TestCart_Remove(t *testing.T) {
	cart := domain.NewCart()
	cart.Add(product("a", 1), now)
	cart.Add(product("b", 1), now)

	assert.False(t, cart.Remove("missing"))
	assert.Equal(t, 2, cart.Len())

	assert.True(t, cart.Remove("a"))
	once := cart.Snapshot()
	assert.False(t, cart.Remove("a"))
	assert.Equal(t, once, cart.Snapshot())

	_, ok := cart.Line("a")
	assert.False(t, ok)
	_, ok = cart.Line("b")
	assert.True(t, ok)
}

func TestCart_Snapshot_IsIndependent(t *testing.T) {
	cart := domain.NewCart()
	cart.Add(product("a", 1), now)
	cart.Add(product("b", 1), now)

	snap := cart.Snapshot()
	cart.Remove("a")
	require.NoError(t, cart.SetQuantity("b", 9))

	assert.Len(t, snap.Lines, 2)
	assert.Equal(t, 1, snap.Lines[1].Quantity)
}

func TestCart_TotalScenario(t *testing.T) {
	cart := domain.NewCart()
	cart.Add(product("A", 1000), now)
	cart.Add(product("B", 500), now)
	require.NoError(t, cart.SetQuantity("A", 2))

	lineA, _ := cart.Line("A")
	lineB, _ := cart.Line("B")
	assert.True(t, lineA.Total().Equal(decimal.NewFromInt(2000)))
	assert.True(t, lineB.Total().Equal(decimal.NewFromInt(500)))
	assert.True(t, cart.Total().Equal(decimal.NewFromInt(2500)))
}

func TestCart_TotalMatchesRecomputation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	cart := domain.NewCart()

	for i := 0; i < 2000; i++ {
		id := strconv.Itoa(rng.Intn(8))
		switch rng.Intn(3) {
		case 0:
			cart.Add(product(id, int64(rng.Intn(5000))), now)
		case 1:
			cart.Remove(id)
		case 2:
			_ = cart.SetQuantity(id, rng.Intn(6)-1)
		}

		expected := decimal.Zero
		seen := map[string]bool{}
		for _, l := range cart.Lines {
			require.False(t, seen[l.Product.ID], "duplicate line for %s", l.Product.ID)
			seen[l.Product.ID] = true
			require.GreaterOrEqual(t, l.Quantity, 1)
			expected = expected.Add(l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
		require.True(t, expected.Equal(cart.Total()), "step %d", i)
	}
}
