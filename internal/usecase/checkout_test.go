package usecase

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/DRSN-tech/insumos-backend/internal/domain"
	"github.com/DRSN-tech/insumos-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoLineCart(t *testing.T) domain.Cart {
	t.Helper()

	cart := domain.NewCart()
	now := time.Now()
	cart.Add(product("a", "Product A", "A-1", "1000"), now)
	cart.Add(product("b", "Product B", "B-1", "500"), now)
	require.NoError(t, cart.SetQuantity("a", 2))

	return cart.Snapshot()
}

func TestBuildMessage(t *testing.T) {
	b := NewCheckoutBuilder("wa.me", "+542616862323")
	cart := twoLineCart(t)

	assert.Equal(t, "2500", cart.Total().String())

	msg := b.BuildMessage(cart)
	assert.Equal(t,
		"Lista de productos:\n"+
			"- Product A (SKU: A-1) x2 - Total: $2000\n"+
			"- Product B (SKU: B-1) x1 - Total: $500",
		msg)
}

func TestBuildMessage_GroupsLargeTotals(t *testing.T) {
	b := NewCheckoutBuilder("wa.me", "1")
	cart := domain.NewCart()
	cart.Add(product("x", "Camilla", "CM-1", "12345.5"), time.Now())

	msg := b.BuildMessage(*cart)
	assert.Contains(t, msg, "Total: $12.345,5")
}

func TestBuildLink(t *testing.T) {
	b := NewCheckoutBuilder("wa.me", "+542616862323")
	message := "Lista de productos:\n- Gasa & venda (SKU: G/1) x1 - Total: $500"

	link := b.BuildLink(message, "+542616862323")

	require.True(t, strings.HasPrefix(link, "https://wa.me/+542616862323?text="))
	query := strings.TrimPrefix(link, "https://wa.me/+542616862323?text=")
	assert.NotContains(t, query, "+")
	assert.Contains(t, query, "%20")
	assert.Contains(t, query, "%0A")
	assert.Contains(t, query, "%26")

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, message, parsed.Query().Get("text"))
}

func TestBuildLink_EncodesLikeEncodeURIComponent(t *testing.T) {
	b := NewCheckoutBuilder("wa.me", "+542616862323")

	link := b.BuildLink("- Gasa (SKU: G-1) x1 - Total: $5\nñ!*'~", "+542616862323")

	assert.Equal(t,
		"https://wa.me/+542616862323?text=-%20Gasa%20(SKU%3A%20G-1)%20x1%20-%20Total%3A%20%245%0A%C3%B1!*'~",
		link)
}

func TestCheckout(t *testing.T) {
	t.Run("empty cart", func(t *testing.T) {
		b := NewCheckoutBuilder("wa.me", "+542616862323")

		handoff, err := b.Checkout(*domain.NewCart())
		assert.Nil(t, handoff)
		assert.ErrorIs(t, err, e.ErrCartEmpty)
	})

	t.Run("initiated", func(t *testing.T) {
		b := NewCheckoutBuilder("wa.me", "+542616862323")

		handoff, err := b.Checkout(twoLineCart(t))
		require.NoError(t, err)
		assert.True(t, handoff.Initiated)
		assert.Empty(t, handoff.Reason)
		assert.Equal(t, b.BuildLink(handoff.Message, "+542616862323"), handoff.URL)
	})

	t.Run("no destination", func(t *testing.T) {
		b := NewCheckoutBuilder("wa.me", " ")

		handoff, err := b.Checkout(twoLineCart(t))
		require.NoError(t, err)
		assert.False(t, handoff.Initiated)
		assert.Empty(t, handoff.URL)
		assert.NotEmpty(t, handoff.Reason)
		assert.NotEmpty(t, handoff.Message)
	})
}
