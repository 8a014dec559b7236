package usecase

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/DRSN-tech/insumos-backend/internal/domain"
	"github.com/DRSN-tech/insumos-backend/pkg/e"
	"github.com/DRSN-tech/insumos-backend/pkg/money"
)

const (
	checkoutHeader = "Lista de productos:"

	reasonNoDestination = "messaging destination is not configured"
)

// CheckoutBuilder собирает текст заказа и deep link во внешний мессенджер.
type CheckoutBuilder struct {
	host        string
	destination string
}

func NewCheckoutBuilder(host, destination string) *CheckoutBuilder {
	return &CheckoutBuilder{
		host:        host,
		destination: destination,
	}
}

// BuildMessage формирует текст вида
//
//	Lista de productos:
//	- Guantes (SKU: G-1) x2 - Total: $2000
func (b *CheckoutBuilder) BuildMessage(cart domain.Cart) string {
	lines := make([]string, 0, cart.Len()+1)
	lines = append(lines, checkoutHeader)
	for _, l := range cart.Lines {
		lines = append(lines, fmt.Sprintf("- %s (SKU: %s) x%d - Total: $%s",
			l.Product.Title, l.Product.SKU, l.Quantity, money.FormatLocale(l.Total())))
	}

	return strings.Join(lines, "\n")
}

// BuildLink встраивает сообщение в https://{host}/{destination}?text=...
// Текст кодируется по правилам encodeURIComponent.
func (b *CheckoutBuilder) BuildLink(message, destination string) string {
	text := encodeURIComponent(message)
	return fmt.Sprintf("https://%s/%s?text=%s", b.host, url.PathEscape(destination), text)
}

// Checkout готовит передачу корзины. Пустая корзина даёт ошибку, а без получателя
// возвращается явный неуспешный Handoff.
func (b *CheckoutBuilder) Checkout(cart domain.Cart) (*Handoff, error) {
	if cart.IsEmpty() {
		return nil, e.ErrCartEmpty
	}

	message := b.BuildMessage(cart)
	if strings.TrimSpace(b.destination) == "" || strings.TrimSpace(b.host) == "" {
		return &Handoff{Message: message, Reason: reasonNoDestination}, nil
	}

	return &Handoff{
		Message:   message,
		URL:       b.BuildLink(message, b.destination),
		Initiated: true,
	}, nil
}

// encodeURIComponent оставляет как есть A-Z a-z 0-9 и - _ . ! ~ * ' ( ),
// остальные байты UTF-8 кодирует как %XX.
func encodeURIComponent(s string) string {
	const hexDigits = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isURIUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0f])
	}

	return b.String()
}

func isURIUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
