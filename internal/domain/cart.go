package domain

import (
	"time"

	"github.com/DRSN-tech/insumos-backend/pkg/e"
	"github.com/shopspring/decimal"
)

// AddedNoticeWindow — сколько показывается уведомление "Producto agregado al carrito".
const AddedNoticeWindow = 4 * time.Second

// CartLine — одна позиция корзины: снимок товара и количество (>= 1).
type CartLine struct {
	Product  Product
	Quantity int
}

// Total возвращает price × quantity.
func (l CartLine) Total() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart — упорядоченный список позиций, порядок добавления = порядок отображения.
// На каждый товар приходится не больше одной позиции.
type Cart struct {
	Lines       []CartLine
	LastAddedAt *time.Time
}

func NewCart() *Cart {
	return &Cart{Lines: make([]CartLine, 0)}
}

// Add добавляет товар с количеством 1. Повторное добавление того же товара
// ничего не меняет и возвращает false.
func (c *Cart) Add(product Product, now time.Time) bool {
	if c.indexOf(product.ID) >= 0 {
		return false
	}

	c.Lines = append(c.Lines, CartLine{Product: product, Quantity: 1})
	c.LastAddedAt = &now

	return true
}

// Remove удаляет позицию товара; для отсутствующего товара ничего не делает.
func (c *Cart) Remove(productID string) bool {
	idx := c.indexOf(productID)
	if idx < 0 {
		return false
	}

	c.Lines = append(c.Lines[:idx:idx], c.Lines[idx+1:]...)
	return true
}

// SetQuantity заменяет количество. Значения меньше 1 отклоняются без изменения позиции,
// для отсутствующего товара ничего не происходит. Верхней границы нет.
func (c *Cart) SetQuantity(productID string, quantity int) error {
	if quantity < 1 {
		return e.ErrInvalidQuantity
	}

	if idx := c.indexOf(productID); idx >= 0 {
		c.Lines[idx].Quantity = quantity
	}

	return nil
}

// Line возвращает позицию по id товара.
func (c *Cart) Line(productID string) (CartLine, bool) {
	idx := c.indexOf(productID)
	if idx < 0 {
		return CartLine{}, false
	}

	return c.Lines[idx], true
}

// Total возвращает сумму всех позиций.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Total())
	}

	return total
}

func (c *Cart) Len() int {
	return len(c.Lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// NoticeVisible сообщает, открыто ли окно уведомления о последнем добавлении.
func (c *Cart) NoticeVisible(now time.Time) bool {
	if c.LastAddedAt == nil {
		return false
	}

	return now.Before(c.LastAddedAt.Add(AddedNoticeWindow))
}

// Snapshot возвращает независимую копию корзины.
func (c *Cart) Snapshot() Cart {
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)

	snap := Cart{Lines: lines}
	if c.LastAddedAt != nil {
		t := *c.LastAddedAt
		snap.LastAddedAt = &t
	}

	return snap
}

func (c *Cart) indexOf(productID string) int {
	for i, line := range c.Lines {
		if line.Product.ID == productID {
			return i
		}
	}

	return -1
}
