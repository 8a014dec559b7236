package usecase

import (
	"strings"

	"github.com/DRSN-tech/insumos-backend/internal/domain"
)

// FilterProducts возвращает товары, у которых title или sku содержит query
// без учёта регистра. Запрос не обрезается: пробелы тоже ищутся.
// Пустой запрос подходит всем. Порядок сохраняется.
func FilterProducts(products []domain.Product, query string) []domain.Product {
	q := strings.ToLower(query)

	result := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if q == "" ||
			strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.SKU), q) {
			result = append(result, p)
		}
	}

	return result
}

// PageCount = max(1, ceil(total/size)).
func PageCount(total, size int) int {
	if size < 1 {
		size = 1
	}
	if total <= 0 {
		return 1
	}

	return (total + size - 1) / size
}

// Page возвращает срез [(n-1)*size, n*size), обрезанный по границам items.
func Page[T any](items []T, n, size int) []T {
	if size < 1 || n < 1 {
		return []T{}
	}

	start := (n - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := min(start+size, len(items))

	return items[start:end]
}

// QueryResetPolicy определяет, что происходит с номером страницы при смене поискового запроса.
type QueryResetPolicy int

const (
	// ResetOnQueryChange возвращает таблицу на первую страницу.
	ResetOnQueryChange QueryResetPolicy = iota
	// KeepPageOnQueryChange оставляет номер страницы; при чтении он зажимается в [1, PageCount].
	KeepPageOnQueryChange
)

// Pager — состояние таблицы администратора: товары, запрос и текущая страница.
type Pager struct {
	pageSize int
	policy   QueryResetPolicy
	items    []domain.Product
	query    string
	filtered []domain.Product
	page     int
}

func NewPager(pageSize int, policy QueryResetPolicy) *Pager {
	if pageSize < 1 {
		pageSize = 1
	}

	return &Pager{
		pageSize: pageSize,
		policy:   policy,
		filtered: []domain.Product{},
		page:     1,
	}
}

// SetItems заменяет набор товаров, сохраняя запрос.
func (p *Pager) SetItems(items []domain.Product) {
	p.items = items
	p.filtered = FilterProducts(items, p.query)
}

func (p *Pager) SetQuery(query string) {
	if query == p.query {
		return
	}

	p.query = query
	p.filtered = FilterProducts(p.items, query)
	if p.policy == ResetOnQueryChange {
		p.page = 1
	}
}

func (p *Pager) Query() string {
	return p.query
}

func (p *Pager) Total() int {
	return len(p.filtered)
}

func (p *Pager) PageSize() int {
	return p.pageSize
}

func (p *Pager) PageCount() int {
	return PageCount(len(p.filtered), p.pageSize)
}

// Page возвращает текущую страницу, зажатую в [1, PageCount].
func (p *Pager) Page() int {
	return clamp(p.page, 1, p.PageCount())
}

func (p *Pager) Items() []domain.Product {
	return Page(p.filtered, p.Page(), p.pageSize)
}

func (p *Pager) HasPrev() bool {
	return p.Page() > 1
}

func (p *Pager) HasNext() bool {
	return p.Page() < p.PageCount()
}

func (p *Pager) Prev() {
	if p.HasPrev() {
		p.page = p.Page() - 1
	}
}

func (p *Pager) Next() {
	if p.HasNext() {
		p.page = p.Page() + 1
	}
}

// Select переходит на страницу n, зажатую в [1, PageCount].
func (p *Pager) Select(n int) {
	p.page = clamp(n, 1, p.PageCount())
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
