package cli

import (
	"fmt"
	"strings"

	"github.com/DRSN-tech/insumos-backend/internal/domain"
	"github.com/DRSN-tech/insumos-backend/pkg/money"
	"github.com/charmbracelet/lipgloss"
)

var (
	accent = lipgloss.Color("#0EA5E9")
	dim    = lipgloss.Color("#6B7280")
	faint  = lipgloss.Color("#3F3F46")
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	dimStyle    = lipgloss.NewStyle().Foreground(dim)
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)
	priceStyle  = lipgloss.NewStyle().Align(lipgloss.Right)
	separator   = lipgloss.NewStyle().Foreground(faint)
)

type row struct {
	ID    string `json:"id"`
	SKU   string `json:"sku"`
	Title string `json:"title"`
	Price string `json:"price"`
}

func toRows(products []domain.Product) []row {
	rows := make([]row, 0, len(products))
	for _, p := range products {
		rows = append(rows, row{
			ID:    p.ID,
			SKU:   p.SKU,
			Title: p.Title,
			Price: money.FormatARS(p.Price),
		})
	}
	return rows
}

// RenderProducts рисует таблицу товаров с итоговой строкой.
func RenderProducts(products []domain.Product) string {
	if len(products) == 0 {
		return dimStyle.Render("No products found.") + "\n"
	}

	rows := toRows(products)

	widths := [4]int{len("SKU"), len("TITLE"), len("PRICE"), len("ID")}
	for _, r := range rows {
		widths[0] = max(widths[0], lipgloss.Width(r.SKU))
		widths[1] = max(widths[1], lipgloss.Width(r.Title))
		widths[2] = max(widths[2], lipgloss.Width(r.Price))
		widths[3] = max(widths[3], lipgloss.Width(r.ID))
	}

	line := func(style lipgloss.Style, sku, title, price, id string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top,
			cellStyle.Width(widths[0]+2).Render(style.Render(sku)),
			cellStyle.Width(widths[1]+2).Render(style.Render(title)),
			cellStyle.Width(widths[2]+2).Render(priceStyle.Width(widths[2]).Render(style.Render(price))),
			style.Render(id),
		)
	}

	var b strings.Builder
	b.WriteString(line(headerStyle, "SKU", "TITLE", "PRICE", "ID"))
	b.WriteString("\n")
	b.WriteString(separator.Render(strings.Repeat("─", widths[0]+widths[1]+widths[2]+widths[3]+6)))
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString(line(lipgloss.NewStyle(), r.SKU, r.Title, r.Price, r.ID))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d product(s)", len(rows))))
	b.WriteString("\n")

	return b.String()
}
