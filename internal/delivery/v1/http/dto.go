package http

import (
	"time"

	"github.com/DRSN-tech/insumos-backend/internal/domain"
	"github.com/DRSN-tech/insumos-backend/internal/usecase"
	"github.com/DRSN-tech/insumos-backend/pkg/money"
)

type ProductResponse struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	SKU            string     `json:"sku"`
	Description    string     `json:"description"`
	TechnicalSheet string     `json:"technicalSheet"`
	Price          string     `json:"price"`
	PriceFormatted string     `json:"priceFormatted"`
	ImageURL       string     `json:"imageUrl"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}

type CatalogResponse struct {
	Query    string            `json:"query"`
	Products []ProductResponse `json:"products"`
	Count    int               `json:"count"`
}

type ProductTableResponse struct {
	Products  []ProductResponse `json:"products"`
	Query     string            `json:"query"`
	Page      int               `json:"page"`
	PageCount int               `json:"pageCount"`
	PageSize  int               `json:"pageSize"`
	Total     int               `json:"total"`
	HasPrev   bool              `json:"hasPrev"`
	HasNext   bool              `json:"hasNext"`
}

type CartLineResponse struct {
	ProductID          string `json:"productId"`
	Title              string `json:"title"`
	SKU                string `json:"sku"`
	ImageURL           string `json:"imageUrl"`
	Price              string `json:"price"`
	PriceFormatted     string `json:"priceFormatted"`
	Quantity           int    `json:"quantity"`
	LineTotal          string `json:"lineTotal"`
	LineTotalFormatted string `json:"lineTotalFormatted"`
}

type CartResponse struct {
	Lines          []CartLineResponse `json:"lines"`
	Count          int                `json:"count"`
	Total          string             `json:"total"`
	TotalFormatted string             `json:"totalFormatted"`
	AddedNotice    bool               `json:"addedNotice"`
}

type HandoffResponse struct {
	Message   string `json:"message"`
	URL       string `json:"url,omitempty"`
	Initiated bool   `json:"initiated"`
	Reason    string `json:"reason,omitempty"`
}

type SessionResponse struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type AddCartItemRequest struct {
	ProductID string `json:"productId"`
}

type SetQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProductRequest — частичное обновление; отсутствующие поля не меняются.
// Цена сохраняется как введена, наценка не пересчитывается.
type UpdateProductRequest struct {
	Title          *string `json:"title,omitempty"`
	SKU            *string `json:"sku,omitempty"`
	Description    *string `json:"description,omitempty"`
	TechnicalSheet *string `json:"technicalSheet,omitempty"`
	Price          *string `json:"price,omitempty"`
}

func (req UpdateProductRequest) toPatch() (domain.ProductPatch, error) {
	patch := domain.ProductPatch{
		Title:          req.Title,
		SKU:            req.SKU,
		Description:    req.Description,
		TechnicalSheet: req.TechnicalSheet,
	}

	if req.Price != nil {
		price, err := parsePrice(*req.Price)
		if err != nil {
			return domain.ProductPatch{}, err
		}
		patch.Price = &price
	}

	return patch, nil
}

func toProductResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:             p.ID,
		Title:          p.Title,
		SKU:            p.SKU,
		Description:    p.Description,
		TechnicalSheet: p.TechnicalSheet,
		Price:          p.Price.StringFixed(2),
		PriceFormatted: money.FormatARS(p.Price),
		ImageURL:       p.ImageURL,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func toProductResponses(products []domain.Product) []ProductResponse {
	res := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		res = append(res, toProductResponse(p))
	}
	return res
}

func toCatalogResponse(query string, products []domain.Product) CatalogResponse {
	return CatalogResponse{
		Query:    query,
		Products: toProductResponses(products),
		Count:    len(products),
	}
}

func toProductTableResponse(page *usecase.ProductTablePage) ProductTableResponse {
	return ProductTableResponse{
		Products:  toProductResponses(page.Products),
		Query:     page.Query,
		Page:      page.Page,
		PageCount: page.PageCount,
		PageSize:  page.PageSize,
		Total:     page.Total,
		HasPrev:   page.HasPrev,
		HasNext:   page.HasNext,
	}
}

func toCartResponse(view *usecase.CartView) CartResponse {
	lines := make([]CartLineResponse, 0, len(view.Lines))
	for _, l := range view.Lines {
		lines = append(lines, CartLineResponse{
			ProductID:          l.ProductID,
			Title:              l.Title,
			SKU:                l.SKU,
			ImageURL:           l.ImageURL,
			Price:              l.Price.StringFixed(2),
			PriceFormatted:     l.PriceFormatted,
			Quantity:           l.Quantity,
			LineTotal:          l.LineTotal.StringFixed(2),
			LineTotalFormatted: l.LineTotalFormatted,
		})
	}

	return CartResponse{
		Lines:          lines,
		Count:          view.Count,
		Total:          view.Total.StringFixed(2),
		TotalFormatted: view.TotalFormatted,
		AddedNotice:    view.AddedNotice,
	}
}

func toHandoffResponse(h *usecase.Handoff) HandoffResponse {
	return HandoffResponse{
		Message:   h.Message,
		URL:       h.URL,
		Initiated: h.Initiated,
		Reason:    h.Reason,
	}
}

func toSessionResponse(s *domain.Session) SessionResponse {
	return SessionResponse{Email: s.Email, ExpiresAt: s.ExpiresAt}
}
