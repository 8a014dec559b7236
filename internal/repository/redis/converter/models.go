package converter

import "time"

// ProductRedisModel — снимок товара в кэше и в корзине.
type ProductRedisModel struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	SKU            string     `json:"sku"`
	Description    string     `json:"description"`
	TechnicalSheet string     `json:"technical_sheet"`
	Price          string     `json:"price"`
	ImageURL       string     `json:"image_url"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

type CartLineRedisModel struct {
	Product  ProductRedisModel `json:"product"`
	Quantity int               `json:"quantity"`
}

type CartRedisModel struct {
	Lines       []CartLineRedisModel `json:"lines"`
	LastAddedAt *time.Time           `json:"last_added_at,omitempty"`
}
