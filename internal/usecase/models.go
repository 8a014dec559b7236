package usecase

import (
	"time"

	"github.com/DRSN-tech/insumos-backend/internal/domain"
	"github.com/DRSN-tech/insumos-backend/pkg/money"
	"github.com/shopspring/decimal"
)

// PRODUCT USECASE

// AddNewProductReq — запрос на добавление нового товара. BasePrice задаётся без наценки.
type AddNewProductReq struct {
	Title          string
	SKU            string
	Description    string
	TechnicalSheet string
	BasePrice      decimal.Decimal
	Image          *ProductImage
}

// ProductImage представляет изображение, загруженное через multipart/form-data.
type ProductImage struct {
	Data     []byte // байты изображения
	MimeType string // Content-Type из multipart (image/jpeg)
	Size     int64  // фактический размер в байтах
	Name     string // оригинальное имя файла (для логов и ключа объекта)
}

// CATALOG USECASE

// ProductTableReq описывает запрос страницы. PrevQuery — запрос, по которому клиент листал
// таблицу до этого; по нему решается, сбрасывать ли Page при смене поиска.
type ProductTableReq struct {
	Query     string
	PrevQuery string
	Page      int
}

// ProductTablePage — одна страница таблицы администратора.
type ProductTablePage struct {
	Products  []domain.Product
	Query     string
	Page      int
	PageCount int
	PageSize  int
	Total     int
	HasPrev   bool
	HasNext   bool
}

// CART USECASE

type CartLineView struct {
	ProductID          string
	Title              string
	SKU                string
	ImageURL           string
	Price              decimal.Decimal
	PriceFormatted     string
	Quantity           int
	LineTotal          decimal.Decimal
	LineTotalFormatted string
}

type CartView struct {
	Lines          []CartLineView
	Count          int
	Total          decimal.Decimal
	TotalFormatted string
	AddedNotice    bool
}

// Handoff — результат передачи корзины во внешний мессенджер.
// Initiated=false означает, что ссылку открыть нельзя; причина в Reason.
type Handoff struct {
	Message   string
	URL       string
	Initiated bool
	Reason    string
}

// INFRASTUCTURE

type UploadImageReq struct {
	Name  string
	Image ProductImage
}

// UploadImageRes — ключ объекта в MinIO и публичный URL.
type UploadImageRes struct {
	Key string
	URL string
}

type WriteRawMessageReq struct {
	Key     string
	Payload []byte
}

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

type OutboxEventType string

const (
	ProductCreated OutboxEventType = "product.created"
	ProductUpdated OutboxEventType = "product.updated"
	ProductDeleted OutboxEventType = "product.deleted"
)

type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   OutboxEventType
	ProductID   string
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// ProductEventPayload — тело события об изменении товара.
type ProductEventPayload struct {
	EventID    string          `json:"event_id"`
	EventType  OutboxEventType `json:"event_type"`
	ProductID  string          `json:"product_id"`
	Product    *ProductRecord  `json:"product,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type ProductRecord struct {
	Title          string `json:"title"`
	SKU            string `json:"sku"`
	Description    string `json:"description"`
	TechnicalSheet string `json:"technical_sheet"`
	Price          string `json:"price"`
	ImageURL       string `json:"image_url"`
}

// MAPPERS

func NewAddNewProductReq(title, sku, description, technicalSheet string, basePrice decimal.Decimal, image *ProductImage) *AddNewProductReq {
	return &AddNewProductReq{
		Title:          title,
		SKU:            sku,
		Description:    description,
		TechnicalSheet: technicalSheet,
		BasePrice:      basePrice,
		Image:          image,
	}
}

func NewProductImage(data []byte, mimeType string, size int64, name string) *ProductImage {
	return &ProductImage{
		Data:     data,
		MimeType: mimeType,
		Size:     size,
		Name:     name,
	}
}

func NewUploadImageReq(name string, image ProductImage) *UploadImageReq {
	return &UploadImageReq{Name: name, Image: image}
}

func NewUploadImageRes(key, url string) *UploadImageRes {
	return &UploadImageRes{Key: key, URL: url}
}

func NewWriteRawMessageReq(key string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{Key: key, Payload: payload}
}

func NewProductRecord(p *domain.Product) *ProductRecord {
	return &ProductRecord{
		Title:          p.Title,
		SKU:            p.SKU,
		Description:    p.Description,
		TechnicalSheet: p.TechnicalSheet,
		Price:          p.Price.StringFixed(2),
		ImageURL:       p.ImageURL,
	}
}

func NewCartView(cart *domain.Cart, now time.Time) *CartView {
	lines := make([]CartLineView, 0, cart.Len())
	for _, l := range cart.Lines {
		total := l.Total()
		lines = append(lines, CartLineView{
			ProductID:          l.Product.ID,
			Title:              l.Product.Title,
			SKU:                l.Product.SKU,
			ImageURL:           l.Product.ImageURL,
			Price:              l.Product.Price,
			PriceFormatted:     money.FormatARS(l.Product.Price),
			Quantity:           l.Quantity,
			LineTotal:          total,
			LineTotalFormatted: money.FormatARS(total),
		})
	}

	total := cart.Total()
	return &CartView{
		Lines:          lines,
		Count:          cart.Len(),
		Total:          total,
		TotalFormatted: money.FormatARS(total),
		AddedNotice:    cart.NoticeVisible(now),
	}
}
