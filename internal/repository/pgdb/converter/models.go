package converter

import "time"

// ProductModel представляет запись таблицы products в PostgreSQL.
// Цена читается как текст (price::text), чтобы не терять точность numeric.
type ProductModel struct {
	ID             string     `db:"id"`
	Title          string     `db:"title"`
	SKU            string     `db:"sku"`
	Description    string     `db:"description"`
	TechnicalSheet string     `db:"technical_sheet"`
	Price          string     `db:"price"`
	ImageURL       string     `db:"image_url"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      *time.Time `db:"updated_at"`
}

// AdminModel представляет запись таблицы admins.
type AdminModel struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// OutboxEventModel представляет запись таблицы outbox_events.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     string     `db:"event_id"`
	EventType   string     `db:"event_type"`
	ProductID   string     `db:"product_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
