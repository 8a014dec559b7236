package domain

import "time"

// Admin — оператор каталога с доступом к админке.
type Admin struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Session — активная сессия администратора, хранится в Redis.
type Session struct {
	Token     string    `json:"-"`
	AdminID   string    `json:"admin_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewSession(token string, admin *Admin, now time.Time, ttl time.Duration) *Session {
	return &Session{
		Token:     token,
		AdminID:   admin.ID,
		Email:     admin.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}
