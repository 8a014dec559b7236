package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/DRSN-tech/insumos-backend/internal/domain"
	"github.com/DRSN-tech/insumos-backend/internal/usecase"
	"github.com/DRSN-tech/insumos-backend/pkg/e"
	"github.com/DRSN-tech/insumos-backend/pkg/logger"
	"github.com/google/uuid"
)

const (
	cartCookie    = "cart_session"
	sessionCookie = "admin_session"
	cartCookieTTL = 30 * 24 * time.Hour
)

type ctxKey int

const (
	cartSessionKey ctxKey = iota
	adminSessionKey
)

// CartSession выдаёт анонимный идентификатор корзины в cookie, если его ещё нет.
func CartSession(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(cartCookie); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					id = c.Value
				}
			}

			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cartCookie,
					Value:    id,
					Path:     "/",
					MaxAge:   int(cartCookieTTL.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), cartSessionKey, id)))
		})
	}
}

func cartSessionID(ctx context.Context) string {
	id, _ := ctx.Value(cartSessionKey).(string)
	return id
}

// RequireAdmin пропускает запрос только с действующей сессией администратора.
func RequireAdmin(auth usecase.AuthUC, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := auth.Current(r.Context(), sessionToken(r))
			if err != nil {
				log.Debugf("%d %s %s: %v", http.StatusUnauthorized, r.Method, r.URL.Path, err)
				WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), adminSessionKey, session)))
		})
	}
}

func adminSession(ctx context.Context) (*domain.Session, error) {
	s, ok := ctx.Value(adminSessionKey).(*domain.Session)
	if !ok || s == nil {
		return nil, e.ErrUnauthenticated
	}
	return s, nil
}

// sessionToken берёт токен из cookie или заголовка Authorization: Bearer.
func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}

	h := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(token)
	}

	return ""
}

func setSessionCookie(w http.ResponseWriter, s *domain.Session, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    s.Token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}
