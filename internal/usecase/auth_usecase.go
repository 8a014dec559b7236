package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/insumos-backend/internal/domain"
	"github.com/DRSN-tech/insumos-backend/pkg/e"
	"github.com/DRSN-tech/insumos-backend/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// AuthUseCase выдаёт и проверяет сессии администраторов.
type AuthUseCase struct {
	admins   AdminRepository
	sessions SessionRepository
	ttl      time.Duration
	logger   logger.Logger
	now      func() time.Time

	mu        sync.Mutex
	listeners map[int]*authListener
	nextID    int
}

func NewAuthUC(admins AdminRepository, sessions SessionRepository, ttl time.Duration, logger logger.Logger) *AuthUseCase {
	return &AuthUseCase{
		admins:    admins,
		sessions:  sessions,
		ttl:       ttl,
		logger:    logger,
		now:       time.Now,
		listeners: make(map[int]*authListener),
	}
}

// SignIn проверяет email/пароль и открывает новую сессию.
func (a *AuthUseCase) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	const op = "AuthUseCase.SignIn"

	admin, err := a.admins.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, e.Wrap(op, e.ErrInvalidCredentials)
		}
		return nil, e.Repository(op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, e.Wrap(op, e.ErrInvalidCredentials)
	}

	session := domain.NewSession(uuid.NewString(), admin, a.now().UTC(), a.ttl)
	if err := a.sessions.Save(ctx, session); err != nil {
		return nil, e.Repository(op, err)
	}

	return session, nil
}

// SignOut закрывает сессию. С точки зрения вызывающего всегда успешен.
func (a *AuthUseCase) SignOut(ctx context.Context, token string) {
	if token == "" {
		return
	}

	if err := a.sessions.Delete(ctx, token); err != nil {
		a.logger.Warnf("failed to delete session: %v", err)
	}

	a.endSession(token)
}

// Current возвращает активную сессию или ErrUnauthenticated.
func (a *AuthUseCase) Current(ctx context.Context, token string) (*domain.Session, error) {
	const op = "AuthUseCase.Current"

	if token == "" {
		return nil, e.Wrap(op, e.ErrUnauthenticated)
	}

	session, err := a.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, e.ErrAuth) {
			return nil, e.Wrap(op, err)
		}
		return nil, e.Repository(op, err)
	}

	if !a.now().Before(session.ExpiresAt) {
		return nil, e.Wrap(op, e.ErrUnauthenticated)
	}

	return session, nil
}

// RegisterAdmin создаёт администратора с bcrypt-хэшем пароля.
func (a *AuthUseCase) RegisterAdmin(ctx context.Context, email, password string) (*domain.Admin, error) {
	const op = "AuthUseCase.RegisterAdmin"

	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") || len(password) < minPasswordLength {
		return nil, e.Wrap(op, e.ErrStatusBadRequest)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	admin, err := a.admins.Create(ctx, &domain.Admin{
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, e.Repository(op, err)
	}

	return admin, nil
}

// OnAuthChange следит за сессией token. Callback сразу получает текущую сессию
// (nil, если её нет), а затем nil, когда сессия закрыта через SignOut или истекла.
// После nil вызовов больше не будет.
func (a *AuthUseCase) OnAuthChange(ctx context.Context, token string, callback func(session *domain.Session)) func() {
	l := &authListener{token: token, callback: callback}

	// listener регистрируется до чтения сессии, а его mu держится до первой доставки:
	// SignOut, пришедший в этот промежуток, доставит nil уже после текущего состояния
	l.mu.Lock()
	id := a.addListener(l)

	session, err := a.Current(ctx, token)
	if err != nil {
		if !errors.Is(err, e.ErrAuth) {
			a.logger.Warnf("auth state lookup failed: %v", err)
		}
		session = nil
	}

	if session != nil {
		l.timer = time.AfterFunc(session.ExpiresAt.Sub(a.now()), func() {
			a.removeListener(id)
			l.deliver(nil)
		})
	}
	l.deliverLocked(session)
	l.mu.Unlock()

	if session == nil {
		a.removeListener(id)
	}

	return func() {
		a.removeListener(id)
		l.stop()
	}
}

func (a *AuthUseCase) addListener(l *authListener) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.nextID
	a.nextID++
	a.listeners[id] = l
	return id
}

func (a *AuthUseCase) removeListener(id int) {
	a.mu.Lock()
	delete(a.listeners, id)
	a.mu.Unlock()
}

// endSession сообщает nil всем, кто следит за token.
func (a *AuthUseCase) endSession(token string) {
	a.mu.Lock()
	var ended []*authListener
	for id, l := range a.listeners {
		if l.token == token {
			ended = append(ended, l)
			delete(a.listeners, id)
		}
	}
	a.mu.Unlock()

	for _, l := range ended {
		l.deliver(nil)
	}
}

type authListener struct {
	token    string
	callback func(*domain.Session)

	mu    sync.Mutex
	ended bool
	timer *time.Timer
}

func (l *authListener) deliver(session *domain.Session) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.deliverLocked(session)
}

func (l *authListener) deliverLocked(session *domain.Session) {
	if l.ended {
		return
	}
	if session == nil {
		l.ended = true
		if l.timer != nil {
			l.timer.Stop()
		}
	}
	l.callback(session)
}

func (l *authListener) stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.ended = true
	if l.timer != nil {
		l.timer.Stop()
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
