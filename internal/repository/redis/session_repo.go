package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/DRSN-tech/insumos-backend/internal/domain"
	"github.com/DRSN-tech/insumos-backend/pkg/clients"
	"github.com/DRSN-tech/insumos-backend/pkg/e"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

// SessionRepo хранит сессии администраторов; ключ живёт до ExpiresAt.
type SessionRepo struct {
	client *clients.RedisClient
}

func NewSessionRepo(client *clients.RedisClient) *SessionRepo {
	return &SessionRepo{client: client}
}

func (s *SessionRepo) Save(ctx context.Context, session *domain.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrUnauthenticated)
	}

	data, err := json.Marshal(session)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := s.client.Client.Set(ctx, sessionKey(session.Token), data, ttl).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// Get возвращает сессию по токену; для неизвестного токена возвращает ErrUnauthenticated.
func (s *SessionRepo) Get(ctx context.Context, token string) (*domain.Session, error) {
	data, err := s.client.Client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrUnauthenticated)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	session.Token = token

	return &session, nil
}

func (s *SessionRepo) Delete(ctx context.Context, token string) error {
	if err := s.client.Client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func sessionKey(token string) string {
	return "session:" + token
}
