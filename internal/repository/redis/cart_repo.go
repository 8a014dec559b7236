package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/DRSN-tech/insumos-backend/internal/cfg"
	"github.com/DRSN-tech/insumos-backend/internal/domain"
	"github.com/DRSN-tech/insumos-backend/internal/repository/redis/converter"
	"github.com/DRSN-tech/insumos-backend/pkg/clients"
	"github.com/DRSN-tech/insumos-backend/pkg/e"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

const maxCartUpdateAttempts = 5

// CartRepo хранит корзину сессии одним JSON-значением с TTL.
// Update использует WATCH/MULTI, поэтому параллельные запросы одной сессии не теряют изменения.
type CartRepo struct {
	client *clients.RedisClient
	conv   converter.Converter
	cfg    *cfg.RedisCfg
}

func NewCartRepo(client *clients.RedisClient, conv converter.Converter, cfg *cfg.RedisCfg) *CartRepo {
	return &CartRepo{
		client: client,
		conv:   conv,
		cfg:    cfg,
	}
}

// Get возвращает корзину сессии; если корзины нет, возвращает пустую.
func (c *CartRepo) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, err := c.load(ctx, c.client.Client, cartKey(sessionID))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return cart, nil
}

// Update читает корзину, применяет fn и записывает результат, продлевая TTL.
// Ошибка fn отменяет запись и возвращается как есть.
func (c *CartRepo) Update(ctx context.Context, sessionID string, fn func(cart *domain.Cart) error) (*domain.Cart, error) {
	key := cartKey(sessionID)

	var result *domain.Cart
	txf := func(tx *r.Tx) error {
		cart, err := c.load(ctx, tx, key)
		if err != nil {
			return err
		}

		if err := fn(cart); err != nil {
			return err
		}

		data, err := json.Marshal(c.conv.ToRedisModel(cart))
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe r.Pipeliner) error {
			pipe.Set(ctx, key, data, c.cfg.CartTTL)
			return nil
		})
		if err != nil {
			return err
		}

		result = cart
		return nil
	}

	for attempt := 0; attempt < maxCartUpdateAttempts; attempt++ {
		err := c.client.Client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, r.TxFailedErr) {
			continue
		}

		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return nil, e.Wrap(whereami.WhereAmI(), e.ErrCartModified)
}

func (c *CartRepo) load(ctx context.Context, cmd getter, key string) (*domain.Cart, error) {
	data, err := cmd.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return domain.NewCart(), nil
		}
		return nil, err
	}

	var model converter.CartRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, err
	}

	return c.conv.ToEntity(&model)
}

type getter interface {
	Get(ctx context.Context, key string) *r.StringCmd
}

func cartKey(sessionID string) string {
	return "cart:" + sessionID
}
