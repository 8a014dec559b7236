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
	"github.com/DRSN-tech/insumos-backend/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

const (
	catalogKey    = "catalog:all"
	catalogGenKey = "catalog:gen"
)

var errStaleGeneration = errors.New("catalog generation changed")

// CacheRepo кэширует полный каталог одним ключом; любое изменение товара его сбрасывает
// и увеличивает поколение в catalogGenKey.
type CacheRepo struct {
	client *clients.RedisClient
	conv   converter.Converter
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, conv converter.Converter,
	cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		conv:   conv,
		cfg:    cfg,
		logger: logger,
	}
}

// GetCatalog возвращает (каталог, true) при попадании. Битое значение удаляется и считается промахом.
func (c *CacheRepo) GetCatalog(ctx context.Context) ([]domain.Product, bool, error) {
	data, err := c.client.Client.Get(ctx, catalogKey).Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return nil, false, nil
		}
		return nil, false, e.Wrap(whereami.WhereAmI(), err)
	}

	var models []converter.ProductRedisModel
	if err := json.Unmarshal(data, &models); err != nil {
		c.dropCorrupted(ctx, err)
		return nil, false, nil
	}

	products, err := c.conv.ToArrProduct(models)
	if err != nil {
		c.dropCorrupted(ctx, err)
		return nil, false, nil
	}

	return products, true, nil
}

// Generation возвращает текущее поколение каталога; до первой инвалидации оно равно нулю.
func (c *CacheRepo) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Client.Get(ctx, catalogGenKey).Int64()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return 0, nil
		}
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return gen, nil
}

// SetCatalog записывает каталог, прочитанный при поколении generation.
// Если поколение с тех пор изменилось, запись молча пропускается.
func (c *CacheRepo) SetCatalog(ctx context.Context, generation int64, products []domain.Product) error {
	data, err := json.Marshal(c.conv.ToArrProductModel(products))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	txf := func(tx *r.Tx) error {
		current, err := tx.Get(ctx, catalogGenKey).Int64()
		if err != nil && !errors.Is(err, r.Nil) {
			return err
		}
		if current != generation {
			return errStaleGeneration
		}

		_, err = tx.TxPipelined(ctx, func(pipe r.Pipeliner) error {
			pipe.Set(ctx, catalogKey, data, c.cfg.CatalogTTL)
			return nil
		})
		return err
	}

	err = c.client.Client.Watch(ctx, txf, catalogGenKey)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errStaleGeneration), errors.Is(err, r.TxFailedErr):
		c.logger.Debugf("Catalog changed while loading, cache fill skipped. generation: %d", generation)
		return nil
	default:
		return e.Wrap(whereami.WhereAmI(), err)
	}
}

// Invalidate удаляет каталог и увеличивает поколение одной транзакцией.
func (c *CacheRepo) Invalidate(ctx context.Context) error {
	_, err := c.client.Client.TxPipelined(ctx, func(pipe r.Pipeliner) error {
		pipe.Incr(ctx, catalogGenKey)
		pipe.Del(ctx, catalogKey)
		return nil
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *CacheRepo) dropCorrupted(ctx context.Context, cause error) {
	c.logger.Warnf("Corrupted catalog cache entry, dropping: %v", e.Wrap(whereami.WhereAmI(), cause))
	if err := c.client.Client.Del(ctx, catalogKey).Err(); err != nil {
		c.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}
}
