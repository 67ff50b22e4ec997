package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jimlawless/whereami"
	"github.com/procesos/product-directory/internal/cfg"
	"github.com/procesos/product-directory/internal/domain"
	"github.com/procesos/product-directory/pkg/clients"
	"github.com/procesos/product-directory/pkg/e"
	"github.com/procesos/product-directory/pkg/logger"
	goredis "github.com/redis/go-redis/v9"
)

const (
	fieldVersion = "v"
	fieldData    = "data"
)

// setIfNewerScript записывает продукт, только если в кэше нет версии новее или равной.
// KEYS[1] - ключ, ARGV[1] - версия, ARGV[2] - данные, ARGV[3] - TTL в миллисекундах.
var setIfNewerScript = goredis.NewScript(`
local current = redis.call('HGET', KEYS[1], '` + fieldVersion + `')
if current and tonumber(current) >= tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], '` + fieldVersion + `', ARGV[1], '` + fieldData + `', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

// CacheRepo - кэш продуктов поверх Redis (cache-aside).
// Запись хранится хешем {v, data}: версия не дает перезаписать свежие данные устаревшими.
type CacheRepo struct {
	client *clients.RedisClient
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// GetProduct возвращает закэшированный продукт или (nil, nil) при промахе.
func (r *CacheRepo) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	key := productKey(id)

	data, err := r.client.Client.HGet(ctx, key, fieldData).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil // cache miss
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model, err := unmarshalProduct(data)
	if err != nil {
		r.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
		r.evict(ctx, key)
		return nil, nil
	}

	if model.ID != id {
		r.logger.Warnf("Cache ID mismatch: key_id: %d, model_id: %d", id, model.ID)
		r.evict(ctx, key)
		return nil, nil // cache miss
	}

	return model.toDomain(), nil
}

// SetProduct кэширует продукт с TTL из конфигурации, если в кэше нет более новой версии.
func (r *CacheRepo) SetProduct(ctx context.Context, product *domain.Product) error {
	data, err := marshalProduct(product)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	stored, err := setIfNewerScript.Run(ctx, r.client.Client,
		[]string{productKey(product.ID)},
		strconv.FormatInt(product.Version(), 10),
		data,
		r.cfg.ProductTTL.Milliseconds(),
	).Int()
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if stored == 0 {
		r.logger.Debugf("cache kept newer version: product_id=%d", product.ID)
	}

	return nil
}

// DeleteProducts удаляет продукты из кэша по ID
func (r *CacheRepo) DeleteProducts(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	if err := r.client.Client.Del(ctx, buildProductCacheKeys(ids)...).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (r *CacheRepo) evict(ctx context.Context, key string) {
	if err := r.client.Client.Del(ctx, key).Err(); err != nil {
		r.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}
}

// marshalProduct сериализует продукт в JSON для кэша
func marshalProduct(product *domain.Product) ([]byte, error) {
	return json.Marshal(toCacheModel(product))
}

// unmarshalProduct десериализует JSON из кэша в модель продукта
func unmarshalProduct(data []byte) (*productCacheModel, error) {
	var model productCacheModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, err
	}

	return &model, nil
}

// buildProductCacheKeys формирует Redis-ключи из ID продуктов
func buildProductCacheKeys(ids []int64) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKey(id)
	}

	return keys
}

// productKey возвращает Redis-ключ для одного продукта
func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}
