package usecase

import (
	"context"
	"time"

	"github.com/procesos/product-directory/internal/domain"
)

type UserRepository interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// ProductRepository - хранилище продуктов. GetByID возвращает e.ErrNoDataFound, если записи нет.
type ProductRepository interface {
	Exists(ctx context.Context, id int64) (bool, error)
	FindExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Product, error)
	GetAll(ctx context.Context) ([]domain.Product, error)
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	CreateBatch(ctx context.Context, products []domain.Product) ([]domain.Product, error)
	Update(ctx context.Context, product *domain.Product) (*domain.Product, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	// GetAndMarkAsProcessing забирает pending-события и события, застрявшие в processing дольше lease.
	GetAndMarkAsProcessing(ctx context.Context, limit int, lease time.Duration) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	MarkAsPending(ctx context.Context, id int64) error
}

// CacheRepository - кэш продуктов. Промах возвращает (nil, nil).
// SetProduct не перезаписывает запись с версией (domain.Product.Version) новее или равной.
type CacheRepository interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	SetProduct(ctx context.Context, product *domain.Product) error
	DeleteProducts(ctx context.Context, ids []int64) error
}
