package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/procesos/product-directory/internal/domain"
	"github.com/procesos/product-directory/pkg/e"
	"github.com/procesos/product-directory/pkg/logger"
)

// ProductUseCase реализует бизнес-логику каталога продуктов с проверками владельца.
type ProductUseCase struct {
	productRepo ProductRepository
	userRepo    UserRepository
	outboxRepo  OutboxRepository
	cacheRepo   CacheRepository
	txManager   TxManager
	catalog     CatalogSource
	snapshots   SnapshotStore
	encoder     EventEncoder
	logger      logger.Logger
	now         func() time.Time
}

func NewProductUC(
	productRepo ProductRepository,
	userRepo UserRepository,
	outboxRepo OutboxRepository,
	cacheRepo CacheRepository,
	txManager TxManager,
	catalog CatalogSource,
	snapshots SnapshotStore,
	encoder EventEncoder,
	logger logger.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo: productRepo,
		userRepo:    userRepo,
		outboxRepo:  outboxRepo,
		cacheRepo:   cacheRepo,
		txManager:   txManager,
		catalog:     catalog,
		snapshots:   snapshots,
		encoder:     encoder,
		logger:      logger,
		now:         time.Now,
	}
}

// OwnedBy сообщает, принадлежит ли продукт вызывающему.
func OwnedBy(product *domain.Product, principal domain.Principal) bool {
	return principal.IsAuthenticated() && product.UserID == principal.UserID
}

// CreateProduct сохраняет продукт от имени пользователя из запроса.
// Проверка дубликата ID здесь намеренно не выполняется.
func (p *ProductUseCase) CreateProduct(ctx context.Context, req *CreateProductReq) (*domain.Product, error) {
	const op = "ProductUseCase.CreateProduct"

	var created *domain.Product
	err := p.txManager.Do(ctx, func(ctx context.Context) error {
		if err := p.ensureUserExists(ctx, req.UserID); err != nil {
			return err
		}

		product := domain.NewProduct(0, req.Title, req.Price, req.Description, req.Category, req.Image)
		product.AssignOwner(req.UserID)

		var err error
		created, err = p.productRepo.Create(ctx, product)
		if err != nil {
			return err
		}

		return p.recordEvent(ctx, ProductCreated, created)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	p.logger.Infof("product created: product_id=%d, user_id=%d", created.ID, created.UserID)
	return created, nil
}

// CreateProductByID забирает продукт из внешнего каталога и сохраняет его за вызывающим.
func (p *ProductUseCase) CreateProductByID(ctx context.Context, principal domain.Principal, id int64) (*domain.Product, error) {
	const op = "ProductUseCase.CreateProductByID"

	if !principal.IsAuthenticated() {
		return nil, e.Wrap(op, e.ErrUnauthenticated)
	}

	item, err := p.catalog.FetchByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if item == nil {
		return nil, e.Wrap(op, e.ErrNoDataFound)
	}

	var created *domain.Product
	err = p.txManager.Do(ctx, func(ctx context.Context) error {
		exists, err := p.productRepo.Exists(ctx, item.ID)
		if err != nil {
			return err
		}
		if exists {
			return e.Wrap(fmt.Sprintf("product_id=%d", item.ID), e.ErrProductAlreadyExists)
		}

		if err := p.ensureUserExists(ctx, principal.UserID); err != nil {
			return err
		}

		product := item.ToDomain()
		product.AssignOwner(principal.UserID)

		created, err = p.productRepo.Create(ctx, product)
		if err != nil {
			return err
		}

		return p.recordEvent(ctx, ProductImported, created)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	p.logger.Infof("product imported: product_id=%d, user_id=%d", created.ID, created.UserID)
	return created, nil
}

// ImportAllProducts импортирует весь внешний каталог за вызывающим.
// Любой уже существующий ID прерывает импорт до сохранения чего-либо.
func (p *ProductUseCase) ImportAllProducts(ctx context.Context, principal domain.Principal) ([]domain.Product, error) {
	const op = "ProductUseCase.ImportAllProducts"

	if !principal.IsAuthenticated() {
		return nil, e.Wrap(op, e.ErrUnauthenticated)
	}

	res, err := p.catalog.FetchAll(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if res == nil || len(res.Products) == 0 {
		return nil, e.Wrap(op, e.ErrNoDataFound)
	}

	var saved []domain.Product
	err = p.txManager.Do(ctx, func(ctx context.Context) error {
		if err := p.ensureUserExists(ctx, principal.UserID); err != nil {
			return err
		}

		if err := p.ensureNoCollisions(ctx, res.Products); err != nil {
			return err
		}

		products := make([]domain.Product, 0, len(res.Products))
		for _, item := range res.Products {
			product := item.ToDomain()
			product.AssignOwner(principal.UserID)
			products = append(products, *product)
		}

		var err error
		saved, err = p.productRepo.CreateBatch(ctx, products)
		if err != nil {
			return err
		}

		for i := range saved {
			if err := p.recordEvent(ctx, ProductImported, &saved[i]); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	p.logger.Infof("catalog imported: count=%d, user_id=%d", len(saved), principal.UserID)
	p.saveSnapshot(ctx, principal.UserID, res.Raw)

	return saved, nil
}

// GetProductByID возвращает продукт по ID, сначала заглядывая в кэш.
func (p *ProductUseCase) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	const op = "ProductUseCase.GetProductByID"

	cached, err := p.cacheRepo.GetProduct(ctx, id)
	if err != nil {
		p.logger.Warnf("cache lookup failed: %v", e.Wrap(op, err))
	}
	if cached != nil {
		return cached, nil
	}

	product, err := p.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := p.cacheRepo.SetProduct(ctx, product); err != nil {
		p.logger.Warnf("failed to cache product: %v", e.Wrap(op, err))
	}

	return product, nil
}

// GetAllProducts возвращает все продукты. Пустое хранилище - ошибка ErrNoDataFound.
func (p *ProductUseCase) GetAllProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "ProductUseCase.GetAllProducts"

	products, err := p.productRepo.GetAll(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if len(products) == 0 {
		return nil, e.Wrap(op, e.ErrNoDataFound)
	}

	return products, nil
}

// UpdateProduct перезаписывает title, price, description, category и image.
// Изменять продукт может только его владелец.
func (p *ProductUseCase) UpdateProduct(ctx context.Context, principal domain.Principal, id int64, req *UpdateProductReq) (*domain.Product, error) {
	const op = "ProductUseCase.UpdateProduct"

	if !principal.IsAuthenticated() {
		return nil, e.Wrap(op, e.ErrUnauthenticated)
	}

	var updated *domain.Product
	err := p.txManager.Do(ctx, func(ctx context.Context) error {
		product, err := p.productRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if !OwnedBy(product, principal) {
			return e.Wrap(fmt.Sprintf("product_id=%d, user_id=%d", id, principal.UserID), e.ErrProductNotBelongUser)
		}

		product.OverwriteDetails(req.Title, req.Price, req.Description, req.Category, req.Image)

		updated, err = p.productRepo.Update(ctx, product)
		if err != nil {
			return err
		}

		return p.recordEvent(ctx, ProductUpdated, updated)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// Новая версия вытесняет из кэша старую, даже если параллельное чтение
	// успело достать из базы запись до обновления
	if err := p.cacheRepo.SetProduct(ctx, updated); err != nil {
		p.logger.Warnf("failed to cache updated product: %v", e.Wrap(op, err))
		if err := p.cacheRepo.DeleteProducts(ctx, []int64{id}); err != nil {
			p.logger.Warnf("Failed to delete products: %v", e.Wrap(op, err))
		}
	}

	return updated, nil
}

func (p *ProductUseCase) ensureUserExists(ctx context.Context, userID int64) error {
	exists, err := p.userRepo.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return e.Wrap(fmt.Sprintf("user_id=%d", userID), e.ErrUserNotFound)
	}
	return nil
}

// ensureNoCollisions проверяет все ID пачки до сохранения: и против хранилища, и внутри пачки.
func (p *ProductUseCase) ensureNoCollisions(ctx context.Context, items []CatalogProduct) error {
	ids := make([]int64, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			return e.Wrap(fmt.Sprintf("product_id=%d", item.ID), e.ErrProductAlreadyExists)
		}
		seen[item.ID] = struct{}{}
		ids = append(ids, item.ID)
	}

	existing, err := p.productRepo.FindExistingIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		return nil
	}

	collided := make(map[int64]struct{}, len(existing))
	for _, id := range existing {
		collided[id] = struct{}{}
	}
	// первый по порядку каталога
	for _, id := range ids {
		if _, ok := collided[id]; ok {
			return e.Wrap(fmt.Sprintf("product_id=%d", id), e.ErrProductAlreadyExists)
		}
	}

	return nil
}

// recordEvent пишет событие в outbox в текущей транзакции.
func (p *ProductUseCase) recordEvent(ctx context.Context, eventType OutboxEventType, product *domain.Product) error {
	event := &ProductEvent{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: p.now().UTC(),
		Product:    *product,
	}

	payload, err := p.encoder.Encode(event)
	if err != nil {
		return err
	}

	_, err = p.outboxRepo.Create(ctx, &OutboxEvent{
		EventID:   event.EventID,
		EventType: eventType,
		ProductID: product.ID,
		Payload:   payload,
		Status:    Pending,
		CreatedAt: event.OccurredAt,
	})
	return err
}

// saveSnapshot сохраняет исходный ответ каталога. Ошибка только логируется: импорт уже закоммичен.
func (p *ProductUseCase) saveSnapshot(ctx context.Context, userID int64, raw []byte) {
	const op = "ProductUseCase.saveSnapshot"

	if len(raw) == 0 {
		return
	}

	key, err := p.snapshots.SaveSnapshot(ctx, NewSaveSnapshotReq(userID, p.now().UTC(), raw))
	if err != nil {
		p.logger.Warnf("failed to save catalog snapshot: %v", e.Wrap(op, err))
		return
	}

	p.logger.Debugf("catalog snapshot saved: key=%s", key)
}
