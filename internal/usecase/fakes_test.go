package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/procesos/product-directory/internal/domain"
	"github.com/procesos/product-directory/pkg/e"
)

// memStore - хранилище в памяти, общее для репозиториев и менеджера транзакций.
// Do делает снимок состояния и восстанавливает его при ошибке.
type memStore struct {
	mu       sync.Mutex
	users    map[int64]domain.User
	products map[int64]domain.Product
	outbox   []*OutboxEvent
	nextID   int64
	failOn   string
	clock    time.Time
	// afterGet вызывается после чтения в GetByID, вне блокировки
	afterGet func(id int64)
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[int64]domain.User{},
		products: map[int64]domain.Product{},
		nextID:   1000,
		clock:    time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	products := maps.Clone(s.products)
	outbox := slices.Clone(s.outbox)
	nextID := s.nextID
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.products = products
		s.outbox = outbox
		s.nextID = nextID
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) fail(method string) error {
	if s.failOn == method {
		return errors.New(method + " failed")
	}
	return nil
}

type memUserRepo struct{ s *memStore }

func (r memUserRepo) Exists(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.users[id]
	return ok, r.s.fail("users.Exists")
}

type memProductRepo struct{ s *memStore }

func (r memProductRepo) Exists(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.products[id]
	return ok, nil
}

func (r memProductRepo) FindExistingIDs(_ context.Context, ids []int64) ([]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var found []int64
	for _, id := range ids {
		if _, ok := r.s.products[id]; ok {
			found = append(found, id)
		}
	}
	slices.Reverse(found)
	return found, nil
}

func (r memProductRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	p, err := r.get(id)
	if err != nil {
		return nil, err
	}
	if hook := r.s.afterGet; hook != nil {
		hook(id)
	}
	return p, nil
}

func (r memProductRepo) GetByIDForUpdate(_ context.Context, id int64) (*domain.Product, error) {
	return r.get(id)
}

func (r memProductRepo) get(id int64) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, e.ErrNoDataFound
	}
	return &p, nil
}

func (r memProductRepo) GetAll(_ context.Context) ([]domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res := make([]domain.Product, 0, len(r.s.products))
	for _, id := range slices.Sorted(maps.Keys(r.s.products)) {
		res = append(res, r.s.products[id])
	}
	return res, nil
}

func (r memProductRepo) Create(_ context.Context, product *domain.Product) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("products.Create"); err != nil {
		return nil, err
	}
	p := *product
	if p.ID == 0 {
		r.s.nextID++
		p.ID = r.s.nextID
	}
	if _, ok := r.s.products[p.ID]; ok {
		return nil, e.ErrProductAlreadyExists
	}
	r.s.products[p.ID] = p
	return &p, nil
}

func (r memProductRepo) CreateBatch(ctx context.Context, products []domain.Product) ([]domain.Product, error) {
	res := make([]domain.Product, 0, len(products))
	for i := range products {
		p, err := r.Create(ctx, &products[i])
		if err != nil {
			return nil, err
		}
		res = append(res, *p)
	}
	return res, nil
}

func (r memProductRepo) Update(_ context.Context, product *domain.Product) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[product.ID]; !ok {
		return nil, e.ErrNoDataFound
	}
	r.s.clock = r.s.clock.Add(time.Second)
	updatedAt := r.s.clock
	p := *product
	p.UpdatedAt = &updatedAt
	r.s.products[product.ID] = p
	return &p, nil
}

type memOutboxRepo struct{ s *memStore }

func (r memOutboxRepo) Create(_ context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("outbox.Create"); err != nil {
		return nil, err
	}
	ev := *event
	ev.ID = int64(len(r.s.outbox) + 1)
	r.s.outbox = append(r.s.outbox, &ev)
	return &ev, nil
}

func (r memOutboxRepo) GetAndMarkAsProcessing(context.Context, int, time.Duration) ([]*OutboxEvent, error) {
	return nil, nil
}

func (r memOutboxRepo) MarkAsProcessed(context.Context, int64) error { return nil }

func (r memOutboxRepo) MarkAsPending(context.Context, int64) error { return nil }

// memCache повторяет правило версий CacheRepo: запись не заменяется более старой.
type memCache struct {
	mu      sync.Mutex
	items   map[int64]domain.Product
	getErr  error
	setErr  error
	sets    int
	deleted []int64
}

func newMemCache() *memCache {
	return &memCache{items: map[int64]domain.Product{}}
}

func (c *memCache) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	p, ok := c.items[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (c *memCache) SetProduct(_ context.Context, product *domain.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.sets++
	if current, ok := c.items[product.ID]; ok && current.Version() >= product.Version() {
		return nil
	}
	c.items[product.ID] = *product
	return nil
}

func (c *memCache) DeleteProducts(_ context.Context, ids []int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.items, id)
	}
	c.deleted = append(c.deleted, ids...)
	return nil
}

type stubCatalog struct {
	all   *CatalogRes
	byID  map[int64]*CatalogProduct
	err   error
	calls int
}

func (c *stubCatalog) FetchAll(context.Context) (*CatalogRes, error) {
	c.calls++
	return c.all, c.err
}

func (c *stubCatalog) FetchByID(_ context.Context, id int64) (*CatalogProduct, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.byID[id], nil
}

type memSnapshots struct {
	saved []*SaveSnapshotReq
	err   error
}

func (m *memSnapshots) SaveSnapshot(_ context.Context, req *SaveSnapshotReq) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.saved = append(m.saved, req)
	return "imports/test.json", nil
}

type jsonEncoder struct{}

func (jsonEncoder) Encode(event *ProductEvent) ([]byte, error) {
	return json.Marshal(event)
}
