package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/procesos/product-directory/internal/domain"
	"github.com/procesos/product-directory/pkg/e"
	"github.com/procesos/product-directory/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store     *memStore
	cache     *memCache
	catalog   *stubCatalog
	snapshots *memSnapshots
	uc        *ProductUseCase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newMemStore()
	store.users[1] = domain.User{ID: 1, Email: "owner@example.com"}
	store.users[2] = domain.User{ID: 2, Email: "other@example.com"}

	env := &testEnv{
		store:     store,
		cache:     newMemCache(),
		catalog:   &stubCatalog{byID: map[int64]*CatalogProduct{}},
		snapshots: &memSnapshots{},
	}
	env.uc = NewProductUC(
		memProductRepo{s: store},
		memUserRepo{s: store},
		memOutboxRepo{s: store},
		env.cache,
		store,
		env.catalog,
		env.snapshots,
		jsonEncoder{},
		logger.NewNopLogger(),
	)
	env.uc.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

	return env
}

func (env *testEnv) seed(p domain.Product) {
	env.store.products[p.ID] = p
}

func catalogItem(id int64, title string) CatalogProduct {
	return CatalogProduct{
		ID:          id,
		Title:       title,
		Price:       1099,
		Description: title + " description",
		Category:    "electronics",
		Image:       "https://img.example.com/" + title + ".png",
	}
}

var owner = domain.NewPrincipal(1, []string{"ROLE_USER"})

func TestCreateProduct(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.uc.CreateProduct(context.Background(), NewCreateProductReq(1, "Shirt", 1000, "cotton", "clothing", "shirt.png"))
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.Equal(t, int64(1), created.UserID)
	assert.Equal(t, "Shirt", created.Title)
	assert.Equal(t, int64(1000), created.Price)

	require.Len(t, env.store.products, 1)
	assert.Equal(t, int64(1), env.store.products[created.ID].UserID)

	require.Len(t, env.store.outbox, 1)
	assert.Equal(t, ProductCreated, env.store.outbox[0].EventType)
	assert.Equal(t, created.ID, env.store.outbox[0].ProductID)
}

func TestCreateProduct_UserNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.uc.CreateProduct(context.Background(), NewCreateProductReq(99, "Shirt", 1000, "", "", ""))

	assert.ErrorIs(t, err, e.ErrUserNotFound)
	assert.Empty(t, env.store.products)
	assert.Empty(t, env.store.outbox)
}

func TestCreateProduct_OutboxFailureRollsBack(t *testing.T) {
	env := newTestEnv(t)
	env.store.failOn = "outbox.Create"

	_, err := env.uc.CreateProduct(context.Background(), NewCreateProductReq(1, "Shirt", 1000, "", "", ""))

	assert.Error(t, err)
	assert.Empty(t, env.store.products)
}

func TestCreateProductByID(t *testing.T) {
	env := newTestEnv(t)
	item := catalogItem(5, "laptop")
	env.catalog.byID[5] = &item

	created, err := env.uc.CreateProductByID(context.Background(), owner, 5)
	require.NoError(t, err)

	assert.Equal(t, int64(5), created.ID)
	assert.Equal(t, int64(1), created.UserID)
	assert.Equal(t, "laptop", created.Title)
	assert.Contains(t, env.store.products, int64(5))
	require.Len(t, env.store.outbox, 1)
	assert.Equal(t, ProductImported, env.store.outbox[0].EventType)
}

func TestCreateProductByID_NoData(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.uc.CreateProductByID(context.Background(), owner, 5)

	assert.ErrorIs(t, err, e.ErrNoDataFound)
	assert.Empty(t, env.store.products)
}

func TestCreateProductByID_AlreadyExists(t *testing.T) {
	env := newTestEnv(t)
	item := catalogItem(5, "laptop")
	env.catalog.byID[5] = &item
	env.seed(domain.Product{ID: 5, Title: "original", UserID: 2})

	_, err := env.uc.CreateProductByID(context.Background(), owner, 5)

	assert.ErrorIs(t, err, e.ErrProductAlreadyExists)
	require.Len(t, env.store.products, 1)
	assert.Equal(t, "original", env.store.products[5].Title)
	assert.Equal(t, int64(2), env.store.products[5].UserID)
	assert.Empty(t, env.store.outbox)
}

func TestCreateProductByID_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.uc.CreateProductByID(context.Background(), domain.Principal{}, 5)

	assert.ErrorIs(t, err, e.ErrUnauthenticated)
	assert.Zero(t, env.catalog.calls)
}

func TestCreateProductByID_PrincipalUserMissing(t *testing.T) {
	env := newTestEnv(t)
	item := catalogItem(5, "laptop")
	env.catalog.byID[5] = &item

	_, err := env.uc.CreateProductByID(context.Background(), domain.NewPrincipal(77, nil), 5)

	assert.ErrorIs(t, err, e.ErrUserNotFound)
	assert.Empty(t, env.store.products)
}

func TestCreateProductByID_CatalogFailurePropagates(t *testing.T) {
	env := newTestEnv(t)
	env.catalog.err = e.ErrCatalogUnavailable

	_, err := env.uc.CreateProductByID(context.Background(), owner, 5)

	assert.ErrorIs(t, err, e.ErrCatalogUnavailable)
	assert.Equal(t, 1, env.catalog.calls)
}

func TestImportAllProducts(t *testing.T) {
	env := newTestEnv(t)
	env.catalog.all = NewCatalogRes(
		[]CatalogProduct{catalogItem(1, "a"), catalogItem(2, "b"), catalogItem(3, "c")},
		[]byte(`[{"id":1},{"id":2},{"id":3}]`),
	)

	saved, err := env.uc.ImportAllProducts(context.Background(), owner)
	require.NoError(t, err)

	require.Len(t, saved, 3)
	for _, p := range saved {
		assert.Equal(t, int64(1), p.UserID)
	}
	assert.Len(t, env.store.products, 3)
	assert.Len(t, env.store.outbox, 3)

	require.Len(t, env.snapshots.saved, 1)
	assert.Equal(t, int64(1), env.snapshots.saved[0].UserID)
	assert.JSONEq(t, `[{"id":1},{"id":2},{"id":3}]`, string(env.snapshots.saved[0].Data))
}

func TestImportAllProducts_NoData(t *testing.T) {
	testCases := []struct {
		name string
		res  *CatalogRes
	}{
		{name: "nil response", res: nil},
		{name: "empty array", res: NewCatalogRes(nil, []byte(`[]`))},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.catalog.all = tc.res

			_, err := env.uc.ImportAllProducts(context.Background(), owner)

			assert.ErrorIs(t, err, e.ErrNoDataFound)
			assert.Empty(t, env.store.products)
			assert.Empty(t, env.snapshots.saved)
		})
	}
}

func TestImportAllProducts_CollisionAbortsWholeImport(t *testing.T) {
	env := newTestEnv(t)
	existing := domain.Product{ID: 7, Title: "mine", UserID: 2}
	env.seed(existing)
	env.catalog.all = NewCatalogRes(
		[]CatalogProduct{catalogItem(6, "x"), catalogItem(7, "y"), catalogItem(8, "z")},
		[]byte(`[]`),
	)

	_, err := env.uc.ImportAllProducts(context.Background(), owner)

	assert.ErrorIs(t, err, e.ErrProductAlreadyExists)
	assert.Contains(t, err.Error(), "product_id=7")
	require.Len(t, env.store.products, 1)
	assert.Equal(t, existing, env.store.products[7])
	assert.Empty(t, env.store.outbox)
	assert.Empty(t, env.snapshots.saved)
}

func TestImportAllProducts_ReportsFirstCollisionInCatalogOrder(t *testing.T) {
	env := newTestEnv(t)
	env.seed(domain.Product{ID: 3, UserID: 2})
	env.seed(domain.Product{ID: 9, UserID: 2})
	env.catalog.all = NewCatalogRes([]CatalogProduct{catalogItem(3, "a"), catalogItem(9, "b")}, nil)

	_, err := env.uc.ImportAllProducts(context.Background(), owner)

	require.ErrorIs(t, err, e.ErrProductAlreadyExists)
	assert.Contains(t, err.Error(), "product_id=3")
}

func TestImportAllProducts_DuplicateWithinBatch(t *testing.T) {
	env := newTestEnv(t)
	env.catalog.all = NewCatalogRes([]CatalogProduct{catalogItem(4, "a"), catalogItem(4, "b")}, nil)

	_, err := env.uc.ImportAllProducts(context.Background(), owner)

	assert.ErrorIs(t, err, e.ErrProductAlreadyExists)
	assert.Empty(t, env.store.products)
}

func TestImportAllProducts_SnapshotFailureDoesNotFailImport(t *testing.T) {
	env := newTestEnv(t)
	env.snapshots.err = errors.New("minio down")
	env.catalog.all = NewCatalogRes([]CatalogProduct{catalogItem(1, "a")}, []byte(`[{"id":1}]`))

	saved, err := env.uc.ImportAllProducts(context.Background(), owner)

	require.NoError(t, err)
	assert.Len(t, saved, 1)
}

func TestImportAllProducts_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.uc.ImportAllProducts(context.Background(), domain.Principal{})

	assert.ErrorIs(t, err, e.ErrUnauthenticated)
	assert.Zero(t, env.catalog.calls)
}

func TestGetProductByID(t *testing.T) {
	env := newTestEnv(t)
	env.seed(domain.Product{ID: 3, Title: "lamp", UserID: 1})

	got, err := env.uc.GetProductByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "lamp", got.Title)
	assert.Equal(t, 1, env.cache.sets)

	// второй запрос обслуживается кэшем
	delete(env.store.products, 3)
	got, err = env.uc.GetProductByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "lamp", got.Title)
}

func TestGetProductByID_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.uc.GetProductByID(context.Background(), 404)

	assert.ErrorIs(t, err, e.ErrNoDataFound)
}

func TestGetProductByID_CacheErrorFallsBackToStore(t *testing.T) {
	env := newTestEnv(t)
	env.cache.getErr = errors.New("redis down")
	env.seed(domain.Product{ID: 3, Title: "lamp", UserID: 1})

	got, err := env.uc.GetProductByID(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, "lamp", got.Title)
}

func TestGetAllProducts(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.uc.GetAllProducts(context.Background())
	assert.ErrorIs(t, err, e.ErrNoDataFound)

	env.seed(domain.Product{ID: 1, UserID: 1})
	env.seed(domain.Product{ID: 2, UserID: 2})

	all, err := env.uc.GetAllProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.ElementsMatch(t, []int64{1, 2}, []int64{all[0].ID, all[1].ID})
}

func TestUpdateProduct(t *testing.T) {
	env := newTestEnv(t)
	env.seed(domain.Product{ID: 10, Title: "old", Price: 100, Description: "d", Category: "c", Image: "i", UserID: 1})
	env.cache.items[10] = env.store.products[10]

	updated, err := env.uc.UpdateProduct(context.Background(), owner, 10,
		NewUpdateProductReq("new", 250, "new d", "new c", "new i"))
	require.NoError(t, err)

	require.NotNil(t, updated.UpdatedAt)
	want := domain.Product{ID: 10, Title: "new", Price: 250, Description: "new d", Category: "new c", Image: "new i", UserID: 1, UpdatedAt: updated.UpdatedAt}
	assert.Equal(t, want, *updated)
	assert.Equal(t, want, env.store.products[10])
	assert.Equal(t, want, env.cache.items[10])
	assert.Empty(t, env.cache.deleted)
	require.Len(t, env.store.outbox, 1)
	assert.Equal(t, ProductUpdated, env.store.outbox[0].EventType)
}

func TestUpdateProduct_CacheSetFailureInvalidates(t *testing.T) {
	env := newTestEnv(t)
	env.seed(domain.Product{ID: 10, Title: "old", Price: 100, UserID: 1})
	env.cache.items[10] = env.store.products[10]
	env.cache.setErr = errors.New("redis down")

	_, err := env.uc.UpdateProduct(context.Background(), owner, 10, NewUpdateProductReq("new", 250, "", "", ""))
	require.NoError(t, err)

	assert.Equal(t, []int64{10}, env.cache.deleted)
	assert.NotContains(t, env.cache.items, int64(10))
}

// Чтение достало строку до обновления, а в кэш кладет ее уже после коммита.
// Старая версия не должна вытеснить новую.
func TestGetProductByID_ConcurrentUpdateKeepsNewVersionCached(t *testing.T) {
	env := newTestEnv(t)
	env.seed(domain.Product{ID: 10, Title: "old", Price: 100, UserID: 1})

	updatedOnce := false
	env.store.afterGet = func(id int64) {
		if updatedOnce {
			return
		}
		updatedOnce = true
		_, err := env.uc.UpdateProduct(context.Background(), owner, id, NewUpdateProductReq("new", 250, "", "", ""))
		require.NoError(t, err)
	}

	stale, err := env.uc.GetProductByID(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, "old", stale.Title)
	require.True(t, updatedOnce)

	got, err := env.uc.GetProductByID(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, "new", env.cache.items[10].Title)
}

func TestUpdateProduct_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.uc.UpdateProduct(context.Background(), owner, 10, NewUpdateProductReq("x", 1, "", "", ""))

	assert.ErrorIs(t, err, e.ErrNoDataFound)
}

func TestUpdateProduct_NotOwner(t *testing.T) {
	env := newTestEnv(t)
	original := domain.Product{ID: 10, Title: "old", Price: 100, UserID: 2}
	env.seed(original)

	_, err := env.uc.UpdateProduct(context.Background(), owner, 10, NewUpdateProductReq("hijack", 1, "", "", ""))

	assert.ErrorIs(t, err, e.ErrProductNotBelongUser)
	assert.Equal(t, original, env.store.products[10])
	assert.Empty(t, env.store.outbox)
	assert.Empty(t, env.cache.deleted)
}

func TestUpdateProduct_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)
	env.seed(domain.Product{ID: 10, UserID: 1})

	_, err := env.uc.UpdateProduct(context.Background(), domain.Principal{}, 10, NewUpdateProductReq("x", 1, "", "", ""))

	assert.ErrorIs(t, err, e.ErrUnauthenticated)
}

func TestOwnedBy(t *testing.T) {
	product := &domain.Product{ID: 1, UserID: 5}

	assert.True(t, OwnedBy(product, domain.NewPrincipal(5, nil)))
	assert.False(t, OwnedBy(product, domain.NewPrincipal(6, nil)))
	assert.False(t, OwnedBy(&domain.Product{ID: 2}, domain.Principal{}))
}
