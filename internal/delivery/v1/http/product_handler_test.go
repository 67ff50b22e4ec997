package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/procesos/product-directory/internal/auth"
	"github.com/procesos/product-directory/internal/cfg"
	"github.com/procesos/product-directory/internal/domain"
	"github.com/procesos/product-directory/internal/usecase"
	"github.com/procesos/product-directory/pkg/e"
	"github.com/procesos/product-directory/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProductUC struct {
	products map[int64]domain.Product
	err      error

	lastPrincipal domain.Principal
	lastCreate    *usecase.CreateProductReq
	lastUpdate    *usecase.UpdateProductReq
}

func newFakeProductUC() *fakeProductUC {
	return &fakeProductUC{products: map[int64]domain.Product{
		1: {ID: 1, Title: "Backpack", Price: 10995, Category: "bags", UserID: 7},
	}}
}

func (f *fakeProductUC) CreateProduct(_ context.Context, req *usecase.CreateProductReq) (*domain.Product, error) {
	f.lastCreate = req
	if f.err != nil {
		return nil, f.err
	}
	p := domain.Product{ID: 1000000, Title: req.Title, Price: req.Price, UserID: req.UserID}
	return &p, nil
}

func (f *fakeProductUC) CreateProductByID(_ context.Context, principal domain.Principal, id int64) (*domain.Product, error) {
	f.lastPrincipal = principal
	if f.err != nil {
		return nil, f.err
	}
	p := domain.Product{ID: id, Title: "imported", Price: 100, UserID: principal.UserID}
	return &p, nil
}

func (f *fakeProductUC) ImportAllProducts(_ context.Context, principal domain.Principal) ([]domain.Product, error) {
	f.lastPrincipal = principal
	if f.err != nil {
		return nil, f.err
	}
	return []domain.Product{{ID: 1, UserID: principal.UserID}, {ID: 2, UserID: principal.UserID}}, nil
}

func (f *fakeProductUC) GetProductByID(_ context.Context, id int64) (*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return nil, e.Wrap("fake", e.ErrNoDataFound)
	}
	return &p, nil
}

func (f *fakeProductUC) GetAllProducts(context.Context) ([]domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProductUC) UpdateProduct(_ context.Context, principal domain.Principal, id int64, req *usecase.UpdateProductReq) (*domain.Product, error) {
	f.lastPrincipal = principal
	f.lastUpdate = req
	if f.err != nil {
		return nil, f.err
	}
	p := domain.Product{ID: id, Title: req.Title, Price: req.Price, UserID: principal.UserID}
	return &p, nil
}

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type testEnv struct {
	handler http.Handler
	uc      *fakeProductUC
	tokens  *auth.TokenAuthenticator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tokens := auth.NewTokenAuthenticator(&cfg.JWTCfg{Secret: testSecret, TokenTTL: time.Hour})
	uc := newFakeProductUC()

	router := NewRouter(chi.NewRouter(), logger.NewNopLogger())
	router.Init(uc, tokens, "localhost:8080")

	return &testEnv{handler: router.Handler(), uc: uc, tokens: tokens}
}

func (env *testEnv) do(t *testing.T, method, path, body string, userID int64) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	if userID != 0 {
		token, err := env.tokens.Issue(userID, []string{"ROLE_USER"})
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/products/1", "", 0)
	require.Equal(t, http.StatusOK, rec.Code)

	res := decodeBody[ProductResponse](t, rec)
	assert.Equal(t, int64(1), res.ID)
	assert.Equal(t, "109.95", res.Price)
	assert.Equal(t, int64(7), res.UserID)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestGetProduct_Errors(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/products/404", "", 0)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, e.ErrNoDataFound.Error(), decodeBody[ErrorResponse](t, rec).Message)

	rec = env.do(t, http.MethodGet, "/api/v1/products/abc", "", 0)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/products/-3", "", 0)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListProducts(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/products", "", 0)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]ProductResponse](t, rec), 1)

	env.uc.err = e.Wrap("fake", e.ErrNoDataFound)
	rec = env.do(t, http.MethodGet, "/api/v1/products", "", 0)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMutationsRequireToken(t *testing.T) {
	env := newTestEnv(t)

	testCases := []struct {
		method string
		path   string
		body   string
	}{
		{method: http.MethodPost, path: "/api/v1/products", body: `{"userId":1,"title":"x","price":1}`},
		{method: http.MethodPost, path: "/api/v1/products/import"},
		{method: http.MethodPost, path: "/api/v1/products/import/1"},
		{method: http.MethodPut, path: "/api/v1/products/1", body: `{"title":"x","price":1}`},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := env.do(t, tc.method, tc.path, tc.body, 0)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
		})
	}
}

func TestInvalidTokenIsUnauthenticated(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/import", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// чтение доступно и с невалидным токеном
	req = httptest.NewRequest(http.MethodGet, "/api/v1/products/1", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateProduct(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/products",
		`{"userId":3,"title":"Jacket","price":"55.99","description":"warm","category":"men","image":"http://img"}`, 3)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NotNil(t, env.uc.lastCreate)
	assert.Equal(t, int64(3), env.uc.lastCreate.UserID)
	assert.Equal(t, int64(5599), env.uc.lastCreate.Price)
	assert.Equal(t, "warm", env.uc.lastCreate.Description)

	res := decodeBody[ProductResponse](t, rec)
	assert.Equal(t, "55.99", res.Price)
}

func TestCreateProduct_Validation(t *testing.T) {
	env := newTestEnv(t)

	testCases := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"userId":`},
		{name: "unknown field", body: `{"userId":1,"title":"x","price":1,"owner":2}`},
		{name: "missing title", body: `{"userId":1,"price":1}`},
		{name: "missing price", body: `{"userId":1,"title":"x"}`},
		{name: "missing user", body: `{"title":"x","price":1}`},
		{name: "negative price", body: `{"userId":1,"title":"x","price":-1}`},
		{name: "three decimals", body: `{"userId":1,"title":"x","price":1.005}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/v1/products", tc.body, 1)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Nil(t, env.uc.lastCreate)
}

func TestCreateProduct_UserNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.uc.err = e.Wrap("fake", e.ErrUserNotFound)

	rec := env.do(t, http.MethodPost, "/api/v1/products", `{"userId":99,"title":"x","price":1}`, 1)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, e.ErrUserNotFound.Error(), decodeBody[ErrorResponse](t, rec).Message)
}

func TestImportProduct(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/products/import/5", "", 42)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(42), env.uc.lastPrincipal.UserID)
	assert.Equal(t, []string{"ROLE_USER"}, env.uc.lastPrincipal.Authorities)

	res := decodeBody[ProductResponse](t, rec)
	assert.Equal(t, int64(5), res.ID)
	assert.Equal(t, int64(42), res.UserID)
}

func TestImportAllProducts(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/products/import", "", 42)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, decodeBody[[]ProductResponse](t, rec), 2)

	env.uc.err = e.Wrap("fake", e.Wrap("product_id=1", e.ErrProductAlreadyExists))
	rec = env.do(t, http.MethodPost, "/api/v1/products/import", "", 42)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateProduct(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/v1/products/1", `{"title":"New","price":12.5,"category":"c"}`, 7)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, env.uc.lastUpdate)
	assert.Equal(t, int64(1250), env.uc.lastUpdate.Price)
	assert.Equal(t, int64(7), env.uc.lastPrincipal.UserID)

	env.uc.err = e.Wrap("fake", e.ErrProductNotBelongUser)
	rec = env.do(t, http.MethodPut, "/api/v1/products/1", `{"title":"New","price":12.5}`, 8)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestToHTTPResponse(t *testing.T) {
	testCases := []struct {
		err  error
		code int
	}{
		{err: e.ErrNoDataFound, code: http.StatusNotFound},
		{err: e.ErrUserNotFound, code: http.StatusNotFound},
		{err: e.ErrProductAlreadyExists, code: http.StatusConflict},
		{err: e.ErrProductNotBelongUser, code: http.StatusForbidden},
		{err: e.ErrUnauthenticated, code: http.StatusUnauthorized},
		{err: e.ErrInvalidPrice, code: http.StatusBadRequest},
		{err: e.ErrCatalogUnavailable, code: http.StatusBadGateway},
		{err: fmt.Errorf("%w: product_id=3: %w", e.ErrCatalogUnavailable, e.ErrInvalidPrice), code: http.StatusBadGateway},
		{err: context.DeadlineExceeded, code: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			code, msg := ToHTTPResponse(e.Wrap("op", tc.err))
			assert.Equal(t, tc.code, code)
			if tc.code == http.StatusInternalServerError {
				assert.Equal(t, e.ErrInternalServerError.Error(), msg)
			}
		})
	}
}
