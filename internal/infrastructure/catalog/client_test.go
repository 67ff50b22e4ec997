package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/procesos/product-directory/internal/cfg"
	"github.com/procesos/product-directory/pkg/e"
	"github.com/procesos/product-directory/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogJSON = `[
	{"id":1,"title":"Fjallraven Backpack","price":109.95,"description":"Your perfect pack","category":"men's clothing","image":"https://fakestoreapi.com/img/1.jpg","rating":{"rate":3.9,"count":120}},
	{"id":2,"title":"Mens Casual T-Shirt","price":22.3,"description":"Slim-fitting style","category":"men's clothing","image":"https://fakestoreapi.com/img/2.jpg","rating":{"rate":4.1,"count":259}}
]`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(&cfg.CatalogCfg{BaseURL: srv.URL, Timeout: 2 * time.Second}, logger.NewNopLogger())
}

func TestFetchAll(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(catalogJSON))
	})

	res, err := client.FetchAll(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Len(t, res.Products, 2)

	assert.Equal(t, int64(1), res.Products[0].ID)
	assert.Equal(t, "Fjallraven Backpack", res.Products[0].Title)
	assert.Equal(t, int64(10995), res.Products[0].Price)
	assert.Equal(t, int64(2230), res.Products[1].Price)
	assert.Equal(t, catalogJSON, string(res.Raw))
}

func TestFetchAll_Empty(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		body   string
	}{
		{name: "empty body", status: http.StatusOK, body: ""},
		{name: "null", status: http.StatusOK, body: "null"},
		{name: "empty array", status: http.StatusOK, body: "[]"},
		{name: "not found", status: http.StatusNotFound, body: "not found"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			res, err := client.FetchAll(context.Background())
			require.NoError(t, err)
			assert.Nil(t, res)
		})
	}
}

func TestFetchAll_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.FetchAll(context.Background())
	assert.ErrorIs(t, err, e.ErrCatalogUnavailable)
}

func TestFetchAll_MalformedJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,`))
	})

	_, err := client.FetchAll(context.Background())
	assert.ErrorIs(t, err, e.ErrCatalogUnavailable)
}

func TestFetchByID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products/3":
			_, _ = w.Write([]byte(`{"id":3,"title":"Mens Cotton Jacket","price":55.99,"description":"great","category":"men's clothing","image":"https://fakestoreapi.com/img/3.jpg"}`))
		default:
			// fakestoreapi отвечает 200 с пустым телом на неизвестный id
			w.WriteHeader(http.StatusOK)
		}
	})

	product, err := client.FetchByID(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, int64(3), product.ID)
	assert.Equal(t, int64(5599), product.Price)

	missing, err := client.FetchByID(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFetchByID_InvalidPrice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":3,"title":"x","price":-5}`))
	})

	_, err := client.FetchByID(context.Background(), 3)
	assert.ErrorIs(t, err, e.ErrCatalogUnavailable)
	assert.ErrorIs(t, err, e.ErrInvalidPrice)
}

func TestFetchAll_PriceTooPrecise(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"title":"a","price":1.5},{"id":2,"title":"b","price":1.999}]`))
	})

	_, err := client.FetchAll(context.Background())
	assert.ErrorIs(t, err, e.ErrCatalogUnavailable)
	assert.ErrorIs(t, err, e.ErrPricePrecision)
}

func TestFetchByID_TransportError(t *testing.T) {
	client := NewClient(&cfg.CatalogCfg{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}, logger.NewNopLogger())

	_, err := client.FetchByID(context.Background(), 1)
	assert.ErrorIs(t, err, e.ErrCatalogUnavailable)
}
