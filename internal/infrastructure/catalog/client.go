// Package catalog - HTTP-клиент внешнего каталога продуктов (формат fakestoreapi.com).
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/procesos/product-directory/internal/cfg"
	"github.com/procesos/product-directory/internal/usecase"
	"github.com/procesos/product-directory/pkg/e"
	"github.com/procesos/product-directory/pkg/logger"
	"github.com/procesos/product-directory/pkg/money"
	"github.com/shopspring/decimal"
)

const maxResponseSize = 10 << 20

type productDTO struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
}

// Client запрашивает каталог синхронно, без повторов.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

func NewClient(cfg *cfg.CatalogCfg, logger logger.Logger) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// FetchAll запрашивает GET /products/. Пустой ответ - (nil, nil).
func (c *Client) FetchAll(ctx context.Context) (*usecase.CatalogRes, error) {
	const op = "catalog.Client.FetchAll"

	body, err := c.get(ctx, c.baseURL+"/products/")
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if isEmptyPayload(body) {
		return nil, nil
	}

	var dtos []productDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: decode catalog: %v", e.ErrCatalogUnavailable, err))
	}
	if len(dtos) == 0 {
		return nil, nil
	}

	products := make([]usecase.CatalogProduct, 0, len(dtos))
	for _, dto := range dtos {
		product, err := dto.toUseCase()
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		products = append(products, product)
	}

	return usecase.NewCatalogRes(products, body), nil
}

// FetchByID запрашивает GET /products/{id}. Пустой ответ или 404 - (nil, nil).
func (c *Client) FetchByID(ctx context.Context, id int64) (*usecase.CatalogProduct, error) {
	const op = "catalog.Client.FetchByID"

	body, err := c.get(ctx, c.baseURL+"/products/"+strconv.FormatInt(id, 10))
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if isEmptyPayload(body) {
		return nil, nil
	}

	var dto productDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: decode product: %v", e.ErrCatalogUnavailable, err))
	}

	product, err := dto.toUseCase()
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &product, nil
}

// get возвращает тело ответа; 404 трактуется как пустой ответ.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", e.ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.logger.Debugf("catalog returned 404 for %s", url)
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: unexpected status %d", e.ErrCatalogUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", e.ErrCatalogUnavailable, err)
	}

	return body, nil
}

func (d productDTO) toUseCase() (usecase.CatalogProduct, error) {
	if d.ID <= 0 {
		return usecase.CatalogProduct{}, fmt.Errorf("%w: product without id", e.ErrCatalogUnavailable)
	}

	price, err := money.ToCents(d.Price)
	if err != nil {
		// некорректная цена - дефект источника, а не запроса клиента
		return usecase.CatalogProduct{}, fmt.Errorf("%w: product_id=%d: %w", e.ErrCatalogUnavailable, d.ID, err)
	}

	return usecase.CatalogProduct{
		ID:          d.ID,
		Title:       d.Title,
		Price:       price,
		Description: d.Description,
		Category:    d.Category,
		Image:       d.Image,
	}, nil
}

func isEmptyPayload(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
