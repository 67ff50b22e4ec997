package http

import (
	"time"

	"github.com/procesos/product-directory/internal/domain"
	"github.com/procesos/product-directory/internal/usecase"
	"github.com/procesos/product-directory/pkg/e"
	"github.com/procesos/product-directory/pkg/money"
	"github.com/shopspring/decimal"
)

// CreateProductRequest - тело POST /products. Цена принимается числом или строкой.
type CreateProductRequest struct {
	UserID      int64               `json:"userId" example:"1"`
	Title       string              `json:"title" example:"Mens Cotton Jacket"`
	Price       decimal.NullDecimal `json:"price" swaggertype:"number" example:"55.99"`
	Description string              `json:"description"`
	Category    string              `json:"category" example:"men's clothing"`
	Image       string              `json:"image"`
}

// UpdateProductRequest - тело PUT /products/{id}. Все поля перезаписываются.
type UpdateProductRequest struct {
	Title       string              `json:"title" example:"Mens Cotton Jacket"`
	Price       decimal.NullDecimal `json:"price" swaggertype:"number" example:"55.99"`
	Description string              `json:"description"`
	Category    string              `json:"category"`
	Image       string              `json:"image"`
}

type ProductResponse struct {
	ID          int64      `json:"id" example:"1"`
	Title       string     `json:"title"`
	Price       string     `json:"price" example:"55.99"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Image       string     `json:"image"`
	UserID      int64      `json:"userId"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

func (r *CreateProductRequest) toUseCase() (*usecase.CreateProductReq, error) {
	if r.UserID <= 0 || r.Title == "" || !r.Price.Valid {
		return nil, e.ErrMissingFields
	}

	price, err := money.ToCents(r.Price.Decimal)
	if err != nil {
		return nil, err
	}

	return usecase.NewCreateProductReq(r.UserID, r.Title, price, r.Description, r.Category, r.Image), nil
}

func (r *UpdateProductRequest) toUseCase() (*usecase.UpdateProductReq, error) {
	if r.Title == "" || !r.Price.Valid {
		return nil, e.ErrMissingFields
	}

	price, err := money.ToCents(r.Price.Decimal)
	if err != nil {
		return nil, err
	}

	return usecase.NewUpdateProductReq(r.Title, price, r.Description, r.Category, r.Image), nil
}

func toProductResponse(p *domain.Product) ProductResponse {
	res := ProductResponse{
		ID:          p.ID,
		Title:       p.Title,
		Price:       money.FromCents(p.Price).StringFixed(2),
		Description: p.Description,
		Category:    p.Category,
		Image:       p.Image,
		UserID:      p.UserID,
		UpdatedAt:   p.UpdatedAt,
	}
	if !p.CreatedAt.IsZero() {
		createdAt := p.CreatedAt
		res.CreatedAt = &createdAt
	}
	return res
}

func toProductResponses(products []domain.Product) []ProductResponse {
	res := make([]ProductResponse, 0, len(products))
	for i := range products {
		res = append(res, toProductResponse(&products[i]))
	}
	return res
}
