package usecase

import (
	"context"

	"github.com/procesos/product-directory/internal/domain"
)

type ProductUC interface {
	CreateProduct(ctx context.Context, req *CreateProductReq) (*domain.Product, error)
	CreateProductByID(ctx context.Context, principal domain.Principal, id int64) (*domain.Product, error)
	ImportAllProducts(ctx context.Context, principal domain.Principal) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id int64) (*domain.Product, error)
	GetAllProducts(ctx context.Context) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, principal domain.Principal, id int64, req *UpdateProductReq) (*domain.Product, error)
}
