package redis

import (
	"time"

	"github.com/procesos/product-directory/internal/domain"
)

// productCacheModel - JSON-представление продукта в Redis.
type productCacheModel struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Price       int64      `json:"price"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Image       string     `json:"image"`
	UserID      int64      `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

func toCacheModel(p *domain.Product) productCacheModel {
	return productCacheModel{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price,
		Description: p.Description,
		Category:    p.Category,
		Image:       p.Image,
		UserID:      p.UserID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (m productCacheModel) toDomain() *domain.Product {
	return &domain.Product{
		ID:          m.ID,
		Title:       m.Title,
		Price:       m.Price,
		Description: m.Description,
		Category:    m.Category,
		Image:       m.Image,
		UserID:      m.UserID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
