package domain

import "time"

// Product описывает продукт каталога и его владельца
type Product struct {
	ID          int64
	Title       string
	Price       int64 // Цена хранится в центах
	Description string
	Category    string
	Image       string // ссылка на изображение
	UserID      int64  // владелец, задается при создании и не меняется
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

func NewProduct(id int64, title string, price int64, description, category, image string) *Product {
	return &Product{
		ID:          id,
		Title:       title,
		Price:       price,
		Description: description,
		Category:    category,
		Image:       image,
	}
}

// AssignOwner задает владельца продукта.
func (p *Product) AssignOwner(userID int64) {
	p.UserID = userID
}

// OverwriteDetails заменяет редактируемые поля. ID и владелец не меняются.
func (p *Product) OverwriteDetails(title string, price int64, description, category, image string) {
	p.Title = title
	p.Price = price
	p.Description = description
	p.Category = category
	p.Image = image
}

// Version - момент последнего изменения в микросекундах (updated_at, иначе created_at).
// Ноль, если продукт еще не сохранен.
func (p *Product) Version() int64 {
	if p.UpdatedAt != nil && !p.UpdatedAt.IsZero() {
		return p.UpdatedAt.UnixMicro()
	}
	if !p.CreatedAt.IsZero() {
		return p.CreatedAt.UnixMicro()
	}
	return 0
}
