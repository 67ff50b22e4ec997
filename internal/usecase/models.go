package usecase

import (
	"time"

	"github.com/procesos/product-directory/internal/domain"
)

// PRODUCT USECASE

// CreateProductReq - запрос на прямое создание продукта от имени пользователя UserID.
type CreateProductReq struct {
	UserID      int64
	Title       string
	Price       int64 // в центах
	Description string
	Category    string
	Image       string
}

// UpdateProductReq - новые значения редактируемых полей продукта.
type UpdateProductReq struct {
	Title       string
	Price       int64 // в центах
	Description string
	Category    string
	Image       string
}

// INFRASTUCTURE

// CatalogProduct - запись продукта из внешнего каталога.
type CatalogProduct struct {
	ID          int64
	Title       string
	Price       int64 // в центах
	Description string
	Category    string
	Image       string
}

// CatalogRes - полный ответ каталога вместе с исходными байтами (для снимка импорта).
type CatalogRes struct {
	Products []CatalogProduct
	Raw      []byte
}

// SaveSnapshotReq - запрос на сохранение снимка импортированного каталога.
type SaveSnapshotReq struct {
	UserID     int64
	ImportedAt time.Time
	Data       []byte
}

type WriteRawMessageReq struct {
	ProductID int64
	Payload   []byte
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

type OutboxEventType string

const (
	ProductCreated  OutboxEventType = "product.created"
	ProductImported OutboxEventType = "product.imported"
	ProductUpdated  OutboxEventType = "product.updated"
)

// OutboxEvent - событие об изменении продукта, записываемое в той же транзакции, что и изменение.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   OutboxEventType
	ProductID   int64
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// ProductEvent - содержимое события до сериализации.
type ProductEvent struct {
	EventID    string
	EventType  OutboxEventType
	OccurredAt time.Time
	Product    domain.Product
}

// MAPPERS

func NewCreateProductReq(userID int64, title string, price int64, description, category, image string) *CreateProductReq {
	return &CreateProductReq{
		UserID:      userID,
		Title:       title,
		Price:       price,
		Description: description,
		Category:    category,
		Image:       image,
	}
}

func NewUpdateProductReq(title string, price int64, description, category, image string) *UpdateProductReq {
	return &UpdateProductReq{
		Title:       title,
		Price:       price,
		Description: description,
		Category:    category,
		Image:       image,
	}
}

func NewCatalogRes(products []CatalogProduct, raw []byte) *CatalogRes {
	return &CatalogRes{
		Products: products,
		Raw:      raw,
	}
}

func NewSaveSnapshotReq(userID int64, importedAt time.Time, data []byte) *SaveSnapshotReq {
	return &SaveSnapshotReq{
		UserID:     userID,
		ImportedAt: importedAt,
		Data:       data,
	}
}

func NewWriteRawMessageReq(productID int64, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		ProductID: productID,
		Payload:   payload,
	}
}

// ToDomain строит продукт из записи каталога. Владелец назначается отдельно.
func (c CatalogProduct) ToDomain() *domain.Product {
	return domain.NewProduct(c.ID, c.Title, c.Price, c.Description, c.Category, c.Image)
}
