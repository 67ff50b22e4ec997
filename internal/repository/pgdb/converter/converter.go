package converter

import (
	"github.com/procesos/product-directory/internal/domain"
	"github.com/procesos/product-directory/internal/usecase"
)

// ProductToEntity преобразует модель PostgreSQL в domain.Product.
func ProductToEntity(model *ProductModel) *domain.Product {
	return &domain.Product{
		ID:          model.ID,
		Title:       model.Title,
		Price:       model.Price,
		Description: model.Description,
		Category:    model.Category,
		Image:       model.Image,
		UserID:      model.UserID,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func ProductToModel(entity *domain.Product) *ProductModel {
	return &ProductModel{
		ID:          entity.ID,
		Title:       entity.Title,
		Price:       entity.Price,
		Description: entity.Description,
		Category:    entity.Category,
		Image:       entity.Image,
		UserID:      entity.UserID,
		CreatedAt:   entity.CreatedAt,
		UpdatedAt:   entity.UpdatedAt,
	}
}

func OutboxEventToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   string(entity.EventType),
		ProductID:   entity.ProductID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func OutboxEventToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   usecase.OutboxEventType(model.EventType),
		ProductID:   model.ProductID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func OutboxEventsToEntities(models []*OutboxEventModel) []*usecase.OutboxEvent {
	res := make([]*usecase.OutboxEvent, 0, len(models))
	for _, model := range models {
		res = append(res, OutboxEventToEntity(model))
	}
	return res
}
