package kafka

import (
	"time"

	"github.com/procesos/product-directory/internal/usecase"
	"github.com/procesos/product-directory/pkg/e"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// ProtoEncoder сериализует событие продукта в protobuf Struct.
type ProtoEncoder struct{}

func NewProtoEncoder() *ProtoEncoder {
	return &ProtoEncoder{}
}

func (ProtoEncoder) Encode(event *usecase.ProductEvent) ([]byte, error) {
	const op = "ProtoEncoder.Encode"

	product := event.Product
	payload, err := structpb.NewStruct(map[string]any{
		"event_id":    event.EventID,
		"event_type":  string(event.EventType),
		"occurred_at": event.OccurredAt.UTC().Format(time.RFC3339Nano),
		"product": map[string]any{
			"id":          product.ID,
			"title":       product.Title,
			"price_cents": product.Price,
			"description": product.Description,
			"category":    product.Category,
			"image":       product.Image,
			"user_id":     product.UserID,
		},
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	data, err := proto.Marshal(payload)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return data, nil
}
