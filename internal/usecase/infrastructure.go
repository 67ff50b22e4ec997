package usecase

import "context"

// CatalogSource - внешний источник продуктов. Пустой ответ - (nil, nil).
type CatalogSource interface {
	FetchAll(ctx context.Context) (*CatalogRes, error)
	FetchByID(ctx context.Context, id int64) (*CatalogProduct, error)
}

type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, req *SaveSnapshotReq) (string, error)
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}

type EventEncoder interface {
	Encode(event *ProductEvent) ([]byte, error)
}

// TxManager выполняет fn в одной транзакции (unit of work).
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
