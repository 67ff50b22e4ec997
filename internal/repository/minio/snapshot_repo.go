package minio

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
	"github.com/procesos/product-directory/internal/cfg"
	"github.com/procesos/product-directory/internal/usecase"
	"github.com/procesos/product-directory/pkg/e"
)

const snapshotContentType = "application/json"

// SnapshotRepo хранит исходные ответы внешнего каталога после успешного импорта.
type SnapshotRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewSnapshotRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *SnapshotRepo {
	return &SnapshotRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// SaveSnapshot загружает снимок в MinIO и возвращает ключ объекта.
func (s *SnapshotRepo) SaveSnapshot(ctx context.Context, req *usecase.SaveSnapshotReq) (string, error) {
	key := snapshotKey(req)

	info, err := s.mc.PutObject(ctx, s.cfg.BucketName, key, bytes.NewReader(req.Data), int64(len(req.Data)), minio.PutObjectOptions{
		ContentType: snapshotContentType,
		UserMetadata: map[string]string{
			"user-id": fmt.Sprintf("%d", req.UserID),
		},
	})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return info.Key, nil
}

// snapshotKey: imports/<user>/<время импорта в UTC>.json
func snapshotKey(req *usecase.SaveSnapshotReq) string {
	return fmt.Sprintf("imports/%d/%s.json", req.UserID, req.ImportedAt.UTC().Format("20060102T150405.000000000Z"))
}
