package pgdb

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/procesos/product-directory/pkg/e"
	"github.com/procesos/product-directory/pkg/tr"
)

// UserRepo - доступ к таблице users. Пользователи создаются внешним сервисом.
type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (u *UserRepo) Exists(ctx context.Context, id int64) (bool, error) {
	q := tr.QuerierFromCtx(ctx, u.pool)

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	return exists, nil
}
