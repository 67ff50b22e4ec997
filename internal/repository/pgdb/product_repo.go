package pgdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/procesos/product-directory/internal/domain"
	"github.com/procesos/product-directory/internal/repository/pgdb/converter"
	"github.com/procesos/product-directory/pkg/e"
	"github.com/procesos/product-directory/pkg/tr"
)

const productColumns = `id, title, price, description, category, image, user_id, created_at, updated_at`

// ProductRepo реализует репозиторий продуктов поверх PostgreSQL.
// Внутри транзакции (tr.Manager.Do) все запросы идут через нее, иначе через пул.
type ProductRepo struct {
	pool *pgxpool.Pool
}

func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

func (p *ProductRepo) Exists(ctx context.Context, id int64) (bool, error) {
	q := tr.QuerierFromCtx(ctx, p.pool)

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	return exists, nil
}

// FindExistingIDs возвращает те ID из списка, которые уже есть в таблице.
func (p *ProductRepo) FindExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	q := tr.QuerierFromCtx(ctx, p.pool)

	rows, err := q.Query(ctx, `SELECT id FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	existing, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return existing, nil
}

func (p *ProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	return p.getByID(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetByIDForUpdate блокирует строку до конца транзакции.
func (p *ProductRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	return p.getByID(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

func (p *ProductRepo) getByID(ctx context.Context, query string, id int64) (*domain.Product, error) {
	q := tr.QuerierFromCtx(ctx, p.pool)

	rows, err := q.Query(ctx, query, id)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[converter.ProductModel])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(fmt.Sprintf("product_id=%d", id), e.ErrNoDataFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return converter.ProductToEntity(&model), nil
}

func (p *ProductRepo) GetAll(ctx context.Context) ([]domain.Product, error) {
	q := tr.QuerierFromCtx(ctx, p.pool)

	rows, err := q.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	models, err := pgx.CollectRows(rows, pgx.RowToStructByName[converter.ProductModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	result := make([]domain.Product, 0, len(models))
	for i := range models {
		result = append(result, *converter.ProductToEntity(&models[i]))
	}

	return result, nil
}

// Create сохраняет продукт. Нулевой ID означает, что ID назначит база.
func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	q := tr.QuerierFromCtx(ctx, p.pool)
	query, args := insertProductQuery(converter.ProductToModel(product))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[converter.ProductModel])
	if err != nil {
		return nil, mapWriteError(product.ID, err)
	}

	return converter.ProductToEntity(&model), nil
}

// CreateBatch сохраняет продукты одной пачкой запросов (pgx.Batch).
func (p *ProductRepo) CreateBatch(ctx context.Context, products []domain.Product) ([]domain.Product, error) {
	q := tr.QuerierFromCtx(ctx, p.pool)

	batch := &pgx.Batch{}
	for i := range products {
		query, args := insertProductQuery(converter.ProductToModel(&products[i]))
		batch.Queue(query, args...)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	saved := make([]domain.Product, 0, len(products))
	for i := range products {
		rows, err := results.Query()
		if err != nil {
			return nil, mapWriteError(products[i].ID, err)
		}

		model, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[converter.ProductModel])
		if err != nil {
			return nil, mapWriteError(products[i].ID, err)
		}
		saved = append(saved, *converter.ProductToEntity(&model))
	}

	return saved, nil
}

// Update перезаписывает редактируемые поля. id и user_id не меняются.
// updated_at - clock_timestamp(), а не NOW(): версия в кэше растет в порядке коммитов.
func (p *ProductRepo) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	q := tr.QuerierFromCtx(ctx, p.pool)

	query := `
		UPDATE products
		SET title = $2,
			price = $3,
			description = $4,
			category = $5,
			image = $6,
			updated_at = clock_timestamp()
		WHERE id = $1
		RETURNING ` + productColumns

	rows, err := q.Query(ctx, query,
		product.ID, product.Title, product.Price, product.Description, product.Category, product.Image,
	)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[converter.ProductModel])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(fmt.Sprintf("product_id=%d", product.ID), e.ErrNoDataFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return converter.ProductToEntity(&model), nil
}

func insertProductQuery(model *converter.ProductModel) (string, []any) {
	if model.ID == 0 {
		return `
			INSERT INTO products (title, price, description, category, image, user_id)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING ` + productColumns,
			[]any{model.Title, model.Price, model.Description, model.Category, model.Image, model.UserID}
	}

	return `
		INSERT INTO products (id, title, price, description, category, image, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + productColumns,
		[]any{model.ID, model.Title, model.Price, model.Description, model.Category, model.Image, model.UserID}
}

// mapWriteError переводит нарушения ограничений в доменные ошибки.
func mapWriteError(id int64, err error) error {
	switch {
	case postgresDuplicate(err):
		return e.Wrap(fmt.Sprintf("product_id=%d", id), e.ErrProductAlreadyExists)
	case postgresForeignKey(err):
		return e.Wrap(fmt.Sprintf("product_id=%d", id), e.ErrUserNotFound)
	default:
		return e.Wrap(whereami.WhereAmI(), err)
	}
}
