package pgdb

import (
	"context"
	"errors"

	"github.com/DRSN-tech/insumos-backend/internal/domain"
	"github.com/DRSN-tech/insumos-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/insumos-backend/pkg/e"
	"github.com/DRSN-tech/insumos-backend/pkg/logger"
	"github.com/DRSN-tech/insumos-backend/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const productColumns = `id::text, title, sku, description, technical_sheet, price::text, image_url, created_at, updated_at`

// ProductRepo реализует репозиторий товаров поверх PostgreSQL.
type ProductRepo struct {
	pool   *pgxpool.Pool
	conv   converter.ProductConverter
	logger logger.Logger
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter, logger logger.Logger) *ProductRepo {
	return &ProductRepo{
		pool:   pool,
		conv:   conv,
		logger: logger,
	}
}

// Create вставляет товар и возвращает его с назначенным id.
func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	model := p.conv.ToModel(product)
	query := `
		INSERT INTO products (title, sku, description, technical_sheet, price, image_url)
		VALUES ($1, $2, $3, $4, $5::numeric, $6)
		RETURNING ` + productColumns

	row := tr.Querier(ctx, p.pool).QueryRow(ctx, query,
		model.Title, model.SKU, model.Description, model.TechnicalSheet, model.Price, model.ImageURL,
	)

	created, err := p.scanOne(row)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return created, nil
}

func (p *ProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if !validID(id) {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := p.scanOne(tr.Querier(ctx, p.pool).QueryRow(ctx, query, id))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return product, nil
}

// FetchAll возвращает весь каталог в порядке создания.
// Повреждённые строки пропускаются с предупреждением в лог.
func (p *ProductRepo) FetchAll(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at, id`

	rows, err := tr.Querier(ctx, p.pool).Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.Product, 0)
	for rows.Next() {
		var model converter.ProductModel
		if err := scanModel(rows, &model); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		product, err := p.conv.ToEntity(&model)
		if err != nil {
			p.logger.Warnf("skipping malformed product row id=%s: %v", model.ID, err)
			continue
		}

		result = append(result, *product)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

// Update применяет частичное обновление: NULL-параметры оставляют колонку как есть.
func (p *ProductRepo) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	if !validID(id) {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
	}

	var price *string
	if patch.Price != nil {
		s := patch.Price.StringFixed(2)
		price = &s
	}

	query := `
		UPDATE products SET
			title           = COALESCE($2, title),
			sku             = COALESCE($3, sku),
			description     = COALESCE($4, description),
			technical_sheet = COALESCE($5, technical_sheet),
			price           = COALESCE($6::numeric, price),
			updated_at      = NOW()
		WHERE id = $1
		RETURNING ` + productColumns

	row := tr.Querier(ctx, p.pool).QueryRow(ctx, query,
		id, patch.Title, patch.SKU, patch.Description, patch.TechnicalSheet, price,
	)

	updated, err := p.scanOne(row)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return updated, nil
}

func (p *ProductRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
	}

	tag, err := tr.Querier(ctx, p.pool).Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
	}

	return nil
}

func (p *ProductRepo) scanOne(row pgx.Row) (*domain.Product, error) {
	var model converter.ProductModel
	if err := scanModel(row, &model); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.ErrProductNotFound
		}
		return nil, err
	}

	return p.conv.ToEntity(&model)
}

func scanModel(row pgx.Row, m *converter.ProductModel) error {
	return row.Scan(
		&m.ID, &m.Title, &m.SKU, &m.Description, &m.TechnicalSheet,
		&m.Price, &m.ImageURL, &m.CreatedAt, &m.UpdatedAt,
	)
}
