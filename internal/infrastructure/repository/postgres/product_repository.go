package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/nparshin/product-discovery/internal/core/domain"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *ProductRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/indexer startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026030201)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS products (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	price DOUBLE PRECISION,
	description TEXT NOT NULL DEFAULT '',
	features JSONB NOT NULL DEFAULT '[]'::jsonb,
	image_url TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	product_url TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	featuresJSON, err := json.Marshal(featuresOrEmpty(p.Features))
	if err != nil {
		return fmt.Errorf("marshal features: %w", err)
	}

	err = r.db.QueryRowContext(ctx, `
INSERT INTO products (
	title, price, description, features, image_url, category, product_url, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
RETURNING id
`,
		p.Title, p.Price, p.Description, featuresJSON, p.ImageURL, p.Category, p.ProductURL,
		p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, title, price, description, features, image_url, category, product_url, created_at, updated_at
FROM products
WHERE id = $1
`, id)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrProductNotFound, "get product", fmt.Errorf("id %d", id))
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return p, nil
}

func (r *ProductRepository) List(ctx context.Context, filter domain.ProductListFilter) ([]domain.Product, error) {
	query := `
SELECT id, title, price, description, features, image_url, category, product_url, created_at, updated_at
FROM products
`
	args := []any{}
	if filter.Category != "" {
		query += "WHERE category = $1\n"
		args = append(args, filter.Category)
	}
	query += fmt.Sprintf("ORDER BY id\nOFFSET $%d LIMIT $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Skip, filter.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r *ProductRepository) ListAll(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, title, price, description, features, image_url, category, product_url, created_at, updated_at
FROM products
ORDER BY id
`)
	if err != nil {
		return nil, fmt.Errorf("list all products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// Update reads the current row inside a transaction, applies the
// non-nil fields and writes the full row back.
func (r *ProductRepository) Update(ctx context.Context, id int64, upd domain.ProductUpdate) (*domain.Product, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx, `
SELECT id, title, price, description, features, image_url, category, product_url, created_at, updated_at
FROM products
WHERE id = $1
FOR UPDATE
`, id)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrProductNotFound, "update product", fmt.Errorf("id %d", id))
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	applyUpdate(p, upd)
	p.UpdatedAt = time.Now().UTC()

	featuresJSON, err := json.Marshal(featuresOrEmpty(p.Features))
	if err != nil {
		return nil, fmt.Errorf("marshal features: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
UPDATE products
SET title = $2, price = $3, description = $4, features = $5, image_url = $6, category = $7, product_url = $8, updated_at = $9
WHERE id = $1
`, p.ID, p.Title, p.Price, p.Description, featuresJSON, p.ImageURL, p.Category, p.ProductURL, p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update tx: %w", err)
	}
	return p, nil
}

func applyUpdate(p *domain.Product, upd domain.ProductUpdate) {
	if upd.Title != nil {
		p.Title = *upd.Title
	}
	if upd.Price != nil {
		p.Price = upd.Price
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.Features != nil {
		p.Features = *upd.Features
	}
	if upd.ImageURL != nil {
		p.ImageURL = *upd.ImageURL
	}
	if upd.Category != nil {
		p.Category = *upd.Category
	}
	if upd.ProductURL != nil {
		p.ProductURL = *upd.ProductURL
	}
}

func featuresOrEmpty(features []string) []string {
	if features == nil {
		return []string{}
	}
	return features
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	var featuresRaw []byte

	err := row.Scan(
		&p.ID, &p.Title, &p.Price, &p.Description, &featuresRaw,
		&p.ImageURL, &p.Category, &p.ProductURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(featuresRaw, &p.Features); err != nil {
		return nil, fmt.Errorf("unmarshal features: %w", err)
	}
	return &p, nil
}

func collectProducts(rows *sql.Rows) ([]domain.Product, error) {
	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}
