package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/avatarctic/product-catalog-api/internal/core/domain/product"
	"github.com/avatarctic/product-catalog-api/internal/core/ports"
	"github.com/avatarctic/product-catalog-api/internal/infrastructure/db"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const productColumns = `id, name, description, price, stock, created_at, updated_at`

// ProductRepository implements the product repository interface on Postgres
type ProductRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

// NewProductRepository creates a new product repository
func NewProductRepository(database *db.Database, logger *logrus.Logger) ports.ProductRepository {
	return &ProductRepository{
		db:     database,
		logger: logger,
	}
}

// likePattern escapes LIKE metacharacters so the term matches literally.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}

// FindPage returns products newest first, optionally filtered by a case-insensitive name match
func (r *ProductRepository) FindPage(ctx context.Context, filter product.Filter, page, perPage int) ([]*product.Product, int, error) {
	where := ""
	args := []any{}
	if filter.NameContains != nil {
		where = `WHERE name ILIKE $1`
		args = append(args, likePattern(*filter.NameContains))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM products ` + where
	if err := r.db.DB.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	products := []*product.Product{}
	if total == 0 {
		return products, 0, nil
	}

	offset := (page - 1) * perPage
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, productColumns, where, len(args)+1, len(args)+2)

	if err := r.db.DB.SelectContext(ctx, &products, query, append(args, perPage, offset)...); err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	return products, total, nil
}

// GetByID retrieves a product by ID
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	var p product.Product
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	err := r.db.DB.GetContext(ctx, &p, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product with ID %s: %w", id, product.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID: %w", err)
	}

	return &p, nil
}

// Create inserts a new product
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	query := `
		INSERT INTO products (id, name, description, price, stock, created_at, updated_at)
		VALUES (:id, :name, :description, :price, :stock, :created_at, :updated_at)`

	if _, err := r.db.DB.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	if r.logger != nil {
		r.logger.WithField("product_id", p.ID).Debug("product row inserted")
	}
	return nil
}

// Update overwrites the mutable columns of an existing product
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, stock = $5, updated_at = $6
		WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, p.ID, p.Name, p.Description, p.Price, p.Stock, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", p.ID, product.ErrNotFound)
	}

	return nil
}

// Delete hard-deletes a product by ID
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", id, product.ErrNotFound)
	}

	return nil
}
