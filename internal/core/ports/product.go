package ports

import (
	"context"

	"github.com/avatarctic/product-catalog-api/internal/core/domain/product"
	"github.com/google/uuid"
)

// ProductRepository is the persistence gateway for products.
// GetByID, Update and Delete return product.ErrNotFound (possibly wrapped) when no row matches.
type ProductRepository interface {
	// FindPage returns one page ordered newest first plus the total number of matching rows.
	FindPage(ctx context.Context, filter product.Filter, page, perPage int) ([]*product.Product, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error)
	Create(ctx context.Context, p *product.Product) error
	Update(ctx context.Context, p *product.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductService defines the product operations exposed over HTTP.
// Every returned error is a *product.OperationError.
type ProductService interface {
	ListProducts(ctx context.Context, q product.ListQuery) (*product.Page, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*product.Product, error)
	CreateProduct(ctx context.Context, req *product.CreateProductRequest) (*product.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *product.UpdateProductRequest) (*product.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	// InvalidateCache drops every cached product read.
	InvalidateCache(ctx context.Context) error
}
