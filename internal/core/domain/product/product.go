package product

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Stock       int             `json:"stock" db:"stock"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// CreateProductRequest represents the request to create a new product
type CreateProductRequest struct {
	Name        string           `json:"name" validate:"required,notblank,max=255"`
	Description string           `json:"description" validate:"max=5000"`
	Price       *decimal.Decimal `json:"price" validate:"required,gte=0,lte=9999999999.99,decimals=2"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0"`
}

// UpdateProductRequest represents a partial update; nil fields are left unchanged.
type UpdateProductRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitnil,notblank,max=255"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price       *decimal.Decimal `json:"price,omitempty" validate:"omitempty,gte=0,lte=9999999999.99,decimals=2"`
	Stock       *int             `json:"stock,omitempty" validate:"omitempty,gte=0"`
}

// Normalize trims the name so length and blank checks see the stored value.
func (r *CreateProductRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

func (r *UpdateProductRequest) Normalize() {
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		r.Name = &name
	}
}

// New builds a product from a validated create request.
func New(req *CreateProductRequest, now time.Time) *Product {
	p := &Product{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	return p
}

// ApplyUpdate copies the non-nil fields of req onto p and bumps UpdatedAt.
func (p *Product) ApplyUpdate(req *UpdateProductRequest, now time.Time) {
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	p.UpdatedAt = now
}
