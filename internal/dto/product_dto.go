package dto

import "github.com/shopspring/decimal"

type ProductFilter struct {
	Search     string `form:"search"`
	CategoryID string `form:"category_id" validate:"omitempty,uuid"`
	// Active: "true" | "false" | "all"
	Active string `form:"active,default=true"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type CreateProductRequest struct {
	Name       string          `json:"name"        validate:"required,min=2"`
	Price      decimal.Decimal `json:"price"       validate:"required"`
	Stock      decimal.Decimal `json:"stock"`
	Unit       string          `json:"unit"        validate:"required,oneof=UNIT KG"`
	CategoryID *string         `json:"category_id" validate:"omitempty,uuid"`
}

// UpdateProductRequest uses pointers so the handler can tell "absent" from
// "set to zero value". Only present fields are applied and audited.
type UpdateProductRequest struct {
	Name       *string          `json:"name"        validate:"omitempty,min=2"`
	Price      *decimal.Decimal `json:"price"`
	Stock      *decimal.Decimal `json:"stock"`
	Unit       *string          `json:"unit"        validate:"omitempty,oneof=UNIT KG"`
	CategoryID *string          `json:"category_id" validate:"omitempty,uuid"`
	IsActive   *bool            `json:"is_active"`
}

type ProductResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Stock      decimal.Decimal `json:"stock"`
	Unit       string          `json:"unit"`
	CategoryID *string         `json:"category_id"`
	Category   *string         `json:"category"`
	IsActive   bool            `json:"is_active"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=2"`
}

type CategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
