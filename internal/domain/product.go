package domain

import (
	"time"
)

type Product struct {
	ProductID   string    `dynamodbav:"product_id"  json:"id"`
	Name        string    `dynamodbav:"name"        json:"name"`
	Description string    `dynamodbav:"description" json:"description"`
	Price       float64   `dynamodbav:"price"       json:"price"`
	Stock       int       `dynamodbav:"stock"       json:"stock"`
	Category    string    `dynamodbav:"category"    json:"category"`
	Image       string    `dynamodbav:"image"       json:"image"`
	SellerID    string    `dynamodbav:"seller_id"   json:"sellerId"`
	CreatedAt   time.Time `dynamodbav:"created_at"  json:"createdAt"`
	UpdatedAt   time.Time `dynamodbav:"updated_at"  json:"updatedAt"`
}

type CreateProductRequest struct {
	Name        string  `json:"name"        binding:"required"`
	Description string  `json:"description" binding:"required"`
	Price       float64 `json:"price"       binding:"required,min=0"`
	Stock       int     `json:"stock"       binding:"min=0"`
	Category    string  `json:"category"    binding:"required"`
	Image       string  `json:"image"       binding:"required"`
}

// UpdateProductRequest carries only the fields the seller wants to
// change. Nil pointers mean "leave as is".
type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	Category    *string  `json:"category"`
	Image       *string  `json:"image"`
}

func (r UpdateProductRequest) Empty() bool {
	return r.Name == nil && r.Description == nil && r.Price == nil &&
		r.Stock == nil && r.Category == nil && r.Image == nil
}

type SetStockRequest struct {
	Stock int `json:"stock" binding:"min=0"`
}
