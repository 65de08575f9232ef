package domain

import (
	"time"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// orderTransitions is the full status machine. Orders enter the ledger
// in confirmed; pending exists for flows that model an external payment
// step before confirmation.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderShipped, OrderCancelled},
	OrderShipped:   {OrderDelivered},
	OrderDelivered: {},
	OrderCancelled: {},
}

func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, t := range orderTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// OrderLine snapshots the product name and unit price at order time so
// later catalog edits never rewrite order history.
type OrderLine struct {
	ProductID   string  `dynamodbav:"product_id"   json:"productId"`
	ProductName string  `dynamodbav:"product_name" json:"productName"`
	Quantity    int     `dynamodbav:"quantity"     json:"quantity"`
	Price       float64 `dynamodbav:"price"        json:"price"`
	Total       float64 `dynamodbav:"total"        json:"total"`
}

type Order struct {
	OrderID   string      `dynamodbav:"order_id"   json:"id"`
	UserID    string      `dynamodbav:"user_id"    json:"userId"`
	UserEmail string      `dynamodbav:"user_email" json:"userEmail"`
	Items     []OrderLine `dynamodbav:"items"      json:"items"`
	Total     float64     `dynamodbav:"total"      json:"total"`
	Status    OrderStatus `dynamodbav:"status"     json:"status"`
	CreatedAt time.Time   `dynamodbav:"created_at" json:"createdAt"`
	UpdatedAt time.Time   `dynamodbav:"updated_at" json:"updatedAt"`
}

type OrderItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"  binding:"required,min=1"`
}

type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items" binding:"required"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}
