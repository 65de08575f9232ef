package events

import (
	"time"

	"github.com/Vjossaab/commercify-backend/internal/domain"
)

// Channel names. These double as Kafka topic names.
const (
	ChannelStockUpdates   = "stock_updates"
	ChannelProductUpdates = "product_updates"
)

// Actions carried by ProductUpdate events.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// StockUpdate carries the post-mutation stock value, never the delta.
type StockUpdate struct {
	ProductID string    `json:"productId"`
	Stock     int       `json:"stock"`
	Timestamp time.Time `json:"timestamp"`
}

type ProductUpdate struct {
	Product   domain.Product `json:"product"`
	Action    string         `json:"action"`
	Timestamp time.Time      `json:"timestamp"`
}

// Envelope is a raw message as it crossed the channel transport.
type Envelope struct {
	Channel string
	Payload []byte
}
