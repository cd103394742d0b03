package model

import (
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderCompleted  OrderStatus = "completed"
)

type OrderKind string

const (
	// OrderGoods is a physical product order that moves through shipping.
	OrderGoods OrderKind = "goods"
	// OrderEvent is a ticket order; there is nothing to ship.
	OrderEvent OrderKind = "event"
)

type Order struct {
	ID             int64       `json:"id"`
	OrderNumber    string      `json:"order_number"`
	UserID         int64       `json:"user_id"`
	SalesID        *int64      `json:"sales_id,omitempty"`
	Kind           OrderKind   `json:"kind"`
	Status         OrderStatus `json:"status"`
	Subtotal       int64       `json:"subtotal"`
	TotalPayment   int64       `json:"total_payment"`
	CashbackEarned int64       `json:"cashback_earned"`
	ProofImageURL  string      `json:"proof_image_url,omitempty"`
	CompletedAt    *time.Time  `json:"completed_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
	Items          []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	ID       int64  `json:"id"`
	OrderID  int64  `json:"order_id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

type OrderCreateRequest struct {
	UserID int64
	Kind   OrderKind
	Items  []OrderItem
	// SalesID overrides the agent normally copied from the buyer's
	// active membership.
	SalesID       *int64
	Subtotal      int64
	TotalPayment  int64
	CashbackTotal int64
}

func (r OrderCreateRequest) Validate() error {
	if r.UserID <= 0 {
		return fmt.Errorf("user_id is required")
	}
	if r.Kind != OrderGoods && r.Kind != OrderEvent {
		return fmt.Errorf("kind must be goods or event")
	}
	if len(r.Items) == 0 {
		return fmt.Errorf("order must contain at least one item")
	}
	if r.Subtotal < 0 || r.TotalPayment < 0 || r.CashbackTotal < 0 {
		return fmt.Errorf("amounts must not be negative")
	}
	for _, it := range r.Items {
		if it.Name == "" {
			return fmt.Errorf("item name is required")
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("item quantity must be positive")
		}
		if it.Price < 0 {
			return fmt.Errorf("item price must not be negative")
		}
	}
	return nil
}

type OrderFilter struct {
	UserID   *int64
	SalesID  *int64
	Statuses []OrderStatus
	Limit    int
	Offset   int
	Desc     bool
}
