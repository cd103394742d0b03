package model

import (
	"math"
	"time"
)

type CommissionType string

const (
	CommissionJoinMember   CommissionType = "join_member"
	CommissionEventOrder   CommissionType = "event_order"
	CommissionProductOrder CommissionType = "product_order"
)

type CommissionStatus string

const (
	CommissionPending CommissionStatus = "pending"
	CommissionPaid    CommissionStatus = "paid"
)

// Commission records money owed to a sales agent for one triggering
// event. At most one row may exist per (reference_id, commission_type).
type Commission struct {
	ID                int64            `json:"id"`
	SalesID           int64            `json:"sales_id"`
	UserID            int64            `json:"user_id"`
	CommissionType    CommissionType   `json:"commission_type"`
	ReferenceID       int64            `json:"reference_id"`
	TransactionAmount int64            `json:"transaction_amount"`
	CommissionRate    float64          `json:"commission_rate"`
	CommissionAmount  int64            `json:"commission_amount"`
	Status            CommissionStatus `json:"status"`
	PaidAt            *time.Time       `json:"paid_at,omitempty"`
	PayoutReference   string           `json:"payout_reference,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
}

// CommissionAmount computes the agent's cut, rounded to the nearest
// whole unit. The rate is captured at call time so later rate changes
// never alter recorded commissions.
func CommissionAmount(transactionAmount int64, rate float64) int64 {
	return int64(math.Round(float64(transactionAmount) * rate))
}

type CommissionFilter struct {
	SalesID  *int64
	Statuses []CommissionStatus
	Limit    int
	Offset   int
	Desc     bool
}
