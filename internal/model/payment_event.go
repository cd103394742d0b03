package model

import "fmt"

// PaymentEvent is the inbound "payment confirmed" signal. By the time it
// reaches this core the payment has already been verified by the gateway.
type PaymentEvent struct {
	UserID     int64  `json:"user_id"`
	AmountPaid int64  `json:"amount_paid"`
	Reference  string `json:"reference"`
	Method     string `json:"method"`
}

func (e PaymentEvent) Validate() error {
	if e.UserID <= 0 {
		return fmt.Errorf("user_id is required")
	}
	if e.Reference == "" {
		return fmt.Errorf("reference is required")
	}
	if e.AmountPaid <= 0 {
		return fmt.Errorf("amount_paid must be positive")
	}
	return nil
}
