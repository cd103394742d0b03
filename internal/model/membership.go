package model

import (
	"fmt"
	"time"
)

type MembershipStatus string

const (
	MembershipPending   MembershipStatus = "pending"
	MembershipActive    MembershipStatus = "active"
	MembershipCancelled MembershipStatus = "cancelled"
)

type Membership struct {
	ID               int64            `json:"id"`
	UserID           int64            `json:"user_id"`
	SalesID          *int64           `json:"sales_id,omitempty"`
	Status           MembershipStatus `json:"status"`
	PaymentAmount    int64            `json:"payment_amount"`
	PaymentReference string           `json:"payment_reference,omitempty"`
	PaymentMethod    string           `json:"payment_method,omitempty"`
	ActivatedAt      *time.Time       `json:"activated_at,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

type MembershipRegisterRequest struct {
	UserID       int64
	ReferralCode string
}

func (r MembershipRegisterRequest) Validate() error {
	if r.UserID <= 0 {
		return fmt.Errorf("user_id is required")
	}
	return nil
}

type MembershipActivateRequest struct {
	UserID           int64
	PaymentReference string
	PaymentMethod    string
}

func (r MembershipActivateRequest) Validate() error {
	if r.UserID <= 0 {
		return fmt.Errorf("user_id is required")
	}
	if r.PaymentReference == "" {
		return fmt.Errorf("payment_reference is required")
	}
	return nil
}
