package model

import "time"

// SalesAgent is a referral-code holder. Agents are looked up, never
// mutated, by the referral resolver and the commission engine.
type SalesAgent struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	ReferralCode   string    `json:"referral_code"`
	CommissionRate float64   `json:"commission_rate"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// DefaultCommissionRate applies to agents created without an explicit rate.
const DefaultCommissionRate = 0.07
