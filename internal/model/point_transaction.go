package model

import (
	"errors"
	"time"
)

type TransactionType string

const (
	TransactionJoinBonus        TransactionType = "join_bonus"
	TransactionPurchaseCashback TransactionType = "purchase_cashback"
	TransactionRedeem           TransactionType = "redeem"
	TransactionReferralBonus    TransactionType = "referral_bonus"
	TransactionAdminAdjustment  TransactionType = "admin_adjustment"
)

var ErrUnknownTransactionType = errors.New("unknown point transaction type")

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionJoinBonus, TransactionPurchaseCashback, TransactionRedeem,
		TransactionReferralBonus, TransactionAdminAdjustment:
		return true
	}
	return false
}

// IsDebit reports whether the type removes points from the account.
func (t TransactionType) IsDebit() bool {
	return t == TransactionRedeem
}

// PointTransaction is one immutable row of a user's point ledger.
// Amount is signed: debit rows carry a negative amount, so
// BalanceAfter of any row equals the sum of all amounts up to it. The
// account balance is always the BalanceAfter of the newest row; it is
// never recomputed by summing history on the read path.
type PointTransaction struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	Seq           int64           `json:"seq"`
	Type          TransactionType `json:"type"`
	Amount        int64           `json:"amount"`
	BalanceAfter  int64           `json:"balance_after"`
	ReferenceType string          `json:"reference_type,omitempty"`
	ReferenceID   int64           `json:"reference_id,omitempty"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type TransactionFilter struct {
	UserID *int64
	Types  []TransactionType
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
	Desc   bool
}

// LedgerReference links a ledger row back to the entity that caused it.
type LedgerReference struct {
	Type string
	ID   int64
}

const (
	ReferenceMembership = "membership"
	ReferenceOrder      = "order"
	ReferenceAdmin      = "admin"
)
