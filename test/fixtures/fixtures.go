package fixtures

import (
	"time"

	"github.com/myola/storefront/internal/model"
)

var (
	TestAgentActive = model.SalesAgent{
		ID:             1,
		UserID:         100,
		ReferralCode:   "MYOLA-BUDI",
		CommissionRate: 0.07,
		IsActive:       true,
	}

	TestAgentLowRate = model.SalesAgent{
		ID:             2,
		UserID:         101,
		ReferralCode:   "MYOLA-SITI",
		CommissionRate: 0.03,
		IsActive:       true,
	}

	TestAgentInactive = model.SalesAgent{
		ID:             3,
		UserID:         102,
		ReferralCode:   "MYOLA-GONE",
		CommissionRate: 0.07,
		IsActive:       false,
	}
)

func NewTestMembershipRegisterRequest(userID int64, referralCode string) model.MembershipRegisterRequest {
	return model.MembershipRegisterRequest{
		UserID:       userID,
		ReferralCode: referralCode,
	}
}

func NewTestPaymentEvent(userID int64, amount int64, reference string) model.PaymentEvent {
	return model.PaymentEvent{
		UserID:     userID,
		AmountPaid: amount,
		Reference:  reference,
		Method:     "bank_transfer",
	}
}

func NewTestOrderCreateRequest(userID int64, kind model.OrderKind, subtotal, cashback int64) model.OrderCreateRequest {
	return model.OrderCreateRequest{
		UserID:        userID,
		Kind:          kind,
		Subtotal:      subtotal,
		TotalPayment:  subtotal,
		CashbackTotal: cashback,
		Items: []model.OrderItem{
			{Name: "test-item", Quantity: 1, Price: subtotal},
		},
	}
}

func NewTestPointTransaction(userID, seq, amount, balanceAfter int64, txType model.TransactionType) *model.PointTransaction {
	return &model.PointTransaction{
		UserID:       userID,
		Seq:          seq,
		Type:         txType,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		CreatedAt:    time.Now(),
	}
}
