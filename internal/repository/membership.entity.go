package repository

import (
	"time"

	"github.com/myola/storefront/internal/model"
)

type MembershipEntity struct {
	ID               int64      `db:"id"                gorm:"primaryKey;autoIncrement;column:id"`
	UserID           int64      `db:"user_id"           gorm:"column:user_id;not null;index"`
	SalesID          *int64     `db:"sales_id"          gorm:"column:sales_id;index"`
	Status           string     `db:"status"            gorm:"column:status;not null;default:pending;index"`
	PaymentAmount    int64      `db:"payment_amount"    gorm:"column:payment_amount;not null"`
	PaymentReference string     `db:"payment_reference" gorm:"column:payment_reference"`
	PaymentMethod    string     `db:"payment_method"    gorm:"column:payment_method"`
	ActivatedAt      *time.Time `db:"activated_at"      gorm:"column:activated_at"`
	CreatedAt        time.Time  `db:"created_at"        gorm:"column:created_at"`
	UpdatedAt        time.Time  `db:"updated_at"        gorm:"column:updated_at"`
}

func (MembershipEntity) TableName() string {
	return "memberships"
}

func toMembershipEntity(m *model.Membership) *MembershipEntity {
	if m == nil {
		return nil
	}
	return &MembershipEntity{
		ID:               m.ID,
		UserID:           m.UserID,
		SalesID:          m.SalesID,
		Status:           string(m.Status),
		PaymentAmount:    m.PaymentAmount,
		PaymentReference: m.PaymentReference,
		PaymentMethod:    m.PaymentMethod,
		ActivatedAt:      m.ActivatedAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func toMembershipModel(e *MembershipEntity) *model.Membership {
	if e == nil {
		return nil
	}
	return &model.Membership{
		ID:               e.ID,
		UserID:           e.UserID,
		SalesID:          e.SalesID,
		Status:           model.MembershipStatus(e.Status),
		PaymentAmount:    e.PaymentAmount,
		PaymentReference: e.PaymentReference,
		PaymentMethod:    e.PaymentMethod,
		ActivatedAt:      e.ActivatedAt,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}
