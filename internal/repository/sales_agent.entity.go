package repository

import (
	"time"

	"github.com/myola/storefront/internal/model"
)

type SalesAgentEntity struct {
	ID             int64     `db:"id"              gorm:"primaryKey;autoIncrement;column:id"`
	UserID         int64     `db:"user_id"         gorm:"column:user_id;not null;index"`
	ReferralCode   string    `db:"referral_code"   gorm:"column:referral_code;not null;uniqueIndex"`
	CommissionRate float64   `db:"commission_rate" gorm:"column:commission_rate;not null;default:0.07"`
	IsActive       bool      `db:"is_active"       gorm:"column:is_active;not null"`
	CreatedAt      time.Time `db:"created_at"      gorm:"column:created_at"`
}

func (SalesAgentEntity) TableName() string {
	return "sales_agents"
}

func toSalesAgentEntity(m *model.SalesAgent) *SalesAgentEntity {
	if m == nil {
		return nil
	}
	return &SalesAgentEntity{
		ID:             m.ID,
		UserID:         m.UserID,
		ReferralCode:   m.ReferralCode,
		CommissionRate: m.CommissionRate,
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt,
	}
}

func toSalesAgentModel(e *SalesAgentEntity) *model.SalesAgent {
	if e == nil {
		return nil
	}
	return &model.SalesAgent{
		ID:             e.ID,
		UserID:         e.UserID,
		ReferralCode:   e.ReferralCode,
		CommissionRate: e.CommissionRate,
		IsActive:       e.IsActive,
		CreatedAt:      e.CreatedAt,
	}
}
