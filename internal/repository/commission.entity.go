package repository

import (
	"time"

	"github.com/myola/storefront/internal/model"
)

type CommissionEntity struct {
	ID                int64      `db:"id"                 gorm:"primaryKey;autoIncrement;column:id"`
	SalesID           int64      `db:"sales_id"           gorm:"column:sales_id;not null;index"`
	UserID            int64      `db:"user_id"            gorm:"column:user_id;not null"`
	CommissionType    string     `db:"commission_type"    gorm:"column:commission_type;not null;uniqueIndex:idx_commission_ref,priority:2"`
	ReferenceID       int64      `db:"reference_id"       gorm:"column:reference_id;not null;uniqueIndex:idx_commission_ref,priority:1"`
	TransactionAmount int64      `db:"transaction_amount" gorm:"column:transaction_amount;not null"`
	CommissionRate    float64    `db:"commission_rate"    gorm:"column:commission_rate;not null"`
	CommissionAmount  int64      `db:"commission_amount"  gorm:"column:commission_amount;not null"`
	Status            string     `db:"status"             gorm:"column:status;not null;default:pending;index"`
	PaidAt            *time.Time `db:"paid_at"            gorm:"column:paid_at"`
	PayoutReference   string     `db:"payout_reference"   gorm:"column:payout_reference"`
	CreatedAt         time.Time  `db:"created_at"         gorm:"column:created_at"`
}

func (CommissionEntity) TableName() string {
	return "commissions"
}

func toCommissionEntity(m *model.Commission) *CommissionEntity {
	if m == nil {
		return nil
	}
	return &CommissionEntity{
		ID:                m.ID,
		SalesID:           m.SalesID,
		UserID:            m.UserID,
		CommissionType:    string(m.CommissionType),
		ReferenceID:       m.ReferenceID,
		TransactionAmount: m.TransactionAmount,
		CommissionRate:    m.CommissionRate,
		CommissionAmount:  m.CommissionAmount,
		Status:            string(m.Status),
		PaidAt:            m.PaidAt,
		PayoutReference:   m.PayoutReference,
		CreatedAt:         m.CreatedAt,
	}
}

func toCommissionModel(e *CommissionEntity) *model.Commission {
	if e == nil {
		return nil
	}
	return &model.Commission{
		ID:                e.ID,
		SalesID:           e.SalesID,
		UserID:            e.UserID,
		CommissionType:    model.CommissionType(e.CommissionType),
		ReferenceID:       e.ReferenceID,
		TransactionAmount: e.TransactionAmount,
		CommissionRate:    e.CommissionRate,
		CommissionAmount:  e.CommissionAmount,
		Status:            model.CommissionStatus(e.Status),
		PaidAt:            e.PaidAt,
		PayoutReference:   e.PayoutReference,
		CreatedAt:         e.CreatedAt,
	}
}

func toCommissionModels(entities []*CommissionEntity) []*model.Commission {
	if entities == nil {
		return nil
	}
	models := make([]*model.Commission, len(entities))
	for i, e := range entities {
		models[i] = toCommissionModel(e)
	}
	return models
}
