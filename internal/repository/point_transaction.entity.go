package repository

import (
	"time"

	"github.com/myola/storefront/internal/model"
)

type PointTransactionEntity struct {
	ID            int64     `db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	UserID        int64     `db:"user_id"        gorm:"column:user_id;not null;uniqueIndex:idx_point_user_seq,priority:1"`
	Seq           int64     `db:"seq"            gorm:"column:seq;not null;uniqueIndex:idx_point_user_seq,priority:2"`
	Type          string    `db:"type"           gorm:"column:type;not null;index"`
	Amount        int64     `db:"amount"         gorm:"column:amount;not null"`
	BalanceAfter  int64     `db:"balance_after"  gorm:"column:balance_after;not null"`
	ReferenceType string    `db:"reference_type" gorm:"column:reference_type"`
	ReferenceID   int64     `db:"reference_id"   gorm:"column:reference_id"`
	Description   string    `db:"description"    gorm:"column:description"`
	CreatedAt     time.Time `db:"created_at"     gorm:"column:created_at"`
}

func (PointTransactionEntity) TableName() string {
	return "point_transactions"
}

func toPointTransactionEntity(m *model.PointTransaction) *PointTransactionEntity {
	if m == nil {
		return nil
	}
	return &PointTransactionEntity{
		ID:            m.ID,
		UserID:        m.UserID,
		Seq:           m.Seq,
		Type:          string(m.Type),
		Amount:        m.Amount,
		BalanceAfter:  m.BalanceAfter,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		Description:   m.Description,
		CreatedAt:     m.CreatedAt,
	}
}

func toPointTransactionModel(e *PointTransactionEntity) *model.PointTransaction {
	if e == nil {
		return nil
	}
	return &model.PointTransaction{
		ID:            e.ID,
		UserID:        e.UserID,
		Seq:           e.Seq,
		Type:          model.TransactionType(e.Type),
		Amount:        e.Amount,
		BalanceAfter:  e.BalanceAfter,
		ReferenceType: e.ReferenceType,
		ReferenceID:   e.ReferenceID,
		Description:   e.Description,
		CreatedAt:     e.CreatedAt,
	}
}

func toPointTransactionModels(entities []*PointTransactionEntity) []*model.PointTransaction {
	if entities == nil {
		return nil
	}
	models := make([]*model.PointTransaction, len(entities))
	for i, e := range entities {
		models[i] = toPointTransactionModel(e)
	}
	return models
}
