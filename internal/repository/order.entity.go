package repository

import (
	"time"

	"github.com/myola/storefront/internal/model"
)

type OrderEntity struct {
	ID             int64      `db:"id"              gorm:"primaryKey;autoIncrement;column:id"`
	OrderNumber    string     `db:"order_number"    gorm:"column:order_number;not null;uniqueIndex"`
	UserID         int64      `db:"user_id"         gorm:"column:user_id;not null;index"`
	SalesID        *int64     `db:"sales_id"        gorm:"column:sales_id;index"`
	Kind           string     `db:"kind"            gorm:"column:kind;not null"`
	Status         string     `db:"status"          gorm:"column:status;not null;default:processing;index"`
	Subtotal       int64      `db:"subtotal"        gorm:"column:subtotal;not null"`
	TotalPayment   int64      `db:"total_payment"   gorm:"column:total_payment;not null"`
	CashbackEarned int64      `db:"cashback_earned" gorm:"column:cashback_earned;not null"`
	ProofImageURL  string     `db:"proof_image_url" gorm:"column:proof_image_url"`
	CompletedAt    *time.Time `db:"completed_at"    gorm:"column:completed_at"`
	CreatedAt      time.Time  `db:"created_at"      gorm:"column:created_at"`
	UpdatedAt      time.Time  `db:"updated_at"      gorm:"column:updated_at"`

	Items []OrderItemEntity `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
}

func (OrderEntity) TableName() string {
	return "orders"
}

type OrderItemEntity struct {
	ID       int64  `db:"id"       gorm:"primaryKey;autoIncrement;column:id"`
	OrderID  int64  `db:"order_id" gorm:"column:order_id;not null;index"`
	Name     string `db:"name"     gorm:"column:name;not null"`
	Quantity int    `db:"quantity" gorm:"column:quantity;not null"`
	Price    int64  `db:"price"    gorm:"column:price;not null"`
}

func (OrderItemEntity) TableName() string {
	return "order_items"
}

func toOrderEntity(m *model.Order) *OrderEntity {
	if m == nil {
		return nil
	}
	e := &OrderEntity{
		ID:             m.ID,
		OrderNumber:    m.OrderNumber,
		UserID:         m.UserID,
		SalesID:        m.SalesID,
		Kind:           string(m.Kind),
		Status:         string(m.Status),
		Subtotal:       m.Subtotal,
		TotalPayment:   m.TotalPayment,
		CashbackEarned: m.CashbackEarned,
		ProofImageURL:  m.ProofImageURL,
		CompletedAt:    m.CompletedAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	for _, it := range m.Items {
		e.Items = append(e.Items, OrderItemEntity{
			ID:       it.ID,
			OrderID:  it.OrderID,
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    it.Price,
		})
	}
	return e
}

func toOrderModel(e *OrderEntity) *model.Order {
	if e == nil {
		return nil
	}
	m := &model.Order{
		ID:             e.ID,
		OrderNumber:    e.OrderNumber,
		UserID:         e.UserID,
		SalesID:        e.SalesID,
		Kind:           model.OrderKind(e.Kind),
		Status:         model.OrderStatus(e.Status),
		Subtotal:       e.Subtotal,
		TotalPayment:   e.TotalPayment,
		CashbackEarned: e.CashbackEarned,
		ProofImageURL:  e.ProofImageURL,
		CompletedAt:    e.CompletedAt,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
	for _, it := range e.Items {
		m.Items = append(m.Items, model.OrderItem{
			ID:       it.ID,
			OrderID:  it.OrderID,
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    it.Price,
		})
	}
	return m
}

func toOrderModels(entities []*OrderEntity) []*model.Order {
	if entities == nil {
		return nil
	}
	models := make([]*model.Order, len(entities))
	for i, e := range entities {
		models[i] = toOrderModel(e)
	}
	return models
}
