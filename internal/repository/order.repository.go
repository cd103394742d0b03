package repository

import (
	"context"
	"errors"
	"time"

	"github.com/myola/storefront/internal/model"
	"github.com/myola/storefront/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrStatusConflict = errors.New("order is not in the expected status")
)

type OrderRepository struct {
	*pg.DB
}

func NewOrderRepository(db *pg.DB) *OrderRepository {
	return &OrderRepository{
		db,
	}
}

func (r *OrderRepository) Create(ctx context.Context, o *model.Order) (*model.Order, error) {
	entity := toOrderEntity(o)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toOrderModel(entity), nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var entity OrderEntity
	err := r.Read(ctx).WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return toOrderModel(&entity), nil
}

func (r *OrderRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	var entity OrderEntity
	err := r.Read(ctx).WithContext(ctx).
		Preload("Items").
		Where("order_number = ?", orderNumber).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return toOrderModel(&entity), nil
}

// UpdateStatusIf moves an order from one status to another in a single
// conditional statement. RowsAffected == 0 means the order was not in
// the expected status, so a concurrent transition already won.
func (r *OrderRepository) UpdateStatusIf(ctx context.Context, id int64, from, to model.OrderStatus, proofImageURL string, at time.Time) error {
	updates := map[string]interface{}{
		"status":     string(to),
		"updated_at": at,
	}
	if proofImageURL != "" {
		updates["proof_image_url"] = proofImageURL
	}
	if to == model.OrderCompleted {
		updates["completed_at"] = at
	}

	result := r.Write(ctx).WithContext(ctx).
		Model(&OrderEntity{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (r *OrderRepository) List(ctx context.Context, filter model.OrderFilter) ([]*model.Order, error) {
	query := r.Read(ctx).WithContext(ctx).Model(&OrderEntity{}).Preload("Items")

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.SalesID != nil {
		query = query.Where("sales_id = ?", *filter.SalesID)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		query = query.Where("status IN ?", statuses)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Desc {
		query = query.Order("id DESC")
	} else {
		query = query.Order("id ASC")
	}

	var entities []*OrderEntity
	if err := query.Find(&entities).Error; err != nil {
		return nil, err
	}
	return toOrderModels(entities), nil
}
