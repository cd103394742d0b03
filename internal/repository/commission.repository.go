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
	ErrCommissionNotFound = errors.New("commission not found")
	ErrCommissionExists   = errors.New("commission already recorded for reference")
	ErrNotPendingPayout   = errors.New("commission is not pending payout")
)

type CommissionRepository struct {
	*pg.DB
}

func NewCommissionRepository(db *pg.DB) *CommissionRepository {
	return &CommissionRepository{
		db,
	}
}

// Create inserts one commission row. The (reference_id, commission_type)
// unique index turns a duplicate trigger into ErrCommissionExists, which
// callers treat as a no-op repeat rather than a failure.
func (r *CommissionRepository) Create(ctx context.Context, c *model.Commission) (*model.Commission, error) {
	entity := toCommissionEntity(c)
	entity.ID = 0
	if entity.CreatedAt.IsZero() {
		entity.CreatedAt = time.Now()
	}

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		if pg.IsDuplicateKey(err) {
			return nil, ErrCommissionExists
		}
		return nil, err
	}

	return toCommissionModel(entity), nil
}

func (r *CommissionRepository) GetByID(ctx context.Context, id int64) (*model.Commission, error) {
	var entity CommissionEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommissionNotFound
		}
		return nil, err
	}
	return toCommissionModel(&entity), nil
}

func (r *CommissionRepository) GetByReference(ctx context.Context, referenceID int64, commissionType model.CommissionType) (*model.Commission, error) {
	var entity CommissionEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("reference_id = ? AND commission_type = ?", referenceID, string(commissionType)).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommissionNotFound
		}
		return nil, err
	}
	return toCommissionModel(&entity), nil
}

// MarkPaid flips a pending commission to paid. RowsAffected == 0 means
// the row was already paid, or does not exist.
func (r *CommissionRepository) MarkPaid(ctx context.Context, id int64, payoutReference string, at time.Time) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&CommissionEntity{}).
		Where("id = ? AND status = ?", id, string(model.CommissionPending)).
		Updates(map[string]interface{}{
			"status":           string(model.CommissionPaid),
			"payout_reference": payoutReference,
			"paid_at":          at,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotPendingPayout
	}
	return nil
}

func (r *CommissionRepository) List(ctx context.Context, filter model.CommissionFilter) ([]*model.Commission, error) {
	query := r.Read(ctx).WithContext(ctx).Model(&CommissionEntity{})

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

	var entities []*CommissionEntity
	if err := query.Find(&entities).Error; err != nil {
		return nil, err
	}
	return toCommissionModels(entities), nil
}
