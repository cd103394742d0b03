package repository

import (
	"context"
	"errors"
	"time"

	"github.com/myola/storefront/internal/model"
	"github.com/myola/storefront/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrMembershipNotFound = errors.New("membership not found")
	ErrNotPending         = errors.New("membership is not pending")
)

type MembershipRepository struct {
	*pg.DB
}

func NewMembershipRepository(db *pg.DB) *MembershipRepository {
	return &MembershipRepository{
		db,
	}
}

func (r *MembershipRepository) Create(ctx context.Context, m *model.Membership) (*model.Membership, error) {
	entity := toMembershipEntity(m)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toMembershipModel(entity), nil
}

func (r *MembershipRepository) GetByID(ctx context.Context, id int64) (*model.Membership, error) {
	var entity MembershipEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}
	return toMembershipModel(&entity), nil
}

func (r *MembershipRepository) GetByUserAndStatus(ctx context.Context, userID int64, status model.MembershipStatus) (*model.Membership, error) {
	var entity MembershipEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, string(status)).
		Order("id DESC").
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}
	return toMembershipModel(&entity), nil
}

// GetPendingForUpdate loads the user's pending membership and locks the
// row for the remainder of the surrounding transaction, so two
// concurrent activations cannot both observe it as pending.
func (r *MembershipRepository) GetPendingForUpdate(ctx context.Context, userID int64) (*model.Membership, error) {
	var entity MembershipEntity
	err := r.Write(ctx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND status = ?", userID, string(model.MembershipPending)).
		Order("id DESC").
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}
	return toMembershipModel(&entity), nil
}

// Activate flips a pending membership to active. The status predicate in
// the WHERE clause makes the flip conditional: RowsAffected == 0 means
// the row was no longer pending and the caller must treat the call as a
// repeat.
func (r *MembershipRepository) Activate(ctx context.Context, id int64, paymentReference, paymentMethod string, at time.Time) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&MembershipEntity{}).
		Where("id = ? AND status = ?", id, string(model.MembershipPending)).
		Updates(map[string]interface{}{
			"status":            string(model.MembershipActive),
			"payment_reference": paymentReference,
			"payment_method":    paymentMethod,
			"activated_at":      at,
			"updated_at":        at,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}
