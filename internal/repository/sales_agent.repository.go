package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/myola/storefront/internal/model"
	"github.com/myola/storefront/pkg/pg"
	"gorm.io/gorm"
)

var ErrAgentNotFound = errors.New("sales agent not found")

type SalesAgentRepository struct {
	*pg.DB
}

func NewSalesAgentRepository(db *pg.DB) *SalesAgentRepository {
	return &SalesAgentRepository{
		db,
	}
}

func (r *SalesAgentRepository) Create(ctx context.Context, agent *model.SalesAgent) (*model.SalesAgent, error) {
	entity := toSalesAgentEntity(agent)
	entity.ReferralCode = strings.ToUpper(strings.TrimSpace(entity.ReferralCode))

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toSalesAgentModel(entity), nil
}

func (r *SalesAgentRepository) GetByID(ctx context.Context, id int64) (*model.SalesAgent, error) {
	var entity SalesAgentEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgentNotFound
		}
		return nil, err
	}
	return toSalesAgentModel(&entity), nil
}

// GetActiveByCode resolves a referral code to an active agent. The match
// is case-insensitive; codes of deactivated agents do not resolve.
func (r *SalesAgentRepository) GetActiveByCode(ctx context.Context, code string) (*model.SalesAgent, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	var entity SalesAgentEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("UPPER(referral_code) = ? AND is_active = ?", code, true).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgentNotFound
		}
		return nil, err
	}
	return toSalesAgentModel(&entity), nil
}
