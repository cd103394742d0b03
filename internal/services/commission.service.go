package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/myola/storefront/internal/model"
	"github.com/myola/storefront/internal/repository"
)

var (
	ErrCommissionNotFound = errors.New("commission not found")
	ErrAlreadyPaid        = errors.New("commission already paid out")
)

type CommissionRepository interface {
	Create(ctx context.Context, c *model.Commission) (*model.Commission, error)
	GetByID(ctx context.Context, id int64) (*model.Commission, error)
	GetByReference(ctx context.Context, referenceID int64, commissionType model.CommissionType) (*model.Commission, error)
	MarkPaid(ctx context.Context, id int64, payoutReference string, at time.Time) error
	List(ctx context.Context, f model.CommissionFilter) ([]*model.Commission, error)
}

type CommissionService struct {
	commissionRepo CommissionRepository
}

func NewCommissionService(commissionRepo CommissionRepository) *CommissionService {
	return &CommissionService{
		commissionRepo: commissionRepo,
	}
}

type CommissionRecordParams struct {
	SalesID           int64
	UserID            int64
	Type              model.CommissionType
	ReferenceID       int64
	TransactionAmount int64
	Rate              float64
}

// Record writes one commission for a triggering event, computing the
// payout from the agent's rate as it stands right now. A repeat of the
// same (reference, type) pair returns the existing row with skipped set,
// so callers can retry their surrounding flow safely.
func (s *CommissionService) Record(ctx context.Context, p CommissionRecordParams) (*model.Commission, bool, error) {
	if p.SalesID <= 0 {
		return nil, false, fmt.Errorf("sales_id is required")
	}
	if p.TransactionAmount <= 0 {
		return nil, false, fmt.Errorf("transaction amount must be positive")
	}
	if p.Rate < 0 || p.Rate > 1 {
		return nil, false, fmt.Errorf("commission rate out of range: %f", p.Rate)
	}

	created, err := s.commissionRepo.Create(ctx, &model.Commission{
		SalesID:           p.SalesID,
		UserID:            p.UserID,
		CommissionType:    p.Type,
		ReferenceID:       p.ReferenceID,
		TransactionAmount: p.TransactionAmount,
		CommissionRate:    p.Rate,
		CommissionAmount:  model.CommissionAmount(p.TransactionAmount, p.Rate),
		Status:            model.CommissionPending,
	})
	if err != nil {
		if errors.Is(err, repository.ErrCommissionExists) {
			existing, getErr := s.commissionRepo.GetByReference(ctx, p.ReferenceID, p.Type)
			if getErr != nil {
				return nil, false, getErr
			}
			return existing, true, nil
		}
		return nil, false, fmt.Errorf("record commission: %w", err)
	}
	return created, false, nil
}

// MarkPaid settles a pending commission. Paying an already-paid
// commission is rejected, so the payout reference of the first
// settlement always survives.
func (s *CommissionService) MarkPaid(ctx context.Context, id int64, payoutReference string) (*model.Commission, error) {
	err := s.commissionRepo.MarkPaid(ctx, id, payoutReference, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrNotPendingPayout) {
			if _, getErr := s.commissionRepo.GetByID(ctx, id); errors.Is(getErr, repository.ErrCommissionNotFound) {
				return nil, ErrCommissionNotFound
			}
			return nil, ErrAlreadyPaid
		}
		return nil, err
	}
	return s.commissionRepo.GetByID(ctx, id)
}

func (s *CommissionService) List(ctx context.Context, f model.CommissionFilter) ([]*model.Commission, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 100
	}
	return s.commissionRepo.List(ctx, f)
}
