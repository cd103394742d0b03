package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/myola/storefront/internal/model"
	"github.com/myola/storefront/internal/repository"
	"github.com/myola/storefront/pkg/prom"
)

var (
	ErrInvalidTransactionType = errors.New("invalid point transaction type")
	ErrNonPositiveAmount      = errors.New("transaction amount must be positive")
	ErrInsufficientBalance    = errors.New("insufficient point balance")
)

type LedgerRepository interface {
	Append(ctx context.Context, tx *model.PointTransaction) (*model.PointTransaction, error)
	GetBalance(ctx context.Context, userID int64) (int64, error)
	List(ctx context.Context, f model.TransactionFilter) ([]*model.PointTransaction, error)
}

type LedgerService struct {
	ledgerRepo LedgerRepository
}

func NewLedgerService(ledgerRepo LedgerRepository) *LedgerService {
	return &LedgerService{
		ledgerRepo: ledgerRepo,
	}
}

// Append validates and writes one ledger entry. Callers pass positive
// magnitudes; debit types are stored negative by the repository. The
// repository assigns the sequence number and running balance; callers
// never supply either.
func (s *LedgerService) Append(ctx context.Context, tx *model.PointTransaction) (*model.PointTransaction, error) {
	if tx.UserID <= 0 {
		return nil, fmt.Errorf("user_id is required")
	}
	if !tx.Type.Valid() {
		return nil, ErrInvalidTransactionType
	}
	if tx.Amount <= 0 {
		return nil, ErrNonPositiveAmount
	}

	start := time.Now()
	created, err := s.ledgerRepo.Append(ctx, tx)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientBalance) {
			return nil, ErrInsufficientBalance
		}
		return nil, fmt.Errorf("append ledger entry: %w", err)
	}
	prom.AddLedgerAppendDuration(time.Since(start).Seconds(), string(tx.Type))

	return created, nil
}

// Redeem debits points from a user's account for an off-platform
// benefit. The ledger rejects the debit when the balance cannot cover
// it, leaving the account untouched.
func (s *LedgerService) Redeem(ctx context.Context, userID, amount int64, description string) (*model.PointTransaction, error) {
	return s.Append(ctx, &model.PointTransaction{
		UserID:        userID,
		Type:          model.TransactionRedeem,
		Amount:        amount,
		ReferenceType: model.ReferenceAdmin,
		Description:   description,
	})
}

func (s *LedgerService) GetBalance(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("user_id is required")
	}
	return s.ledgerRepo.GetBalance(ctx, userID)
}

func (s *LedgerService) List(ctx context.Context, f model.TransactionFilter) ([]*model.PointTransaction, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 100
	}
	return s.ledgerRepo.List(ctx, f)
}
