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
	ErrInsufficientBalance = errors.New("insufficient point balance")
	ErrLedgerContention    = errors.New("ledger append lost too many races")
)

// appendAttempts bounds the optimistic retry loop in Append.
const appendAttempts = 5

type PointTransactionRepository struct {
	*pg.DB
}

func NewPointTransactionRepository(db *pg.DB) *PointTransactionRepository {
	return &PointTransactionRepository{
		db,
	}
}

// Append writes one new ledger row for the user. The tail row is read
// under FOR UPDATE so concurrent appends for the same user serialize on
// it. The composite unique index on (user_id, seq) backstops the one
// race the lock cannot cover, two writers creating a user's first row;
// that conflict re-reads the tail and tries again, up to appendAttempts
// times.
func (r *PointTransactionRepository) Append(ctx context.Context, tx *model.PointTransaction) (*model.PointTransaction, error) {
	for attempt := 0; attempt < appendAttempts; attempt++ {
		var seq, balance int64 = 1, 0
		var tail PointTransactionEntity
		err := r.Write(ctx).WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", tx.UserID).
			Order("seq DESC").
			First(&tail).
			Error
		switch {
		case err == nil:
			seq = tail.Seq + 1
			balance = tail.BalanceAfter
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}

		// debits are stored negative, so summing a user's amounts in
		// order always reproduces the running balance
		amount := tx.Amount
		if tx.Type.IsDebit() && amount > 0 {
			amount = -amount
		}
		if balance+amount < 0 {
			return nil, ErrInsufficientBalance
		}

		entity := toPointTransactionEntity(tx)
		entity.ID = 0
		entity.Seq = seq
		entity.Amount = amount
		entity.BalanceAfter = balance + amount
		if entity.CreatedAt.IsZero() {
			entity.CreatedAt = time.Now()
		}

		err = r.Write(ctx).WithContext(ctx).Create(entity).Error
		if err == nil {
			return toPointTransactionModel(entity), nil
		}
		if !pg.IsDuplicateKey(err) {
			return nil, err
		}
	}
	return nil, ErrLedgerContention
}

// GetLatest returns the newest ledger row for the user, or nil when the
// user has no history yet.
func (r *PointTransactionRepository) GetLatest(ctx context.Context, userID int64) (*model.PointTransaction, error) {
	var entity PointTransactionEntity
	err := r.Write(ctx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("seq DESC").
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toPointTransactionModel(&entity), nil
}

// GetBalance is the BalanceAfter of the newest row; zero for a user
// with no history.
func (r *PointTransactionRepository) GetBalance(ctx context.Context, userID int64) (int64, error) {
	tail, err := r.GetLatest(ctx, userID)
	if err != nil {
		return 0, err
	}
	if tail == nil {
		return 0, nil
	}
	return tail.BalanceAfter, nil
}

func (r *PointTransactionRepository) List(ctx context.Context, filter model.TransactionFilter) ([]*model.PointTransaction, error) {
	query := r.Read(ctx).WithContext(ctx).Model(&PointTransactionEntity{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if len(filter.Types) > 0 {
		types := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			types[i] = string(t)
		}
		query = query.Where("type IN ?", types)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Desc {
		query = query.Order("user_id ASC, seq DESC")
	} else {
		query = query.Order("user_id ASC, seq ASC")
	}

	var entities []*PointTransactionEntity
	if err := query.Find(&entities).Error; err != nil {
		return nil, err
	}
	return toPointTransactionModels(entities), nil
}
