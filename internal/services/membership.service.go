package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/myola/storefront/internal/model"
	"github.com/myola/storefront/internal/repository"
	"github.com/myola/storefront/pkg/logger"
)

var (
	ErrAlreadyMember       = errors.New("user already has an active membership")
	ErrNoPendingMembership = errors.New("user has no pending membership")
)

type MembershipRepository interface {
	Create(ctx context.Context, m *model.Membership) (*model.Membership, error)
	GetByID(ctx context.Context, id int64) (*model.Membership, error)
	GetByUserAndStatus(ctx context.Context, userID int64, status model.MembershipStatus) (*model.Membership, error)
	GetPendingForUpdate(ctx context.Context, userID int64) (*model.Membership, error)
	Activate(ctx context.Context, id int64, paymentReference, paymentMethod string, at time.Time) error
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// LedgerAppender is the slice of the ledger service the activation flow
// needs.
type LedgerAppender interface {
	Append(ctx context.Context, tx *model.PointTransaction) (*model.PointTransaction, error)
}

// CommissionRecorder is the slice of the commission service the
// activation and order flows need.
type CommissionRecorder interface {
	Record(ctx context.Context, p CommissionRecordParams) (*model.Commission, bool, error)
}

type MembershipService struct {
	membershipRepo MembershipRepository
	agentRepo      SalesAgentRepository
	referrals      *ReferralService
	ledger         LedgerAppender
	commissions    CommissionRecorder
	fee            int64
	joinBonus      int64
}

func NewMembershipService(
	membershipRepo MembershipRepository,
	agentRepo SalesAgentRepository,
	referrals *ReferralService,
	ledger LedgerAppender,
	commissions CommissionRecorder,
	fee int64,
	joinBonus int64,
) *MembershipService {
	return &MembershipService{
		membershipRepo: membershipRepo,
		agentRepo:      agentRepo,
		referrals:      referrals,
		ledger:         ledger,
		commissions:    commissions,
		fee:            fee,
		joinBonus:      joinBonus,
	}
}

// Register opens a pending membership for the user. A referral code, if
// given, binds the membership to the owning agent; an unknown or
// inactive code is dropped rather than failing the registration, so
// stale marketing links never block a signup. Registering twice returns
// the existing pending membership unchanged.
func (s *MembershipService) Register(ctx context.Context, req model.MembershipRegisterRequest) (*model.Membership, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.membershipRepo.GetByUserAndStatus(ctx, req.UserID, model.MembershipActive); err == nil {
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, repository.ErrMembershipNotFound) {
		return nil, err
	}

	if existing, err := s.membershipRepo.GetByUserAndStatus(ctx, req.UserID, model.MembershipPending); err == nil {
		return existing, nil
	} else if !errors.Is(err, repository.ErrMembershipNotFound) {
		return nil, err
	}

	var salesID *int64
	if req.ReferralCode != "" {
		agent, err := s.referrals.Resolve(ctx, req.ReferralCode)
		switch {
		case err == nil:
			salesID = &agent.ID
		case errors.Is(err, ErrReferralNotFound):
			logger.Warn("membership: referral code did not resolve, registering without agent",
				"user_id", req.UserID, "referral_code", req.ReferralCode)
		default:
			return nil, err
		}
	}

	return s.membershipRepo.Create(ctx, &model.Membership{
		UserID:        req.UserID,
		SalesID:       salesID,
		Status:        model.MembershipPending,
		PaymentAmount: s.fee,
	})
}

// Activate confirms payment of the membership fee. In one transaction it
// flips the pending membership to active, credits the join bonus to the
// member's point ledger, and records the referring agent's commission.
// A repeated activation, concurrent or later, finds no pending row and
// returns the already-active membership unchanged.
func (s *MembershipService) Activate(ctx context.Context, req model.MembershipActivateRequest) (*model.Membership, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var activated *model.Membership
	var repeat bool
	err := s.membershipRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		pending, err := s.membershipRepo.GetPendingForUpdate(ctx, req.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrMembershipNotFound) {
				if active, aerr := s.membershipRepo.GetByUserAndStatus(ctx, req.UserID, model.MembershipActive); aerr == nil {
					activated, repeat = active, true
					return nil
				}
				return ErrNoPendingMembership
			}
			return err
		}

		now := time.Now()
		if err := s.membershipRepo.Activate(ctx, pending.ID, req.PaymentReference, req.PaymentMethod, now); err != nil {
			if errors.Is(err, repository.ErrNotPending) {
				// a concurrent activation won the flip
				if active, aerr := s.membershipRepo.GetByUserAndStatus(ctx, req.UserID, model.MembershipActive); aerr == nil {
					activated, repeat = active, true
					return nil
				}
			}
			return err
		}

		if _, err := s.ledger.Append(ctx, &model.PointTransaction{
			UserID:        pending.UserID,
			Type:          model.TransactionJoinBonus,
			Amount:        s.joinBonus,
			ReferenceType: model.ReferenceMembership,
			ReferenceID:   pending.ID,
			Description:   "membership join bonus",
		}); err != nil {
			return fmt.Errorf("credit join bonus: %w", err)
		}

		if pending.SalesID != nil {
			agent, err := s.agentRepo.GetByID(ctx, *pending.SalesID)
			if err != nil {
				return fmt.Errorf("load referring agent: %w", err)
			}
			if _, _, err := s.commissions.Record(ctx, CommissionRecordParams{
				SalesID:           agent.ID,
				UserID:            pending.UserID,
				Type:              model.CommissionJoinMember,
				ReferenceID:       pending.ID,
				TransactionAmount: pending.PaymentAmount,
				Rate:              agent.CommissionRate,
			}); err != nil {
				return fmt.Errorf("record join commission: %w", err)
			}
		}

		activated, err = s.membershipRepo.GetByID(ctx, pending.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if repeat {
		return activated, nil
	}

	logger.Info("membership activated",
		"membership_id", activated.ID, "user_id", activated.UserID, "payment_reference", req.PaymentReference)
	return activated, nil
}

// Get returns the user's most relevant membership: the active one when
// it exists, otherwise the pending one.
func (s *MembershipService) Get(ctx context.Context, userID int64) (*model.Membership, error) {
	if m, err := s.membershipRepo.GetByUserAndStatus(ctx, userID, model.MembershipActive); err == nil {
		return m, nil
	} else if !errors.Is(err, repository.ErrMembershipNotFound) {
		return nil, err
	}
	return s.membershipRepo.GetByUserAndStatus(ctx, userID, model.MembershipPending)
}
