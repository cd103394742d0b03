package services

import (
	"context"
	"errors"
	"strings"

	"github.com/myola/storefront/internal/model"
	"github.com/myola/storefront/internal/repository"
)

var ErrReferralNotFound = errors.New("referral code not found")

type SalesAgentRepository interface {
	GetActiveByCode(ctx context.Context, code string) (*model.SalesAgent, error)
	GetByID(ctx context.Context, id int64) (*model.SalesAgent, error)
}

type ReferralService struct {
	agentRepo SalesAgentRepository
}

func NewReferralService(agentRepo SalesAgentRepository) *ReferralService {
	return &ReferralService{
		agentRepo: agentRepo,
	}
}

// Resolve maps a referral code to its active owning agent. Unknown
// codes and codes of deactivated agents both come back as
// ErrReferralNotFound; the caller decides whether that is fatal.
func (s *ReferralService) Resolve(ctx context.Context, code string) (*model.SalesAgent, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrReferralNotFound
	}

	agent, err := s.agentRepo.GetActiveByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrAgentNotFound) {
			return nil, ErrReferralNotFound
		}
		return nil, err
	}
	return agent, nil
}
