package services

import (
	"context"
	"testing"

	"github.com/myola/storefront/internal/model"
	"github.com/myola/storefront/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReferralService_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves to the owning agent", func(t *testing.T) {
		repo := new(MockSalesAgentRepository)
		svc := NewReferralService(repo)

		agent := &model.SalesAgent{ID: 1, ReferralCode: "MYOLA-BUDI", CommissionRate: 0.07, IsActive: true}
		repo.On("GetActiveByCode", ctx, "MYOLA-BUDI").Return(agent, nil)

		got, err := svc.Resolve(ctx, " MYOLA-BUDI ")
		require.NoError(t, err)
		assert.Equal(t, agent.ID, got.ID)
	})

	t.Run("unknown code", func(t *testing.T) {
		repo := new(MockSalesAgentRepository)
		svc := NewReferralService(repo)

		repo.On("GetActiveByCode", ctx, "MYOLA-NOPE").Return(nil, repository.ErrAgentNotFound)

		_, err := svc.Resolve(ctx, "MYOLA-NOPE")
		assert.ErrorIs(t, err, ErrReferralNotFound)
	})

	t.Run("blank code never hits the store", func(t *testing.T) {
		repo := new(MockSalesAgentRepository)
		svc := NewReferralService(repo)

		_, err := svc.Resolve(ctx, "   ")
		assert.ErrorIs(t, err, ErrReferralNotFound)
		repo.AssertNotCalled(t, "GetActiveByCode", mock.Anything, mock.Anything)
	})
}
