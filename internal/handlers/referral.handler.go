package handlers

import (
	"context"
	"errors"

	"github.com/fasthttp/router"
	"github.com/myola/storefront/internal/model"
	"github.com/myola/storefront/internal/services"
	xhttp "github.com/myola/storefront/pkg/http"
)

type ReferralResolver interface {
	Resolve(ctx context.Context, code string) (*model.SalesAgent, error)
}

type ReferralHandler struct {
	svc ReferralResolver
}

func RegisterReferralRoutes(e *router.Group, h *ReferralHandler) {
	e.GET("/referrals/{code}", h.Lookup)
}

func NewReferralHandler(svc ReferralResolver) *ReferralHandler {
	return &ReferralHandler{
		svc: svc,
	}
}

type referralResponse struct {
	SalesID        int64   `json:"sales_id"`
	ReferralCode   string  `json:"referral_code"`
	CommissionRate float64 `json:"commission_rate"`
}

// Lookup validates a referral code ahead of checkout, so the storefront
// can show who the buyer is crediting before the order exists.
func (h *ReferralHandler) Lookup(ctx *xhttp.RequestCtx) {
	code, _ := ctx.UserValue("code").(string)

	agent, err := h.svc.Resolve(ctx, code)
	if err != nil {
		if errors.Is(err, services.ErrReferralNotFound) {
			writeError(ctx, 404, err.Error())
			return
		}
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, referralResponse{
		SalesID:        agent.ID,
		ReferralCode:   agent.ReferralCode,
		CommissionRate: agent.CommissionRate,
	})
}
