package handlers

import (
	"context"
	"errors"

	"github.com/fasthttp/router"
	"github.com/myola/storefront/internal/model"
	"github.com/myola/storefront/internal/services"
	xhttp "github.com/myola/storefront/pkg/http"
)

type MembershipService interface {
	Register(ctx context.Context, req model.MembershipRegisterRequest) (*model.Membership, error)
	Activate(ctx context.Context, req model.MembershipActivateRequest) (*model.Membership, error)
	Get(ctx context.Context, userID int64) (*model.Membership, error)
}

type MembershipHandler struct {
	svc MembershipService
}

func RegisterMembershipRoutes(e *router.Group, h *MembershipHandler) {
	e.POST("/memberships", h.Register)
	e.POST("/memberships/activate", h.Activate)
	e.GET("/memberships", h.Get)
}

func NewMembershipHandler(svc MembershipService) *MembershipHandler {
	return &MembershipHandler{
		svc: svc,
	}
}

type registerMembershipRequest struct {
	UserID       int64  `json:"user_id"`
	ReferralCode string `json:"referral_code"`
}

type activateMembershipRequest struct {
	UserID           int64  `json:"user_id"`
	PaymentReference string `json:"payment_reference"`
	PaymentMethod    string `json:"payment_method"`
}

func (h *MembershipHandler) Register(ctx *xhttp.RequestCtx) {
	var req registerMembershipRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	m, err := h.svc.Register(ctx, model.MembershipRegisterRequest{
		UserID:       req.UserID,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		if errors.Is(err, services.ErrAlreadyMember) {
			writeError(ctx, 409, err.Error())
			return
		}
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 201, m)
}

func (h *MembershipHandler) Activate(ctx *xhttp.RequestCtx) {
	var req activateMembershipRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	m, err := h.svc.Activate(ctx, model.MembershipActivateRequest{
		UserID:           req.UserID,
		PaymentReference: req.PaymentReference,
		PaymentMethod:    req.PaymentMethod,
	})
	if err != nil {
		if errors.Is(err, services.ErrNoPendingMembership) {
			writeError(ctx, 404, err.Error())
			return
		}
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, m)
}

func (h *MembershipHandler) Get(ctx *xhttp.RequestCtx) {
	userID, ok := queryInt64(ctx, "user_id")
	if !ok {
		writeError(ctx, 400, "user_id is required")
		return
	}

	m, err := h.svc.Get(ctx, userID)
	if err != nil {
		writeError(ctx, 404, "membership not found")
		return
	}
	writeJSON(ctx, 200, m)
}
