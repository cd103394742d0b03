package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/fasthttp/router"
	"github.com/myola/storefront/internal/auth"
	"github.com/myola/storefront/internal/model"
	"github.com/myola/storefront/internal/services"
	xhttp "github.com/myola/storefront/pkg/http"
)

type CommissionService interface {
	MarkPaid(ctx context.Context, id int64, payoutReference string) (*model.Commission, error)
	List(ctx context.Context, f model.CommissionFilter) ([]*model.Commission, error)
}

type CommissionHandler struct {
	svc CommissionService
}

func RegisterCommissionRoutes(e *router.Group, h *CommissionHandler, gate *auth.Gate) {
	e.GET("/commissions", h.List)
	e.POST("/commissions/paid", gate.RequireRole(auth.RoleAdmin, h.MarkPaid))
}

func NewCommissionHandler(svc CommissionService) *CommissionHandler {
	return &CommissionHandler{
		svc: svc,
	}
}

type markPaidRequest struct {
	CommissionID    int64  `json:"commission_id"`
	PayoutReference string `json:"payout_reference"`
}

func (h *CommissionHandler) MarkPaid(ctx *xhttp.RequestCtx) {
	var req markPaidRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	if req.CommissionID <= 0 {
		writeError(ctx, 400, "commission_id is required")
		return
	}

	c, err := h.svc.MarkPaid(ctx, req.CommissionID, req.PayoutReference)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCommissionNotFound):
			writeError(ctx, 404, err.Error())
		case errors.Is(err, services.ErrAlreadyPaid):
			writeError(ctx, 409, err.Error())
		default:
			writeError(ctx, 400, err.Error())
		}
		return
	}
	writeJSON(ctx, 200, c)
}

func (h *CommissionHandler) List(ctx *xhttp.RequestCtx) {
	var f model.CommissionFilter

	if id, ok := queryInt64(ctx, "sales_id"); ok {
		f.SalesID = &id
	}
	if v := query(ctx, "status"); v != "" {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				f.Statuses = append(f.Statuses, model.CommissionStatus(part))
			}
		}
	}
	if n, ok := queryInt(ctx, "limit"); ok {
		f.Limit = n
	}
	if n, ok := queryInt(ctx, "offset"); ok {
		f.Offset = n
	}
	if strings.EqualFold(query(ctx, "order"), "desc") {
		f.Desc = true
	}

	items, err := h.svc.List(ctx, f)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, map[string]any{"items": items})
}
