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

type LedgerService interface {
	GetBalance(ctx context.Context, userID int64) (int64, error)
	List(ctx context.Context, f model.TransactionFilter) ([]*model.PointTransaction, error)
	Redeem(ctx context.Context, userID, amount int64, description string) (*model.PointTransaction, error)
}

type LedgerHandler struct {
	svc LedgerService
}

func RegisterLedgerRoutes(e *router.Group, h *LedgerHandler, gate *auth.Gate) {
	e.GET("/ledger/balance", h.GetBalance)
	e.GET("/ledger/transactions", h.ListTransactions)
	e.POST("/ledger/redeem", gate.RequireRole(auth.RoleAdmin, h.Redeem))
}

func NewLedgerHandler(svc LedgerService) *LedgerHandler {
	return &LedgerHandler{
		svc: svc,
	}
}

type balanceResponse struct {
	UserID  int64 `json:"user_id"`
	Balance int64 `json:"balance"`
}

type redeemRequest struct {
	UserID      int64  `json:"user_id"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

func (h *LedgerHandler) GetBalance(ctx *xhttp.RequestCtx) {
	userID, ok := queryInt64(ctx, "user_id")
	if !ok {
		writeError(ctx, 400, "user_id is required")
		return
	}

	balance, err := h.svc.GetBalance(ctx, userID)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, balanceResponse{UserID: userID, Balance: balance})
}

func (h *LedgerHandler) ListTransactions(ctx *xhttp.RequestCtx) {
	var f model.TransactionFilter

	if id, ok := queryInt64(ctx, "user_id"); ok {
		f.UserID = &id
	}
	if v := query(ctx, "type"); v != "" {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				f.Types = append(f.Types, model.TransactionType(part))
			}
		}
	}
	if v := query(ctx, "from"); v != "" {
		if t, err := parseTime(v); err == nil {
			f.From = &t
		}
	}
	if v := query(ctx, "to"); v != "" {
		if t, err := parseTime(v); err == nil {
			f.To = &t
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

func (h *LedgerHandler) Redeem(ctx *xhttp.RequestCtx) {
	var req redeemRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	tx, err := h.svc.Redeem(ctx, req.UserID, req.Amount, req.Description)
	if err != nil {
		if errors.Is(err, services.ErrInsufficientBalance) {
			writeError(ctx, 422, err.Error())
			return
		}
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, tx)
}
