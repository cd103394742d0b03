package handlers

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/fasthttp/router"
	"github.com/myola/storefront/internal/auth"
	"github.com/myola/storefront/internal/model"
	"github.com/myola/storefront/internal/services"
	xhttp "github.com/myola/storefront/pkg/http"
)

type OrderService interface {
	Create(ctx context.Context, req model.OrderCreateRequest) (*model.Order, error)
	Ship(ctx context.Context, orderID int64, proofImage []byte, contentType string) (*model.Order, error)
	Complete(ctx context.Context, orderID int64, proofImage []byte, contentType string) (*model.Order, error)
	Get(ctx context.Context, orderID int64) (*model.Order, error)
	List(ctx context.Context, f model.OrderFilter) ([]*model.Order, error)
}

type OrderHandler struct {
	svc OrderService
}

func RegisterOrderRoutes(e *router.Group, h *OrderHandler, gate *auth.Gate) {
	e.POST("/orders", h.Create)
	e.POST("/orders/status", gate.RequireRole(auth.RoleAdmin, h.AdvanceStatus))
	e.GET("/orders", h.List)
	e.GET("/orders/{id}", h.Get)
}

func NewOrderHandler(svc OrderService) *OrderHandler {
	return &OrderHandler{
		svc: svc,
	}
}

type createOrderRequest struct {
	UserID  int64  `json:"user_id"`
	Kind    string `json:"kind"`
	SalesID *int64 `json:"sales_id,omitempty"`
	Items   []struct {
		Name     string `json:"name"`
		Quantity int    `json:"quantity"`
		Price    int64  `json:"price"`
	} `json:"items"`
	Subtotal      int64 `json:"subtotal"`
	TotalPayment  int64 `json:"total_payment"`
	CashbackTotal int64 `json:"cashback_total"`
}

type advanceStatusRequest struct {
	OrderID int64  `json:"order_id"`
	Action  string `json:"action"`
}

func (h *OrderHandler) Create(ctx *xhttp.RequestCtx) {
	var req createOrderRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	p := model.OrderCreateRequest{
		UserID:        req.UserID,
		Kind:          model.OrderKind(req.Kind),
		SalesID:       req.SalesID,
		Subtotal:      req.Subtotal,
		TotalPayment:  req.TotalPayment,
		CashbackTotal: req.CashbackTotal,
	}
	for _, it := range req.Items {
		p.Items = append(p.Items, model.OrderItem{
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    it.Price,
		})
	}

	order, err := h.svc.Create(ctx, p)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 201, order)
}

// AdvanceStatus moves an order to its next state. Either transition
// accepts multipart form data carrying an optional proof image, or
// plain JSON without one.
func (h *OrderHandler) AdvanceStatus(ctx *xhttp.RequestCtx) {
	contentType := string(ctx.Request.Header.ContentType())

	var (
		orderID int64
		action  string
		proof   []byte
		proofCT string
	)

	if strings.HasPrefix(contentType, "multipart/form-data") {
		form, err := ctx.MultipartForm()
		if err != nil {
			writeError(ctx, 400, "invalid multipart form: "+err.Error())
			return
		}
		if v := formValue(form.Value, "order_id"); v != "" {
			orderID, _ = strconv.ParseInt(v, 10, 64)
		}
		action = formValue(form.Value, "action")

		if files := form.File["proof_image"]; len(files) > 0 {
			f, err := files[0].Open()
			if err != nil {
				writeError(ctx, 400, "read proof image: "+err.Error())
				return
			}
			proof, err = io.ReadAll(f)
			f.Close()
			if err != nil {
				writeError(ctx, 400, "read proof image: "+err.Error())
				return
			}
			proofCT = files[0].Header.Get("Content-Type")
		}
	} else {
		var req advanceStatusRequest
		if err := readJSON(ctx, &req); err != nil {
			writeError(ctx, 400, "invalid JSON: "+err.Error())
			return
		}
		orderID = req.OrderID
		action = req.Action
	}

	if orderID <= 0 {
		writeError(ctx, 400, "order_id is required")
		return
	}

	var (
		order *model.Order
		err   error
	)
	switch action {
	case "ship":
		order, err = h.svc.Ship(ctx, orderID, proof, proofCT)
	case "complete":
		order, err = h.svc.Complete(ctx, orderID, proof, proofCT)
	default:
		writeError(ctx, 400, "action must be ship or complete")
		return
	}
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			writeError(ctx, 404, err.Error())
		case errors.Is(err, services.ErrInvalidTransition):
			writeError(ctx, 409, err.Error())
		default:
			writeError(ctx, 400, err.Error())
		}
		return
	}
	writeJSON(ctx, 200, order)
}

func (h *OrderHandler) Get(ctx *xhttp.RequestCtx) {
	idStr, _ := ctx.UserValue("id").(string)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeError(ctx, 400, "invalid order id")
		return
	}

	order, err := h.svc.Get(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			writeError(ctx, 404, err.Error())
			return
		}
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, order)
}

func (h *OrderHandler) List(ctx *xhttp.RequestCtx) {
	var f model.OrderFilter

	if id, ok := queryInt64(ctx, "user_id"); ok {
		f.UserID = &id
	}
	if id, ok := queryInt64(ctx, "sales_id"); ok {
		f.SalesID = &id
	}
	if v := query(ctx, "status"); v != "" {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				f.Statuses = append(f.Statuses, model.OrderStatus(part))
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

func formValue(values map[string][]string, key string) string {
	if v := values[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}
