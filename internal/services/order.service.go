package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/myola/storefront/internal/model"
	"github.com/myola/storefront/internal/repository"
	"github.com/myola/storefront/pkg/logger"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("order status transition not allowed")
)

type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) (*model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, error)
	UpdateStatusIf(ctx context.Context, id int64, from, to model.OrderStatus, proofImageURL string, at time.Time) error
	List(ctx context.Context, f model.OrderFilter) ([]*model.Order, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ProofStore persists shipping proof images and returns a public URL.
type ProofStore interface {
	Put(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
}

// ActiveMembershipSource reports the buyer's membership rows. Orders
// copy the referring agent from the active membership at creation.
type ActiveMembershipSource interface {
	GetByUserAndStatus(ctx context.Context, userID int64, status model.MembershipStatus) (*model.Membership, error)
}

type OrderService struct {
	orderRepo   OrderRepository
	memberships ActiveMembershipSource
	agentRepo   SalesAgentRepository
	ledger      LedgerAppender
	commissions CommissionRecorder
	proofs      ProofStore
}

func NewOrderService(
	orderRepo OrderRepository,
	memberships ActiveMembershipSource,
	agentRepo SalesAgentRepository,
	ledger LedgerAppender,
	commissions CommissionRecorder,
	proofs ProofStore,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		memberships: memberships,
		agentRepo:   agentRepo,
		ledger:      ledger,
		commissions: commissions,
		proofs:      proofs,
	}
}

// Create opens a new order in processing state. The referring agent
// comes from the buyer's active membership unless the request names one
// explicitly. The agent's commission is recorded here, at creation,
// against the order subtotal; the buyer's cashback waits for
// completion.
func (s *OrderService) Create(ctx context.Context, req model.OrderCreateRequest) (*model.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	salesID := req.SalesID
	if salesID == nil {
		membership, err := s.memberships.GetByUserAndStatus(ctx, req.UserID, model.MembershipActive)
		switch {
		case err == nil:
			salesID = membership.SalesID
		case errors.Is(err, repository.ErrMembershipNotFound):
			// non-member purchase, no agent to credit
		default:
			return nil, fmt.Errorf("look up buyer membership: %w", err)
		}
	}

	var agent *model.SalesAgent
	if salesID != nil {
		found, err := s.agentRepo.GetByID(ctx, *salesID)
		switch {
		case err == nil && found.IsActive:
			agent = found
		case err == nil || errors.Is(err, repository.ErrAgentNotFound):
			logger.Warn("order: bound agent is gone or inactive, skipping commission",
				"user_id", req.UserID, "sales_id", *salesID)
		default:
			return nil, fmt.Errorf("look up sales agent: %w", err)
		}
	}

	order := &model.Order{
		OrderNumber:    newOrderNumber(),
		UserID:         req.UserID,
		SalesID:        salesID,
		Kind:           req.Kind,
		Status:         model.OrderProcessing,
		Subtotal:       req.Subtotal,
		TotalPayment:   req.TotalPayment,
		CashbackEarned: req.CashbackTotal,
		Items:          req.Items,
	}

	var created *model.Order
	err := s.orderRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.orderRepo.Create(ctx, order)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		if agent != nil {
			commissionType := model.CommissionProductOrder
			if created.Kind == model.OrderEvent {
				commissionType = model.CommissionEventOrder
			}
			if _, _, err := s.commissions.Record(ctx, CommissionRecordParams{
				SalesID:           agent.ID,
				UserID:            created.UserID,
				Type:              commissionType,
				ReferenceID:       created.ID,
				TransactionAmount: created.Subtotal,
				Rate:              agent.CommissionRate,
			}); err != nil {
				return fmt.Errorf("record order commission: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("order created",
		"order_id", created.ID, "order_number", created.OrderNumber, "kind", string(created.Kind))
	return created, nil
}

// Ship moves a goods order from processing to shipped, storing the
// handover proof image when one is supplied. Event orders have nothing
// to ship.
func (s *OrderService) Ship(ctx context.Context, orderID int64, proofImage []byte, contentType string) (*model.Order, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Kind != model.OrderGoods {
		return nil, ErrInvalidTransition
	}

	proofURL, err := s.storeProof(ctx, order.OrderNumber, proofImage, contentType)
	if err != nil {
		return nil, err
	}

	err = s.orderRepo.UpdateStatusIf(ctx, order.ID, model.OrderProcessing, model.OrderShipped, proofURL, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}
	return s.orderRepo.GetByID(ctx, order.ID)
}

// Complete finishes an order and credits the buyer's cashback. Goods
// orders complete from shipped, event orders straight from processing.
// A proof image, when supplied, is stored and its URL saved with the
// transition. The status flip and the cashback credit share one
// transaction, and the conditional flip guarantees the credit happens
// at most once. Completing an already-completed order returns it
// unchanged.
func (s *OrderService) Complete(ctx context.Context, orderID int64, proofImage []byte, contentType string) (*model.Order, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == model.OrderCompleted {
		return order, nil
	}

	from := model.OrderShipped
	if order.Kind == model.OrderEvent {
		from = model.OrderProcessing
	}

	proofURL, err := s.storeProof(ctx, order.OrderNumber, proofImage, contentType)
	if err != nil {
		return nil, err
	}

	var completed *model.Order
	err = s.orderRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.orderRepo.UpdateStatusIf(ctx, order.ID, from, model.OrderCompleted, proofURL, time.Now()); err != nil {
			if errors.Is(err, repository.ErrStatusConflict) {
				return ErrInvalidTransition
			}
			return err
		}

		if order.CashbackEarned > 0 {
			if _, err := s.ledger.Append(ctx, &model.PointTransaction{
				UserID:        order.UserID,
				Type:          model.TransactionPurchaseCashback,
				Amount:        order.CashbackEarned,
				ReferenceType: model.ReferenceOrder,
				ReferenceID:   order.ID,
				Description:   "cashback for order " + order.OrderNumber,
			}); err != nil {
				return fmt.Errorf("credit cashback: %w", err)
			}
		}

		var err error
		completed, err = s.orderRepo.GetByID(ctx, order.ID)
		return err
	})
	if errors.Is(err, ErrInvalidTransition) {
		// lost a race against another completer
		if current, gerr := s.getOrder(ctx, order.ID); gerr == nil && current.Status == model.OrderCompleted {
			return current, nil
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	logger.Info("order completed",
		"order_id", completed.ID, "order_number", completed.OrderNumber, "cashback", completed.CashbackEarned)
	return completed, nil
}

func (s *OrderService) Get(ctx context.Context, orderID int64) (*model.Order, error) {
	return s.getOrder(ctx, orderID)
}

func (s *OrderService) GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	order, err := s.orderRepo.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *OrderService) List(ctx context.Context, f model.OrderFilter) ([]*model.Order, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 100
	}
	return s.orderRepo.List(ctx, f)
}

func (s *OrderService) getOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// storeProof uploads an optional proof image and returns its public
// URL, or an empty string when no image was given.
func (s *OrderService) storeProof(ctx context.Context, orderNumber string, proofImage []byte, contentType string) (string, error) {
	if len(proofImage) == 0 {
		return "", nil
	}
	objectName := fmt.Sprintf("%s/%d%s", orderNumber, time.Now().Unix(), extensionFor(contentType))
	proofURL, err := s.proofs.Put(ctx, objectName, proofImage, contentType)
	if err != nil {
		return "", fmt.Errorf("store proof image: %w", err)
	}
	return proofURL, nil
}

func newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:10]
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), suffix)
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
