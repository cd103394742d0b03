package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/myola/storefront/internal/model"
	"github.com/myola/storefront/internal/services"
	xhttp "github.com/myola/storefront/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

type MockMembershipService struct {
	mock.Mock
}

func (m *MockMembershipService) Register(ctx context.Context, req model.MembershipRegisterRequest) (*model.Membership, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Membership), args.Error(1)
}

func (m *MockMembershipService) Activate(ctx context.Context, req model.MembershipActivateRequest) (*model.Membership, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Membership), args.Error(1)
}

func (m *MockMembershipService) Get(ctx context.Context, userID int64) (*model.Membership, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Membership), args.Error(1)
}

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) GetBalance(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerService) List(ctx context.Context, f model.TransactionFilter) ([]*model.PointTransaction, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PointTransaction), args.Error(1)
}

func (m *MockLedgerService) Redeem(ctx context.Context, userID, amount int64, description string) (*model.PointTransaction, error) {
	args := m.Called(ctx, userID, amount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PointTransaction), args.Error(1)
}

type MockCommissionHandlerService struct {
	mock.Mock
}

func (m *MockCommissionHandlerService) MarkPaid(ctx context.Context, id int64, payoutReference string) (*model.Commission, error) {
	args := m.Called(ctx, id, payoutReference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Commission), args.Error(1)
}

func (m *MockCommissionHandlerService) List(ctx context.Context, f model.CommissionFilter) ([]*model.Commission, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Commission), args.Error(1)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, req model.OrderCreateRequest) (*model.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) Ship(ctx context.Context, orderID int64, proofImage []byte, contentType string) (*model.Order, error) {
	args := m.Called(ctx, orderID, proofImage, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) Complete(ctx context.Context, orderID int64, proofImage []byte, contentType string) (*model.Order, error) {
	args := m.Called(ctx, orderID, proofImage, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, orderID int64) (*model.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, f model.OrderFilter) ([]*model.Order, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Order), args.Error(1)
}

type MockReferralResolver struct {
	mock.Mock
}

func (m *MockReferralResolver) Resolve(ctx context.Context, code string) (*model.SalesAgent, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SalesAgent), args.Error(1)
}

func setupTestContext(method, path string, body []byte) *xhttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if body != nil {
		ctx.Request.SetBody(body)
	}
	return ctx
}

func TestMembershipHandler_Register(t *testing.T) {
	t.Run("successful registration", func(t *testing.T) {
		svc := new(MockMembershipService)
		handler := NewMembershipHandler(svc)

		body, _ := json.Marshal(registerMembershipRequest{UserID: 1, ReferralCode: "MYOLA-BUDI"})
		svc.On("Register", mock.Anything, model.MembershipRegisterRequest{UserID: 1, ReferralCode: "MYOLA-BUDI"}).
			Return(&model.Membership{ID: 10, UserID: 1, Status: model.MembershipPending}, nil)

		ctx := setupTestContext("POST", "/api/v1/memberships", body)
		handler.Register(ctx)

		assert.Equal(t, 201, ctx.Response.StatusCode())

		var got model.Membership
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &got))
		assert.Equal(t, int64(10), got.ID)
		svc.AssertExpectations(t)
	})

	t.Run("already a member", func(t *testing.T) {
		svc := new(MockMembershipService)
		handler := NewMembershipHandler(svc)

		body, _ := json.Marshal(registerMembershipRequest{UserID: 2})
		svc.On("Register", mock.Anything, mock.Anything).Return(nil, services.ErrAlreadyMember)

		ctx := setupTestContext("POST", "/api/v1/memberships", body)
		handler.Register(ctx)

		assert.Equal(t, 409, ctx.Response.StatusCode())
	})

	t.Run("invalid JSON", func(t *testing.T) {
		svc := new(MockMembershipService)
		handler := NewMembershipHandler(svc)

		ctx := setupTestContext("POST", "/api/v1/memberships", []byte("not json"))
		handler.Register(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})
}

func TestMembershipHandler_Activate(t *testing.T) {
	t.Run("successful activation", func(t *testing.T) {
		svc := new(MockMembershipService)
		handler := NewMembershipHandler(svc)

		body, _ := json.Marshal(activateMembershipRequest{UserID: 1, PaymentReference: "PAY-1", PaymentMethod: "bank_transfer"})
		svc.On("Activate", mock.Anything, model.MembershipActivateRequest{
			UserID:           1,
			PaymentReference: "PAY-1",
			PaymentMethod:    "bank_transfer",
		}).Return(&model.Membership{ID: 10, UserID: 1, Status: model.MembershipActive}, nil)

		ctx := setupTestContext("POST", "/api/v1/memberships/activate", body)
		handler.Activate(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
	})

	t.Run("repeat activation returns the active membership", func(t *testing.T) {
		svc := new(MockMembershipService)
		handler := NewMembershipHandler(svc)

		body, _ := json.Marshal(activateMembershipRequest{UserID: 1, PaymentReference: "PAY-1"})
		svc.On("Activate", mock.Anything, mock.Anything).
			Return(&model.Membership{ID: 10, UserID: 1, Status: model.MembershipActive}, nil)

		ctx := setupTestContext("POST", "/api/v1/memberships/activate", body)
		handler.Activate(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
	})

	t.Run("no pending membership", func(t *testing.T) {
		svc := new(MockMembershipService)
		handler := NewMembershipHandler(svc)

		body, _ := json.Marshal(activateMembershipRequest{UserID: 9, PaymentReference: "PAY-9"})
		svc.On("Activate", mock.Anything, mock.Anything).Return(nil, services.ErrNoPendingMembership)

		ctx := setupTestContext("POST", "/api/v1/memberships/activate", body)
		handler.Activate(ctx)

		assert.Equal(t, 404, ctx.Response.StatusCode())
	})
}

func TestLedgerHandler_GetBalance(t *testing.T) {
	t.Run("returns current balance", func(t *testing.T) {
		svc := new(MockLedgerService)
		handler := NewLedgerHandler(svc)

		svc.On("GetBalance", mock.Anything, int64(1)).Return(int64(49000), nil)

		ctx := setupTestContext("GET", "/api/v1/ledger/balance?user_id=1", nil)
		handler.GetBalance(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())

		var got balanceResponse
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &got))
		assert.Equal(t, int64(49000), got.Balance)
	})

	t.Run("missing user_id", func(t *testing.T) {
		svc := new(MockLedgerService)
		handler := NewLedgerHandler(svc)

		ctx := setupTestContext("GET", "/api/v1/ledger/balance", nil)
		handler.GetBalance(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})
}

func TestLedgerHandler_ListTransactions(t *testing.T) {
	svc := new(MockLedgerService)
	handler := NewLedgerHandler(svc)

	svc.On("List", mock.Anything, mock.MatchedBy(func(f model.TransactionFilter) bool {
		return f.UserID != nil && *f.UserID == 1 &&
			len(f.Types) == 1 && f.Types[0] == model.TransactionJoinBonus && f.Desc
	})).Return([]*model.PointTransaction{{ID: 1, UserID: 1, Type: model.TransactionJoinBonus, Amount: 49000}}, nil)

	ctx := setupTestContext("GET", "/api/v1/ledger/transactions?user_id=1&type=join_bonus&order=desc", nil)
	handler.ListTransactions(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())
	svc.AssertExpectations(t)
}

func TestLedgerHandler_Redeem(t *testing.T) {
	t.Run("successful redeem", func(t *testing.T) {
		svc := new(MockLedgerService)
		handler := NewLedgerHandler(svc)

		body, _ := json.Marshal(redeemRequest{UserID: 1, Amount: 5000, Description: "store credit"})
		svc.On("Redeem", mock.Anything, int64(1), int64(5000), "store credit").
			Return(&model.PointTransaction{ID: 3, Type: model.TransactionRedeem, Amount: 5000, BalanceAfter: 44000}, nil)

		ctx := setupTestContext("POST", "/api/v1/ledger/redeem", body)
		handler.Redeem(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
	})

	t.Run("insufficient balance", func(t *testing.T) {
		svc := new(MockLedgerService)
		handler := NewLedgerHandler(svc)

		body, _ := json.Marshal(redeemRequest{UserID: 1, Amount: 15000})
		svc.On("Redeem", mock.Anything, int64(1), int64(15000), "").Return(nil, services.ErrInsufficientBalance)

		ctx := setupTestContext("POST", "/api/v1/ledger/redeem", body)
		handler.Redeem(ctx)

		assert.Equal(t, 422, ctx.Response.StatusCode())
	})
}

func TestOrderHandler_Create(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		svc := new(MockOrderService)
		handler := NewOrderHandler(svc)

		body := []byte(`{
			"user_id": 1,
			"kind": "goods",
			"sales_id": 9,
			"items": [{"name": "Herbal Tea", "quantity": 2, "price": 50000}],
			"subtotal": 100000,
			"total_payment": 105000,
			"cashback_total": 1000
		}`)

		svc.On("Create", mock.Anything, mock.MatchedBy(func(p model.OrderCreateRequest) bool {
			return p.UserID == 1 && p.Kind == model.OrderGoods && len(p.Items) == 1 &&
				p.CashbackTotal == 1000 && p.SalesID != nil && *p.SalesID == 9
		})).Return(&model.Order{ID: 20, OrderNumber: "ORD-20260901-ABC", Status: model.OrderProcessing}, nil)

		ctx := setupTestContext("POST", "/api/v1/orders", body)
		handler.Create(ctx)

		assert.Equal(t, 201, ctx.Response.StatusCode())
		svc.AssertExpectations(t)
	})

	t.Run("validation failure", func(t *testing.T) {
		svc := new(MockOrderService)
		handler := NewOrderHandler(svc)

		body := []byte(`{"user_id": 1, "kind": "goods", "items": []}`)
		svc.On("Create", mock.Anything, mock.Anything).Return(nil, assert.AnError)

		ctx := setupTestContext("POST", "/api/v1/orders", body)
		handler.Create(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})
}

func TestOrderHandler_AdvanceStatus(t *testing.T) {
	t.Run("complete via JSON", func(t *testing.T) {
		svc := new(MockOrderService)
		handler := NewOrderHandler(svc)

		body, _ := json.Marshal(advanceStatusRequest{OrderID: 20, Action: "complete"})
		svc.On("Complete", mock.Anything, int64(20), mock.Anything, mock.Anything).
			Return(&model.Order{ID: 20, Status: model.OrderCompleted}, nil)

		ctx := setupTestContext("POST", "/api/v1/orders/status", body)
		handler.AdvanceStatus(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
	})

	t.Run("invalid transition conflicts", func(t *testing.T) {
		svc := new(MockOrderService)
		handler := NewOrderHandler(svc)

		body, _ := json.Marshal(advanceStatusRequest{OrderID: 20, Action: "complete"})
		svc.On("Complete", mock.Anything, int64(20), mock.Anything, mock.Anything).Return(nil, services.ErrInvalidTransition)

		ctx := setupTestContext("POST", "/api/v1/orders/status", body)
		handler.AdvanceStatus(ctx)

		assert.Equal(t, 409, ctx.Response.StatusCode())
	})

	t.Run("unknown action", func(t *testing.T) {
		svc := new(MockOrderService)
		handler := NewOrderHandler(svc)

		body, _ := json.Marshal(advanceStatusRequest{OrderID: 20, Action: "teleport"})

		ctx := setupTestContext("POST", "/api/v1/orders/status", body)
		handler.AdvanceStatus(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})

	t.Run("order not found", func(t *testing.T) {
		svc := new(MockOrderService)
		handler := NewOrderHandler(svc)

		body, _ := json.Marshal(advanceStatusRequest{OrderID: 404, Action: "complete"})
		svc.On("Complete", mock.Anything, int64(404), mock.Anything, mock.Anything).Return(nil, services.ErrOrderNotFound)

		ctx := setupTestContext("POST", "/api/v1/orders/status", body)
		handler.AdvanceStatus(ctx)

		assert.Equal(t, 404, ctx.Response.StatusCode())
	})
}

func TestOrderHandler_Get(t *testing.T) {
	svc := new(MockOrderService)
	handler := NewOrderHandler(svc)

	svc.On("Get", mock.Anything, int64(20)).Return(&model.Order{ID: 20}, nil)

	ctx := setupTestContext("GET", "/api/v1/orders/20", nil)
	ctx.SetUserValue("id", "20")
	handler.Get(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())
}

func TestCommissionHandler_MarkPaid(t *testing.T) {
	t.Run("successful payout", func(t *testing.T) {
		svc := new(MockCommissionHandlerService)
		handler := NewCommissionHandler(svc)

		body, _ := json.Marshal(markPaidRequest{CommissionID: 1, PayoutReference: "PAYOUT-1"})
		svc.On("MarkPaid", mock.Anything, int64(1), "PAYOUT-1").
			Return(&model.Commission{ID: 1, Status: model.CommissionPaid}, nil)

		ctx := setupTestContext("POST", "/api/v1/commissions/paid", body)
		handler.MarkPaid(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
	})

	t.Run("already paid conflicts", func(t *testing.T) {
		svc := new(MockCommissionHandlerService)
		handler := NewCommissionHandler(svc)

		body, _ := json.Marshal(markPaidRequest{CommissionID: 1, PayoutReference: "PAYOUT-2"})
		svc.On("MarkPaid", mock.Anything, int64(1), "PAYOUT-2").Return(nil, services.ErrAlreadyPaid)

		ctx := setupTestContext("POST", "/api/v1/commissions/paid", body)
		handler.MarkPaid(ctx)

		assert.Equal(t, 409, ctx.Response.StatusCode())
	})
}

func TestCommissionHandler_List(t *testing.T) {
	svc := new(MockCommissionHandlerService)
	handler := NewCommissionHandler(svc)

	svc.On("List", mock.Anything, mock.MatchedBy(func(f model.CommissionFilter) bool {
		return f.SalesID != nil && *f.SalesID == 7 &&
			len(f.Statuses) == 1 && f.Statuses[0] == model.CommissionPending
	})).Return([]*model.Commission{{ID: 1, SalesID: 7}}, nil)

	ctx := setupTestContext("GET", "/api/v1/commissions?sales_id=7&status=pending", nil)
	handler.List(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())
	svc.AssertExpectations(t)
}

func TestReferralHandler_Lookup(t *testing.T) {
	t.Run("known code", func(t *testing.T) {
		svc := new(MockReferralResolver)
		handler := NewReferralHandler(svc)

		svc.On("Resolve", mock.Anything, "MYOLA-BUDI").
			Return(&model.SalesAgent{ID: 7, ReferralCode: "MYOLA-BUDI", CommissionRate: 0.07}, nil)

		ctx := setupTestContext("GET", "/api/v1/referrals/MYOLA-BUDI", nil)
		ctx.SetUserValue("code", "MYOLA-BUDI")
		handler.Lookup(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())

		var got referralResponse
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &got))
		assert.Equal(t, int64(7), got.SalesID)
	})

	t.Run("unknown code", func(t *testing.T) {
		svc := new(MockReferralResolver)
		handler := NewReferralHandler(svc)

		svc.On("Resolve", mock.Anything, "MYOLA-NOPE").Return(nil, services.ErrReferralNotFound)

		ctx := setupTestContext("GET", "/api/v1/referrals/MYOLA-NOPE", nil)
		ctx.SetUserValue("code", "MYOLA-NOPE")
		handler.Lookup(ctx)

		assert.Equal(t, 404, ctx.Response.StatusCode())
	})
}
