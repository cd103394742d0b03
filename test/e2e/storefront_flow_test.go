package e2e

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/myola/storefront/internal/model"
	"github.com/myola/storefront/internal/processor"
	"github.com/myola/storefront/internal/queue"
	"github.com/myola/storefront/internal/repository"
	"github.com/myola/storefront/internal/services"
	"github.com/myola/storefront/pkg/pg"
	"github.com/myola/storefront/pkg/redis"
	"github.com/myola/storefront/test/fixtures"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	testMembershipFee = 99000
	testJoinBonus     = 49000
)

type memoryProofStore struct{}

func (memoryProofStore) Put(_ context.Context, objectName string, _ []byte, _ string) (string, error) {
	return "memory://" + objectName, nil
}

type TestEnvironment struct {
	DB                *pg.DB
	Redis             *miniredis.Miniredis
	RedisAdapter      redis.RedisAdapter
	Queue             *queue.Queue
	AgentRepo         *repository.SalesAgentRepository
	MembershipRepo    *repository.MembershipRepository
	OrderRepo         *repository.OrderRepository
	LedgerRepo        *repository.PointTransactionRepository
	CommissionRepo    *repository.CommissionRepository
	LedgerService     *services.LedgerService
	MembershipService *services.MembershipService
	OrderService      *services.OrderService
	Processor         *processor.PaymentEventProcessor
}

func setupE2EEnvironment(t *testing.T) *TestEnvironment {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&repository.SalesAgentEntity{},
		&repository.MembershipEntity{},
		&repository.OrderEntity{},
		&repository.OrderItemEntity{},
		&repository.PointTransactionEntity{},
		&repository.CommissionEntity{},
	)
	require.NoError(t, err)

	pgDB := &pg.DB{}
	pgDBValue := reflect.ValueOf(pgDB).Elem()

	readField := pgDBValue.FieldByName("read")
	writeField := pgDBValue.FieldByName("write")

	readField = reflect.NewAt(readField.Type(), readField.Addr().UnsafePointer()).Elem()
	writeField = reflect.NewAt(writeField.Type(), writeField.Addr().UnsafePointer()).Elem()

	readField.Set(reflect.ValueOf(db))
	writeField.Set(reflect.ValueOf(db))

	mr, err := miniredis.Run()
	require.NoError(t, err)

	// Use unique connection name per test to avoid global adapter caching issues
	connName := fmt.Sprintf("test-%d", time.Now().UnixNano())
	redisAdapter, err := redis.NewRedisAdapter(connName, "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	q, err := queue.New(redisAdapter, queue.Config{
		Name:              "test:payments",
		ConsumerGroup:     "test-group",
		ConsumerName:      "test-consumer",
		MaxRetries:        3,
		VisibilityTimeout: 5 * time.Second,
		PollInterval:      100 * time.Millisecond,
		BatchSize:         10,
		MaxLen:            1000,
		EnableDLQ:         true,
	})
	require.NoError(t, err)

	agentRepo := repository.NewSalesAgentRepository(pgDB)
	membershipRepo := repository.NewMembershipRepository(pgDB)
	orderRepo := repository.NewOrderRepository(pgDB)
	ledgerRepo := repository.NewPointTransactionRepository(pgDB)
	commissionRepo := repository.NewCommissionRepository(pgDB)

	referralService := services.NewReferralService(agentRepo)
	ledgerService := services.NewLedgerService(ledgerRepo)
	commissionService := services.NewCommissionService(commissionRepo)
	membershipService := services.NewMembershipService(
		membershipRepo, agentRepo, referralService, ledgerService, commissionService,
		testMembershipFee, testJoinBonus,
	)
	orderService := services.NewOrderService(orderRepo, membershipRepo, agentRepo, ledgerService, commissionService, memoryProofStore{})

	idem := processor.NewIdempotencyService(redisAdapter, processor.DefaultIdempotencyConfig())
	paymentProcessor := processor.NewPaymentEventProcessor(membershipService, idem)

	return &TestEnvironment{
		DB:                pgDB,
		Redis:             mr,
		RedisAdapter:      redisAdapter,
		Queue:             q,
		AgentRepo:         agentRepo,
		MembershipRepo:    membershipRepo,
		OrderRepo:         orderRepo,
		LedgerRepo:        ledgerRepo,
		CommissionRepo:    commissionRepo,
		LedgerService:     ledgerService,
		MembershipService: membershipService,
		OrderService:      orderService,
		Processor:         paymentProcessor,
	}
}

func (env *TestEnvironment) Cleanup() {
	// Stop queue first (gracefully drain messages)
	if env.Queue != nil {
		_ = env.Queue.Stop(5 * time.Second)
	}
	// Give time for any in-flight operations to complete
	time.Sleep(100 * time.Millisecond)
	if env.Redis != nil {
		env.Redis.Close()
	}
}

func (env *TestEnvironment) createAgent(t *testing.T, tmpl model.SalesAgent) *model.SalesAgent {
	t.Helper()
	tmpl.ID = 0
	created, err := env.AgentRepo.Create(context.Background(), &tmpl)
	require.NoError(t, err)
	return created
}

func TestE2E_MembershipPaymentFlow(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	agent := env.createAgent(t, fixtures.TestAgentActive)

	pending, err := env.MembershipService.Register(ctx, fixtures.NewTestMembershipRegisterRequest(10, agent.ReferralCode))
	require.NoError(t, err)
	assert.Equal(t, model.MembershipPending, pending.Status)
	require.NotNil(t, pending.SalesID)
	assert.Equal(t, agent.ID, *pending.SalesID)

	_, err = env.Queue.PublishJSON(ctx, fixtures.NewTestPaymentEvent(10, testMembershipFee, "PAY-E2E-001"), nil)
	require.NoError(t, err)

	err = env.Queue.Consume(env.Processor.Process)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		m, err := env.MembershipService.Get(ctx, 10)
		return err == nil && m.Status == model.MembershipActive
	}, 5*time.Second, 100*time.Millisecond, "membership not activated within timeout")

	balance, err := env.LedgerService.GetBalance(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(testJoinBonus), balance)

	commission, err := env.CommissionRepo.GetByReference(ctx, pending.ID, model.CommissionJoinMember)
	require.NoError(t, err)
	assert.Equal(t, agent.ID, commission.SalesID)
	assert.Equal(t, int64(6930), commission.CommissionAmount)
	assert.Equal(t, model.CommissionPending, commission.Status)

	// a late gateway retry re-activates: same record back, no second bonus
	again, err := env.MembershipService.Activate(ctx, model.MembershipActivateRequest{
		UserID:           10,
		PaymentReference: "PAY-E2E-001",
		PaymentMethod:    "bank_transfer",
	})
	require.NoError(t, err)
	assert.Equal(t, pending.ID, again.ID)
	assert.Equal(t, model.MembershipActive, again.Status)

	balance, err = env.LedgerService.GetBalance(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(testJoinBonus), balance)
}

func TestE2E_DuplicatePaymentEventActivatesOnce(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	_, err := env.MembershipService.Register(ctx, fixtures.NewTestMembershipRegisterRequest(20, ""))
	require.NoError(t, err)

	event := fixtures.NewTestPaymentEvent(20, testMembershipFee, "PAY-E2E-DUP")
	_, err = env.Queue.PublishJSON(ctx, event, nil)
	require.NoError(t, err)
	_, err = env.Queue.PublishJSON(ctx, event, nil)
	require.NoError(t, err)

	err = env.Queue.Consume(env.Processor.Process)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		m, err := env.MembershipService.Get(ctx, 20)
		return err == nil && m.Status == model.MembershipActive
	}, 5*time.Second, 100*time.Millisecond)

	// the second event must not grant a second bonus
	require.Eventually(t, func() bool {
		stats, err := env.Queue.GetStats()
		return err == nil && stats.PendingMessages == 0
	}, 5*time.Second, 100*time.Millisecond, "duplicate event never acked")

	var bonusCount int64
	env.DB.Read(ctx).Model(&repository.PointTransactionEntity{}).
		Where("user_id = ? AND type = ?", 20, string(model.TransactionJoinBonus)).
		Count(&bonusCount)
	assert.Equal(t, int64(1), bonusCount)

	balance, err := env.LedgerService.GetBalance(ctx, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(testJoinBonus), balance)
}

func TestE2E_OrderLifecycleWithCashback(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	agent := env.createAgent(t, fixtures.TestAgentLowRate)

	req := fixtures.NewTestOrderCreateRequest(30, model.OrderGoods, 200000, 4000)
	req.SalesID = &agent.ID

	order, err := env.OrderService.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, model.OrderProcessing, order.Status)

	commission, err := env.CommissionRepo.GetByReference(ctx, order.ID, model.CommissionProductOrder)
	require.NoError(t, err)
	assert.Equal(t, int64(6000), commission.CommissionAmount)

	// cashback is not credited until the order completes
	balance, err := env.LedgerService.GetBalance(ctx, 30)
	require.NoError(t, err)
	assert.Zero(t, balance)

	shipped, err := env.OrderService.Ship(ctx, order.ID, []byte("proof-image-bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, model.OrderShipped, shipped.Status)
	assert.NotEmpty(t, shipped.ProofImageURL)

	completed, err := env.OrderService.Complete(ctx, order.ID, nil, "")
	require.NoError(t, err)
	assert.Equal(t, model.OrderCompleted, completed.Status)

	balance, err = env.LedgerService.GetBalance(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), balance)

	// completing again is a no-op and must not double-credit
	again, err := env.OrderService.Complete(ctx, order.ID, nil, "")
	require.NoError(t, err)
	assert.Equal(t, model.OrderCompleted, again.Status)

	balance, err = env.LedgerService.GetBalance(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), balance)
}

func TestE2E_RedeemAgainstEarnedBalance(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	order, err := env.OrderService.Create(ctx, fixtures.NewTestOrderCreateRequest(40, model.OrderEvent, 150000, 7500))
	require.NoError(t, err)

	_, err = env.OrderService.Complete(ctx, order.ID, nil, "")
	require.NoError(t, err)

	redeemed, err := env.LedgerService.Redeem(ctx, 40, 5000, "voucher")
	require.NoError(t, err)
	assert.Equal(t, int64(-5000), redeemed.Amount)
	assert.Equal(t, int64(2500), redeemed.BalanceAfter)

	// the stored rows sum to the final balance
	userID := int64(40)
	rows, err := env.LedgerService.List(ctx, model.TransactionFilter{UserID: &userID})
	require.NoError(t, err)
	var sum int64
	for _, row := range rows {
		sum += row.Amount
	}
	assert.Equal(t, redeemed.BalanceAfter, sum)

	_, err = env.LedgerService.Redeem(ctx, 40, 5000, "voucher")
	assert.ErrorIs(t, err, services.ErrInsufficientBalance)
}
