package processor

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/myola/storefront/internal/model"
	"github.com/myola/storefront/internal/queue"
	"github.com/myola/storefront/pkg/logger"
	"github.com/myola/storefront/pkg/prom"
)

type MembershipActivator interface {
	Activate(ctx context.Context, req model.MembershipActivateRequest) (*model.Membership, error)
}

// PaymentEventProcessor turns confirmed fee payments from the gateway
// stream into membership activations.
type PaymentEventProcessor struct {
	memberships MembershipActivator
	idempotency *IdempotencyService
}

func NewPaymentEventProcessor(memberships MembershipActivator, idempotency *IdempotencyService) *PaymentEventProcessor {
	return &PaymentEventProcessor{
		memberships: memberships,
		idempotency: idempotency,
	}
}

func (p *PaymentEventProcessor) GetType() string {
	return "payment"
}

// Process handles one payment confirmation. The gateway retries
// callbacks aggressively, so repeats are the norm: the processed marker
// catches most of them early, and the pending-only activation flip in
// the database absorbs whatever slips through.
func (p *PaymentEventProcessor) Process(ctx context.Context, queueMessage *queue.Message) error {
	var event model.PaymentEvent
	if err := json.Unmarshal(queueMessage.Data, &event); err != nil {
		logger.Error("payment processor: unmarshal event", "message_id", queueMessage.ID, "error", err)
		prom.IncPaymentEventProcessed("failed")
		return err
	}
	if err := event.Validate(); err != nil {
		logger.Error("payment processor: invalid event", "message_id", queueMessage.ID, "error", err)
		prom.IncPaymentEventProcessed("failed")
		// Malformed events never become valid; ack so they stop looping.
		return nil
	}

	procCtx, err := p.idempotency.AcquireProcessingLock(ctx, event.Reference)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyProcessed):
			prom.IncPaymentEventProcessed("skipped")
			return nil
		case errors.Is(err, ErrMaxRetriesExceeded):
			logger.Error("payment processor: giving up on event", "reference", event.Reference)
			prom.IncPaymentEventProcessed("failed")
			return nil
		case errors.Is(err, ErrLockAcquireFailed):
			return errors.New("lock held by another consumer")
		default:
			return err
		}
	}
	defer func() {
		if procCtx.lockAcquired {
			p.idempotency.ReleaseLock(ctx, procCtx)
		}
	}()

	logger.Info("payment processor: activating membership",
		"reference", event.Reference, "user_id", event.UserID, "retry_count", procCtx.RetryCount)

	activated, err := p.memberships.Activate(ctx, model.MembershipActivateRequest{
		UserID:           event.UserID,
		PaymentReference: event.Reference,
		PaymentMethod:    event.Method,
	})
	if err != nil {
		// Includes payments arriving before registration; the retry
		// window gives the registration a chance to land. A payment
		// applied by an earlier delivery is not an error: Activate
		// returns the active membership for repeats.
		if markErr := p.idempotency.MarkFailure(ctx, procCtx, err); markErr != nil {
			logger.Error("payment processor: mark failure", "reference", event.Reference, "error", markErr)
		}
		prom.IncPaymentEventProcessed("failed")
		return err
	}

	if markErr := p.idempotency.MarkSuccess(ctx, procCtx); markErr != nil {
		logger.Error("payment processor: mark success", "reference", event.Reference, "error", markErr)
	}
	prom.IncPaymentEventProcessed("activated")
	logger.Info("payment processor: membership activated",
		"reference", event.Reference, "membership_id", activated.ID, "user_id", activated.UserID)
	return nil
}
