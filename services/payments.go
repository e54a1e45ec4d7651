package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"gorm.io/datatypes"

	"leasemate-server/models"
)

// Provider event types this core consumes. Anything else is recorded and
// ignored.
const (
	ProviderCheckoutCompleted = "checkout.session.completed"
	ProviderPaymentFailed     = "invoice.payment_failed"
)

// ProviderEvent is the decoded shape of one payment-provider webhook.
type ProviderEvent struct {
	ID                     string          `json:"id"`
	Type                   string          `json:"type"`
	OwnerID                uint            `json:"ownerId"`
	Plan                   string          `json:"plan"`
	ProviderSubscriptionID string          `json:"subscriptionId"`
	Payload                json.RawMessage `json:"-"`
}

// PaymentProcessor consumes asynchronous payment-provider events and drives
// subscription activation through the ledger. The provider redelivers on
// timeout, so consumption must be idempotent: the event id is inserted into
// a unique-keyed ledger first and a duplicate insert ends the call. Only
// events whose effect succeeded stay in the ledger; a failed effect releases
// the id so the redelivery can retry.
type PaymentProcessor struct {
	events   PaymentEventStore
	ledger   *SubscriptionLedger
	notifier *NotificationDispatcher
}

func NewPaymentProcessor(events PaymentEventStore, ledger *SubscriptionLedger, notifier *NotificationDispatcher) *PaymentProcessor {
	return &PaymentProcessor{
		events:   events,
		ledger:   ledger,
		notifier: notifier,
	}
}

// Consume applies one provider event. A redelivered event id returns nil
// without side effects.
func (p *PaymentProcessor) Consume(ctx context.Context, ev ProviderEvent) error {
	if ev.ID == "" {
		return &ValidationError{Field: "id", Reason: "provider event id is required"}
	}
	if ev.OwnerID == 0 {
		return &ValidationError{Field: "ownerId", Reason: "owner reference is required"}
	}

	record := &models.PaymentEvent{
		ProviderEventID: ev.ID,
		Type:            ev.Type,
	}
	if len(ev.Payload) > 0 {
		record.Payload = datatypes.JSON(ev.Payload)
	}
	fresh, err := p.events.InsertOnce(ctx, record)
	if err != nil {
		return &CollaboratorError{Collaborator: "payment provider store", Err: err}
	}
	if !fresh {
		log.Printf("payments: duplicate delivery of %s ignored", ev.ID)
		return nil
	}

	switch ev.Type {
	case ProviderCheckoutCompleted:
		if _, err := p.ledger.Activate(ctx, ev.OwnerID, ev.Plan, ev.ProviderSubscriptionID); err != nil {
			// The activation never landed. Release the event id so the
			// provider's retry is consumed instead of dropped as a duplicate.
			if derr := p.events.DeleteEvent(ctx, ev.ID); derr != nil {
				log.Printf("payments: release event %s after failed activation: %v", ev.ID, derr)
			}
			return fmt.Errorf("activate subscription: %w", err)
		}
	case ProviderPaymentFailed:
		if _, err := p.notifier.Notify(ctx, PaymentFailedEvent(ev.OwnerID, ev.Plan)); err != nil {
			log.Printf("payments: notify owner %d of failed payment: %v", ev.OwnerID, err)
		}
	default:
		log.Printf("payments: unhandled event type %s (%s)", ev.Type, ev.ID)
	}

	return nil
}
