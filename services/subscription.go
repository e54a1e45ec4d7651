package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"leasemate-server/models"
)

// quotaStatuses are the unit states that consume a slot of the owner's
// subscription. Rejected and under-maintenance units do not count.
var quotaStatuses = []models.UnitStatus{
	models.UnitAvailable,
	models.UnitBooked,
	models.UnitApproved,
	models.UnitPending,
}

// Plan is one entry of the subscription catalog.
type Plan struct {
	Name      string
	UnitLimit int
	Term      time.Duration
}

// Plans is the catalog the payment provider's checkout metadata refers to.
var Plans = map[string]Plan{
	"starter":  {Name: "starter", UnitLimit: 2, Term: 30 * 24 * time.Hour},
	"standard": {Name: "standard", UnitLimit: 5, Term: 30 * 24 * time.Hour},
	"pro":      {Name: "pro", UnitLimit: 20, Term: 30 * 24 * time.Hour},
}

// SubscriptionLedger enforces per-owner listing quotas and runs the
// activation and refund rules.
type SubscriptionLedger struct {
	subs     SubscriptionStore
	units    UnitStore
	notifier *NotificationDispatcher
}

func NewSubscriptionLedger(subs SubscriptionStore, units UnitStore, notifier *NotificationDispatcher) *SubscriptionLedger {
	return &SubscriptionLedger{
		subs:     subs,
		units:    units,
		notifier: notifier,
	}
}

// EnforceUnitQuota gates the admission of a new unit: the owner needs an
// active, unexpired subscription with a free slot. Returns the subscription
// backing the admission.
func (l *SubscriptionLedger) EnforceUnitQuota(ctx context.Context, ownerID uint) (*models.Subscription, error) {
	sub, err := l.subs.ActiveForOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &QuotaError{Reason: "no active subscription"}
		}
		return nil, fmt.Errorf("load subscription: %w", err)
	}
	if !sub.EndsAt.IsZero() && sub.EndsAt.Before(time.Now()) {
		return nil, &QuotaError{Reason: "subscription expired"}
	}

	count, err := l.units.CountByOwnerInStatuses(ctx, ownerID, quotaStatuses)
	if err != nil {
		return nil, fmt.Errorf("count units: %w", err)
	}
	if count >= int64(sub.UnitLimit) {
		return nil, &QuotaError{
			Reason: fmt.Sprintf("unit limit of %d reached", sub.UnitLimit),
			Limit:  sub.UnitLimit,
		}
	}

	return sub, nil
}

// Activate opens a new subscription window for the owner. All prior active
// subscriptions are expired first, so the one-active-per-owner invariant
// holds for any sequence of calls. Redelivered provider events resolve to
// the already-created subscription by provider id.
func (l *SubscriptionLedger) Activate(ctx context.Context, ownerID uint, planName, providerSubID string) (*models.Subscription, error) {
	plan, ok := Plans[planName]
	if !ok {
		return nil, &ValidationError{Field: "plan", Reason: "unknown plan " + planName}
	}

	if providerSubID != "" {
		if existing, err := l.subs.ByProviderSubscriptionID(ctx, providerSubID); err == nil {
			return existing, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lookup provider subscription: %w", err)
		}
	}

	expired, err := l.subs.ExpireActiveForOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("expire prior subscriptions: %w", err)
	}
	if expired > 0 {
		log.Printf("subscription: owner %d had %d active subscription(s) expired on activation", ownerID, expired)
	}

	now := time.Now()
	sub := &models.Subscription{
		OwnerID:                ownerID,
		PlanName:               plan.Name,
		UnitLimit:              plan.UnitLimit,
		Status:                 models.SubscriptionActive,
		StartsAt:               now,
		EndsAt:                 now.Add(plan.Term),
		ProviderSubscriptionID: providerSubID,
	}
	if err := l.subs.CreateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}

	if _, err := l.notifier.Notify(ctx, PaymentSuccessEvent(ownerID, sub.ID, plan.Name)); err != nil {
		log.Printf("subscription %d: notify owner %d: %v", sub.ID, ownerID, err)
	}

	return sub, nil
}

// Refund flips an expired, never-refunded subscription to refunded, provided
// none of the owner's units is currently booked. A second call on the same
// subscription fails: the conditional update refuses a refunded row, so a
// refund is issued at most once.
func (l *SubscriptionLedger) Refund(ctx context.Context, ownerID, subscriptionID uint) (*models.Subscription, error) {
	sub, err := l.subs.GetSubscription(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "subscription", ID: subscriptionID}
		}
		return nil, fmt.Errorf("load subscription: %w", err)
	}
	if sub.OwnerID != ownerID {
		return nil, &AuthorizationError{Reason: "subscription belongs to another owner"}
	}
	if sub.Status != models.SubscriptionExpired {
		return nil, &InvalidStateError{Entity: "subscription", Reason: "only expired subscriptions are refundable"}
	}
	if sub.Refunded {
		return nil, &InvalidStateError{Entity: "subscription", Reason: "subscription already refunded"}
	}

	booked, err := l.units.CountByOwnerInStatuses(ctx, ownerID, []models.UnitStatus{models.UnitBooked})
	if err != nil {
		return nil, fmt.Errorf("count booked units: %w", err)
	}
	if booked > 0 {
		return nil, &InvalidStateError{Entity: "subscription", Reason: "a unit under this subscription is still booked"}
	}

	flipped, err := l.subs.MarkRefunded(ctx, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("mark refunded: %w", err)
	}
	if !flipped {
		return nil, &InvalidStateError{Entity: "subscription", Reason: "subscription already refunded"}
	}

	// Withdraw any outstanding refund offers; the rows stay for audit.
	if err := l.notifier.DisableRefundOffers(ctx, subscriptionID); err != nil {
		log.Printf("subscription %d: disable refund offers: %v", subscriptionID, err)
	}
	if _, err := l.notifier.Notify(ctx, RefundIssuedEvent(ownerID, subscriptionID, sub.PlanName)); err != nil {
		log.Printf("subscription %d: notify owner %d: %v", subscriptionID, ownerID, err)
	}

	sub.Status = models.SubscriptionRefunded
	sub.Refunded = true
	return sub, nil
}
