package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leasemate-server/models"
)

func newPaymentsFixture(t *testing.T) (*fakeStores, *PaymentProcessor) {
	t.Helper()
	f := newFakeStores()
	notifier := NewNotificationDispatcher(f, f, NewLiveSessionRegistry(), nil)
	ledger := NewSubscriptionLedger(f, f, notifier)
	return f, NewPaymentProcessor(f, ledger, notifier)
}

func TestConsumeCheckoutActivatesSubscription(t *testing.T) {
	f, p := newPaymentsFixture(t)
	ctx := context.Background()

	owner := f.addUser(models.User{Role: "landlord"})
	err := p.Consume(ctx, ProviderEvent{
		ID:                     "evt_1",
		Type:                   ProviderCheckoutCompleted,
		OwnerID:                owner.ID,
		Plan:                   "standard",
		ProviderSubscriptionID: "sub_1",
		Payload:                json.RawMessage(`{"amount":4900}`),
	})
	require.NoError(t, err)

	sub, err := f.ActiveForOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "standard", sub.PlanName)
	assert.Equal(t, "sub_1", sub.ProviderSubscriptionID)

	notifs := f.notificationsFor(owner.ID)
	require.Len(t, notifs, 1)
	assert.Equal(t, string(NotifyPaymentSuccess), notifs[0].Type)
}

// The provider redelivers on timeout; a replayed event id must be a no-op.
func TestConsumeDuplicateEventID(t *testing.T) {
	f, p := newPaymentsFixture(t)
	ctx := context.Background()

	owner := f.addUser(models.User{Role: "landlord"})
	ev := ProviderEvent{
		ID: "evt_dup", Type: ProviderCheckoutCompleted,
		OwnerID: owner.ID, Plan: "pro", ProviderSubscriptionID: "sub_dup",
	}
	require.NoError(t, p.Consume(ctx, ev))
	require.NoError(t, p.Consume(ctx, ev))

	f.mu.Lock()
	subs := len(f.subscriptions)
	f.mu.Unlock()
	assert.Equal(t, 1, subs)
	assert.Len(t, f.notificationsFor(owner.ID), 1)
}

// A transient store failure during activation must not burn the event id:
// the provider's redelivery has to finish the activation the owner paid for.
func TestConsumeRetryAfterFailedActivation(t *testing.T) {
	f, p := newPaymentsFixture(t)
	ctx := context.Background()

	owner := f.addUser(models.User{Role: "landlord"})
	ev := ProviderEvent{
		ID: "evt_retry", Type: ProviderCheckoutCompleted,
		OwnerID: owner.ID, Plan: "standard", ProviderSubscriptionID: "sub_retry",
	}

	f.failCreateSubscription = true
	require.Error(t, p.Consume(ctx, ev))
	_, err := f.ActiveForOwner(ctx, owner.ID)
	require.Error(t, err)

	f.failCreateSubscription = false
	require.NoError(t, p.Consume(ctx, ev))

	sub, err := f.ActiveForOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "standard", sub.PlanName)
	f.mu.Lock()
	subs := len(f.subscriptions)
	f.mu.Unlock()
	assert.Equal(t, 1, subs)
}

func TestConsumePaymentFailedNotifiesOnly(t *testing.T) {
	f, p := newPaymentsFixture(t)
	ctx := context.Background()

	owner := f.addUser(models.User{Role: "landlord"})
	err := p.Consume(ctx, ProviderEvent{
		ID: "evt_fail", Type: ProviderPaymentFailed, OwnerID: owner.ID, Plan: "starter",
	})
	require.NoError(t, err)

	_, err = f.ActiveForOwner(ctx, owner.ID)
	require.Error(t, err) // no subscription was opened

	notifs := f.notificationsFor(owner.ID)
	require.Len(t, notifs, 1)
	assert.Equal(t, string(NotifyPaymentFailed), notifs[0].Type)
}

func TestConsumeUnknownTypeIsRecorded(t *testing.T) {
	f, p := newPaymentsFixture(t)
	ctx := context.Background()

	owner := f.addUser(models.User{Role: "landlord"})
	require.NoError(t, p.Consume(ctx, ProviderEvent{
		ID: "evt_other", Type: "customer.updated", OwnerID: owner.ID,
	}))

	// Recorded for audit, no domain effect.
	f.mu.Lock()
	_, recorded := f.paymentEvents["evt_other"]
	f.mu.Unlock()
	assert.True(t, recorded)
	assert.Empty(t, f.notificationsFor(owner.ID))
}

func TestConsumeValidation(t *testing.T) {
	_, p := newPaymentsFixture(t)
	ctx := context.Background()

	var vErr *ValidationError
	require.ErrorAs(t, p.Consume(ctx, ProviderEvent{Type: ProviderCheckoutCompleted, OwnerID: 1}), &vErr)
	require.ErrorAs(t, p.Consume(ctx, ProviderEvent{ID: "evt_x", Type: ProviderCheckoutCompleted}), &vErr)
}
