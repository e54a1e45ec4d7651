package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"

	"gorm.io/gorm"

	"leasemate-server/models"
)

// PushFunc sends one push message to a device token. Wired to the Expo
// gateway in production; nil disables push entirely.
type PushFunc func(token, title, body string, data map[string]string) error

// NotificationDispatcher persists a notification row for every domain event
// and then fans it out best-effort: live sessions first, then push tokens.
// Persistence is the source of truth — a delivery failure never rolls the
// row back, and the workflows never see it.
type NotificationDispatcher struct {
	store    NotificationStore
	users    UserStore
	registry *LiveSessionRegistry
	push     PushFunc
}

func NewNotificationDispatcher(store NotificationStore, users UserStore, registry *LiveSessionRegistry, push PushFunc) *NotificationDispatcher {
	return &NotificationDispatcher{
		store:    store,
		users:    users,
		registry: registry,
		push:     push,
	}
}

// Notify records the event and attempts live delivery. The returned error is
// only ever a persistence failure; live channel and push failures are
// swallowed after logging.
func (d *NotificationDispatcher) Notify(ctx context.Context, ev Event) (*models.Notification, error) {
	n := &models.Notification{
		UserID:  ev.Recipient,
		Type:    string(ev.Type),
		Title:   ev.Title,
		Message: ev.Message,
		Link:    ev.Link,
		RefType: ev.RefType,
		RefID:   ev.RefID,
	}
	if ev.Sender != 0 {
		sender := ev.Sender
		n.SenderID = &sender
	}

	if err := d.store.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("persist notification: %w", err)
	}

	if d.registry != nil {
		if delivered := d.registry.SendToUser(ev.Recipient, ev); delivered == 0 {
			log.Printf("notify: user %d offline, %s waits for poll", ev.Recipient, ev.Type)
		}
	}

	d.sendPush(ctx, n, ev)

	return n, nil
}

// sendPush forwards the event to the user's registered device tokens.
func (d *NotificationDispatcher) sendPush(ctx context.Context, n *models.Notification, ev Event) {
	if d.push == nil {
		return
	}

	user, err := d.users.GetUser(ctx, ev.Recipient)
	if err != nil {
		log.Printf("notify: load user %d for push: %v", ev.Recipient, err)
		return
	}
	if user.AllowsNotifications == nil || !*user.AllowsNotifications || user.PushTokens == nil {
		return
	}

	var tokens []string
	if err := json.Unmarshal(user.PushTokens, &tokens); err != nil {
		log.Printf("notify: bad push tokens for user %d: %v", user.ID, err)
		return
	}

	data := map[string]string{
		"type":           string(ev.Type),
		"notificationId": strconv.FormatUint(uint64(n.ID), 10),
		"refType":        ev.RefType,
		"refId":          strconv.FormatUint(uint64(ev.RefID), 10),
		"link":           ev.Link,
	}
	for _, token := range tokens {
		if err := d.push(token, ev.Title, ev.Message, data); err != nil {
			log.Printf("notify: push to token %s failed: %v", token, err)
		}
	}
}

// MarkRead flips one notification to read. Only the recipient or an admin
// may do it; re-reading an already-read notification is a no-op.
func (d *NotificationDispatcher) MarkRead(ctx context.Context, id uint, callerID uint, callerRole string) error {
	n, err := d.store.GetNotification(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "notification", ID: id}
		}
		return err
	}
	if n.UserID != callerID && callerRole != "admin" {
		return &AuthorizationError{Reason: "notification belongs to another user"}
	}
	if n.IsRead {
		return nil
	}
	return d.store.MarkRead(ctx, id)
}

// MarkAllRead marks every notification of the user read. Idempotent.
func (d *NotificationDispatcher) MarkAllRead(ctx context.Context, userID uint, callerID uint, callerRole string) error {
	if userID != callerID && callerRole != "admin" {
		return &AuthorizationError{Reason: "cannot mark another user's notifications"}
	}
	return d.store.MarkAllRead(ctx, userID)
}

// List is the poll/reconcile fallback for the best-effort live channel:
// a client that saw no live event within its bound after connecting fetches
// this and de-duplicates by notification id.
func (d *NotificationDispatcher) List(ctx context.Context, userID uint, page, pageSize int) ([]models.Notification, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return d.store.ListForUser(ctx, userID, page, pageSize)
}

func (d *NotificationDispatcher) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return d.store.UnreadCount(ctx, userID)
}

// Delete removes one notification at the explicit request of its recipient.
func (d *NotificationDispatcher) Delete(ctx context.Context, id uint, callerID uint, callerRole string) error {
	n, err := d.store.GetNotification(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "notification", ID: id}
		}
		return err
	}
	if n.UserID != callerID && callerRole != "admin" {
		return &AuthorizationError{Reason: "notification belongs to another user"}
	}
	return d.store.DeleteNotification(ctx, id)
}

// DisableRefundOffers withdraws outstanding REFUND_ELIGIBLE notifications
// for a subscription once the refund is issued. The rows stay for audit.
func (d *NotificationDispatcher) DisableRefundOffers(ctx context.Context, subscriptionID uint) error {
	return d.store.DisableByRef(ctx, NotifyRefundEligible, "subscription", subscriptionID)
}
