package services

import (
	"context"

	"leasemate-server/models"
)

// Store interfaces the workflows run against. GORM-backed implementations
// live in the storage package; tests use in-memory fakes. Absent rows are
// reported as gorm.ErrRecordNotFound by convention.

type UserStore interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
}

type UnitStore interface {
	GetUnit(ctx context.Context, id uint) (*models.Unit, error)
	// UpdateUnitStatusIf performs the conditional transition that serializes
	// booking races: the status moves to `to` only if it currently is one of
	// `from`. Returns false when the precondition did not hold.
	UpdateUnitStatusIf(ctx context.Context, unitID uint, from []models.UnitStatus, to models.UnitStatus) (bool, error)
	// SetUnitStatus is the unconditional write used only for compensation after
	// a partial failure.
	SetUnitStatus(ctx context.Context, unitID uint, to models.UnitStatus) error
	CountByOwnerInStatuses(ctx context.Context, ownerID uint, statuses []models.UnitStatus) (int64, error)
}

type BookingStore interface {
	CreateBooking(ctx context.Context, b *models.Booking) error
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	// MarkAccepted flips a pending booking to accepted and links the lease.
	// Returns false if the booking was no longer pending.
	MarkAccepted(ctx context.Context, bookingID, leaseID uint) (bool, error)
	DeleteBooking(ctx context.Context, id uint) error
	ListPendingByOwner(ctx context.Context, ownerID uint) ([]models.Booking, error)
	ListByTenant(ctx context.Context, tenantID uint) ([]models.Booking, error)
}

type LeaseStore interface {
	CreateLease(ctx context.Context, l *models.Lease) error
	GetLease(ctx context.Context, id uint) (*models.Lease, error)
	// DeleteLease exists only for compensation inside lease creation; a lease
	// that ever became visible to users is never removed.
	DeleteLease(ctx context.Context, id uint) error
	// UpdateLeaseStatusIf moves the lease from `from` to `to`, storing the
	// rejection reason when given. Returns false when the lease was not in
	// `from` anymore.
	UpdateLeaseStatusIf(ctx context.Context, leaseID uint, from, to models.LeaseStatus, reason string) (bool, error)
	ListByUser(ctx context.Context, userID uint, asLandlord bool, page, pageSize int) ([]models.Lease, int64, error)
	// ActiveLeaseForUnit returns the open (pending or active) lease on the
	// unit, or nil if there is none.
	ActiveLeaseForUnit(ctx context.Context, unitID uint) (*models.Lease, error)
}

type SubscriptionStore interface {
	ActiveForOwner(ctx context.Context, ownerID uint) (*models.Subscription, error)
	// ExpireActiveForOwner marks every active subscription of the owner
	// expired and returns how many rows changed.
	ExpireActiveForOwner(ctx context.Context, ownerID uint) (int64, error)
	CreateSubscription(ctx context.Context, s *models.Subscription) error
	GetSubscription(ctx context.Context, id uint) (*models.Subscription, error)
	ByProviderSubscriptionID(ctx context.Context, providerID string) (*models.Subscription, error)
	// MarkRefunded flips the subscription to refunded only while it is
	// expired and not yet refunded. Returns false otherwise.
	MarkRefunded(ctx context.Context, id uint) (bool, error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	GetNotification(ctx context.Context, id uint) (*models.Notification, error)
	MarkRead(ctx context.Context, id uint) error
	MarkAllRead(ctx context.Context, userID uint) error
	// DisableByRef flips the disabled flag on every notification of the given
	// type pointing at the reference. Rows are kept, never deleted.
	DisableByRef(ctx context.Context, typ NotificationType, refType string, refID uint) error
	ListForUser(ctx context.Context, userID uint, page, pageSize int) ([]models.Notification, int64, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	DeleteNotification(ctx context.Context, id uint) error
}

type PaymentEventStore interface {
	// InsertOnce records the provider event; returns false when the event id
	// was already consumed (redelivery).
	InsertOnce(ctx context.Context, ev *models.PaymentEvent) (bool, error)
	// DeleteEvent releases a ledger row after the event's effect failed, so
	// the provider's redelivery is applied instead of dropped as a duplicate.
	DeleteEvent(ctx context.Context, providerEventID string) error
}
