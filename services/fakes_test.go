package services

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"leasemate-server/models"
)

// fakeStores is an in-memory implementation of every store interface the
// workflows use. All methods take the same mutex, so the conditional updates
// behave like the single-row atomic UPDATEs of the real store and the race
// tests exercise real contention.
type fakeStores struct {
	mu sync.Mutex

	users         map[uint]*models.User
	units         map[uint]*models.Unit
	bookings      map[uint]*models.Booking
	leases        map[uint]*models.Lease
	subscriptions map[uint]*models.Subscription
	notifications map[uint]*models.Notification
	paymentEvents map[string]*models.PaymentEvent

	nextID uint

	failCreateLease        bool
	failMarkAccepted       bool
	failCreateSubscription bool
}

func newFakeStores() *fakeStores {
	return &fakeStores{
		users:         make(map[uint]*models.User),
		units:         make(map[uint]*models.Unit),
		bookings:      make(map[uint]*models.Booking),
		leases:        make(map[uint]*models.Lease),
		subscriptions: make(map[uint]*models.Subscription),
		notifications: make(map[uint]*models.Notification),
		paymentEvents: make(map[string]*models.PaymentEvent),
	}
}

func (f *fakeStores) id() uint {
	f.nextID++
	return f.nextID
}

func (f *fakeStores) addUser(u models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == 0 {
		u.ID = f.id()
	}
	f.users[u.ID] = &u
	return &u
}

func (f *fakeStores) addUnit(u models.Unit) *models.Unit {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == 0 {
		u.ID = f.id()
	}
	f.units[u.ID] = &u
	return &u
}

func (f *fakeStores) addBooking(b models.Booking) *models.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b.ID == 0 {
		b.ID = f.id()
	}
	if b.Status == "" {
		b.Status = models.BookingPending
	}
	f.bookings[b.ID] = &b
	return &b
}

func (f *fakeStores) addSubscription(s models.Subscription) *models.Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.ID == 0 {
		s.ID = f.id()
	}
	f.subscriptions[s.ID] = &s
	return &s
}

// notificationsFor returns the persisted notifications addressed to a user.
func (f *fakeStores) notificationsFor(userID uint) []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out
}

// UserStore

func (f *fakeStores) GetUser(_ context.Context, id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *u
	return &copied, nil
}

// UnitStore

func (f *fakeStores) GetUnit(_ context.Context, id uint) (*models.Unit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.units[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeStores) UpdateUnitStatusIf(_ context.Context, unitID uint, from []models.UnitStatus, to models.UnitStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.units[unitID]
	if !ok {
		return false, nil
	}
	for _, s := range from {
		if u.Status == s {
			u.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStores) SetUnitStatus(_ context.Context, unitID uint, to models.UnitStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.units[unitID]; ok {
		u.Status = to
	}
	return nil
}

func (f *fakeStores) CountByOwnerInStatuses(_ context.Context, ownerID uint, statuses []models.UnitStatus) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, u := range f.units {
		if u.OwnerID != ownerID {
			continue
		}
		for _, s := range statuses {
			if u.Status == s {
				count++
				break
			}
		}
	}
	return count, nil
}

// BookingStore

func (f *fakeStores) CreateBooking(_ context.Context, b *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b.ID = f.id()
	copied := *b
	f.bookings[b.ID] = &copied
	return nil
}

func (f *fakeStores) GetBooking(_ context.Context, id uint) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeStores) MarkAccepted(_ context.Context, bookingID, leaseID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failMarkAccepted {
		return false, nil
	}
	b, ok := f.bookings[bookingID]
	if !ok || b.Status != models.BookingPending {
		return false, nil
	}
	b.Status = models.BookingAccepted
	id := leaseID
	b.LeaseID = &id
	return true, nil
}

func (f *fakeStores) DeleteBooking(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.bookings, id)
	return nil
}

func (f *fakeStores) ListPendingByOwner(_ context.Context, ownerID uint) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.bookings {
		if b.Status != models.BookingPending {
			continue
		}
		if u, ok := f.units[b.UnitID]; ok && u.OwnerID == ownerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeStores) ListByTenant(_ context.Context, tenantID uint) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.bookings {
		if b.TenantID == tenantID {
			out = append(out, *b)
		}
	}
	return out, nil
}

// LeaseStore

func (f *fakeStores) CreateLease(_ context.Context, l *models.Lease) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreateLease {
		return gorm.ErrInvalidData
	}
	l.ID = f.id()
	copied := *l
	f.leases[l.ID] = &copied
	return nil
}

func (f *fakeStores) GetLease(_ context.Context, id uint) (*models.Lease, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.leases[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *l
	return &copied, nil
}

func (f *fakeStores) DeleteLease(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.leases, id)
	return nil
}

func (f *fakeStores) UpdateLeaseStatusIf(_ context.Context, leaseID uint, from, to models.LeaseStatus, reason string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.leases[leaseID]
	if !ok {
		return false, nil
	}
	if l.Status != from {
		return false, nil
	}
	l.Status = to
	if reason != "" {
		l.RejectionReason = reason
	}
	return true, nil
}

func (f *fakeStores) ListByUser(_ context.Context, userID uint, asLandlord bool, page, pageSize int) ([]models.Lease, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Lease
	for _, l := range f.leases {
		if (asLandlord && l.LandlordID == userID) || (!asLandlord && l.TenantID == userID) {
			out = append(out, *l)
		}
	}
	total := int64(len(out))
	start := (page - 1) * pageSize
	if start >= len(out) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (f *fakeStores) ActiveLeaseForUnit(_ context.Context, unitID uint) (*models.Lease, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.leases {
		if l.UnitID == unitID && (l.Status == models.LeasePending || l.Status == models.LeaseActive) {
			copied := *l
			return &copied, nil
		}
	}
	return nil, nil
}

// SubscriptionStore

func (f *fakeStores) ActiveForOwner(_ context.Context, ownerID uint) (*models.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *models.Subscription
	for _, s := range f.subscriptions {
		if s.OwnerID == ownerID && s.Status == models.SubscriptionActive {
			if latest == nil || s.ID > latest.ID {
				latest = s
			}
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *latest
	return &copied, nil
}

func (f *fakeStores) ExpireActiveForOwner(_ context.Context, ownerID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var expired int64
	for _, s := range f.subscriptions {
		if s.OwnerID == ownerID && s.Status == models.SubscriptionActive {
			s.Status = models.SubscriptionExpired
			expired++
		}
	}
	return expired, nil
}

func (f *fakeStores) CreateSubscription(_ context.Context, s *models.Subscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreateSubscription {
		return gorm.ErrInvalidData
	}
	s.ID = f.id()
	copied := *s
	f.subscriptions[s.ID] = &copied
	return nil
}

func (f *fakeStores) GetSubscription(_ context.Context, id uint) (*models.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.subscriptions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeStores) ByProviderSubscriptionID(_ context.Context, providerID string) (*models.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.subscriptions {
		if s.ProviderSubscriptionID == providerID {
			copied := *s
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStores) MarkRefunded(_ context.Context, id uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.subscriptions[id]
	if !ok || s.Status != models.SubscriptionExpired || s.Refunded {
		return false, nil
	}
	s.Status = models.SubscriptionRefunded
	s.Refunded = true
	return true, nil
}

// NotificationStore

func (f *fakeStores) CreateNotification(_ context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n.ID = f.id()
	n.CreatedAt = time.Now()
	copied := *n
	f.notifications[n.ID] = &copied
	return nil
}

func (f *fakeStores) GetNotification(_ context.Context, id uint) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notifications[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *n
	return &copied, nil
}

func (f *fakeStores) MarkRead(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n, ok := f.notifications[id]; ok {
		now := time.Now()
		n.IsRead = true
		n.ReadAt = &now
	}
	return nil
}

func (f *fakeStores) MarkAllRead(_ context.Context, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for _, n := range f.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
		}
	}
	return nil
}

func (f *fakeStores) DisableByRef(_ context.Context, typ NotificationType, refType string, refID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notifications {
		if n.Type == string(typ) && n.RefType == refType && n.RefID == refID {
			n.Disabled = true
		}
	}
	return nil
}

func (f *fakeStores) ListForUser(_ context.Context, userID uint, page, pageSize int) ([]models.Notification, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.notifications {
		if n.UserID == userID && !n.Disabled {
			out = append(out, *n)
		}
	}
	total := int64(len(out))
	start := (page - 1) * pageSize
	if start >= len(out) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (f *fakeStores) UnreadCount(_ context.Context, userID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.notifications {
		if n.UserID == userID && !n.IsRead && !n.Disabled {
			count++
		}
	}
	return count, nil
}

func (f *fakeStores) DeleteNotification(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.notifications, id)
	return nil
}

// PaymentEventStore

func (f *fakeStores) InsertOnce(_ context.Context, ev *models.PaymentEvent) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.paymentEvents[ev.ProviderEventID]; ok {
		return false, nil
	}
	ev.ID = f.id()
	copied := *ev
	f.paymentEvents[ev.ProviderEventID] = &copied
	return true, nil
}

func (f *fakeStores) DeleteEvent(_ context.Context, providerEventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.paymentEvents, providerEventID)
	return nil
}
