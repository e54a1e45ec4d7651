package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leasemate-server/models"
)

func newBookingFixture(t *testing.T) (*fakeStores, *BookingWorkflow) {
	t.Helper()
	f := newFakeStores()
	notifier := NewNotificationDispatcher(f, f, NewLiveSessionRegistry(), nil)
	return f, NewBookingWorkflow(f, f, f, notifier)
}

func TestCreateBookingNotifiesOwner(t *testing.T) {
	f, w := newBookingFixture(t)

	owner := f.addUser(models.User{FirstName: "Olive", LastName: "Owner", Role: "landlord"})
	tenant := f.addUser(models.User{FirstName: "Toni", LastName: "Tenant", Role: "tenant"})
	unit := f.addUnit(models.Unit{OwnerID: owner.ID, Title: "Sunny loft", Status: models.UnitAvailable})

	start := time.Now().AddDate(0, 1, 0)
	booking, err := w.Create(context.Background(), CreateBookingInput{
		TenantID:   tenant.ID,
		UnitID:     unit.ID,
		StartDate:  start,
		EndDate:    start.AddDate(1, 0, 0),
		TotalPrice: decimal.NewFromInt(1200),
	})
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, booking.Status)
	assert.Nil(t, booking.LeaseID)

	// A pending booking never reserves the unit.
	u, err := f.GetUnit(context.Background(), unit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UnitAvailable, u.Status)

	got := f.notificationsFor(owner.ID)
	require.Len(t, got, 1)
	assert.Equal(t, string(NotifyBookingRequest), got[0].Type)
	assert.Contains(t, got[0].Message, "Toni Tenant")
	assert.Contains(t, got[0].Message, "Sunny loft")
}

func TestCreateBookingValidation(t *testing.T) {
	f, w := newBookingFixture(t)

	owner := f.addUser(models.User{Role: "landlord"})
	unit := f.addUnit(models.Unit{OwnerID: owner.ID, Status: models.UnitAvailable})
	start := time.Now()

	var vErr *ValidationError

	_, err := w.Create(context.Background(), CreateBookingInput{
		TenantID: 0, UnitID: unit.ID, StartDate: start, EndDate: start.AddDate(0, 6, 0),
	})
	require.ErrorAs(t, err, &vErr)

	_, err = w.Create(context.Background(), CreateBookingInput{
		TenantID: 42, UnitID: unit.ID, StartDate: start, EndDate: start,
	})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "dateRange", vErr.Field)

	_, err = w.Create(context.Background(), CreateBookingInput{
		TenantID: 42, UnitID: 999, StartDate: start, EndDate: start.AddDate(0, 6, 0),
	})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "unitID", vErr.Field)

	// Landlords cannot book their own listings.
	_, err = w.Create(context.Background(), CreateBookingInput{
		TenantID: owner.ID, UnitID: unit.ID, StartDate: start, EndDate: start.AddDate(0, 6, 0),
	})
	require.ErrorAs(t, err, &vErr)
}

func TestRejectBookingDeletesRow(t *testing.T) {
	f, w := newBookingFixture(t)

	owner := f.addUser(models.User{Role: "landlord"})
	tenant := f.addUser(models.User{Role: "tenant"})
	unit := f.addUnit(models.Unit{OwnerID: owner.ID, Title: "Back house", Status: models.UnitAvailable})
	booking := f.addBooking(models.Booking{TenantID: tenant.ID, UnitID: unit.ID})

	require.NoError(t, w.Reject(context.Background(), owner.ID, booking.ID))

	// Rejection is destructive: no archival row survives.
	_, err := f.GetBooking(context.Background(), booking.ID)
	require.Error(t, err)

	got := f.notificationsFor(tenant.ID)
	require.Len(t, got, 1)
	assert.Equal(t, string(NotifyBookingRejected), got[0].Type)
}

func TestRejectBookingAuthorization(t *testing.T) {
	f, w := newBookingFixture(t)

	owner := f.addUser(models.User{Role: "landlord"})
	other := f.addUser(models.User{Role: "landlord"})
	tenant := f.addUser(models.User{Role: "tenant"})
	unit := f.addUnit(models.Unit{OwnerID: owner.ID, Status: models.UnitAvailable})
	booking := f.addBooking(models.Booking{TenantID: tenant.ID, UnitID: unit.ID})

	var authErr *AuthorizationError
	require.ErrorAs(t, w.Reject(context.Background(), other.ID, booking.ID), &authErr)

	var nfErr *NotFoundError
	require.ErrorAs(t, w.Reject(context.Background(), owner.ID, 999), &nfErr)

	accepted := f.addBooking(models.Booking{TenantID: tenant.ID, UnitID: unit.ID, Status: models.BookingAccepted})
	var stateErr *InvalidStateError
	require.ErrorAs(t, w.Reject(context.Background(), owner.ID, accepted.ID), &stateErr)
}

func TestListBookings(t *testing.T) {
	f, w := newBookingFixture(t)

	owner := f.addUser(models.User{Role: "landlord"})
	tenant := f.addUser(models.User{Role: "tenant"})
	unit := f.addUnit(models.Unit{OwnerID: owner.ID, Status: models.UnitAvailable})
	f.addBooking(models.Booking{TenantID: tenant.ID, UnitID: unit.ID})
	f.addBooking(models.Booking{TenantID: tenant.ID, UnitID: unit.ID, Status: models.BookingAccepted})

	forOwner, err := w.ListForOwner(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Len(t, forOwner, 1) // pending only

	forTenant, err := w.ListForTenant(context.Background(), tenant.ID)
	require.NoError(t, err)
	assert.Len(t, forTenant, 2)
}
