package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"leasemate-server/models"
)

// BookingWorkflow creates and resolves rental requests against a unit.
// Creating a booking never touches the unit's status: a unit stays open to
// any number of pending requests and the first lease wins at acceptance.
type BookingWorkflow struct {
	bookings BookingStore
	units    UnitStore
	users    UserStore
	notifier *NotificationDispatcher
}

func NewBookingWorkflow(bookings BookingStore, units UnitStore, users UserStore, notifier *NotificationDispatcher) *BookingWorkflow {
	return &BookingWorkflow{
		bookings: bookings,
		units:    units,
		users:    users,
		notifier: notifier,
	}
}

type CreateBookingInput struct {
	TenantID   uint
	UnitID     uint
	StartDate  time.Time
	EndDate    time.Time
	TotalPrice decimal.Decimal
}

// Create persists a pending booking and tells the unit's owner.
func (w *BookingWorkflow) Create(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	if in.TenantID == 0 {
		return nil, &ValidationError{Field: "tenantID", Reason: "missing tenant identity"}
	}
	if !in.EndDate.After(in.StartDate) {
		return nil, &ValidationError{Field: "dateRange", Reason: "end date must be after start date"}
	}

	unit, err := w.units.GetUnit(ctx, in.UnitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ValidationError{Field: "unitID", Reason: "unit does not exist"}
		}
		return nil, fmt.Errorf("load unit: %w", err)
	}
	if unit.OwnerID == in.TenantID {
		return nil, &ValidationError{Field: "unitID", Reason: "cannot book your own unit"}
	}

	booking := &models.Booking{
		TenantID:   in.TenantID,
		UnitID:     in.UnitID,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		TotalPrice: in.TotalPrice,
		Status:     models.BookingPending,
	}
	if err := w.bookings.CreateBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	tenantName := fmt.Sprintf("User %d", in.TenantID)
	if tenant, err := w.users.GetUser(ctx, in.TenantID); err == nil {
		tenantName = tenant.FirstName + " " + tenant.LastName
	}

	if _, err := w.notifier.Notify(ctx, BookingRequestEvent(unit.OwnerID, in.TenantID, booking.ID, tenantName, unit.Title)); err != nil {
		log.Printf("booking %d: notify owner %d: %v", booking.ID, unit.OwnerID, err)
	}

	return booking, nil
}

// Reject hard-deletes the booking and tells the tenant. Only the landlord
// owning the unit may do it, and it is irreversible: rejected bookings leave
// no archival row (unlike rejected leases).
func (w *BookingWorkflow) Reject(ctx context.Context, ownerID, bookingID uint) error {
	booking, err := w.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "booking", ID: bookingID}
		}
		return fmt.Errorf("load booking: %w", err)
	}

	unit, err := w.units.GetUnit(ctx, booking.UnitID)
	if err != nil {
		return fmt.Errorf("load unit: %w", err)
	}
	if unit.OwnerID != ownerID {
		return &AuthorizationError{Reason: "unit belongs to another landlord"}
	}
	if booking.Status != models.BookingPending {
		return &InvalidStateError{Entity: "booking", Reason: "only pending bookings can be rejected"}
	}

	if err := w.bookings.DeleteBooking(ctx, bookingID); err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}

	if _, err := w.notifier.Notify(ctx, BookingRejectedEvent(booking.TenantID, ownerID, bookingID, unit.Title)); err != nil {
		log.Printf("booking %d: notify tenant %d: %v", bookingID, booking.TenantID, err)
	}

	return nil
}

// ListForOwner returns pending bookings on the landlord's units.
func (w *BookingWorkflow) ListForOwner(ctx context.Context, ownerID uint) ([]models.Booking, error) {
	return w.bookings.ListPendingByOwner(ctx, ownerID)
}

// ListForTenant returns the tenant's own requests.
func (w *BookingWorkflow) ListForTenant(ctx context.Context, tenantID uint) ([]models.Booking, error) {
	return w.bookings.ListByTenant(ctx, tenantID)
}
