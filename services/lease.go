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

// unitReservableStatuses are the unit states a lease creation may move to
// booked. The conditional transition on this set is what makes two racing
// lease creations on one unit resolve to exactly one winner.
var unitReservableStatuses = []models.UnitStatus{models.UnitAvailable, models.UnitApproved}

// LeaseWorkflow converts an accepted booking into a binding lease and runs
// the tenant's accept/reject decision, reconciling the unit's status on the
// way. Per lease: pending -> active (tenant accepts) or pending -> rejected
// (tenant declines); nothing leaves active or rejected here.
type LeaseWorkflow struct {
	leases   LeaseStore
	bookings BookingStore
	units    UnitStore
	notifier *NotificationDispatcher
}

func NewLeaseWorkflow(leases LeaseStore, bookings BookingStore, units UnitStore, notifier *NotificationDispatcher) *LeaseWorkflow {
	return &LeaseWorkflow{
		leases:   leases,
		bookings: bookings,
		units:    units,
		notifier: notifier,
	}
}

type CreateLeaseInput struct {
	OwnerID      uint
	BookingID    uint
	StartDate    time.Time
	EndDate      time.Time
	PaymentTerms string
}

// Create accepts a pending booking and produces a pending lease.
//
// Write order matters: the unit is reserved first through a conditional
// status update, then the lease row is inserted, then the booking is
// finalized. There is no cross-entity transaction, so any later-step failure
// compensates the earlier writes instead of leaving a unit reserved with no
// lease behind it.
func (w *LeaseWorkflow) Create(ctx context.Context, in CreateLeaseInput) (*models.Lease, error) {
	booking, err := w.bookings.GetBooking(ctx, in.BookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &InvalidStateError{Entity: "booking", Reason: "booking does not exist"}
		}
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if booking.Status != models.BookingPending {
		return nil, &InvalidStateError{Entity: "booking", Reason: "booking is not pending"}
	}

	unit, err := w.units.GetUnit(ctx, booking.UnitID)
	if err != nil {
		return nil, fmt.Errorf("load unit: %w", err)
	}
	if unit.OwnerID != in.OwnerID {
		return nil, &AuthorizationError{Reason: "unit belongs to another landlord"}
	}

	start, end := in.StartDate, in.EndDate
	if start.IsZero() {
		start, end = booking.StartDate, booking.EndDate
	}
	if !end.After(start) {
		return nil, &ValidationError{Field: "dateRange", Reason: "end date must be after start date"}
	}

	// Reserve the unit. Losing this compare-and-set is how the second of two
	// concurrent creations finds out the unit is already taken.
	reserved, err := w.units.UpdateUnitStatusIf(ctx, unit.ID, unitReservableStatuses, models.UnitBooked)
	if err != nil {
		return nil, fmt.Errorf("reserve unit: %w", err)
	}
	if !reserved {
		return nil, &InvalidStateError{Entity: "unit", Reason: "unit is already booked"}
	}

	lease := &models.Lease{
		BookingID:  booking.ID,
		TenantID:   booking.TenantID,
		LandlordID: unit.OwnerID,
		UnitID:     unit.ID,
		// Price is fixed at this instant; later unit repricing must not
		// reach existing leases.
		RentAmount:    unit.MonthlyPrice,
		DepositAmount: unit.Deposit,
		StartDate:     start,
		EndDate:       end,
		PaymentTerms:  in.PaymentTerms,
		Status:        models.LeasePending,
	}
	if err := w.leases.CreateLease(ctx, lease); err != nil {
		w.compensateUnit(ctx, unit.ID, unit.Status)
		return nil, fmt.Errorf("create lease: %w", err)
	}

	accepted, err := w.bookings.MarkAccepted(ctx, booking.ID, lease.ID)
	if err != nil || !accepted {
		// The booking vanished or was resolved underneath us: undo the lease
		// and the reservation.
		if delErr := w.leases.DeleteLease(ctx, lease.ID); delErr != nil {
			log.Printf("lease %d: compensation delete failed: %v", lease.ID, delErr)
		}
		w.compensateUnit(ctx, unit.ID, unit.Status)
		if err != nil {
			return nil, fmt.Errorf("accept booking: %w", err)
		}
		return nil, &InvalidStateError{Entity: "booking", Reason: "booking is not pending"}
	}

	if _, err := w.notifier.Notify(ctx, LeaseApprovedEvent(booking.TenantID, unit.OwnerID, lease.ID, unit.Title)); err != nil {
		log.Printf("lease %d: notify tenant %d: %v", lease.ID, booking.TenantID, err)
	}

	return lease, nil
}

// compensateUnit rolls the reservation back to the status the unit had
// before the failed creation.
func (w *LeaseWorkflow) compensateUnit(ctx context.Context, unitID uint, prev models.UnitStatus) {
	if err := w.units.SetUnitStatus(ctx, unitID, prev); err != nil {
		log.Printf("unit %d: compensation to %s failed: %v", unitID, prev, err)
	}
}

// Accept moves a pending lease to active. Only the lease's tenant may accept
// and only while it is pending. The unit stays booked.
func (w *LeaseWorkflow) Accept(ctx context.Context, tenantID, leaseID uint) (*models.Lease, error) {
	lease, err := w.getOwnLease(ctx, tenantID, leaseID)
	if err != nil {
		return nil, err
	}

	moved, err := w.leases.UpdateLeaseStatusIf(ctx, leaseID, models.LeasePending, models.LeaseActive, "")
	if err != nil {
		return nil, fmt.Errorf("activate lease: %w", err)
	}
	if !moved {
		return nil, &InvalidStateError{Entity: "lease", Reason: "lease is not pending"}
	}

	lease.Status = models.LeaseActive
	return lease, nil
}

// Reject moves a pending lease to rejected, keeps the row for audit, frees
// the unit, and tells the landlord why.
func (w *LeaseWorkflow) Reject(ctx context.Context, tenantID, leaseID uint, reason string) (*models.Lease, error) {
	if reason == "" {
		return nil, &ValidationError{Field: "reason", Reason: "a rejection reason is required"}
	}

	lease, err := w.getOwnLease(ctx, tenantID, leaseID)
	if err != nil {
		return nil, err
	}

	moved, err := w.leases.UpdateLeaseStatusIf(ctx, leaseID, models.LeasePending, models.LeaseRejected, reason)
	if err != nil {
		return nil, fmt.Errorf("reject lease: %w", err)
	}
	if !moved {
		return nil, &InvalidStateError{Entity: "lease", Reason: "lease is not pending"}
	}

	// Free the unit. Conditional on booked so a unit that was never reserved
	// (or was moved by maintenance) is left alone.
	if _, err := w.units.UpdateUnitStatusIf(ctx, lease.UnitID, []models.UnitStatus{models.UnitBooked}, models.UnitAvailable); err != nil {
		log.Printf("lease %d: free unit %d: %v", leaseID, lease.UnitID, err)
	}

	unitTitle := fmt.Sprintf("unit %d", lease.UnitID)
	if unit, err := w.units.GetUnit(ctx, lease.UnitID); err == nil {
		unitTitle = unit.Title
	}
	if _, err := w.notifier.Notify(ctx, LeaseRejectedEvent(lease.LandlordID, tenantID, leaseID, unitTitle, reason)); err != nil {
		log.Printf("lease %d: notify landlord %d: %v", leaseID, lease.LandlordID, err)
	}

	lease.Status = models.LeaseRejected
	lease.RejectionReason = reason
	return lease, nil
}

func (w *LeaseWorkflow) getOwnLease(ctx context.Context, tenantID, leaseID uint) (*models.Lease, error) {
	lease, err := w.leases.GetLease(ctx, leaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "lease", ID: leaseID}
		}
		return nil, fmt.Errorf("load lease: %w", err)
	}
	if lease.TenantID != tenantID {
		return nil, &AuthorizationError{Reason: "lease belongs to another tenant"}
	}
	return lease, nil
}

// Get returns one lease to either of its parties.
func (w *LeaseWorkflow) Get(ctx context.Context, callerID, leaseID uint) (*models.Lease, error) {
	lease, err := w.leases.GetLease(ctx, leaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "lease", ID: leaseID}
		}
		return nil, fmt.Errorf("load lease: %w", err)
	}
	if lease.TenantID != callerID && lease.LandlordID != callerID {
		return nil, &AuthorizationError{Reason: "lease belongs to other parties"}
	}
	return lease, nil
}

// OpenLeaseForUnit returns the pending or active lease on the unit, or nil
// when the unit is free. Maintenance and refund checks use it to find the
// tenant affected by a status change.
func (w *LeaseWorkflow) OpenLeaseForUnit(ctx context.Context, unitID uint) (*models.Lease, error) {
	return w.leases.ActiveLeaseForUnit(ctx, unitID)
}

// List pages through the caller's leases, tenant-side or landlord-side.
func (w *LeaseWorkflow) List(ctx context.Context, userID uint, asLandlord bool, page, pageSize int) ([]models.Lease, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return w.leases.ListByUser(ctx, userID, asLandlord, page, pageSize)
}
