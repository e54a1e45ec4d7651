package storage

import (
	"context"

	"leasemate-server/models"
)

func (s *GormStores) CreateBooking(ctx context.Context, b *models.Booking) error {
	return s.db.WithContext(ctx).Create(b).Error
}

func (s *GormStores) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.WithContext(ctx).First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// MarkAccepted finalizes a pending booking with its lease link. Conditional
// on status so a booking resolved by a concurrent request is not overwritten.
func (s *GormStores) MarkAccepted(ctx context.Context, bookingID, leaseID uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", bookingID, models.BookingPending).
		Updates(map[string]interface{}{
			"status":   models.BookingAccepted,
			"lease_id": leaseID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// DeleteBooking removes the row for good. Rejection of a booking is
// destructive; there is no archival status on this side.
func (s *GormStores) DeleteBooking(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Unscoped().Delete(&models.Booking{}, id).Error
}

func (s *GormStores) ListPendingByOwner(ctx context.Context, ownerID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Joins("JOIN units ON units.id = bookings.unit_id").
		Where("units.owner_id = ? AND bookings.status = ?", ownerID, models.BookingPending).
		Preload("Unit").
		Preload("Tenant").
		Order("bookings.id DESC").
		Find(&bookings).Error
	return bookings, err
}

func (s *GormStores) ListByTenant(ctx context.Context, tenantID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Preload("Unit").
		Order("id DESC").
		Find(&bookings).Error
	return bookings, err
}
