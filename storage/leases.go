package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"leasemate-server/models"
)

func (s *GormStores) CreateLease(ctx context.Context, l *models.Lease) error {
	return s.db.WithContext(ctx).Create(l).Error
}

func (s *GormStores) GetLease(ctx context.Context, id uint) (*models.Lease, error) {
	var lease models.Lease
	if err := s.db.WithContext(ctx).First(&lease, id).Error; err != nil {
		return nil, err
	}
	return &lease, nil
}

// DeleteLease is compensation-only: it unwinds a lease insert whose booking
// finalization failed. User-visible leases are never removed.
func (s *GormStores) DeleteLease(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Unscoped().Delete(&models.Lease{}, id).Error
}

func (s *GormStores) UpdateLeaseStatusIf(ctx context.Context, leaseID uint, from, to models.LeaseStatus, reason string) (bool, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"status":       to,
		"responded_at": &now,
	}
	if reason != "" {
		updates["rejection_reason"] = reason
	}

	res := s.db.WithContext(ctx).
		Model(&models.Lease{}).
		Where("id = ? AND status = ?", leaseID, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStores) ListByUser(ctx context.Context, userID uint, asLandlord bool, page, pageSize int) ([]models.Lease, int64, error) {
	column := "tenant_id"
	if asLandlord {
		column = "landlord_id"
	}
	query := s.db.WithContext(ctx).Model(&models.Lease{}).Where(column+" = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var leases []models.Lease
	err := query.
		Preload("Unit").
		Preload("Tenant").
		Preload("Landlord").
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&leases).Error
	return leases, total, err
}

func (s *GormStores) ActiveLeaseForUnit(ctx context.Context, unitID uint) (*models.Lease, error) {
	var lease models.Lease
	err := s.db.WithContext(ctx).
		Where("unit_id = ? AND status IN ?", unitID, []models.LeaseStatus{models.LeasePending, models.LeaseActive}).
		Order("id DESC").
		First(&lease).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lease, nil
}
