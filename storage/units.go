package storage

import (
	"context"

	"leasemate-server/models"
)

func (s *GormStores) GetUnit(ctx context.Context, id uint) (*models.Unit, error) {
	var unit models.Unit
	if err := s.db.WithContext(ctx).First(&unit, id).Error; err != nil {
		return nil, err
	}
	return &unit, nil
}

// UpdateUnitStatusIf is the conditional transition the lease workflow serializes
// booking races on. Postgres applies the single-row UPDATE atomically, so of
// two concurrent calls only one sees a matched row.
func (s *GormStores) UpdateUnitStatusIf(ctx context.Context, unitID uint, from []models.UnitStatus, to models.UnitStatus) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Unit{}).
		Where("id = ? AND status IN ?", unitID, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStores) SetUnitStatus(ctx context.Context, unitID uint, to models.UnitStatus) error {
	return s.db.WithContext(ctx).
		Model(&models.Unit{}).
		Where("id = ?", unitID).
		Update("status", to).Error
}

func (s *GormStores) CountByOwnerInStatuses(ctx context.Context, ownerID uint, statuses []models.UnitStatus) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Unit{}).
		Where("owner_id = ? AND status IN ?", ownerID, statuses).
		Count(&count).Error
	return count, err
}
