package storage

import (
	"context"
	"time"

	"leasemate-server/models"
	"leasemate-server/services"
)

func (s *GormStores) CreateNotification(ctx context.Context, n *models.Notification) error {
	return s.db.WithContext(ctx).Create(n).Error
}

func (s *GormStores) GetNotification(ctx context.Context, id uint) (*models.Notification, error) {
	var n models.Notification
	if err := s.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *GormStores) MarkRead(ctx context.Context, id uint) error {
	now := time.Now()
	return s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": &now,
		}).Error
}

func (s *GormStores) MarkAllRead(ctx context.Context, userID uint) error {
	now := time.Now()
	return s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = false", userID).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": &now,
		}).Error
}

func (s *GormStores) DisableByRef(ctx context.Context, typ services.NotificationType, refType string, refID uint) error {
	return s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("type = ? AND ref_type = ? AND ref_id = ?", string(typ), refType, refID).
		Update("disabled", true).Error
}

func (s *GormStores) ListForUser(ctx context.Context, userID uint, page, pageSize int) ([]models.Notification, int64, error) {
	query := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND disabled = false", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	err := query.
		Preload("Sender").
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&notifications).Error
	return notifications, total, err
}

func (s *GormStores) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = false AND disabled = false", userID).
		Count(&count).Error
	return count, err
}

func (s *GormStores) DeleteNotification(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Notification{}, id).Error
}
