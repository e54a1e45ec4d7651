package storage

import (
	"context"

	"gorm.io/gorm/clause"

	"leasemate-server/models"
)

func (s *GormStores) ActiveForOwner(ctx context.Context, ownerID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND status = ?", ownerID, models.SubscriptionActive).
		Order("id DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *GormStores) ExpireActiveForOwner(ctx context.Context, ownerID uint) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("owner_id = ? AND status = ?", ownerID, models.SubscriptionActive).
		Update("status", models.SubscriptionExpired)
	return res.RowsAffected, res.Error
}

func (s *GormStores) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	return s.db.WithContext(ctx).Create(sub).Error
}

func (s *GormStores) GetSubscription(ctx context.Context, id uint) (*models.Subscription, error) {
	var sub models.Subscription
	if err := s.db.WithContext(ctx).First(&sub, id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *GormStores) ByProviderSubscriptionID(ctx context.Context, providerID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.WithContext(ctx).
		Where("provider_subscription_id = ?", providerID).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// MarkRefunded refuses anything but an expired, never-refunded row, so a
// refund is applied at most once regardless of retries.
func (s *GormStores) MarkRefunded(ctx context.Context, id uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id = ? AND status = ? AND refunded = false", id, models.SubscriptionExpired).
		Updates(map[string]interface{}{
			"status":   models.SubscriptionRefunded,
			"refunded": true,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// InsertOnce records a provider webhook event. The unique index on the
// provider event id plus ON CONFLICT DO NOTHING turns redelivery into a
// zero-row insert.
func (s *GormStores) InsertOnce(ctx context.Context, ev *models.PaymentEvent) (bool, error) {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider_event_id"}},
			DoNothing: true,
		}).
		Create(ev)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// DeleteEvent removes a ledger row whose effect failed, so the provider's
// retry of the same event id passes InsertOnce again.
func (s *GormStores) DeleteEvent(ctx context.Context, providerEventID string) error {
	return s.db.WithContext(ctx).
		Where("provider_event_id = ?", providerEventID).
		Delete(&models.PaymentEvent{}).Error
}
