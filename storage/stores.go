package storage

import (
	"context"

	"gorm.io/gorm"

	"leasemate-server/models"
)

// GormStores is the Postgres-backed implementation of the store interfaces
// the services run against.
type GormStores struct {
	db *gorm.DB
}

func NewStores(db *gorm.DB) *GormStores {
	return &GormStores{db: db}
}

func (s *GormStores) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
