package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionExpired  SubscriptionStatus = "expired"
	SubscriptionRefunded SubscriptionStatus = "refunded"
)

// Subscription is a landlord's quota window: while active it bounds how many
// units the landlord may have listed at once. An owner has at most one active
// subscription at any instant; activating a new one expires all prior ones.
type Subscription struct {
	gorm.Model
	OwnerID   uint               `json:"ownerID" gorm:"not null;index"`
	PlanName  string             `json:"planName" gorm:"size:64"`
	UnitLimit int                `json:"unitLimit"`
	Status    SubscriptionStatus `json:"status" gorm:"type:varchar(20);default:'active';index"`
	Refunded  bool               `json:"refunded" gorm:"default:false"`
	StartsAt  time.Time          `json:"startsAt"`
	EndsAt    time.Time          `json:"endsAt"`

	// Provider-side id, used to make webhook redelivery idempotent
	ProviderSubscriptionID string `json:"providerSubscriptionID" gorm:"size:128;uniqueIndex"`

	Owner *User `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
}

// PaymentEvent is the durable idempotency ledger for payment-provider
// webhooks. The unique index on ProviderEventID makes redelivered events
// insert-once; a conflict means the event was already consumed.
type PaymentEvent struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	ProviderEventID string         `json:"providerEventID" gorm:"size:128;uniqueIndex;not null"`
	Type            string         `json:"type" gorm:"size:64;index"`
	Payload         datatypes.JSON `json:"payload"`
	CreatedAt       time.Time      `json:"createdAt"`
}
