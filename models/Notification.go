package models

import "time"

// Notification is an immutable record of one domain event addressed to one
// user. The row is the source of truth for delivery: the live channel is
// best-effort on top of it and clients reconcile by ID on reconnect.
// After creation only IsRead and Disabled ever change; rows are removed only
// by explicit user action.
type Notification struct {
	ID       uint  `json:"id" gorm:"primaryKey"`
	UserID   uint  `json:"userID" gorm:"not null;index"`
	SenderID *uint `json:"senderID" gorm:"index"`

	Type    string `json:"type" gorm:"size:32;index"` // closed set, see services.NotificationType
	Title   string `json:"title" gorm:"size:100"`
	Message string `json:"message" gorm:"size:500"`
	Link    string `json:"link" gorm:"size:256"` // client deep link

	// Reference data for the client to resolve the subject entity
	RefType string `json:"refType" gorm:"size:32"` // booking, lease, unit, subscription, conversation
	RefID   uint   `json:"refID"`

	IsRead   bool `json:"isRead" gorm:"default:false"`
	Disabled bool `json:"disabled" gorm:"default:false;index"` // e.g. refund offer withdrawn

	CreatedAt time.Time  `json:"createdAt"`
	ReadAt    *time.Time `json:"readAt"`

	User   *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Sender *User `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
}
