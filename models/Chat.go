package models

import (
	"time"

	"gorm.io/gorm"
)

// Conversation is a direct thread between a tenant and a landlord, usually
// anchored to a unit they are negotiating over.
type Conversation struct {
	gorm.Model
	TenantID   uint  `json:"tenantID" gorm:"not null;index"`
	LandlordID uint  `json:"landlordID" gorm:"not null;index"`
	UnitID     *uint `json:"unitID" gorm:"index"`

	Messages []Message `json:"messages,omitempty" gorm:"foreignKey:ConversationID"`
	Tenant   *User     `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
	Landlord *User     `json:"landlord,omitempty" gorm:"foreignKey:LandlordID"`
}

type Message struct {
	gorm.Model
	ConversationID uint   `json:"conversationID" gorm:"not null;index"`
	SenderID       uint   `json:"senderID" gorm:"not null;index"`
	ReceiverID     uint   `json:"receiverID" gorm:"not null;index"`
	Text           string `json:"text" gorm:"type:text"`

	// Delivery state
	State       string     `json:"state" gorm:"size:16;index"` // sent|delivered|seen
	DeliveredAt *time.Time `json:"deliveredAt"`
	SeenAt      *time.Time `json:"seenAt"`

	Sender *User `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
}
