package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingPending  BookingStatus = "pending"
	BookingAccepted BookingStatus = "accepted"
	BookingRejected BookingStatus = "rejected"
)

// Booking is a tenant's request to rent a unit for a date range. A unit stays
// open to any number of pending bookings; first-accept-wins is enforced at
// lease creation, not here. Rejection hard-deletes the row (the lease side
// keeps rejected rows for audit; bookings do not).
type Booking struct {
	gorm.Model
	TenantID   uint            `json:"tenantID" gorm:"not null;index"`
	UnitID     uint            `json:"unitID" gorm:"not null;index"`
	StartDate  time.Time       `json:"startDate"`
	EndDate    time.Time       `json:"endDate"`
	TotalPrice decimal.Decimal `json:"totalPrice" gorm:"type:numeric(12,2)"`
	Status     BookingStatus   `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	LeaseID    *uint           `json:"leaseID" gorm:"index"` // set when accepted

	Tenant *User `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
	Unit   *Unit `json:"unit,omitempty" gorm:"foreignKey:UnitID"`
}
