package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LeaseStatus string

const (
	LeasePending  LeaseStatus = "pending"
	LeaseActive   LeaseStatus = "active"
	LeaseRejected LeaseStatus = "rejected"
)

// Lease is the binding agreement derived from an accepted booking.
// RentAmount and DepositAmount are copied from the unit at creation time and
// never change afterwards; repricing a unit must not touch existing leases.
// Leases are never hard-deleted: a rejected lease stays for audit and frees
// the unit.
type Lease struct {
	gorm.Model
	BookingID  uint `json:"bookingID" gorm:"not null;index"`
	TenantID   uint `json:"tenantID" gorm:"not null;index"`
	LandlordID uint `json:"landlordID" gorm:"not null;index"`
	UnitID     uint `json:"unitID" gorm:"not null;index"`

	RentAmount    decimal.Decimal `json:"rentAmount" gorm:"type:numeric(12,2)"`
	DepositAmount decimal.Decimal `json:"depositAmount" gorm:"type:numeric(12,2)"`
	StartDate     time.Time       `json:"startDate"`
	EndDate       time.Time       `json:"endDate"`
	PaymentTerms  string          `json:"paymentTerms" gorm:"size:64"` // monthly, quarterly, upfront

	Status          LeaseStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	RejectionReason string      `json:"rejectionReason" gorm:"size:500"`
	RespondedAt     *time.Time  `json:"respondedAt"`

	Tenant   *User `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
	Landlord *User `json:"landlord,omitempty" gorm:"foreignKey:LandlordID"`
	Unit     *Unit `json:"unit,omitempty" gorm:"foreignKey:UnitID"`
}
