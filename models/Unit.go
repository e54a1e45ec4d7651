package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UnitStatus is the lifecycle state of a rentable unit. The status field is
// the single serialization point for booking races: every transition into or
// out of booked goes through a conditional update.
type UnitStatus string

const (
	UnitAvailable        UnitStatus = "available"
	UnitPending          UnitStatus = "pending" // awaiting moderation
	UnitApproved         UnitStatus = "approved"
	UnitBooked           UnitStatus = "booked"
	UnitUnderMaintenance UnitStatus = "under_maintenance"
	UnitRejected         UnitStatus = "rejected"
)

type Unit struct {
	gorm.Model
	OwnerID      uint            `json:"ownerID" gorm:"not null;index"`
	Title        string          `json:"title"`
	Description  string          `json:"description" gorm:"type:text"`
	AddressLine1 string          `json:"addressLine1"`
	AddressLine2 string          `json:"addressLine2"`
	City         string          `json:"city"`
	State        string          `json:"state"`
	Zip          string          `json:"zip"`
	Country      string          `json:"country"`
	Lat          float32         `json:"lat"`
	Lng          float32         `json:"lng"`
	Bedrooms     int             `json:"bedrooms"`
	Bathrooms    float32         `json:"bathrooms"`
	MonthlyPrice decimal.Decimal `json:"monthlyPrice" gorm:"type:numeric(12,2)"`
	Deposit      decimal.Decimal `json:"deposit" gorm:"type:numeric(12,2)"`
	Currency     string          `json:"currency"`
	Amenities    string          `json:"amenities"` // JSON array of strings
	Images       datatypes.JSON  `json:"images"`    // JSON array of {url, status}

	Status UnitStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`

	// Moderation fields
	ReviewNotes string `json:"reviewNotes" gorm:"type:text"`
	IsFlagged   bool   `json:"isFlagged" gorm:"default:false;index"`
	FlagReason  string `json:"flagReason" gorm:"type:text"`

	Owner  *User  `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Leases []Lease `json:"leases,omitempty" gorm:"foreignKey:UnitID"`
}

// UnitImage is one element of the Images JSON column. Each image carries its
// own moderation state so a listing can go live with a subset approved.
type UnitImage struct {
	URL    string `json:"url"`
	Status string `json:"status"` // pending, approved, rejected
}

// Custom JSON marshaling to convert Amenities and Images to arrays
func (u *Unit) MarshalJSON() ([]byte, error) {
	type Alias Unit
	aux := &struct {
		Amenities []string    `json:"amenities"`
		Images    []UnitImage `json:"images"`
		Owner     *User       `json:"owner,omitempty"`
		*Alias
	}{
		Amenities: []string{},
		Images:    []UnitImage{},
		Owner:     nil,
		Alias:     (*Alias)(u),
	}

	if u.Amenities != "" {
		var amenities []string
		if err := json.Unmarshal([]byte(u.Amenities), &amenities); err == nil {
			aux.Amenities = amenities
		}
	}

	if u.Images != nil {
		var images []UnitImage
		if err := json.Unmarshal(u.Images, &images); err == nil {
			aux.Images = images
		}
	}

	// Avoid circular reference through Owner.Units
	if u.Owner != nil && u.Owner.ID > 0 {
		ownerCopy := *u.Owner
		ownerCopy.Units = nil
		aux.Owner = &ownerCopy
	}

	return json.Marshal(aux)
}
