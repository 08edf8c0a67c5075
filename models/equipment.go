// models/equipment.go
package models

import "time"

const EquipmentTable = "ses_equipment"

// Equipment is one catalogue entry. Quantity is the on-shelf pool; issued
// units are subtracted on issue and added back on a Good return. Damaged and
// lost units are counted separately and only move back into Quantity through
// a Replaced resolution.
type Equipment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Category     string    `gorm:"size:50;not null" json:"category"`
	CategoryCode string    `gorm:"size:10;not null;index" json:"categoryCode"`
	SerialNumber string    `gorm:"size:100;uniqueIndex;not null" json:"serialNumber"`
	Quantity     int       `gorm:"not null;default:0" json:"quantity"`
	DamagedCount int       `gorm:"not null;default:0" json:"damagedCount"`
	LostCount    int       `gorm:"not null;default:0" json:"lostCount"`
	Condition    string    `gorm:"size:50;default:'Good'" json:"condition"`
	IsActive     bool      `gorm:"not null;default:true" json:"isActive"`
	DateReceived time.Time `json:"dateReceived"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Equipment) TableName() string { return EquipmentTable }
