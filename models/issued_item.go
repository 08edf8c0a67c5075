// models/issued_item.go
package models

import (
	"encoding/json"
	"time"
)

const IssuedItemTable = "ses_issued_equipment"

// Issue status values.
const (
	IssueStatusIssued        = "Issued"
	IssueStatusPartialReturn = "PartialReturn"
	IssueStatusReturned      = "Returned"
)

// Recipient types.
const (
	RecipientStudent = "student"
	RecipientStaff   = "staff"
)

// IssuedItem is one loan of equipment units to exactly one recipient
// (student or staff, never both). Rows are never deleted: they are the
// permanent audit trail for clearance.
//
// ReturnConditions holds the recorded per-serial (or aggregate) condition
// payload as JSON; DamageClearanceStatus/Notes track the damage workflow.
// Version is bumped on every clearance transition for optimistic locking.
type IssuedItem struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Student fields
	StudentID    *string `gorm:"size:20;index" json:"studentId,omitempty"`
	StudentName  *string `gorm:"size:100" json:"studentName,omitempty"`
	StudentEmail *string `gorm:"size:120" json:"studentEmail,omitempty"`
	StudentPhone *string `gorm:"size:15" json:"studentPhone,omitempty"`

	// Staff fields
	StaffPayroll *string `gorm:"size:20;index" json:"staffPayroll,omitempty"`
	StaffName    *string `gorm:"size:100" json:"staffName,omitempty"`
	StaffEmail   *string `gorm:"size:120" json:"staffEmail,omitempty"`

	EquipmentID uint       `gorm:"index;not null" json:"equipmentId"`
	Equipment   *Equipment `gorm:"foreignKey:EquipmentID" json:"equipment,omitempty"`

	Quantity      int    `gorm:"not null" json:"quantity"`
	SerialNumbers string `gorm:"type:text" json:"serialNumbers,omitempty"` // JSON array, empty if not serial-tracked
	Status        string `gorm:"size:50;not null;default:'Issued';index" json:"status"`

	ReturnConditions      string `gorm:"type:text" json:"returnConditions,omitempty"`
	DamageClearanceStatus string `gorm:"size:50;index" json:"damageClearanceStatus,omitempty"`
	DamageClearanceNotes  string `gorm:"type:text" json:"damageClearanceNotes,omitempty"`

	Version int `gorm:"not null;default:0" json:"version"`

	DateIssued     time.Time  `gorm:"index;not null" json:"dateIssued"`
	ExpectedReturn *time.Time `gorm:"index" json:"expectedReturn,omitempty"`
	DateReturned   *time.Time `json:"dateReturned,omitempty"`
	IssuedBy       string     `gorm:"size:120" json:"issuedBy,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (IssuedItem) TableName() string { return IssuedItemTable }

// RecipientKey returns the recipient type and identifier for this loan.
func (i *IssuedItem) RecipientKey() (rtype, rid string) {
	if i.StudentID != nil && *i.StudentID != "" {
		return RecipientStudent, *i.StudentID
	}
	if i.StaffPayroll != nil && *i.StaffPayroll != "" {
		return RecipientStaff, *i.StaffPayroll
	}
	return "", ""
}

// Serials decodes the serial list; empty (not an error) when the loan is not
// serial-tracked or the column holds junk from a legacy import.
func (i *IssuedItem) Serials() []string {
	if i.SerialNumbers == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(i.SerialNumbers), &out); err != nil {
		return nil
	}
	return out
}

// Outstanding reports whether any units are still out with the recipient.
func (i *IssuedItem) Outstanding() bool {
	return i.Status != IssueStatusReturned
}
