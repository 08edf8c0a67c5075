// models/clearance.go
package models

import "time"

const (
	ClearanceTable      = "ses_clearance"
	ClearanceAuditTable = "ses_clearance_audit"
)

// Clearance caches the recipient-level verdict. It is derived: readers who
// need the authoritative answer recompute from the recipient's issued items
// and this row is refreshed opportunistically after every transition.
type Clearance struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	RecipientType string    `gorm:"size:10;not null;uniqueIndex:ses_clearance_recipient,priority:1" json:"recipientType"`
	RecipientID   string    `gorm:"size:20;not null;uniqueIndex:ses_clearance_recipient,priority:2" json:"recipientId"`
	Status        string    `gorm:"size:20;not null;default:'Pending'" json:"status"`
	LastUpdated   time.Time `json:"lastUpdated"`
}

func (Clearance) TableName() string { return ClearanceTable }

// ClearanceAudit records one state-machine transition: who moved the item,
// from where to where, and why. Round counts negotiation cycles between
// storekeeper and admin; it only ever increases, so operators can spot an
// item bouncing back and forth.
type ClearanceAudit struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	IssuedItemID uint      `gorm:"index;not null" json:"issuedItemId"`
	ActorRole    string    `gorm:"size:20;not null" json:"actorRole"`
	ActorID      string    `gorm:"size:120;not null" json:"actorId"`
	Action       string    `gorm:"size:20;not null" json:"action"`
	FromStatus   string    `gorm:"size:50" json:"fromStatus"`
	ToStatus     string    `gorm:"size:50;not null" json:"toStatus"`
	Reason       string    `gorm:"type:text" json:"reason,omitempty"`
	Round        int       `gorm:"not null;default:1" json:"round"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (ClearanceAudit) TableName() string { return ClearanceAuditTable }
