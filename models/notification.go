// models/notification.go
package models

import "time"

const NotificationTable = "ses_notifications"

// Notification is an outbound alert for one role (optionally one specific
// user). Fire-and-forget: rows are written inside the transition that caused
// them and the UI polls; nothing guarantees delivery beyond the row.
type Notification struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	RecipientRole string    `gorm:"size:20;not null;index" json:"recipientRole"`
	RecipientID   *string   `gorm:"size:120" json:"recipientId,omitempty"`
	Message       string    `gorm:"type:text;not null" json:"message"`
	URL           string    `gorm:"size:500" json:"url,omitempty"`
	IsRead        bool      `gorm:"not null;default:false;index" json:"isRead"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (Notification) TableName() string { return NotificationTable }
