package models

import "time"

// Invite carries the role the new account gets at registration: storekeeper
// invites come from admins, the bootstrap admin invite from startup.
type Invite struct {
	ID        uint      `gorm:"primaryKey"`
	Email     string    `gorm:"index;size:255;not null"`
	Token     string    `gorm:"uniqueIndex;size:64;not null"`
	Role      string    `gorm:"size:20;not null;default:'storekeeper'"`
	ExpiresAt time.Time `gorm:"index;not null"`
	UsedAt    *time.Time
	CreatedBy string `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Invite) TableName() string { return "ses_invites" }
