package models

import "time"

// TaskSnapshot is the durable row holding one account's serialized Snapshot.
type TaskSnapshot struct {
	AccountID string `gorm:"type:varchar(36);primarykey"`
	Payload   string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// ActiveSessionSlot is the primary key of the only row in active_sessions.
const ActiveSessionSlot = 1

// ActiveSession is the durable pointer to the currently authenticated account.
// Payload is the public account encoded as JSON.
type ActiveSession struct {
	Slot      uint   `gorm:"primarykey;autoIncrement:false"`
	AccountID string `gorm:"type:varchar(36);not null"`
	Payload   string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}
