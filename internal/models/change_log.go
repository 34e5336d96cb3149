package models

import "time"

// ChangeLog is one journaled "appointments changed" signal.
type ChangeLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ChangeID      string `gorm:"size:36;uniqueIndex;not null" json:"change_id"`
	Service       string `gorm:"size:20;index" json:"service"`
	AppointmentID string `gorm:"size:64" json:"appointment_id"`
	Action        string `gorm:"size:50;not null;index" json:"action"`
	Metadata      string `gorm:"type:text" json:"metadata"`

	OccurredAt time.Time `gorm:"index" json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}
