package models

import "time"

// WaitlistEntry is the sole persisted entity: one record of a user's intent
// to join the product waitlist, keyed by email. Entries are created exactly
// once and never mutated or deleted afterwards, so the model carries no
// update or soft-delete columns.
type WaitlistEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"not null;uniqueIndex" json:"email"`
	Timestamp string    `gorm:"not null" json:"timestamp"`
	Source    string    `gorm:"not null;default:unknown" json:"source"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
