package models

import "time"

// RateCounter is a fixed-window request counter shared by every server instance
// pointing at the same database.
type RateCounter struct {
	Key       string    `gorm:"column:counter_key;primaryKey;size:191"`
	Count     int64     `gorm:"not null;default:0"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the table name used by GORM for this model.
func (RateCounter) TableName() string {
	return "rate_counters"
}

// Expired reports whether the counter window closed before now.
func (c RateCounter) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}
