package models

import "time"

// LogEntry is an append-only audit row.
type LogEntry struct {
	ID               uint      `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	Timestamp        time.Time `gorm:"column:timestamp;autoCreateTime;index" json:"timestamp"`
	EventType        string    `gorm:"column:event_type;type:varchar(100)" json:"eventType"`
	EventDescription string    `gorm:"column:event_description;type:text" json:"eventDescription"`
}

func (LogEntry) TableName() string { return "logs" }
