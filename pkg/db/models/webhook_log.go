package models

import "time"

// WebhookLog records every emitted event before it is dispatched.
type WebhookLog struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserEmail *string   `gorm:"column:user_email;type:varchar(255)" json:"user_email"`
	Event     string    `gorm:"column:event;type:varchar(100)" json:"event"`
	Data      string    `gorm:"column:data;type:text" json:"data"`
	Timestamp time.Time `gorm:"column:timestamp;autoCreateTime" json:"timestamp"`
}

func (WebhookLog) TableName() string { return "webhooks" }

// All lists every persisted model, in bootstrap order.
func All() []any {
	return []any{&User{}, &LogEntry{}, &Device{}, &WebhookLog{}}
}
