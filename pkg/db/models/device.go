package models

import "time"

// Device counts registrations of one device id for one owner email.
type Device struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Email       string    `gorm:"column:email;type:varchar(255);index:idx_devices_owner" json:"email"`
	DeviceID    string    `gorm:"column:device_id;type:varchar(255);index:idx_devices_owner" json:"deviceId"`
	DeviceCount int       `gorm:"column:device_count" json:"deviceCount"`
	Timestamp   time.Time `gorm:"column:timestamp;autoCreateTime" json:"timestamp"`
}

func (Device) TableName() string { return "devices" }
