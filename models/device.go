// models/device.go
package models

import "time"

const DeviceModelTable = "device_models"
const DeviceTable = "devices"

// DeviceModel is a catalog entry (e.g. "Apple MacBook Air"). Immutable
// after creation; individual units are Device rows.
type DeviceModel struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Brand       string    `gorm:"size:120;not null" json:"brand"`
	Model       string    `gorm:"size:200;not null" json:"model"`
	Category    string    `gorm:"size:40;not null" json:"category"` // laptop/tablet/camera/other
	Description string    `gorm:"size:500" json:"description,omitempty"`
	ImageURL    string    `gorm:"size:500" json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Device is one physical unit. IsAvailable is the administrative flag
// (broken/retired units are flipped off); whether a device can actually be
// loaned out also depends on it having no active loan, and that predicate
// is always computed inside the allocation transaction, never stored.
type Device struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	DeviceModelID string    `gorm:"type:uuid;index;not null" json:"deviceModelId"`
	Serial        string    `gorm:"size:120;uniqueIndex;not null" json:"serial"`
	IsAvailable   bool      `gorm:"not null;default:true" json:"isAvailable"`
	Condition     string    `gorm:"size:120" json:"condition,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (DeviceModel) TableName() string { return DeviceModelTable }
func (Device) TableName() string      { return DeviceTable }
