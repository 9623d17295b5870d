// models/waitlist.go
package models

import "time"

const WaitlistTable = "waitlist"

// WaitlistEntry is unique per (user, model); re-subscribing upserts and
// resets Notified. Notified only ever flips false -> true, except that a
// fresh subscription after unsubscribe starts over at false.
type WaitlistEntry struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        string    `gorm:"type:uuid;not null;uniqueIndex:uniq_waitlist_user_model" json:"userId"`
	DeviceModelID string    `gorm:"type:uuid;not null;index;uniqueIndex:uniq_waitlist_user_model" json:"deviceModelId"`
	Notified      bool      `gorm:"not null;default:false" json:"notified"`
	CreatedAt     time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (WaitlistEntry) TableName() string { return WaitlistTable }
