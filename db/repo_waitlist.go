// db/repo_waitlist.go
package db

import (
	"context"
	"time"

	"github.com/davidx1x1/device-loan/models"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// SubscribeWaitlist upserts on (user_id, device_model_id); re-subscribing
// is not an error, it just resets notified so the user hears about the
// next freed device.
func (r *Repo) SubscribeWaitlist(ctx context.Context, userID, modelID string) (*models.WaitlistEntry, error) {
	if _, err := r.FindDeviceModelByID(ctx, modelID); err != nil {
		return nil, err
	}

	entry := &models.WaitlistEntry{
		ID:            uuid.NewString(),
		UserID:        userID,
		DeviceModelID: modelID,
		Notified:      false,
	}
	if err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "device_model_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"notified":   false,
			"updated_at": time.Now().UTC(),
		}),
	}).Create(entry).Error; err != nil {
		return nil, err
	}

	// 冲突时保留原 id/created_at，读回真实行
	var e models.WaitlistEntry
	if err := r.DB.WithContext(ctx).
		Where("user_id = ? AND device_model_id = ?", userID, modelID).
		First(&e).Error; err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

func (r *Repo) UnsubscribeWaitlist(ctx context.Context, userID, modelID string) error {
	return r.DB.WithContext(ctx).
		Where("user_id = ? AND device_model_id = ?", userID, modelID).
		Delete(&models.WaitlistEntry{}).Error
}

func (r *Repo) ListUserWaitlist(ctx context.Context, userID string) ([]models.WaitlistEntry, error) {
	var es []models.WaitlistEntry
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&es).Error
	return es, err
}

// PendingWaitlist returns the not-yet-notified entries for a model,
// first-subscribed first — the dispatch fairness order.
func (r *Repo) PendingWaitlist(ctx context.Context, modelID string) ([]models.WaitlistEntry, error) {
	var es []models.WaitlistEntry
	err := r.DB.WithContext(ctx).
		Where("device_model_id = ? AND notified = ?", modelID, false).
		Order("created_at ASC").
		Find(&es).Error
	return es, err
}

// MarkNotified flips a single entry; each flip is atomic on its own so a
// crash mid-dispatch re-notifies only the entries still pending.
func (r *Repo) MarkNotified(ctx context.Context, entryID string) error {
	return r.DB.WithContext(ctx).Model(&models.WaitlistEntry{}).
		Where("id = ?", entryID).
		Update("notified", true).Error
}
