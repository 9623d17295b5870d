// db/repo_devices.go
package db

import (
	"context"
	"fmt"

	"github.com/davidx1x1/device-loan/models"
)

// Device models

func (r *Repo) CreateDeviceModel(ctx context.Context, m *models.DeviceModel) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

func (r *Repo) FindDeviceModelByID(ctx context.Context, id string) (*models.DeviceModel, error) {
	var m models.DeviceModel
	if err := r.DB.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (r *Repo) ListDeviceModels(ctx context.Context) ([]models.DeviceModel, error) {
	var ms []models.DeviceModel
	err := r.DB.WithContext(ctx).Order("brand, model").Find(&ms).Error
	return ms, err
}

// Devices

func (r *Repo) CreateDevice(ctx context.Context, d *models.Device) error {
	if _, err := r.FindDeviceModelByID(ctx, d.DeviceModelID); err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Create(d).Error
}

func (r *Repo) FindDeviceByID(ctx context.Context, id string) (*models.Device, error) {
	var d models.Device
	if err := r.DB.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

// loanableCond is the derived availability predicate: administratively
// available AND no loan currently in an active state.
func loanableCond() string {
	return fmt.Sprintf(`d.is_available AND NOT EXISTS (
		SELECT 1 FROM %s l
		WHERE l.device_id = d.id AND l.status IN ('reserved','collected')
	)`, models.LoanTable)
}

// CountLoanable is the lock-free snapshot version, for display only. The
// allocation transaction recomputes the predicate under its own lock.
func (r *Repo) CountLoanable(ctx context.Context, modelID string) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Table(models.DeviceTable+" d").
		Where("d.device_model_id = ?", modelID).
		Where(loanableCond()).
		Count(&n).Error
	return n, err
}

type ModelAvailability struct {
	ID          string `json:"id"`
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`

	AvailableCount int64 `json:"availableCount"`
	TotalCount     int64 `json:"totalCount"`
}

// ListModelAvailability returns every model with its loanable/total unit
// counts in one typed query.
func (r *Repo) ListModelAvailability(ctx context.Context) ([]ModelAvailability, error) {
	var rows []ModelAvailability
	err := r.DB.WithContext(ctx).
		Table(models.DeviceModelTable+" m").
		Select(fmt.Sprintf(`
			m.id, m.brand, m.model, m.category, m.description, m.image_url,
			COUNT(d.id) AS total_count,
			COALESCE(SUM(CASE WHEN %s THEN 1 ELSE 0 END), 0) AS available_count
		`, loanableCond())).
		Joins(fmt.Sprintf("LEFT JOIN %s d ON d.device_model_id = m.id", models.DeviceTable)).
		Group("m.id, m.brand, m.model, m.category, m.description, m.image_url").
		Order("m.brand, m.model").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
