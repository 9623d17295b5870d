// db/repo_loans.go
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/davidx1x1/device-loan/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reserve atomically allocates one free device of the model to the user:
// 锁住该型号的候选设备 → 选最小 id 的空闲一台 → 新建 loan。Under N
// concurrent calls with one free device exactly one commits; the rest see
// ErrNoAvailableDevices. The partial unique index on active loans catches
// anything the lock misses.
func (r *Repo) Reserve(ctx context.Context, userID, modelID string, durationDays int) (*models.Loan, error) {
	if durationDays <= 0 {
		return nil, ErrInvalidDuration
	}

	var loan *models.Loan
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.DeviceModel
		if err := tx.First(&m, "id = ?", modelID).Error; err != nil {
			return notFound(err)
		}

		// 1) 锁定该型号全部可用设备行，固定顺序避免死锁
		var devices []models.Device
		if err := withRowLock(tx).
			Where("device_model_id = ? AND is_available = ?", modelID, true).
			Order("id").
			Find(&devices).Error; err != nil {
			return err
		}

		// 2) 逐台检查是否有 active loan，取第一台空闲的（最小 id，确定性）
		var picked *models.Device
		for i := range devices {
			var n int64
			if err := tx.Model(&models.Loan{}).
				Where("device_id = ? AND status IN ?", devices[i].ID, models.ActiveLoanStatuses).
				Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				picked = &devices[i]
				break
			}
		}
		if picked == nil {
			return ErrNoAvailableDevices
		}

		// 3) 新建 Loan
		now := time.Now().UTC()
		l := &models.Loan{
			ID:         uuid.NewString(),
			UserID:     userID,
			DeviceID:   picked.ID,
			Status:     models.LoanStatusReserved,
			ReservedAt: now,
			DueDate:    now.AddDate(0, 0, durationDays),
		}
		if err := tx.Create(l).Error; err != nil {
			return err
		}
		loan = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// transition is the single shape of every ledger mutation: lock the loan
// row, check the precondition, write, commit. Concurrent calls on the same
// loan serialize here; the loser sees the stale status and fails.
func (r *Repo) transition(ctx context.Context, loanID, from string, mutate func(l *models.Loan, now time.Time)) (*models.Loan, error) {
	var l models.Loan
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := withRowLock(tx).First(&l, "id = ?", loanID).Error; err != nil {
			return notFound(err)
		}
		if l.Status != from {
			return &InvalidStatusError{Current: l.Status}
		}
		mutate(&l, time.Now().UTC())
		return tx.Save(&l).Error
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Collect hands the reserved device over the counter.
func (r *Repo) Collect(ctx context.Context, loanID, staffID string) (*models.Loan, error) {
	return r.transition(ctx, loanID, models.LoanStatusReserved, func(l *models.Loan, now time.Time) {
		l.Status = models.LoanStatusCollected
		l.CollectedAt = &now
		l.CollectedBy = &staffID
	})
}

// Return closes out a collected loan. Waitlist dispatch is the caller's
// job, strictly after this commit.
func (r *Repo) Return(ctx context.Context, loanID, staffID string) (*models.Loan, error) {
	return r.transition(ctx, loanID, models.LoanStatusCollected, func(l *models.Loan, now time.Time) {
		l.Status = models.LoanStatusReturned
		l.ReturnedAt = &now
		l.ReturnedBy = &staffID
	})
}

// Cancel releases a reservation that was never collected. Only the owner
// may cancel; others get ErrNotFound rather than a hint the loan exists.
func (r *Repo) Cancel(ctx context.Context, loanID, userID string) (*models.Loan, error) {
	var l models.Loan
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := withRowLock(tx).First(&l, "id = ?", loanID).Error; err != nil {
			return notFound(err)
		}
		if l.UserID != userID {
			return ErrNotFound
		}
		if l.Status != models.LoanStatusReserved {
			return &InvalidStatusError{Current: l.Status}
		}
		l.Status = models.LoanStatusCancelled
		return tx.Save(&l).Error
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// LoanDetail is the typed loan→device→model→user projection handed to the
// HTTP layer.
type LoanDetail struct {
	ID     string `json:"id"`
	Status string `json:"status"`

	ReservedAt  time.Time  `json:"reservedAt"`
	DueDate     time.Time  `json:"dueDate"`
	CollectedAt *time.Time `json:"collectedAt,omitempty"`
	ReturnedAt  *time.Time `json:"returnedAt,omitempty"`

	DeviceID      string `json:"deviceId"`
	Serial        string `json:"serial"`
	DeviceModelID string `json:"deviceModelId"`
	Brand         string `json:"brand"`
	Model         string `json:"model"`
	Category      string `json:"category"`

	UserID    string `json:"userId"`
	UserEmail string `json:"userEmail"`
	UserName  string `json:"userName"`
}

const loanDetailSelect = `
	l.id, l.status, l.reserved_at, l.due_date, l.collected_at, l.returned_at,
	d.id AS device_id, d.serial,
	m.id AS device_model_id, m.brand, m.model, m.category,
	u.id AS user_id, u.email AS user_email, u.name AS user_name
`

func (r *Repo) loanDetailQuery(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Table(models.LoanTable+" l").
		Select(loanDetailSelect).
		Joins(fmt.Sprintf("JOIN %s d ON d.id = l.device_id", models.DeviceTable)).
		Joins(fmt.Sprintf("JOIN %s m ON m.id = d.device_model_id", models.DeviceModelTable)).
		Joins(fmt.Sprintf("JOIN %s u ON u.id = l.user_id", models.UserTable))
}

func (r *Repo) GetLoanDetail(ctx context.Context, loanID string) (*LoanDetail, error) {
	var row LoanDetail
	if err := r.loanDetailQuery(ctx).Where("l.id = ?", loanID).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == "" {
		return nil, ErrNotFound
	}
	return &row, nil
}

func (r *Repo) ListUserLoans(ctx context.Context, userID string) ([]LoanDetail, error) {
	var rows []LoanDetail
	err := r.loanDetailQuery(ctx).
		Where("l.user_id = ?", userID).
		Order("l.reserved_at DESC").
		Scan(&rows).Error
	return rows, err
}
