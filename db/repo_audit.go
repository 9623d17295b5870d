package db

import (
	"context"
	"fmt"

	"github.com/davidx1x1/device-loan/models"

	"github.com/google/uuid"
)

func (r *Repo) RecordAudit(ctx context.Context, e *models.AuditLog) (*models.AuditLog, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if err := r.DB.WithContext(ctx).Create(e).Error; err != nil {
		return nil, fmt.Errorf("insert audit log: %w", err)
	}
	return e, nil
}
