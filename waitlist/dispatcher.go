// Package waitlist drains device-model waitlists when supply frees up.
package waitlist

import (
	"context"
	"log/slog"

	"github.com/davidx1x1/device-loan/db"
	"github.com/davidx1x1/device-loan/email"
	"github.com/davidx1x1/device-loan/models"
)

type Dispatcher struct {
	Repo   *db.Repo
	Sender email.Sender
	Logger *slog.Logger
	AppURL string
}

func NewDispatcher(repo *db.Repo, sender email.Sender, logger *slog.Logger, appURL string) *Dispatcher {
	return &Dispatcher{Repo: repo, Sender: sender, Logger: logger, AppURL: appURL}
}

// OnDeviceReturned notifies the model's pending waitlist entries in
// subscription order and marks each one notified after its send. A failed
// send is logged and skipped so it never blocks entries behind it; the
// entry stays pending and is retried on the next return. Delivery is
// best-effort at-most-once per entry per dispatch — two near-simultaneous
// returns of the same model may both notify the same pending entry, which
// costs a duplicate email and nothing else.
func (d *Dispatcher) OnDeviceReturned(ctx context.Context, modelID string) ([]models.WaitlistEntry, error) {
	entries, err := d.Repo.PendingWaitlist(ctx, modelID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	m, err := d.Repo.FindDeviceModelByID(ctx, modelID)
	if err != nil {
		return nil, err
	}

	d.Logger.Info("notifying waitlisted users",
		"device_model_id", modelID, "count", len(entries))

	notified := make([]models.WaitlistEntry, 0, len(entries))
	for _, e := range entries {
		u, err := d.Repo.FindUserByID(ctx, e.UserID)
		if err != nil {
			d.Logger.Error("waitlist user lookup failed",
				"waitlist_id", e.ID, "user_id", e.UserID, "err", err)
			continue
		}

		subject, html, err := email.DeviceAvailable(email.AvailableMailData{
			Name:   u.Name,
			Brand:  m.Brand,
			Model:  m.Model,
			AppURL: d.AppURL,
		})
		if err != nil {
			d.Logger.Error("waitlist mail render failed", "waitlist_id", e.ID, "err", err)
			continue
		}
		if err := d.Sender.Send(ctx, u.Email, subject, html); err != nil {
			d.Logger.Error("waitlist notification failed",
				"waitlist_id", e.ID, "user_id", e.UserID, "err", err)
			continue
		}
		if err := d.Repo.MarkNotified(ctx, e.ID); err != nil {
			// Send went out but the flag write failed; the entry will be
			// re-notified on the next dispatch.
			d.Logger.Error("mark notified failed", "waitlist_id", e.ID, "err", err)
			continue
		}
		e.Notified = true
		notified = append(notified, e)
	}
	return notified, nil
}
