// controllers/srv.go
package controllers

import (
	"encoding/json"
	"log/slog"

	"github.com/davidx1x1/device-loan/app"
	"github.com/davidx1x1/device-loan/db"
	"github.com/davidx1x1/device-loan/email"
	"github.com/davidx1x1/device-loan/models"
	"github.com/davidx1x1/device-loan/session"
	"github.com/davidx1x1/device-loan/waitlist"

	"github.com/redis/go-redis/v9"
)

type Srv struct {
	Repo       *db.Repo
	RDB        *redis.Client
	AppSess    *session.AppSessionStore
	Mailer     email.Sender
	Dispatcher *waitlist.Dispatcher
	Logger     *slog.Logger
	Cfg        app.Config
}

func GetSrv(a *app.App) *Srv {
	repo := db.NewRepo(a.DB)
	return &Srv{
		Repo:       repo,
		RDB:        a.RDB,
		AppSess:    a.AppSessions(),
		Mailer:     a.Mailer,
		Dispatcher: waitlist.NewDispatcher(repo, a.Mailer, a.Logger, a.Config.WebOrigin),
		Logger:     a.Logger,
		Cfg:        a.Config,
	}
}

// --- helpers ---

func userIDFrom(c *app.Ctx) string {
	v, _ := c.Get("userID")
	uid, _ := v.(string)
	return uid
}

// audit writes the trail row best-effort; failures are logged, never
// surfaced to the client.
func (s *Srv) audit(c *app.Ctx, userID, action, resourceType, resourceID string, metadata map[string]interface{}) {
	var metaJSON string
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			metaJSON = string(b)
		}
	}
	entry := &models.AuditLog{
		CorrelationID: app.CorrelationIDFrom(c),
		Action:        action,
		ResourceType:  resourceType,
		Metadata:      metaJSON,
		IPAddress:     c.ClientIP(),
		UserAgent:     c.Request.UserAgent(),
	}
	if userID != "" {
		entry.UserID = &userID
	}
	if resourceID != "" {
		entry.ResourceID = &resourceID
	}
	if _, err := s.Repo.RecordAudit(c.Request.Context(), entry); err != nil {
		s.Logger.Error("audit write failed", "action", action, "err", err,
			"correlation_id", app.CorrelationIDFrom(c))
	}
}
