// controllers/waitlist_controller.go
package controllers

import (
	"net/http"

	"github.com/davidx1x1/device-loan/app"

	"github.com/gin-gonic/gin"
)

type WaitlistController struct{ *Srv }

func NewWaitlistController(s *Srv) *WaitlistController { return &WaitlistController{Srv: s} }

// Subscribe is an idempotent upsert: re-subscribing just resets the
// notified flag.
func (wc *WaitlistController) Subscribe(c *gin.Context) {
	var in struct {
		DeviceModelID string `json:"deviceModelId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		app.Fail(c, http.StatusBadRequest, app.CodeValidation, "deviceModelId is required")
		return
	}
	userID := userIDFrom(c)

	entry, err := wc.Repo.SubscribeWaitlist(c.Request.Context(), userID, in.DeviceModelID)
	if err != nil {
		wc.failCoreErr(c, err, "failed to subscribe to waitlist")
		return
	}

	wc.audit(c, userID, "SUBSCRIBE_WAITLIST", "waitlist", entry.ID,
		map[string]interface{}{"device_model_id": in.DeviceModelID})
	app.OK(c, http.StatusCreated, entry)
}

func (wc *WaitlistController) ListMine(c *gin.Context) {
	entries, err := wc.Repo.ListUserWaitlist(c.Request.Context(), userIDFrom(c))
	if err != nil {
		wc.Logger.Error("list waitlist failed", "err", err, "correlation_id", app.CorrelationIDFrom(c))
		app.Fail(c, http.StatusInternalServerError, app.CodeInternal, "failed to fetch waitlist subscriptions")
		return
	}
	app.OK(c, http.StatusOK, entries)
}

func (wc *WaitlistController) Unsubscribe(c *gin.Context) {
	modelID := c.Query("device_model_id")
	if modelID == "" {
		app.Fail(c, http.StatusBadRequest, app.CodeValidation, "device_model_id is required")
		return
	}
	userID := userIDFrom(c)

	if err := wc.Repo.UnsubscribeWaitlist(c.Request.Context(), userID, modelID); err != nil {
		wc.Logger.Error("unsubscribe failed", "err", err, "correlation_id", app.CorrelationIDFrom(c))
		app.Fail(c, http.StatusInternalServerError, app.CodeInternal, "failed to unsubscribe from waitlist")
		return
	}

	wc.audit(c, userID, "UNSUBSCRIBE_WAITLIST", "waitlist", "",
		map[string]interface{}{"device_model_id": modelID})
	app.OK(c, http.StatusOK, app.H{"ok": true})
}
