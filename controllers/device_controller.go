// controllers/device_controller.go
package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/davidx1x1/device-loan/app"
	"github.com/davidx1x1/device-loan/db"
	"github.com/davidx1x1/device-loan/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DeviceController struct{ *Srv }

func NewDeviceController(s *Srv) *DeviceController { return &DeviceController{Srv: s} }

const availabilityCacheKey = "dl:devices:availability"
const availabilityCacheTTL = 10 * time.Second

// ListDevices is the public catalog: every model with loanable/total
// counts. Counts are a lock-free snapshot and may lag a committed
// allocation by up to the cache TTL; the allocation transaction is the
// source of truth.
func (dc *DeviceController) ListDevices(c *gin.Context) {
	ctx := c.Request.Context()

	if b, err := dc.RDB.Get(ctx, availabilityCacheKey).Bytes(); err == nil {
		var rows []db.ModelAvailability
		if json.Unmarshal(b, &rows) == nil {
			app.OK(c, http.StatusOK, rows)
			return
		}
	}

	rows, err := dc.Repo.ListModelAvailability(ctx)
	if err != nil {
		dc.Logger.Error("list availability failed", "err", err, "correlation_id", app.CorrelationIDFrom(c))
		app.Fail(c, http.StatusInternalServerError, app.CodeInternal, "failed to fetch device models")
		return
	}

	if b, err := json.Marshal(rows); err == nil {
		if err := dc.RDB.Set(ctx, availabilityCacheKey, b, availabilityCacheTTL).Err(); err != nil {
			dc.Logger.Warn("availability cache write failed", "err", err)
		}
	}

	app.OK(c, http.StatusOK, rows)
}

// GetModelAvailability answers "how many of this model are loanable now".
func (dc *DeviceController) GetModelAvailability(c *gin.Context) {
	modelID := c.Param("id")
	if _, err := dc.Repo.FindDeviceModelByID(c.Request.Context(), modelID); err != nil {
		app.Fail(c, http.StatusNotFound, app.CodeNotFound, "device model not found")
		return
	}
	n, err := dc.Repo.CountLoanable(c.Request.Context(), modelID)
	if err != nil {
		dc.Logger.Error("count loanable failed", "err", err, "correlation_id", app.CorrelationIDFrom(c))
		app.Fail(c, http.StatusInternalServerError, app.CodeInternal, "failed to count devices")
		return
	}
	app.OK(c, http.StatusOK, app.H{"deviceModelId": modelID, "availableCount": n})
}

// 管理员：创建型号
func (dc *DeviceController) CreateDeviceModel(c *gin.Context) {
	var in struct {
		Brand       string `json:"brand" binding:"required"`
		Model       string `json:"model" binding:"required"`
		Category    string `json:"category" binding:"required"`
		Description string `json:"description"`
		ImageURL    string `json:"imageUrl"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		app.Fail(c, http.StatusBadRequest, app.CodeValidation, err.Error())
		return
	}
	m := &models.DeviceModel{
		ID:          uuid.NewString(),
		Brand:       in.Brand,
		Model:       in.Model,
		Category:    in.Category,
		Description: in.Description,
		ImageURL:    in.ImageURL,
	}
	if err := dc.Repo.CreateDeviceModel(c.Request.Context(), m); err != nil {
		dc.Logger.Error("create model failed", "err", err, "correlation_id", app.CorrelationIDFrom(c))
		app.Fail(c, http.StatusInternalServerError, app.CodeInternal, "failed to create device model")
		return
	}
	dc.audit(c, userIDFrom(c), "CREATE_DEVICE_MODEL", "device_model", m.ID, nil)
	app.OK(c, http.StatusCreated, m)
}

// 管理员：登记一台实体设备
func (dc *DeviceController) CreateDevice(c *gin.Context) {
	var in struct {
		DeviceModelID string `json:"deviceModelId" binding:"required"`
		Serial        string `json:"serial" binding:"required"`
		Condition     string `json:"condition"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		app.Fail(c, http.StatusBadRequest, app.CodeValidation, err.Error())
		return
	}
	d := &models.Device{
		ID:            uuid.NewString(),
		DeviceModelID: in.DeviceModelID,
		Serial:        in.Serial,
		IsAvailable:   true,
		Condition:     in.Condition,
	}
	if err := dc.Repo.CreateDevice(c.Request.Context(), d); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			app.Fail(c, http.StatusNotFound, app.CodeNotFound, "device model not found")
			return
		}
		dc.Logger.Error("create device failed", "err", err, "correlation_id", app.CorrelationIDFrom(c))
		app.Fail(c, http.StatusInternalServerError, app.CodeInternal, "failed to create device")
		return
	}
	dc.audit(c, userIDFrom(c), "CREATE_DEVICE", "device", d.ID,
		map[string]interface{}{"device_model_id": d.DeviceModelID, "serial": d.Serial})
	app.OK(c, http.StatusCreated, d)
}
