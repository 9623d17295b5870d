// controllers/loan_controller.go
package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/davidx1x1/device-loan/app"
	"github.com/davidx1x1/device-loan/db"
	"github.com/davidx1x1/device-loan/email"

	"github.com/gin-gonic/gin"
)

type LoanController struct{ *Srv }

func NewLoanController(s *Srv) *LoanController { return &LoanController{Srv: s} }

// failCoreErr maps core errors to the response envelope. Store failures
// stay opaque: generic message out, cause into the log keyed by the
// correlation id.
func (s *Srv) failCoreErr(c *app.Ctx, err error, fallback string) {
	var ise *db.InvalidStatusError
	switch {
	case errors.Is(err, db.ErrNotFound):
		app.Fail(c, http.StatusNotFound, app.CodeNotFound, "not found")
	case errors.Is(err, db.ErrNoAvailableDevices):
		app.Fail(c, http.StatusConflict, app.CodeNoAvailableDevices, "no devices available for this model")
	case errors.Is(err, db.ErrInvalidDuration):
		app.Fail(c, http.StatusBadRequest, app.CodeValidation, err.Error())
	case errors.As(err, &ise):
		app.Fail(c, http.StatusBadRequest, app.CodeInvalidStatus,
			fmt.Sprintf("%s. Current status: %s", fallback, ise.Current))
	default:
		s.Logger.Error(fallback, "err", err, "correlation_id", app.CorrelationIDFrom(c))
		app.Fail(c, http.StatusInternalServerError, app.CodeInternal, fallback)
	}
}

// Reserve allocates one free device of the requested model to the caller.
func (lc *LoanController) Reserve(c *gin.Context) {
	var in struct {
		DeviceModelID string `json:"deviceModelId" binding:"required"`
		DurationDays  int    `json:"durationDays"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		app.Fail(c, http.StatusBadRequest, app.CodeValidation, "deviceModelId is required")
		return
	}
	days := in.DurationDays
	if days == 0 {
		days = lc.Cfg.DefaultLoanDays
	}
	userID := userIDFrom(c)

	loan, err := lc.Repo.Reserve(c.Request.Context(), userID, in.DeviceModelID, days)
	if err != nil {
		lc.failCoreErr(c, err, "failed to create reservation")
		return
	}

	detail, err := lc.Repo.GetLoanDetail(c.Request.Context(), loan.ID)
	if err != nil {
		lc.Logger.Error("fetch loan detail failed", "loan_id", loan.ID, "err", err,
			"correlation_id", app.CorrelationIDFrom(c))
		app.Fail(c, http.StatusInternalServerError, app.CodeInternal,
			"reservation created but failed to fetch details")
		return
	}

	lc.audit(c, userID, "CREATE_RESERVATION", "loan", loan.ID,
		map[string]interface{}{"device_id": loan.DeviceID, "device_model_id": in.DeviceModelID})
	lc.sendLoanMail(c, detail, email.ReservationConfirmation)

	app.OK(c, http.StatusCreated, detail)
}

// 当前用户的借还记录
func (lc *LoanController) ListMyLoans(c *gin.Context) {
	rows, err := lc.Repo.ListUserLoans(c.Request.Context(), userIDFrom(c))
	if err != nil {
		lc.Logger.Error("list loans failed", "err", err, "correlation_id", app.CorrelationIDFrom(c))
		app.Fail(c, http.StatusInternalServerError, app.CodeInternal, "failed to fetch reservations")
		return
	}
	app.OK(c, http.StatusOK, rows)
}

// Cancel releases the caller's own un-collected reservation.
func (lc *LoanController) Cancel(c *gin.Context) {
	loanID := c.Param("id")
	if loanID == "" {
		app.Fail(c, http.StatusBadRequest, app.CodeValidation, "missing loan id")
		return
	}
	userID := userIDFrom(c)

	loan, err := lc.Repo.Cancel(c.Request.Context(), loanID, userID)
	if err != nil {
		lc.failCoreErr(c, err, "cannot cancel reservation")
		return
	}

	lc.audit(c, userID, "CANCEL_RESERVATION", "loan", loan.ID,
		map[string]interface{}{"device_id": loan.DeviceID})
	app.OK(c, http.StatusOK, app.H{"loan_id": loan.ID, "status": loan.Status})
}

// sendLoanMail renders and sends a lifecycle mail best-effort.
func (s *Srv) sendLoanMail(c *app.Ctx, d *db.LoanDetail, build func(email.LoanMailData) (string, string, error)) {
	subject, html, err := build(email.LoanMailData{
		Name:    d.UserName,
		Brand:   d.Brand,
		Model:   d.Model,
		Serial:  d.Serial,
		DueDate: d.DueDate,
		LoanID:  d.ID,
		AppURL:  s.Cfg.WebOrigin,
	})
	if err != nil {
		s.Logger.Error("mail render failed", "loan_id", d.ID, "err", err)
		return
	}
	if err := s.Mailer.Send(c.Request.Context(), d.UserEmail, subject, html); err != nil {
		s.Logger.Error("mail send failed", "loan_id", d.ID, "user_id", d.UserID, "err", err,
			"correlation_id", app.CorrelationIDFrom(c))
	}
}
