// controllers/staff_controller.go
package controllers

import (
	"net/http"

	"github.com/davidx1x1/device-loan/app"
	"github.com/davidx1x1/device-loan/email"

	"github.com/gin-gonic/gin"
)

type StaffController struct{ *Srv }

func NewStaffController(s *Srv) *StaffController { return &StaffController{Srv: s} }

// Collect marks a reserved device as handed over the counter.
func (sc *StaffController) Collect(c *gin.Context) {
	var in struct {
		LoanID string `json:"loanId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		app.Fail(c, http.StatusBadRequest, app.CodeValidation, "loanId is required")
		return
	}
	staffID := userIDFrom(c)

	loan, err := sc.Repo.Collect(c.Request.Context(), in.LoanID, staffID)
	if err != nil {
		sc.failCoreErr(c, err, "cannot collect device")
		return
	}

	sc.audit(c, staffID, "MARK_COLLECTED", "loan", loan.ID,
		map[string]interface{}{"borrower_id": loan.UserID, "device_id": loan.DeviceID})

	if detail, err := sc.Repo.GetLoanDetail(c.Request.Context(), loan.ID); err == nil {
		sc.sendLoanMail(c, detail, email.CollectionConfirmation)
	} else {
		sc.Logger.Warn("loan detail fetch failed after collect", "loan_id", loan.ID, "err", err)
	}

	app.OK(c, http.StatusOK, app.H{"loan_id": loan.ID, "status": loan.Status, "collected_at": loan.CollectedAt})
}

// Return marks a collected device as back in stock, then drains the
// model's waitlist. Dispatch runs strictly after the ledger commit: its
// latency and failures never touch the Return outcome.
func (sc *StaffController) Return(c *gin.Context) {
	var in struct {
		LoanID string `json:"loanId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		app.Fail(c, http.StatusBadRequest, app.CodeValidation, "loanId is required")
		return
	}
	staffID := userIDFrom(c)

	loan, err := sc.Repo.Return(c.Request.Context(), in.LoanID, staffID)
	if err != nil {
		sc.failCoreErr(c, err, "cannot return device")
		return
	}

	sc.audit(c, staffID, "MARK_RETURNED", "loan", loan.ID,
		map[string]interface{}{"borrower_id": loan.UserID, "device_id": loan.DeviceID})

	detail, err := sc.Repo.GetLoanDetail(c.Request.Context(), loan.ID)
	if err != nil {
		sc.Logger.Warn("loan detail fetch failed after return", "loan_id", loan.ID, "err", err)
	} else {
		sc.sendLoanMail(c, detail, email.ReturnConfirmation)

		notified, err := sc.Dispatcher.OnDeviceReturned(c.Request.Context(), detail.DeviceModelID)
		if err != nil {
			sc.Logger.Error("waitlist dispatch failed", "device_model_id", detail.DeviceModelID,
				"err", err, "correlation_id", app.CorrelationIDFrom(c))
		} else if len(notified) > 0 {
			sc.Logger.Info("waitlist drained", "device_model_id", detail.DeviceModelID,
				"notified", len(notified))
		}
	}

	app.OK(c, http.StatusOK, app.H{"loan_id": loan.ID, "status": loan.Status, "returned_at": loan.ReturnedAt})
}
