// controllers/auth_controller.go
package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/davidx1x1/device-loan/app"
	"github.com/davidx1x1/device-loan/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthController struct{ *Srv }

func NewAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

// Login stands in for the external identity provider callback: the
// provider has already vouched for the email by the time this is called.
// First login creates the user record; staff role comes from config.
func (ac *AuthController) Login(c *gin.Context) {
	var in struct {
		Email string `json:"email" binding:"required,email"`
		Name  string `json:"name"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		app.Fail(c, http.StatusBadRequest, app.CodeValidation, "email is required")
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = email
	}

	role := models.RoleStudent
	if ac.Cfg.IsStaffEmail(email) {
		role = models.RoleStaff
	}

	u, err := ac.Repo.FindOrCreateUser(c.Request.Context(), email, name, role, uuid.NewString())
	if err != nil {
		ac.Logger.Error("login failed", "err", err, "correlation_id", app.CorrelationIDFrom(c))
		app.Fail(c, http.StatusInternalServerError, app.CodeInternal, "login failed")
		return
	}
	if err := ac.Repo.TouchUserLogin(c.Request.Context(), u.ID); err != nil {
		// 不阻塞
		ac.Logger.Warn("touch login failed", "user_id", u.ID, "err", err)
	}

	sid := uuid.NewString()
	if err := ac.AppSess.Create(c.Request.Context(), sid, u.ID); err != nil {
		ac.Logger.Error("session create failed", "err", err, "correlation_id", app.CorrelationIDFrom(c))
		app.Fail(c, http.StatusInternalServerError, app.CodeInternal, "login failed")
		return
	}
	ac.setAppCookie(c, sid, ac.Cfg.SessionTTL)

	app.OK(c, http.StatusOK, u)
}

func (ac *AuthController) Logout(c *gin.Context) {
	if ck, err := c.Request.Cookie(app.AppSessionCookie); err == nil && ck.Value != "" {
		_ = ac.AppSess.Delete(c.Request.Context(), ck.Value)
	}
	ac.setAppCookie(c, "", -time.Second)
	app.OK(c, http.StatusOK, app.H{"ok": true})
}

func (ac *AuthController) Whoami(c *gin.Context) {
	u, err := ac.Repo.FindUserByID(c.Request.Context(), userIDFrom(c))
	if err != nil {
		app.Fail(c, http.StatusUnauthorized, app.CodeUnauthorized, "unauthorized")
		return
	}
	app.OK(c, http.StatusOK, u)
}

func (ac *AuthController) setAppCookie(c *gin.Context, sessionID string, maxAge time.Duration) {
	secure := strings.HasPrefix(ac.Cfg.WebOrigin, "https://")
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		MaxAge:   int(maxAge / time.Second),
	})
}
