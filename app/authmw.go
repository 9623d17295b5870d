package app

import (
	"net/http"

	"github.com/davidx1x1/device-loan/db"
	"github.com/davidx1x1/device-loan/session"

	"github.com/gin-gonic/gin"
)

const AppSessionCookie = "app_session"

func AuthRequired(appSess *session.AppSessionStore, repo *db.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		ck, err := c.Request.Cookie(AppSessionCookie)
		if err != nil || ck.Value == "" {
			AbortFail(c, http.StatusUnauthorized, CodeUnauthorized, "authentication required")
			return
		}
		as, err := appSess.Get(c.Request.Context(), ck.Value)
		if err != nil {
			AbortFail(c, http.StatusUnauthorized, CodeUnauthorized, "invalid session")
			return
		}

		// 确认用户仍存在，角色只查一次放进 Context
		u, err := repo.FindUserByID(c.Request.Context(), as.UserID)
		if err != nil {
			_ = appSess.Delete(c.Request.Context(), ck.Value)
			AbortFail(c, http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
			return
		}
		c.Set("userID", u.ID)
		c.Set("userEmail", u.Email)
		c.Set("isStaff", u.IsStaff())

		c.Next()
	}
}

// StaffOnly gates the collect/return and inventory admin surface. Runs
// after AuthRequired.
func StaffOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get("isStaff")
		if !ok {
			AbortFail(c, http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
			return
		}
		if staff, _ := v.(bool); !staff {
			AbortFail(c, http.StatusForbidden, CodeForbidden, "staff only")
			return
		}
		c.Next()
	}
}
