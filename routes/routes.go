package routes

import (
	"time"

	"github.com/davidx1x1/device-loan/app"
	"github.com/davidx1x1/device-loan/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	ac := controllers.NewAuthController(s)
	dc := controllers.NewDeviceController(s)
	lc := controllers.NewLoanController(s)
	sc := controllers.NewStaffController(s)
	wc := controllers.NewWaitlistController(s)

	// 复用的中间件
	authMW := app.AuthRequired(a.AppSessions(), s.Repo)
	staffMW := app.StaffOnly()
	seenMW := app.TouchLastSeen(s.Repo, a.RDB, 5*time.Minute)

	// ------------------------------
	// Auth（登录态是对外部身份提供方的薄封装）
	// ------------------------------
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", ac.Login)
		auth.POST("/logout", authMW, ac.Logout)
		auth.GET("/whoami", authMW, seenMW, ac.Whoami)
	}

	// ------------------------------
	// 设备目录（公开）与库存管理（仅 staff）
	// ------------------------------
	r.GET("/api/devices", dc.ListDevices)
	r.GET("/api/devices/models/:id/availability", dc.GetModelAvailability)
	r.POST("/api/devices/models", authMW, staffMW, dc.CreateDeviceModel)
	r.POST("/api/devices", authMW, staffMW, dc.CreateDevice)

	// ------------------------------
	// 预约
	// ------------------------------
	res := r.Group("/api/reservations", authMW, seenMW)
	{
		res.POST("", lc.Reserve)
		res.GET("", lc.ListMyLoans)
		res.POST("/:id/cancel", lc.Cancel)
	}

	// ------------------------------
	// 柜台操作（仅 staff）
	// ------------------------------
	staff := r.Group("/api/staff", authMW, staffMW)
	{
		staff.POST("/collect", sc.Collect)
		staff.POST("/return", sc.Return)
	}

	// ------------------------------
	// Waitlist
	// ------------------------------
	wl := r.Group("/api/waitlist", authMW, seenMW)
	{
		wl.POST("", wc.Subscribe)
		wl.GET("", wc.ListMine)
		wl.DELETE("", wc.Unsubscribe)
	}
}
