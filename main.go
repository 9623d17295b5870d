package main

import (
	"github.com/davidx1x1/device-loan/app"
	"github.com/davidx1x1/device-loan/routes"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	application := app.MustNew()
	defer application.Close()

	r := application.Router

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })

	routes.RegisterRoutes(r, application)

	application.Logger.Info("listening", "port", application.Config.Port)
	_ = r.Run(":" + application.Config.Port)
}
