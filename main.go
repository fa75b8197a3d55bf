package main

import (
	"college_library_backend/app"
	"college_library_backend/db"
	"college_library_backend/routes"
	"context"
	"log"
	"os"
)

func main() {
	app.LoadEnv()

	application := app.MustNew()
	defer application.Close()

	r := application.Router

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })

	app.BootstrapFirstAdmin(context.Background(), application.Config, db.NewRepo(application.DB))

	routes.RegisterRoutes(application)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	log.Printf("listening on :%s", port)
	_ = r.Run(":" + port)
}
