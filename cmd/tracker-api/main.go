package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	_ "github.com/feldmangn/nih-awards-tracker/docs"
	"github.com/feldmangn/nih-awards-tracker/internal/api"
	"github.com/feldmangn/nih-awards-tracker/internal/store"
	"github.com/feldmangn/nih-awards-tracker/pkg/router"
)

// @title Awards Tracker API
// @version 1.0
// @description Trigger USAspending fetch runs and download the resulting snapshots.
// @BasePath /api/v1
func main() {
	godotenv.Load()

	dbPath := os.Getenv("TRACKER_DB")
	if dbPath == "" {
		dbPath = "tracker.db"
	}
	if err := store.InitDB(dbPath); err != nil {
		fmt.Printf("❌ Failed to open %s: %v\n", dbPath, err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	r := router.New()
	api.RegisterRoutes(r)
	r.Start(":" + port)
}
