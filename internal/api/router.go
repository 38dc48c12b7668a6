package api

import (
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/feldmangn/nih-awards-tracker/internal/api/handler"
	"github.com/feldmangn/nih-awards-tracker/pkg/router"
)

func RegisterRoutes(r *router.Router) {
	r.GET("/healthz", handler.Health)
	r.POST("/api/v1/runs", handler.CreateRun)
	r.GET("/api/v1/runs", handler.ListRuns)
	// More specific routes first
	r.GET("/api/v1/runs/*/errors", handler.GetRunErrors)
	r.GET("/api/v1/runs/*/results", handler.GetRunResults)
	// Generic run route last
	r.GET("/api/v1/runs/*", handler.GetRun)
	r.GET("/api/v1/download/*", handler.DownloadSnapshot)
	r.Mount("/swagger/*", httpSwagger.WrapHandler)
}
