package server

import (
	"github.com/labstack/echo/v4"

	"github.com/kgrank/kgrank/internal/server/routes"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	apiRoutes.GET("/status", routes.GetStatusHandler)
	apiRoutes.POST("/load", routes.LoadTriplesHandler)
	apiRoutes.POST("/rank", routes.RankHandler)
	apiRoutes.GET("/dumps", routes.GetDumpsHandler)
}
