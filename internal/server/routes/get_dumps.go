package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kgrank/kgrank/internal/server/middleware"
	"github.com/kgrank/kgrank/internal/storage"
	"github.com/kgrank/kgrank/pkg/logger"
)

// GetDumpsHandler lists the triple dumps available in object storage.
func GetDumpsHandler(c echo.Context) error {
	type dumpsResponse struct {
		Message string   `json:"message,omitempty"`
		Dumps   []string `json:"dumps"`
	}

	app := c.(*middleware.AppContext).App
	if app.S3 == nil {
		return c.JSON(http.StatusServiceUnavailable, dumpsResponse{
			Message: "Object storage is not configured",
		})
	}

	keys, err := storage.ListDumps(c.Request().Context(), app.S3)
	if err != nil {
		logger.Error("Failed to list dumps", "err", err)
		return c.JSON(http.StatusInternalServerError, dumpsResponse{
			Message: "Internal server error",
		})
	}
	if keys == nil {
		keys = []string{}
	}

	return c.JSON(http.StatusOK, dumpsResponse{Dumps: keys})
}
