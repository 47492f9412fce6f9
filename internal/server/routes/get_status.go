package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kgrank/kgrank/internal/server/middleware"
	"github.com/kgrank/kgrank/pkg/ranking"
)

// GetStatusHandler reports the store contents and the active model
// parameters.
func GetStatusHandler(c echo.Context) error {
	type statusResponse struct {
		Triples       int            `json:"triples"`
		Entities      int            `json:"entities"`
		Generation    int            `json:"generation"`
		Config        ranking.Config `json:"config"`
		Persistence   bool           `json:"persistence"`
		ObjectStorage bool           `json:"object_storage"`
	}

	app := c.(*middleware.AppContext).App

	app.Mu.RLock()
	defer app.Mu.RUnlock()

	return c.JSON(http.StatusOK, statusResponse{
		Triples:       app.Store.TripleCount(),
		Entities:      app.Store.SubjectCount(),
		Generation:    app.Store.Generation(),
		Config:        app.Ranker.Config(),
		Persistence:   app.Persist != nil,
		ObjectStorage: app.S3 != nil,
	})
}
