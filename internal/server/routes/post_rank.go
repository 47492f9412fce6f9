package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kgrank/kgrank/internal/server/middleware"
	"github.com/kgrank/kgrank/pkg/logger"
	"github.com/kgrank/kgrank/pkg/ranking"
	"github.com/kgrank/kgrank/pkg/rdf"
)

// RankHandler scores the given candidates against a topic, example entities,
// or both. Alpha overrides the configured text/example mix for this request
// only.
func RankHandler(c echo.Context) error {
	type rankBody struct {
		Topic      string   `json:"topic"`
		Examples   []string `json:"examples"`
		Candidates []string `json:"candidates" validate:"required,min=1"`
		Alpha      *float64 `json:"alpha" validate:"omitempty,gte=0,lte=1"`
	}

	type rankResponse struct {
		Message  string            `json:"message"`
		Rankings *ranking.Rankings `json:"rankings,omitempty"`
	}

	data := new(rankBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, rankResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, rankResponse{
			Message: "Invalid request body",
		})
	}

	examples := make([]rdf.Term, len(data.Examples))
	for i, id := range data.Examples {
		examples[i] = rdf.IRI(id)
	}
	candidates := make([]rdf.Term, len(data.Candidates))
	for i, id := range data.Candidates {
		candidates[i] = rdf.IRI(id)
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	app.Mu.RLock()
	defer app.Mu.RUnlock()

	rankings, err := app.Ranker.Rank(ctx, data.Topic, examples, candidates)
	if err != nil {
		if errors.Is(err, ranking.ErrEmptyQuery) {
			return c.JSON(http.StatusBadRequest, rankResponse{
				Message: "Either a topic or example entities are required",
			})
		}
		logger.Error("Ranking failed", "err", err)
		return c.JSON(http.StatusInternalServerError, rankResponse{
			Message: "Internal server error",
		})
	}

	if data.Alpha != nil && rankings.Text != nil && rankings.Examples != nil {
		rankings.Combined = ranking.Combine(rankings.Text, rankings.Examples, *data.Alpha)
	}

	return c.JSON(http.StatusOK, rankResponse{
		Message:  "Ranking completed",
		Rankings: rankings,
	})
}
