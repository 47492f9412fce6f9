package routes

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kgrank/kgrank/internal/server/middleware"
	"github.com/kgrank/kgrank/internal/storage"
	"github.com/kgrank/kgrank/pkg/logger"
	"github.com/kgrank/kgrank/pkg/rdf"
)

// LoadTriplesHandler adds triples to the server's store, either inline as
// N-Quads text, from a server-side file or directory, or from a stored dump
// in object storage. Loading invalidates the cached collection statistics,
// so the next ranking rebuilds them over the grown graph.
func LoadTriplesHandler(c echo.Context) error {
	type loadBody struct {
		Content string `json:"content"`
		Path    string `json:"path"`
		DumpKey string `json:"dump_key"`
	}

	type loadResponse struct {
		Message  string `json:"message"`
		Added    int    `json:"added,omitempty"`
		Triples  int    `json:"triples,omitempty"`
		Entities int    `json:"entities,omitempty"`
	}

	data := new(loadBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, loadResponse{
			Message: "Invalid request body",
		})
	}
	sources := 0
	for _, s := range []string{data.Content, data.Path, data.DumpKey} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		return c.JSON(http.StatusBadRequest, loadResponse{
			Message: "Exactly one of content, path or dump_key is required",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	var triples []rdf.Triple
	switch {
	case data.Content != "":
		parsed, err := rdf.ParseNQuads(strings.NewReader(data.Content))
		if err != nil {
			logger.Error("Failed to parse triples", "err", err)
			return c.JSON(http.StatusBadRequest, loadResponse{
				Message: "Invalid triple data",
			})
		}
		triples = parsed
	case data.DumpKey != "":
		if app.S3 == nil {
			return c.JSON(http.StatusServiceUnavailable, loadResponse{
				Message: "Object storage is not configured",
			})
		}
		raw, err := storage.GetFile(ctx, app.S3, data.DumpKey)
		if err != nil {
			logger.Error("Failed to fetch dump", "key", data.DumpKey, "err", err)
			return c.JSON(http.StatusBadGateway, loadResponse{
				Message: "Failed to fetch dump from object storage",
			})
		}
		parsed, err := rdf.ParseNQuads(strings.NewReader(string(raw)))
		if err != nil {
			logger.Error("Failed to parse dump", "key", data.DumpKey, "err", err)
			return c.JSON(http.StatusBadRequest, loadResponse{
				Message: "Invalid triple data in dump",
			})
		}
		triples = parsed
	}

	app.Mu.Lock()
	defer app.Mu.Unlock()

	before := app.Store.TripleCount()
	if data.Path != "" {
		if err := app.Store.Load(data.Path); err != nil {
			logger.Error("Failed to load triples from path", "path", data.Path, "err", err)
			return c.JSON(http.StatusBadRequest, loadResponse{
				Message: "Failed to load triples from path",
			})
		}
	} else {
		app.Store.Add(triples)
	}
	app.Ranker.Invalidate()

	if app.Persist != nil && len(triples) > 0 {
		if err := app.Persist.AddTriples(ctx, triples); err != nil {
			logger.Error("Failed to persist triples", "err", err)
		}
	}

	return c.JSON(http.StatusOK, loadResponse{
		Message:  "Triples loaded successfully",
		Added:    app.Store.TripleCount() - before,
		Triples:  app.Store.TripleCount(),
		Entities: app.Store.SubjectCount(),
	})
}
