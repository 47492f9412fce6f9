package middleware

import (
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/kgrank/kgrank/pkg/graph"
	"github.com/kgrank/kgrank/pkg/graph/pgstore"
	"github.com/kgrank/kgrank/pkg/ranking"
)

// App is the shared server state. Mu guards the store and the ranker's
// cached collection statistics: loads take the write lock, rankings the read
// lock, so a load can never swap statistics under a running ranking.
type App struct {
	Mu     sync.RWMutex
	Store  *graph.MemoryStore
	Ranker *ranking.Ranker

	// Persist mirrors loaded triples into PostgreSQL when configured.
	Persist *pgstore.Store

	// S3 is nil when no object storage is configured.
	S3 *s3.Client
}

type AppContext struct {
	echo.Context
	App       *App
	RequestID string
}

// AppContextMiddleware attaches the shared state and a fresh request ID to
// every request.
func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid, err := gonanoid.New()
			if err != nil {
				return err
			}
			c.Response().Header().Set("X-Request-Id", rid)
			cc := &AppContext{c, app, rid}
			return next(cc)
		}
	}
}
