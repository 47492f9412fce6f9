package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	mid "github.com/kgrank/kgrank/internal/server/middleware"
	"github.com/kgrank/kgrank/internal/storage"
	"github.com/kgrank/kgrank/internal/util"
	"github.com/kgrank/kgrank/pkg/graph"
	"github.com/kgrank/kgrank/pkg/graph/pgstore"
	"github.com/kgrank/kgrank/pkg/logger"
	"github.com/kgrank/kgrank/pkg/ranking"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := configFromEnv()
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid ranking configuration", "err", err)
	}

	store := graph.NewMemoryStore()
	app := &mid.App{
		Store:  store,
		Ranker: ranking.NewRanker(store, cfg),
	}

	if databaseURL := util.GetEnv("DATABASE_URL"); databaseURL != "" {
		persist, err := pgstore.New(ctx, databaseURL)
		if err != nil {
			logger.Fatal("Failed to connect to database", "err", err)
		}
		defer persist.Close()
		app.Persist = persist
		if err := hydrate(ctx, store, persist); err != nil {
			logger.Fatal("Failed to hydrate store from database", "err", err)
		}
	}

	if dataDir := util.GetEnv("DATA_DIR"); dataDir != "" {
		if err := store.LoadDir(dataDir); err != nil {
			logger.Fatal("Failed to load data directory", "err", err)
		}
	}

	if util.GetEnv("AWS_ENDPOINT") != "" {
		app.S3 = storage.NewS3Client(ctx)
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("512M"))

	RegisterRoutes(e)

	go func() {
		port := util.GetEnvString("PORT", "8080")
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}

// configFromEnv starts from the defaults and applies RANK_* overrides.
func configFromEnv() ranking.Config {
	cfg := ranking.DefaultConfig()
	cfg.Mu = util.GetEnvNumeric("RANK_MU", cfg.Mu)
	cfg.WeightAttributes = util.GetEnvNumeric("RANK_WEIGHT_ATTRIBUTES", cfg.WeightAttributes)
	cfg.WeightTypes = util.GetEnvNumeric("RANK_WEIGHT_TYPES", cfg.WeightTypes)
	cfg.WeightLinks = util.GetEnvNumeric("RANK_WEIGHT_LINKS", cfg.WeightLinks)
	cfg.Alpha = util.GetEnvNumeric("RANK_ALPHA", cfg.Alpha)
	cfg.UseJaccard = util.GetEnvBool("RANK_JACCARD", cfg.UseJaccard)
	cfg.Aggregation = util.GetEnvString("RANK_AGGREGATION", cfg.Aggregation)
	return cfg
}

// hydrate copies the persisted triples into the in-memory store so rankings
// run against memory even when PostgreSQL holds the master copy.
func hydrate(ctx context.Context, store *graph.MemoryStore, persist *pgstore.Store) error {
	subjects, err := persist.Subjects(ctx)
	if err != nil {
		return err
	}
	if len(subjects) == 0 {
		return nil
	}

	progress := util.NewProgress("Hydrating store", len(subjects))
	for _, subject := range subjects {
		triples, err := persist.TriplesFor(ctx, subject)
		if err != nil {
			return err
		}
		store.Add(triples)
		progress.Tick()
	}
	logger.Info("Hydrated store from database",
		"entities", store.SubjectCount(), "triples", store.TripleCount())
	return nil
}
