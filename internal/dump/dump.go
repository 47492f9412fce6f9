// Package dump fetches the triples of every entity named by a set of sample
// files from a live SPARQL endpoint and writes them to a local N-Quads file,
// so evaluations can run offline against a stable snapshot.
package dump

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kgrank/kgrank/internal/storage"
	"github.com/kgrank/kgrank/internal/util"
	"github.com/kgrank/kgrank/pkg/graph/pgstore"
	"github.com/kgrank/kgrank/pkg/graph/sparql"
	"github.com/kgrank/kgrank/pkg/logger"
	"github.com/kgrank/kgrank/pkg/query"
	"github.com/kgrank/kgrank/pkg/rdf"
)

const (
	fetchParallelism = 4
	fetchRetries     = 3
)

// Params configures one dump run.
type Params struct {
	// Endpoint is the SPARQL endpoint to snapshot from.
	Endpoint string

	// SampleDir holds the .yml sample files naming the entities to fetch.
	SampleDir string

	// OutFile is the N-Quads file to write.
	OutFile string

	// Upload pushes the finished dump to the configured S3 bucket.
	Upload bool

	// DatabaseURL, when set, also persists the fetched triples to PostgreSQL.
	DatabaseURL string
}

// Run fetches the triples of every entity the samples name and writes them
// as one N-Quads file. Entities that keep failing after retries are skipped
// with a warning rather than failing the whole dump.
func Run(ctx context.Context, params Params) error {
	entities, err := collectEntities(params.SampleDir)
	if err != nil {
		return err
	}
	logger.Info("Dumping entity triples",
		"entities", len(entities), "endpoint", params.Endpoint)

	endpoint, err := sparql.New(ctx, params.Endpoint)
	if err != nil {
		return err
	}

	var (
		mu       sync.Mutex
		triples  []rdf.Triple
		progress = util.NewProgress("Fetching entities", len(entities))
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(fetchParallelism)
	for _, entity := range entities {
		group.Go(func() error {
			fetched, err := util.RetryWithContext(groupCtx, fetchRetries,
				func(ctx context.Context) ([]rdf.Triple, error) {
					return endpoint.TriplesFor(ctx, rdf.IRI(entity))
				})
			if err != nil {
				if groupCtx.Err() != nil {
					return groupCtx.Err()
				}
				logger.Warn("Skipping entity after repeated failures",
					"entity", entity, "error", err)
				return nil
			}
			mu.Lock()
			triples = append(triples, fetched...)
			progress.Tick()
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	if err := writeFile(params.OutFile, triples); err != nil {
		return err
	}
	logger.Info("Dump written", "file", params.OutFile, "triples", len(triples))

	if params.DatabaseURL != "" {
		if err := persist(ctx, params.DatabaseURL, triples); err != nil {
			return err
		}
	}
	if params.Upload {
		return upload(ctx, params.OutFile)
	}
	return nil
}

func persist(ctx context.Context, databaseURL string, triples []rdf.Triple) error {
	store, err := pgstore.New(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.AddTriples(ctx, triples); err != nil {
		return err
	}
	logger.Info("Dump persisted to database", "triples", len(triples))
	return nil
}

// collectEntities gathers the distinct entity identifiers of every sample
// file in the directory, sorted for a stable dump order.
func collectEntities(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("listing sample files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no sample files in %s", dir)
	}

	seen := make(map[string]struct{})
	for _, file := range files {
		sample, err := query.Load(file)
		if err != nil {
			return nil, err
		}
		for _, id := range sample.EntityIDs() {
			seen[id] = struct{}{}
		}
	}

	entities := make([]string, 0, len(seen))
	for id := range seen {
		entities = append(entities, id)
	}
	sort.Strings(entities)
	return entities, nil
}

func writeFile(path string, triples []rdf.Triple) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating dump file %s: %w", path, err)
	}
	defer file.Close()
	if err := rdf.WriteNQuads(file, triples); err != nil {
		return fmt.Errorf("writing dump file %s: %w", path, err)
	}
	return nil
}

func upload(ctx context.Context, path string) error {
	client := storage.NewS3Client(ctx)
	if client == nil {
		return fmt.Errorf("object storage is not configured")
	}
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening dump file %s: %w", path, err)
	}
	defer file.Close()

	key, err := storage.PutFile(ctx, client, filepath.Base(path), file)
	if err != nil {
		return err
	}
	logger.Info("Dump uploaded", "key", key)
	return nil
}
