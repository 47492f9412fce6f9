// Package pgstore implements graph.Source on PostgreSQL. It is meant for
// dumps too large to keep in memory: the dump utility and the server's load
// endpoint write triples in, and rankings read them back.
package pgstore

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kgrank/kgrank/pkg/graph"
	"github.com/kgrank/kgrank/pkg/logger"
	"github.com/kgrank/kgrank/pkg/rdf"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is a PostgreSQL-backed triple store.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to the database and runs pending schema migrations.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	if err := runMigrations(databaseURL); err != nil {
		return nil, fmt.Errorf("%w: migrating schema: %v", graph.ErrUnavailable, err)
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: connecting: %v", graph.ErrUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: pinging database: %v", graph.ErrUnavailable, err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

func runMigrations(databaseURL string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(databaseURL))
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// migrateURL rewrites a postgres:// URL to the pgx/v5 migrate driver scheme.
func migrateURL(databaseURL string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(databaseURL, prefix) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, prefix)
		}
	}
	return databaseURL
}

// AddTriples inserts triples in one batch, ignoring statements already
// present. Blank-node statements and filtered-language literals are skipped,
// matching the in-memory store.
func (s *Store) AddTriples(ctx context.Context, triples []rdf.Triple) error {
	batch := &pgx.Batch{}
	queued := 0
	for _, t := range triples {
		if t.Subject.IsBlank() || t.Object.IsBlank() {
			continue
		}
		if t.Object.IsLiteral() && !rdf.LanguageAllowed(t.Object.Lang, rdf.DefaultLanguages) {
			continue
		}
		batch.Queue(
			`INSERT INTO triples (subject, predicate, object_kind, object_value, object_lang, object_datatype, graph_name)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT DO NOTHING`,
			t.Subject.Value, t.Predicate.Value, int16(t.Object.Kind),
			t.Object.Value, t.Object.Lang, t.Object.Datatype, t.Graph,
		)
		queued++
	}
	if queued == 0 {
		return nil
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < queued; i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("%w: inserting triples: %v", graph.ErrUnavailable, err)
		}
	}
	logger.Debug("Inserted triples", "count", queued)
	return nil
}

// TriplesFor returns every triple with the entity as subject or object.
func (s *Store) TriplesFor(ctx context.Context, entity rdf.Term) ([]rdf.Triple, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT subject, predicate, object_kind, object_value, object_lang, object_datatype, graph_name
		 FROM triples
		 WHERE subject = $1 OR (object_kind = $2 AND object_value = $1)`,
		entity.Value, int16(rdf.KindIRI),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: querying triples of %s: %v", graph.ErrUnavailable, entity.Value, err)
	}
	defer rows.Close()

	var triples []rdf.Triple
	for rows.Next() {
		var (
			subject, predicate       string
			objectKind               int16
			objectValue, lang, dt, g string
		)
		if err := rows.Scan(&subject, &predicate, &objectKind, &objectValue, &lang, &dt, &g); err != nil {
			return nil, fmt.Errorf("%w: scanning triple: %v", graph.ErrUnavailable, err)
		}
		triples = append(triples, rdf.Triple{
			Subject:   rdf.IRI(subject),
			Predicate: rdf.IRI(predicate),
			Object: rdf.Term{
				Kind:     rdf.TermKind(objectKind),
				Value:    objectValue,
				Lang:     lang,
				Datatype: dt,
			},
			Graph: g,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading triples: %v", graph.ErrUnavailable, err)
	}
	return triples, nil
}

// Subjects returns the distinct subject entities in sorted order.
func (s *Store) Subjects(ctx context.Context) ([]rdf.Term, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT subject FROM triples ORDER BY subject`)
	if err != nil {
		return nil, fmt.Errorf("%w: listing subjects: %v", graph.ErrUnavailable, err)
	}
	defer rows.Close()

	var subjects []rdf.Term
	for rows.Next() {
		var subject string
		if err := rows.Scan(&subject); err != nil {
			return nil, fmt.Errorf("%w: scanning subject: %v", graph.ErrUnavailable, err)
		}
		subjects = append(subjects, rdf.IRI(subject))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading subjects: %v", graph.ErrUnavailable, err)
	}
	return subjects, nil
}

// Size returns the number of distinct subject entities.
func (s *Store) Size(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(DISTINCT subject) FROM triples`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: counting subjects: %v", graph.ErrUnavailable, err)
	}
	return count, nil
}
