// Package graph provides access to RDF triple data behind a single
// interface, with interchangeable backends: an in-memory store fed from
// local dump files, a remote SPARQL endpoint, and a PostgreSQL store.
package graph

import (
	"context"
	"errors"

	"github.com/kgrank/kgrank/pkg/rdf"
)

// ErrUnavailable reports that the backing graph could not be reached or
// parsed. Scoring code must propagate it instead of treating the entity as
// having no triples; swallowing it would silently corrupt rankings.
var ErrUnavailable = errors.New("graph unavailable")

// Source supplies the triples an entity appears in. Implementations return
// all triples that have the entity as subject or as object.
type Source interface {
	// TriplesFor returns every triple with the given entity as subject or
	// object. An entity without triples yields an empty slice, not an error.
	TriplesFor(ctx context.Context, entity rdf.Term) ([]rdf.Triple, error)

	// Subjects returns the distinct subject entities known to the graph.
	Subjects(ctx context.Context) ([]rdf.Term, error)

	// Size returns the number of distinct subject entities. It feeds the
	// smoothing mass of the text retrieval model.
	Size(ctx context.Context) (int, error)
}
