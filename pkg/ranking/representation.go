package ranking

import (
	"context"
	"fmt"

	"github.com/kgrank/kgrank/pkg/graph"
	"github.com/kgrank/kgrank/pkg/logger"
	"github.com/kgrank/kgrank/pkg/rdf"
)

// Field names the three textual surrogates derived from an entity's triples.
type Field string

const (
	FieldAttributes Field = "attributes"
	FieldTypes      Field = "types"
	FieldLinks      Field = "links"
)

// Fields lists the surrogate fields in a fixed order.
var Fields = []Field{FieldAttributes, FieldTypes, FieldLinks}

// Direction tells whether a structural tuple came from a triple with the
// entity as subject (outlink) or as object (inlink).
type Direction int

const (
	Outlink Direction = iota
	Inlink
)

// StructuralTuple is an anonymized triple pattern used for example-based
// overlap matching. The entity's own endpoint is always empty (its place is
// carried by Dir); the other endpoint holds the IRI when it is a URI and is
// empty when it was a literal. Literal endpoints are anonymized because
// literals almost never recur verbatim across entities; keeping them would
// silently eliminate overlap. An empty endpoint acts as a wildcard during
// matching.
type StructuralTuple struct {
	Subject   string
	Predicate string
	Object    string
	Dir       Direction
}

// Representation is the per-entity view the scorers work on: three
// term-frequency fields for the text model plus the structural tuple set for
// the example model. It is built fresh when needed and never mutated after
// construction.
type Representation struct {
	Entity     rdf.Term
	Attributes map[string]int
	Types      map[string]int
	Links      map[string]int
	Structural map[StructuralTuple]struct{}

	lengths map[Field]int
}

// BuildRepresentation fetches the entity's triples from the graph and builds
// its representation. An entity with zero triples yields an all-empty
// representation; backend failures propagate.
func BuildRepresentation(ctx context.Context, src graph.Source, entity rdf.Term) (*Representation, error) {
	triples, err := src.TriplesFor(ctx, entity)
	if err != nil {
		return nil, fmt.Errorf("building representation of %s: %w", entity.Value, err)
	}

	r := &Representation{
		Entity:     entity,
		Attributes: make(map[string]int),
		Types:      make(map[string]int),
		Links:      make(map[string]int),
		Structural: make(map[StructuralTuple]struct{}),
	}

	for _, t := range triples {
		predicate := t.Predicate.Value

		if t.Subject == entity {
			switch {
			case t.Object.IsLiteral():
				addTerms(r.Attributes, rdf.Tokenize(t.Object.Value))
				r.Structural[StructuralTuple{Predicate: predicate, Dir: Outlink}] = struct{}{}
			case t.Object.IsIRI():
				terms := rdf.Tokenize(rdf.LocalName(t.Object.Value))
				if rdf.IsTypePredicate(predicate) {
					addTerms(r.Types, terms)
				} else {
					addTerms(r.Links, terms)
				}
				r.Structural[StructuralTuple{Predicate: predicate, Object: t.Object.Value, Dir: Outlink}] = struct{}{}
			}
		}

		if t.Object == entity && t.Subject.IsIRI() && t.Subject != entity {
			if !rdf.IsTypePredicate(predicate) {
				addTerms(r.Links, rdf.Tokenize(rdf.LocalName(t.Subject.Value)))
			}
			r.Structural[StructuralTuple{Subject: t.Subject.Value, Predicate: predicate, Dir: Inlink}] = struct{}{}
		}
	}

	r.lengths = map[Field]int{
		FieldAttributes: sumCounts(r.Attributes),
		FieldTypes:      sumCounts(r.Types),
		FieldLinks:      sumCounts(r.Links),
	}

	logger.Debug("Built representation",
		"entity", entity.Value,
		"attributes", r.lengths[FieldAttributes],
		"types", r.lengths[FieldTypes],
		"links", r.lengths[FieldLinks],
		"structural", len(r.Structural))
	return r, nil
}

// FieldTerms returns the term-frequency table of one field.
func (r *Representation) FieldTerms(f Field) map[string]int {
	switch f {
	case FieldAttributes:
		return r.Attributes
	case FieldTypes:
		return r.Types
	default:
		return r.Links
	}
}

// FieldLength returns the total term count of one field.
func (r *Representation) FieldLength(f Field) int {
	if r.lengths == nil {
		return sumCounts(r.FieldTerms(f))
	}
	return r.lengths[f]
}

func addTerms(counts map[string]int, terms []string) {
	for _, term := range terms {
		counts[term]++
	}
}

func sumCounts(counts map[string]int) int {
	total := 0
	for _, c := range counts {
		total += c
	}
	return total
}
