// Package sparql implements graph.Source against a remote SPARQL endpoint
// using the SPARQL 1.1 JSON results format.
package sparql

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kgrank/kgrank/pkg/graph"
	"github.com/kgrank/kgrank/pkg/logger"
	"github.com/kgrank/kgrank/pkg/rdf"
)

// Remote endpoints do not expose a cheap entity count, and a COUNT over a
// public endpoint like DBpedia routinely times out. Size reports this fixed
// pseudo-count instead; it only feeds the smoothing mass, which callers can
// override in configuration.
const remotePseudoCount = 13370

// Endpoint queries a remote SPARQL endpoint.
type Endpoint struct {
	url    string
	client *http.Client
}

// New creates an endpoint client and probes it with a trivial query so
// misconfigured URLs fail early instead of mid-ranking.
func New(ctx context.Context, endpointURL string) (*Endpoint, error) {
	e := &Endpoint{
		url: endpointURL,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}

	if _, err := e.query(ctx, "SELECT ?s WHERE { ?s ?p ?o } LIMIT 1"); err != nil {
		return nil, fmt.Errorf("%w: probing endpoint %s: %v", graph.ErrUnavailable, endpointURL, err)
	}
	logger.Info("Using remote SPARQL endpoint", "url", endpointURL)
	return e, nil
}

// TriplesFor fetches outgoing and incoming triples of the entity with two
// SELECT queries.
func (e *Endpoint) TriplesFor(ctx context.Context, entity rdf.Term) ([]rdf.Triple, error) {
	if !entity.IsIRI() {
		return nil, fmt.Errorf("entity must be an IRI, got %s", entity)
	}

	var triples []rdf.Triple

	out, err := e.query(ctx, fmt.Sprintf("SELECT ?p ?o WHERE { <%s> ?p ?o }", entity.Value))
	if err != nil {
		return nil, fmt.Errorf("%w: outgoing triples of %s: %v", graph.ErrUnavailable, entity.Value, err)
	}
	for _, binding := range out {
		p, okP := binding.term("p")
		o, okO := binding.term("o")
		if !okP || !okO || o.IsBlank() {
			continue
		}
		if o.IsLiteral() && !rdf.LanguageAllowed(o.Lang, rdf.DefaultLanguages) {
			continue
		}
		triples = append(triples, rdf.Triple{Subject: entity, Predicate: p, Object: o})
	}

	in, err := e.query(ctx, fmt.Sprintf("SELECT ?s ?p WHERE { ?s ?p <%s> }", entity.Value))
	if err != nil {
		return nil, fmt.Errorf("%w: incoming triples of %s: %v", graph.ErrUnavailable, entity.Value, err)
	}
	for _, binding := range in {
		s, okS := binding.term("s")
		p, okP := binding.term("p")
		if !okS || !okP || s.IsBlank() {
			continue
		}
		triples = append(triples, rdf.Triple{Subject: s, Predicate: p, Object: entity})
	}

	return triples, nil
}

// Subjects lists distinct subjects. Public endpoints cap result sizes, so
// this is only meaningful against scoped private endpoints.
func (e *Endpoint) Subjects(ctx context.Context) ([]rdf.Term, error) {
	bindings, err := e.query(ctx, "SELECT DISTINCT ?s WHERE { ?s ?p ?o }")
	if err != nil {
		return nil, fmt.Errorf("%w: listing subjects: %v", graph.ErrUnavailable, err)
	}
	subjects := make([]rdf.Term, 0, len(bindings))
	for _, binding := range bindings {
		s, ok := binding.term("s")
		if !ok || !s.IsIRI() {
			continue
		}
		subjects = append(subjects, s)
	}
	return subjects, nil
}

// Size returns a fixed pseudo-count, see remotePseudoCount.
func (e *Endpoint) Size(_ context.Context) (int, error) {
	return remotePseudoCount, nil
}

type sparqlValue struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Lang     string `json:"xml:lang"`
	Datatype string `json:"datatype"`
}

type sparqlBinding map[string]sparqlValue

func (b sparqlBinding) term(name string) (rdf.Term, bool) {
	v, ok := b[name]
	if !ok {
		return rdf.Term{}, false
	}
	switch v.Type {
	case "uri":
		return rdf.IRI(v.Value), true
	case "bnode":
		return rdf.Blank(v.Value), true
	case "literal", "typed-literal":
		switch {
		case v.Lang != "":
			return rdf.LangLiteral(v.Value, v.Lang), true
		case v.Datatype != "":
			return rdf.TypedLiteral(v.Value, v.Datatype), true
		default:
			return rdf.Literal(v.Value), true
		}
	}
	return rdf.Term{}, false
}

func (e *Endpoint) query(ctx context.Context, q string) ([]sparqlBinding, error) {
	params := url.Values{}
	params.Set("query", q)
	params.Set("format", "application/sparql-results+json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.url+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/sparql-results+json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Results struct {
			Bindings []sparqlBinding `json:"bindings"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding results: %w", err)
	}
	return parsed.Results.Bindings, nil
}
