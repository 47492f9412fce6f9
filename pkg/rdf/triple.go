package rdf

import "strings"

// Triple is a single RDF statement, optionally scoped to a named graph.
// Triples are immutable once read.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
	Graph     string
}

// String renders the triple as an N-Quads line (N-Triples when no graph is
// set), including the terminating dot.
func (t Triple) String() string {
	var b strings.Builder
	b.WriteString(t.Subject.String())
	b.WriteByte(' ')
	b.WriteString(t.Predicate.String())
	b.WriteByte(' ')
	b.WriteString(t.Object.String())
	if t.Graph != "" {
		b.WriteString(" <")
		b.WriteString(t.Graph)
		b.WriteByte('>')
	}
	b.WriteString(" .")
	return b.String()
}
