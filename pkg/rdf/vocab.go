package rdf

// Well-known vocabulary IRIs.
const (
	RDFType   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	RDFSLabel = "http://www.w3.org/2000/01/rdf-schema#label"

	// DBpedia-style category membership predicates, treated as type
	// predicates alongside rdf:type.
	SKOSSubject = "http://www.w3.org/2004/02/skos/core#subject"
	DCSubject   = "http://purl.org/dc/elements/1.1/subject"
)

// IsTypePredicate reports whether the predicate IRI assigns a type or
// category to its subject.
func IsTypePredicate(iri string) bool {
	switch iri {
	case RDFType, SKOSSubject, DCSubject:
		return true
	}
	return false
}
