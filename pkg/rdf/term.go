package rdf

import (
	"fmt"
	"strings"
)

// TermKind distinguishes the three kinds of RDF terms.
type TermKind int

const (
	KindIRI TermKind = iota
	KindBlank
	KindLiteral
)

// Term is an RDF term: an IRI, a blank node, or a literal. The zero value is
// an IRI with an empty value and means "no term". Terms are immutable value
// types and compare with ==.
type Term struct {
	Kind     TermKind
	Value    string // IRI string, blank node label, or literal lexical form
	Lang     string // language tag, literals only
	Datatype string // datatype IRI, literals only
}

// IRI creates an IRI term.
func IRI(value string) Term {
	return Term{Kind: KindIRI, Value: value}
}

// Blank creates a blank node term from its label (without the "_:" prefix).
func Blank(label string) Term {
	return Term{Kind: KindBlank, Value: label}
}

// Literal creates a plain literal term.
func Literal(value string) Term {
	return Term{Kind: KindLiteral, Value: value}
}

// LangLiteral creates a language-tagged literal term.
func LangLiteral(value, lang string) Term {
	return Term{Kind: KindLiteral, Value: value, Lang: lang}
}

// TypedLiteral creates a literal term with an explicit datatype IRI.
func TypedLiteral(value, datatype string) Term {
	return Term{Kind: KindLiteral, Value: value, Datatype: datatype}
}

func (t Term) IsIRI() bool     { return t.Kind == KindIRI }
func (t Term) IsBlank() bool   { return t.Kind == KindBlank }
func (t Term) IsLiteral() bool { return t.Kind == KindLiteral }

// IsZero reports whether the term is the zero value.
func (t Term) IsZero() bool {
	return t == Term{}
}

// String renders the term in N-Triples syntax.
func (t Term) String() string {
	switch t.Kind {
	case KindBlank:
		return "_:" + t.Value
	case KindLiteral:
		quoted := `"` + escapeLiteral(t.Value) + `"`
		if t.Lang != "" {
			return quoted + "@" + t.Lang
		}
		if t.Datatype != "" {
			return quoted + "^^<" + t.Datatype + ">"
		}
		return quoted
	default:
		return "<" + t.Value + ">"
	}
}

// LocalName extracts the last path or fragment segment of an IRI. It is used
// to derive text for entities that carry no label, e.g.
// "http://dbpedia.org/resource/Neil_Armstrong" yields "Neil_Armstrong".
func LocalName(iri string) string {
	if idx := strings.LastIndexByte(iri, '#'); idx >= 0 && idx < len(iri)-1 {
		return iri[idx+1:]
	}
	trimmed := strings.TrimRight(iri, "/")
	if idx := strings.LastIndexByte(trimmed, '/'); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}

func escapeLiteral(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04X`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}
