package rdf

import (
	"reflect"
	"testing"
)

func TestLocalName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		iri  string
		want string
	}{
		{
			name: "path_segment",
			iri:  "http://dbpedia.org/resource/Neil_Armstrong",
			want: "Neil_Armstrong",
		},
		{
			name: "fragment",
			iri:  "http://www.w3.org/2004/02/skos/core#subject",
			want: "subject",
		},
		{
			name: "trailing_slash",
			iri:  "http://dbpedia.org/resource/Apollo_11/",
			want: "Apollo_11",
		},
		{
			name: "no_separator",
			iri:  "plain",
			want: "plain",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := LocalName(tc.iri)
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTermString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		term Term
		want string
	}{
		{name: "iri", term: IRI("http://x/a"), want: "<http://x/a>"},
		{name: "blank", term: Blank("b0"), want: "_:b0"},
		{name: "plain_literal", term: Literal("hi"), want: `"hi"`},
		{name: "lang_literal", term: LangLiteral("hi", "en"), want: `"hi"@en`},
		{name: "typed_literal", term: TypedLiteral("1", "http://x/int"), want: `"1"^^<http://x/int>`},
		{name: "escaped_literal", term: Literal("a\"b\nc"), want: `"a\"b\nc"`},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := tc.term.String()
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "lowercases_and_splits",
			text: "Astronauts who walked on the Moon",
			want: []string{"astronauts", "who", "walked", "on", "the", "moon"},
		},
		{
			name: "punctuation_boundaries",
			text: "Neil_Armstrong (born 1930)",
			want: []string{"neil", "armstrong", "born", "1930"},
		},
		{
			name: "empty",
			text: "  \t ",
			want: []string{},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := Tokenize(tc.text)
			if len(got) == 0 && len(tc.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestLanguageAllowed(t *testing.T) {
	t.Parallel()

	allowed := []string{"en", "pl"}

	tests := []struct {
		name string
		lang string
		want bool
	}{
		{name: "untagged_always_passes", lang: "", want: true},
		{name: "listed_language", lang: "en", want: true},
		{name: "case_insensitive", lang: "EN", want: true},
		{name: "unlisted_language", lang: "de", want: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := LanguageAllowed(tc.lang, allowed)
			if got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}
