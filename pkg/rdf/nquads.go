package rdf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ParseNQuads reads line-oriented N-Triples / N-Quads data. Blank lines and
// comment lines starting with '#' are skipped. Parse errors carry the line
// number of the offending statement.
func ParseNQuads(r io.Reader) ([]Triple, error) {
	var triples []Triple

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		triple, err := parseStatement(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		triples = append(triples, triple)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading triples: %w", err)
	}

	return triples, nil
}

// WriteNQuads serializes triples as N-Quads, one statement per line.
func WriteNQuads(w io.Writer, triples []Triple) error {
	bw := bufio.NewWriter(w)
	for _, t := range triples {
		if _, err := bw.WriteString(t.String()); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func parseStatement(line string) (Triple, error) {
	p := &statementParser{input: line}

	subject, err := p.term()
	if err != nil {
		return Triple{}, fmt.Errorf("subject: %w", err)
	}
	if subject.IsLiteral() {
		return Triple{}, fmt.Errorf("subject must not be a literal")
	}

	predicate, err := p.term()
	if err != nil {
		return Triple{}, fmt.Errorf("predicate: %w", err)
	}
	if !predicate.IsIRI() {
		return Triple{}, fmt.Errorf("predicate must be an IRI")
	}

	object, err := p.term()
	if err != nil {
		return Triple{}, fmt.Errorf("object: %w", err)
	}

	graph := ""
	p.skipSpace()
	if p.peek() == '<' || p.peek() == '_' {
		graphTerm, err := p.term()
		if err != nil {
			return Triple{}, fmt.Errorf("graph label: %w", err)
		}
		graph = graphTerm.Value
	}

	p.skipSpace()
	if p.peek() != '.' {
		return Triple{}, fmt.Errorf("missing terminating dot")
	}
	p.pos++
	p.skipSpace()
	if p.pos != len(p.input) {
		return Triple{}, fmt.Errorf("trailing data after dot")
	}

	return Triple{Subject: subject, Predicate: predicate, Object: object, Graph: graph}, nil
}

type statementParser struct {
	input string
	pos   int
}

func (p *statementParser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *statementParser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *statementParser) term() (Term, error) {
	p.skipSpace()
	switch p.peek() {
	case '<':
		return p.iri()
	case '_':
		return p.blank()
	case '"':
		return p.literal()
	case 0:
		return Term{}, fmt.Errorf("unexpected end of statement")
	default:
		return Term{}, fmt.Errorf("unexpected character %q", p.input[p.pos])
	}
}

func (p *statementParser) iri() (Term, error) {
	end := strings.IndexByte(p.input[p.pos:], '>')
	if end < 0 {
		return Term{}, fmt.Errorf("unterminated IRI")
	}
	value := p.input[p.pos+1 : p.pos+end]
	p.pos += end + 1
	return IRI(value), nil
}

func (p *statementParser) blank() (Term, error) {
	if !strings.HasPrefix(p.input[p.pos:], "_:") {
		return Term{}, fmt.Errorf("malformed blank node")
	}
	start := p.pos + 2
	end := start
	for end < len(p.input) && p.input[end] != ' ' && p.input[end] != '\t' {
		end++
	}
	if end == start {
		return Term{}, fmt.Errorf("blank node without label")
	}
	label := p.input[start:end]
	p.pos = end
	return Blank(label), nil
}

func (p *statementParser) literal() (Term, error) {
	value, err := p.quotedString()
	if err != nil {
		return Term{}, err
	}

	// optional language tag or datatype
	if strings.HasPrefix(p.input[p.pos:], "@") {
		start := p.pos + 1
		end := start
		for end < len(p.input) && p.input[end] != ' ' && p.input[end] != '\t' {
			end++
		}
		if end == start {
			return Term{}, fmt.Errorf("empty language tag")
		}
		lang := p.input[start:end]
		p.pos = end
		return LangLiteral(value, lang), nil
	}
	if strings.HasPrefix(p.input[p.pos:], "^^") {
		p.pos += 2
		if p.peek() != '<' {
			return Term{}, fmt.Errorf("datatype must be an IRI")
		}
		dt, err := p.iri()
		if err != nil {
			return Term{}, err
		}
		return TypedLiteral(value, dt.Value), nil
	}
	return Literal(value), nil
}

func (p *statementParser) quotedString() (string, error) {
	// caller guarantees p.input[p.pos] == '"'
	p.pos++
	var b strings.Builder
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch c {
		case '"':
			p.pos++
			return b.String(), nil
		case '\\':
			if p.pos+1 >= len(p.input) {
				return "", fmt.Errorf("dangling escape")
			}
			esc := p.input[p.pos+1]
			p.pos += 2
			switch esc {
			case 't':
				b.WriteByte('\t')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case '"':
				b.WriteByte('"')
			case '\'':
				b.WriteByte('\'')
			case '\\':
				b.WriteByte('\\')
			case 'u', 'U':
				width := 4
				if esc == 'U' {
					width = 8
				}
				if p.pos+width > len(p.input) {
					return "", fmt.Errorf("truncated \\%c escape", esc)
				}
				code, err := strconv.ParseUint(p.input[p.pos:p.pos+width], 16, 32)
				if err != nil {
					return "", fmt.Errorf("invalid \\%c escape: %w", esc, err)
				}
				if !utf8.ValidRune(rune(code)) {
					return "", fmt.Errorf("invalid code point in \\%c escape", esc)
				}
				b.WriteRune(rune(code))
				p.pos += width
			default:
				return "", fmt.Errorf("unknown escape \\%c", esc)
			}
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", fmt.Errorf("unterminated literal")
}
