// Package shell is an interactive console for exploring rankings: load
// triple dumps, pick a sample, rank against a topic and inspect where the
// relevant entities land.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/kgrank/kgrank/pkg/graph"
	"github.com/kgrank/kgrank/pkg/query"
	"github.com/kgrank/kgrank/pkg/ranking"
	"github.com/kgrank/kgrank/pkg/rdf"
)

// resourcePrefix expands bare entity names typed at the prompt, so
// "Berlin" addresses the DBpedia resource without typing the full IRI.
const resourcePrefix = "http://dbpedia.org/resource/"

const helpText = `Commands:
  load <path>        load a triple dump (.nq/.nt file or directory)
  sample <path>      load a sample file and split it into examples/candidates
  rank [topic ...]   rank the current candidates; topic defaults to the sample's
  query [topic ...]  alias for rank
  show <entity>      print the stored triples of an entity
  status             show store and session state
  help               this text
  exit               leave the shell`

// Shell holds one interactive session.
type Shell struct {
	store  *graph.MemoryStore
	ranker *ranking.Ranker

	current  *query.Query
	relevant map[string]struct{}
}

// New creates a shell with an empty in-memory store.
func New(cfg ranking.Config) *Shell {
	store := graph.NewMemoryStore()
	return &Shell{
		store:  store,
		ranker: ranking.NewRanker(store, cfg),
	}
}

// Preload fills the store before the prompt appears.
func (s *Shell) Preload(path string) error {
	if err := s.store.Load(path); err != nil {
		return err
	}
	s.ranker.Invalidate()
	return nil
}

// Run reads commands line by line until exit or EOF.
func (s *Shell) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Entity ranking shell. Type 'help' for commands.")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		command, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		var err error
		switch command {
		case "help":
			fmt.Fprintln(out, helpText)
		case "load":
			err = s.load(out, rest)
		case "sample":
			err = s.sample(out, rest)
		case "rank", "query":
			err = s.rank(ctx, out, rest)
		case "show":
			err = s.show(ctx, out, rest)
		case "status":
			s.status(out)
		case "exit", "quit":
			return nil
		default:
			fmt.Fprintf(out, "unknown command %q, type 'help'\n", command)
		}
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

func (s *Shell) load(out io.Writer, path string) error {
	if path == "" {
		return fmt.Errorf("usage: load <path>")
	}
	before := s.store.TripleCount()
	if err := s.store.Load(path); err != nil {
		return err
	}
	s.ranker.Invalidate()
	fmt.Fprintf(out, "loaded %d triples (%d total, %d entities)\n",
		s.store.TripleCount()-before, s.store.TripleCount(), s.store.SubjectCount())
	return nil
}

func (s *Shell) sample(out io.Writer, path string) error {
	if path == "" {
		return fmt.Errorf("usage: sample <path>")
	}
	sample, err := query.Load(path)
	if err != nil {
		return err
	}
	q := sample.Build(nil)
	s.current = q
	s.relevant = make(map[string]struct{}, len(q.Relevant))
	for _, id := range q.Relevant {
		s.relevant[id] = struct{}{}
	}
	fmt.Fprintf(out, "topic: %s\n", q.Topic)
	fmt.Fprintf(out, "examples (%d):\n", len(q.Examples))
	for _, e := range q.Examples {
		fmt.Fprintf(out, "  %s\n", e.Value)
	}
	fmt.Fprintf(out, "candidates: %d (%d relevant)\n", len(q.Candidates), len(q.Relevant))
	return nil
}

func (s *Shell) rank(ctx context.Context, out io.Writer, topic string) error {
	if s.current == nil {
		return fmt.Errorf("no sample loaded, use 'sample <path>' first")
	}
	if topic == "" {
		topic = s.current.Topic
	}
	rankings, err := s.ranker.Rank(ctx, topic, s.current.Examples, s.current.Candidates)
	if err != nil {
		return err
	}
	s.printResult(out, "text", rankings.Text)
	s.printResult(out, "examples", rankings.Examples)
	s.printResult(out, "combined", rankings.Combined)
	return nil
}

// printResult lists a ranking top to bottom, marking each entity OK or NO
// against the sample's ground truth.
func (s *Shell) printResult(out io.Writer, name string, result *ranking.Result) {
	if result == nil {
		return
	}
	fmt.Fprintf(out, "--- %s ---\n", name)
	for i, score := range result.Scores {
		marker := "NO"
		if _, ok := s.relevant[score.Entity]; ok {
			marker = "OK"
		}
		fmt.Fprintf(out, "%3d. [%s] %12.6f  %s\n", i+1, marker, score.Score, score.Entity)
	}
}

func (s *Shell) show(ctx context.Context, out io.Writer, name string) error {
	if name == "" {
		return fmt.Errorf("usage: show <entity>")
	}
	if !strings.Contains(name, "://") {
		name = resourcePrefix + name
	}
	triples, err := s.store.TriplesFor(ctx, rdf.IRI(name))
	if err != nil {
		return err
	}
	if len(triples) == 0 {
		fmt.Fprintf(out, "no triples for %s\n", name)
		return nil
	}
	for _, t := range triples {
		fmt.Fprintln(out, t.String())
	}
	fmt.Fprintf(out, "(%d triples)\n", len(triples))
	return nil
}

func (s *Shell) status(out io.Writer) {
	fmt.Fprintf(out, "triples: %d, entities: %d\n",
		s.store.TripleCount(), s.store.SubjectCount())
	if s.current == nil {
		fmt.Fprintln(out, "no sample loaded")
		return
	}
	fmt.Fprintf(out, "topic: %s (%d examples, %d candidates)\n",
		s.current.Topic, len(s.current.Examples), len(s.current.Candidates))
}
