package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/kgrank/kgrank/internal/dump"
	"github.com/kgrank/kgrank/internal/shell"
	"github.com/kgrank/kgrank/internal/util"
	"github.com/kgrank/kgrank/pkg/eval"
	"github.com/kgrank/kgrank/pkg/graph"
	"github.com/kgrank/kgrank/pkg/graph/sparql"
	"github.com/kgrank/kgrank/pkg/logger"
	"github.com/kgrank/kgrank/pkg/logger/console"
	"github.com/kgrank/kgrank/pkg/query"
	"github.com/kgrank/kgrank/pkg/ranking"
	"github.com/kgrank/kgrank/pkg/rdf"
)

const usage = `Usage: kgrank <command> [flags]

Commands:
  rank    rank candidate entities against a topic and/or examples
  eval    evaluate the ranking models over a directory of samples
  dump    snapshot entity triples from a SPARQL endpoint into a local file
  shell   interactive exploration console

Run 'kgrank <command> -h' for command flags.`

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "rank":
		err = runRank(ctx, os.Args[2:])
	case "eval":
		err = runEval(ctx, os.Args[2:])
	case "dump":
		err = runDump(ctx, os.Args[2:])
	case "shell":
		err = runShell(ctx, os.Args[2:])
	case "-h", "--help", "help":
		fmt.Println(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n%s\n", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal("Command failed", "err", err)
	}
}

// modelFlags registers the ranking parameters shared by rank and eval.
func modelFlags(fs *flag.FlagSet, cfg *ranking.Config) {
	fs.Float64Var(&cfg.Mu, "mu", cfg.Mu, "Dirichlet smoothing mass (0 = entity count)")
	fs.Float64Var(&cfg.Alpha, "alpha", cfg.Alpha, "text weight when combining models")
	fs.BoolVar(&cfg.UseJaccard, "jaccard", cfg.UseJaccard, "normalize example overlap by union size")
	fs.StringVar(&cfg.Aggregation, "aggregation", cfg.Aggregation, "example aggregation: sum or max")
}

func runRank(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rank", flag.ExitOnError)
	cfg := ranking.DefaultConfig()
	modelFlags(fs, &cfg)
	data := fs.String("data", "", "triple dump file or directory")
	endpoint := fs.String("endpoint", "", "SPARQL endpoint URL to rank against instead of a local dump")
	sample := fs.String("sample", "", "sample file supplying topic, examples and candidates")
	topic := fs.String("topic", "", "relation topic text")
	examples := fs.String("examples", "", "comma-separated example entity IRIs")
	candidates := fs.String("candidates", "", "comma-separated candidate entity IRIs (default: all subjects)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (*data == "") == (*endpoint == "") {
		return fmt.Errorf("exactly one of -data or -endpoint is required")
	}

	var src graph.Source
	if *data != "" {
		store := graph.NewMemoryStore()
		if err := store.Load(*data); err != nil {
			return err
		}
		src = store
	} else {
		remote, err := sparql.New(ctx, *endpoint)
		if err != nil {
			return err
		}
		src = remote
	}

	rankTopic := *topic
	exampleTerms := splitTerms(*examples)
	candidateTerms := splitTerms(*candidates)
	if *sample != "" {
		loaded, err := query.Load(*sample)
		if err != nil {
			return err
		}
		q := loaded.Build(nil)
		if rankTopic == "" {
			rankTopic = q.Topic
		}
		if len(exampleTerms) == 0 {
			exampleTerms = q.Examples
		}
		if len(candidateTerms) == 0 {
			candidateTerms = q.Candidates
		}
	}
	if len(candidateTerms) == 0 {
		if *endpoint != "" {
			return fmt.Errorf("-endpoint needs explicit candidates (-candidates or -sample)")
		}
		subjects, err := src.Subjects(ctx)
		if err != nil {
			return err
		}
		candidateTerms = subjects
	}

	ranker := ranking.NewRanker(src, cfg)
	rankings, err := ranker.Rank(ctx, rankTopic, exampleTerms, candidateTerms)
	if err != nil {
		return err
	}
	return printJSON(rankings)
}

func runEval(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	cfg := ranking.DefaultConfig()
	modelFlags(fs, &cfg)
	data := fs.String("data", "", "directory with triple dumps and sample files (required)")
	seed := fs.Int64("seed", 0, "random seed for example selection (0 = nondeterministic)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *data == "" {
		return fmt.Errorf("-data is required")
	}

	params := eval.RunParams{DataDir: *data, Config: cfg}
	if *seed != 0 {
		params.Rand = rand.New(rand.NewSource(*seed))
	}
	report, err := eval.Run(ctx, params)
	if err != nil {
		return err
	}
	return printJSON(report)
}

func runDump(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	endpoint := fs.String("endpoint", "https://dbpedia.org/sparql", "SPARQL endpoint URL")
	samples := fs.String("samples", "", "directory with sample files (required)")
	out := fs.String("out", "dump.nq", "output N-Quads file")
	upload := fs.Bool("upload", false, "upload the dump to object storage")
	db := fs.String("db", "", "PostgreSQL URL to also persist the dump to")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *samples == "" {
		return fmt.Errorf("-samples is required")
	}

	return dump.Run(ctx, dump.Params{
		Endpoint:    *endpoint,
		SampleDir:   *samples,
		OutFile:     *out,
		Upload:      *upload,
		DatabaseURL: *db,
	})
}

func runShell(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("shell", flag.ExitOnError)
	cfg := ranking.DefaultConfig()
	modelFlags(fs, &cfg)
	data := fs.String("data", "", "triple dump file or directory to preload")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sh := shell.New(cfg)
	if *data != "" {
		if err := sh.Preload(*data); err != nil {
			return err
		}
	}
	return sh.Run(ctx, os.Stdin, os.Stdout)
}

func splitTerms(list string) []rdf.Term {
	if list == "" {
		return nil
	}
	var terms []rdf.Term
	for _, id := range strings.Split(list, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			terms = append(terms, rdf.IRI(id))
		}
	}
	return terms
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
