package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/mahdiidarabi/hb-lpn/internal/parser"
	"github.com/mahdiidarabi/hb-lpn/internal/report"
	"github.com/mahdiidarabi/hb-lpn/pkg/hblpn"
)

// errUnrecovered marks a run where at least one scenario found no candidate.
var errUnrecovered = errors.New("secret not recovered")

type options struct {
	mode      string
	dim       int
	errorRate float64
	secret    string
	scenario  string
	seed      uint64
	key       string
	workers   int
	samples   int
	tries     int
	tolerance float64
	heatmap   string
	verbose   bool
}

func main() {
	var opts options
	flag.StringVar(&opts.mode, "mode", "brute", "Attack to run: brute (exhaustive hypothesis testing) or tree (decision tree)")
	flag.IntVar(&opts.dim, "dim", 0, "Secret length when no secret is given (default 5 for brute, 12 for tree)")
	flag.Float64Var(&opts.errorRate, "error-rate", 0.125, "Bernoulli noise probability, in (0, 0.5)")
	flag.StringVar(&opts.secret, "secret", "", "Secret bits, e.g. 10110 (random when empty)")
	flag.StringVar(&opts.scenario, "scenario", "", "Path to scenario file (JSON or CSV); overrides -secret and -error-rate")
	flag.Uint64Var(&opts.seed, "seed", 1, "Seed for secret generation and the oracle")
	flag.StringVar(&opts.key, "key", "", "Drive the oracle from a BLAKE2b keyed PRNG with this key instead of -seed")
	flag.IntVar(&opts.workers, "workers", 1, "Parallel workers for brute force (0 = auto-detect based on CPU cores)")
	flag.IntVar(&opts.samples, "samples", 100000, "Samples per decision tree trial")
	flag.IntVar(&opts.tries, "tries", 1, "Decision tree trials")
	flag.Float64Var(&opts.tolerance, "tolerance", 0.02, "Acceptance tolerance added to the error rate")
	flag.StringVar(&opts.heatmap, "heatmap", "", "Directory for confusion matrix heatmaps (tree mode)")
	flag.BoolVar(&opts.verbose, "verbose", false, "Enable structured debug logging")
	flag.Parse()

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		if errors.Is(err, errUnrecovered) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	if opts.mode != "brute" && opts.mode != "tree" {
		return fmt.Errorf("unknown mode %q (want brute or tree)", opts.mode)
	}

	logger := zap.NewNop()
	if opts.verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		logger = l
	}
	defer func() { _ = logger.Sync() }()

	scenarios, err := loadScenarios(opts)
	if err != nil {
		return err
	}
	if opts.heatmap != "" {
		if err := os.MkdirAll(opts.heatmap, 0o755); err != nil {
			return err
		}
	}

	console := report.NewConsole(out)
	failed := false
	for i, sc := range scenarios {
		secret, err := hblpn.NewBitVector(sc.Secret...)
		if err != nil {
			return fmt.Errorf("scenario %d: %w", i+1, err)
		}
		src, err := oracleSource(opts.key, sc.Seed)
		if err != nil {
			return err
		}
		oracle, err := hblpn.NewOracle(secret, sc.ErrorRate, src)
		if err != nil {
			return fmt.Errorf("scenario %d: %w", i+1, err)
		}

		var strategy hblpn.SearchStrategy
		switch opts.mode {
		case "brute":
			strategy = hblpn.NewExhaustiveSearch().
				WithConfig(hblpn.SearchConfig{NumWorkers: opts.workers, MaxDimension: hblpn.DefaultSearchConfig().MaxDimension}).
				WithReporter(console).
				WithLogger(logger)
			fmt.Fprintf(out, "Brute Force on HB Protocol\n")
		case "tree":
			if opts.heatmap != "" {
				dir := opts.heatmap
				if len(scenarios) > 1 {
					dir = filepath.Join(dir, fmt.Sprintf("scenario_%d", i+1))
					if err := os.MkdirAll(dir, 0o755); err != nil {
						return err
					}
				}
				console.WithHeatmapDir(dir)
			}
			strategy = hblpn.NewClassifierAttack().
				WithConfig(hblpn.ClassifierConfig{
					Samples:      opts.samples,
					Tries:        opts.tries,
					Tolerance:    opts.tolerance,
					TestFraction: 0.20,
					Seed:         sc.Seed,
				}).
				WithReporter(console).
				WithLogger(logger)
			fmt.Fprintf(out, "Decision Tree Classifier on HB Protocol\n")
		}

		fmt.Fprintf(out, "    Error Rate = %v\n", sc.ErrorRate)
		fmt.Fprintf(out, "    Key Length = %d\n", len(secret))
		fmt.Fprintf(out, "    Secret Key = %s\n\n", secret)

		client := hblpn.NewClient().WithStrategy(strategy).WithLogger(logger)
		result, err := client.RecoverSecret(ctx, oracle)
		if err != nil {
			return err
		}
		if err := result.Err(); err != nil {
			fmt.Fprintln(out, "Try running again or increase samples.")
			failed = true
		} else if hblpn.VerifyCandidate(oracle, result.Candidate) {
			fmt.Fprintln(out, "    ✓ Matches the secret!")
		} else {
			fmt.Fprintln(out, "    ✗ Accepted candidate differs from the secret")
		}
		fmt.Fprintln(out)
	}

	if err := console.Err(); err != nil {
		return fmt.Errorf("writing heatmaps: %w", err)
	}
	if failed {
		return errUnrecovered
	}
	return nil
}

// oracleSource prefers the keyed PRNG when a key is given.
func oracleSource(key string, seed uint64) (rand.Source, error) {
	if key == "" {
		return hblpn.NewSeededSource(seed), nil
	}
	src, err := hblpn.NewKeyedSource([]byte(key))
	if err != nil {
		return nil, err
	}
	return src, nil
}

func loadScenarios(opts options) ([]*parser.Scenario, error) {
	if opts.scenario != "" {
		var (
			scenarios []*parser.Scenario
			err       error
		)
		if strings.HasSuffix(strings.ToLower(opts.scenario), ".csv") {
			scenarios, err = parser.ParseScenariosFromCSV(opts.scenario)
		} else {
			scenarios, err = parser.ParseScenariosFromJSON(opts.scenario)
		}
		if err != nil {
			return nil, err
		}
		for _, sc := range scenarios {
			if !sc.HasSeed {
				sc.Seed = opts.seed
			}
		}
		return scenarios, nil
	}

	if opts.secret != "" {
		bits, err := parser.ParseBits(opts.secret)
		if err != nil {
			return nil, fmt.Errorf("parsing -secret: %w", err)
		}
		return []*parser.Scenario{{Secret: bits, ErrorRate: opts.errorRate, Seed: opts.seed}}, nil
	}

	dim := opts.dim
	if dim == 0 {
		dim = 5
		if opts.mode == "tree" {
			dim = 12
		}
	}
	if dim < 1 {
		return nil, fmt.Errorf("-dim must be positive, got %d", dim)
	}
	rng := rand.New(hblpn.NewSeededSource(opts.seed ^ 0x5eed))
	secret := hblpn.RandomBitVector(rng, dim)
	return []*parser.Scenario{{Secret: secret, ErrorRate: opts.errorRate, Seed: opts.seed}}, nil
}
