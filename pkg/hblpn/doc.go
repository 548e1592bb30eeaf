// Package hblpn models the HB authentication protocol as a Learning Parity
// with Noise (LPN) oracle and implements key-recovery attacks against it.
//
// An Oracle holds a secret s in {0,1}^dim and answers Sample(n) with a batch
// (A, b) where b = A·s + e mod 2 and e is Bernoulli(errorRate) noise. For the
// true secret the residual A·s + b has expected weight n·errorRate; for any
// other candidate it approaches n/2. Every decision rule in this package
// measures that gap with the Hamming weight.
//
// # Quick Start
//
//	secret := hblpn.MustBitVector(1, 0, 1, 1, 0)
//	oracle, err := hblpn.NewOracle(secret, 0.125, hblpn.NewSeededSource(42))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := hblpn.NewClient().RecoverSecret(ctx, oracle)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if result.Found {
//	    fmt.Println("recovered", result.Candidate)
//	}
//
// # Strategies
//
// ExhaustiveSearch enumerates all 2^dim candidates in binary counting order
// and applies HypothesisTest to each. It is exponential and only practical for
// small dimensions; set SearchConfig.NumWorkers to spread it over goroutines.
//
// ClassifierAttack fits a Classifier on oracle samples, reads a candidate off
// its predictions on the standard basis and judges it with Accept. Any
// implementation of Classifier can be substituted:
//
//	attack := hblpn.NewClassifierAttack().
//	    WithClassifier(myClassifier).
//	    WithConfig(hblpn.ClassifierConfig{
//	        Samples:      100000,
//	        Tries:        1,
//	        Tolerance:    0.02,
//	        TestFraction: 0.2,
//	        Seed:         1,
//	    })
//
//	client := hblpn.NewClient().WithStrategy(attack)
//
// Exhaustion is not an error: strategies return a SearchResult whose Found
// field is false. Neither strategy retries on its own; use
// Client.RecoverSecretWithRetries or your own loop.
package hblpn
