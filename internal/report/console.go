// Package report renders search progress and classifier trials for humans.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/multierr"

	"github.com/mahdiidarabi/hb-lpn/pkg/hblpn"
)

// Console prints one row per evaluated candidate, a classification report per
// classifier trial and a summary at the end. It is safe for concurrent use.
type Console struct {
	w io.Writer

	// HeatmapDir, when set, receives confusion_trial_<n>.html for every trial.
	HeatmapDir string

	mu      sync.Mutex
	headed  bool
	errs    error
	written []string
}

// NewConsole writes to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// WithHeatmapDir enables heatmap output.
func (c *Console) WithHeatmapDir(dir string) *Console {
	c.HeatmapDir = dir
	return c
}

// CandidateEvaluated implements hblpn.Reporter.
func (c *Console) CandidateEvaluated(candidate hblpn.BitVector, passed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.headed {
		fmt.Fprintf(c.w, "%-24s %s\n", "Candidate Key", "Test Result")
		c.headed = true
	}
	status := "✗ Failed"
	if passed {
		status = "✓ Passed"
	}
	fmt.Fprintf(c.w, "%-24s %s\n", candidate, status)
}

// Finished implements hblpn.Reporter.
func (c *Console) Finished(result *hblpn.SearchResult, secret hblpn.BitVector) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if result.Found {
		fmt.Fprintf(c.w, "Found key:     %s\n", result.Candidate)
	} else {
		fmt.Fprintf(c.w, "Could not find a suitable candidate after %d evaluations.\n", result.Visited)
	}
	fmt.Fprintf(c.w, "Actual secret: %s\n", secret)
}

// TrialCompleted implements hblpn.ClassifierReporter.
func (c *Console) TrialCompleted(trial *hblpn.ClassifierTrial) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.w, "\nTrial %d classification report\n%s", trial.Trial, trial.Report)
	fmt.Fprintf(c.w, "candidate %s  weight %d  threshold %.2f  accepted %v\n",
		trial.Candidate, trial.Weight, trial.Threshold, trial.Accepted)

	if c.HeatmapDir == "" {
		return
	}
	path := filepath.Join(c.HeatmapDir, fmt.Sprintf("confusion_trial_%d.html", trial.Trial))
	if err := writeHeatmapFile(path, trial); err != nil {
		c.errs = multierr.Append(c.errs, err)
		return
	}
	c.written = append(c.written, path)
	fmt.Fprintf(c.w, "confusion matrix written to %s\n", path)
}

// Err returns every heatmap write failure so far.
func (c *Console) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errs
}

// HeatmapFiles lists the heatmap pages written so far.
func (c *Console) HeatmapFiles() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.written...)
}

func writeHeatmapFile(path string, trial *hblpn.ClassifierTrial) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	return WriteConfusionHeatmap(f, trial.Confusion, fmt.Sprintf("Confusion Matrix - Trial %d", trial.Trial))
}
