package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahdiidarabi/hb-lpn/internal/parser"
)

func bruteOptions() options {
	return options{
		mode:      "brute",
		errorRate: 0.125,
		secret:    "1011",
		seed:      7,
		workers:   1,
		samples:   100000,
		tries:     1,
		tolerance: 0.02,
	}
}

func TestRun_BruteForce(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), bruteOptions(), &out))

	s := out.String()
	assert.Contains(t, s, "Brute Force on HB Protocol")
	assert.Contains(t, s, "Secret Key = [1 0 1 1]")
	assert.Contains(t, s, "Found key:     [1 0 1 1]")
	assert.Contains(t, s, "✓ Matches the secret!")
}

func TestRun_KeyedOracle(t *testing.T) {
	opts := bruteOptions()
	opts.key = "hb-lpn"

	var first, second bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &first))
	require.NoError(t, run(context.Background(), opts, &second))
	assert.Contains(t, first.String(), "✓ Matches the secret!")
	assert.Equal(t, first.String(), second.String())
}

func TestRun_Errors(t *testing.T) {
	opts := bruteOptions()
	opts.mode = "guess"
	assert.ErrorContains(t, run(context.Background(), opts, &bytes.Buffer{}), "unknown mode")

	opts = bruteOptions()
	opts.secret = "10x1"
	assert.ErrorContains(t, run(context.Background(), opts, &bytes.Buffer{}), "-secret")

	opts = bruteOptions()
	opts.errorRate = 0.5
	assert.Error(t, run(context.Background(), opts, &bytes.Buffer{}))
}

func TestRun_UnrecoveredSecret(t *testing.T) {
	// Five samples at zero tolerance truncate the threshold to 0.
	opts := bruteOptions()
	opts.mode = "tree"
	opts.secret = "101"
	opts.samples = 5
	opts.tolerance = 0

	var out bytes.Buffer
	err := run(context.Background(), opts, &out)
	assert.True(t, errors.Is(err, errUnrecovered))
	assert.Contains(t, out.String(), "Try running again")
}

func TestOracleSource(t *testing.T) {
	seeded, err := oracleSource("", 3)
	require.NoError(t, err)
	assert.Equal(t, seeded.Uint64(), mustSource(t, "", 3).Uint64())

	keyed, err := oracleSource("k", 3)
	require.NoError(t, err)
	assert.Equal(t, keyed.Uint64(), mustSource(t, "k", 99).Uint64(), "keyed stream ignores the seed")
}

func mustSource(t *testing.T, key string, seed uint64) interface{ Uint64() uint64 } {
	t.Helper()
	src, err := oracleSource(key, seed)
	require.NoError(t, err)
	return src
}

func TestLoadScenarios(t *testing.T) {
	opts := bruteOptions()
	opts.secret = ""
	scenarios, err := loadScenarios(opts)
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	assert.Len(t, scenarios[0].Secret, 5)

	opts.mode = "tree"
	scenarios, err = loadScenarios(opts)
	require.NoError(t, err)
	assert.Len(t, scenarios[0].Secret, 12)

	path := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"secret": "110", "error_rate": 0.1}, {"secret": "01", "error_rate": 0.2, "seed": 4}]`), 0o600))
	opts.scenario = path
	scenarios, err = loadScenarios(opts)
	require.NoError(t, err)
	assert.Equal(t, []*parser.Scenario{
		{Secret: []uint8{1, 1, 0}, ErrorRate: 0.1, Seed: 7},
		{Secret: []uint8{0, 1}, ErrorRate: 0.2, Seed: 4, HasSeed: true},
	}, scenarios)

	opts.scenario = ""
	opts.dim = -1
	_, err = loadScenarios(opts)
	assert.Error(t, err)
}
