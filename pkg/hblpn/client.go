package hblpn

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Client provides a high-level API for secret recovery.
type Client struct {
	strategy SearchStrategy
	logger   *zap.Logger
}

// NewClient creates a new client using a sequential ExhaustiveSearch.
func NewClient() *Client {
	return &Client{
		strategy: NewExhaustiveSearch(),
		logger:   zap.NewNop(),
	}
}

// WithStrategy sets a custom search strategy.
func (c *Client) WithStrategy(strategy SearchStrategy) *Client {
	c.strategy = strategy
	return c
}

// WithLogger sets the logger used for retry bookkeeping.
func (c *Client) WithLogger(logger *zap.Logger) *Client {
	c.logger = logger
	return c
}

// NewOracle is a convenience wrapper building an oracle from a seed.
func (c *Client) NewOracle(secret BitVector, errorRate float64, seed uint64) (*Oracle, error) {
	return NewOracle(secret, errorRate, NewSeededSource(seed))
}

// RecoverSecret runs the configured strategy once.
//
// Args:
//   - ctx: Context for cancellation.
//   - oracle: The oracle under attack.
//
// Returns:
//   - SearchResult (check Found), or an error for invalid parameters.
func (c *Client) RecoverSecret(ctx context.Context, oracle *Oracle) (*SearchResult, error) {
	if oracle == nil {
		return nil, fmt.Errorf("%w: nil oracle", ErrInvalidParameter)
	}
	return c.strategy.Search(ctx, oracle)
}

// RecoverSecretWithRetries runs the strategy up to attempts times and returns
// the first result with Found set, or the last unsuccessful one.
func (c *Client) RecoverSecretWithRetries(ctx context.Context, oracle *Oracle, attempts int) (*SearchResult, error) {
	if attempts <= 0 {
		return nil, fmt.Errorf("%w: attempts %d must be positive", ErrInvalidParameter, attempts)
	}

	var last *SearchResult
	for i := 1; i <= attempts; i++ {
		res, err := c.RecoverSecret(ctx, oracle)
		if err != nil {
			return nil, err
		}
		if res.Found {
			return res, nil
		}
		c.logger.Info("attempt found nothing",
			zap.String("strategy", c.strategy.Name()),
			zap.Int("attempt", i),
			zap.Int("attempts", attempts))
		last = res
	}
	return last, nil
}

// VerifyCandidate reports whether candidate equals the oracle's secret.
// For reporting only: attacks cannot call it without knowing the secret.
func VerifyCandidate(oracle *Oracle, candidate BitVector) bool {
	return oracle.secret.Equal(candidate)
}
