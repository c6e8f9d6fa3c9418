// Package resilience aggregates the five layer scores into one weighted
// institutional resilience score on the 0-100 scale.
package resilience

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"vigil/internal/metric"
	dErrors "vigil/pkg/domain-errors"
	"vigil/pkg/requestcontext"
)

// Scorer yields one layer's resilience score in [0, 100].
type Scorer interface {
	Resilience(ctx context.Context) (float64, error)
}

// Config weights each layer's contribution. Weights must sum to 1.
type Config struct {
	Weights map[metric.Layer]float64
}

// DefaultConfig returns the stock layer weighting.
func DefaultConfig() Config {
	return Config{
		Weights: map[metric.Layer]float64{
			metric.LayerFrameworkDominance: 0.25,
			metric.LayerQuestionEntropy:    0.20,
			metric.LayerOutcomeRisk:        0.20,
			metric.LayerObserverFatigue:    0.15,
			metric.LayerPurposeDrift:       0.20,
		},
	}
}

func (c Config) validate() error {
	if len(c.Weights) == 0 {
		return dErrors.New(dErrors.CodeInternal, "layer weights are required")
	}
	var sum float64
	for layer, w := range c.Weights {
		if w < 0 {
			return dErrors.Newf(dErrors.CodeInternal, "negative weight for layer %s", layer)
		}
		sum += w
	}
	if math.Abs(sum-1) > 1e-9 {
		return dErrors.New(dErrors.CodeInternal, "layer weights must sum to 1")
	}
	return nil
}

// Summary is the aggregate score plus its per-layer inputs.
type Summary struct {
	Score      float64                  `json:"score"`
	Layers     map[metric.Layer]float64 `json:"layers"`
	ComputedAt time.Time                `json:"computed_at"`
}

// Aggregator fans out to the layer scorers and combines their results.
type Aggregator struct {
	scorers map[metric.Layer]Scorer
	config  Config
	logger  *slog.Logger
}

type Option func(*Aggregator)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) { a.logger = logger }
}

// New builds an aggregator. Every configured layer must have a scorer and
// vice versa, so a miswired deployment fails at startup rather than skewing
// the score silently.
func New(scorers map[metric.Layer]Scorer, config Config, opts ...Option) (*Aggregator, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	for layer := range config.Weights {
		if scorers[layer] == nil {
			return nil, dErrors.Newf(dErrors.CodeInternal, "no scorer for layer %s", layer)
		}
	}
	for layer := range scorers {
		if _, ok := config.Weights[layer]; !ok {
			return nil, dErrors.Newf(dErrors.CodeInternal, "no weight for layer %s", layer)
		}
	}
	a := &Aggregator{
		scorers: scorers,
		config:  config,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a, nil
}

// Score computes every layer concurrently and returns the weighted average.
// Any layer failure fails the whole computation: a score with silently
// missing layers would overstate resilience.
func (a *Aggregator) Score(ctx context.Context) (Summary, error) {
	var mu sync.Mutex
	scores := make(map[metric.Layer]float64, len(a.scorers))

	g, gctx := errgroup.WithContext(ctx)
	for layer, scorer := range a.scorers {
		g.Go(func() error {
			score, err := scorer.Resilience(gctx)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeOf(err), "scoring layer "+string(layer))
			}
			mu.Lock()
			scores[layer] = score
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	var total float64
	for layer, score := range scores {
		total += score * a.config.Weights[layer]
	}

	a.logger.DebugContext(ctx, "resilience computed", slog.Float64("score", total))
	return Summary{
		Score:      total,
		Layers:     scores,
		ComputedAt: requestcontext.Now(ctx),
	}, nil
}
