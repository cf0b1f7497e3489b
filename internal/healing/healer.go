package healing

import (
	"context"
	"sync"
	"time"

	"ui-harness/internal/config"
	"ui-harness/internal/entity"
	"ui-harness/internal/ports"
	"ui-harness/pkg/logg"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const healerName = "Healer"

// similarityThreshold rejects proposals that resolve to an element too
// different from the recorded baseline.
const similarityThreshold = 0.5

// Healer keeps per-element fingerprints captured on successful resolutions
// and, when a locator stops matching, proposes ranked replacement selectors
// and drives them through the fallback chain.
type Healer struct {
	driver ports.Driver
	logger *zap.Logger
	config *config.HealingConfig

	mu        sync.RWMutex
	baselines map[string]*entity.Fingerprint
}

type HealerParams struct {
	fx.In

	Driver ports.Driver
	Logger *zap.Logger
	Config *config.Config
}

func NewHealerFromConfig(params HealerParams) *Healer {
	return NewHealer(params.Driver, params.Logger, params.Config.HealingConfig)
}

func NewHealer(driver ports.Driver, logger *zap.Logger, cfg *config.HealingConfig) *Healer {
	return &Healer{
		driver:    driver,
		logger:    logger.With(zap.String(logg.Layer, healerName)),
		config:    cfg,
		baselines: make(map[string]*entity.Fingerprint),
	}
}

// Record captures the element's fingerprint as the healing baseline.
// Best-effort: a failed capture only costs future healing quality.
func (h *Healer) Record(ctx context.Context, key, selector string) {
	fp, err := h.driver.Capture(ctx, selector)
	if err != nil {
		h.logger.Debug("Baseline capture failed",
			zap.String(logg.Element, key),
			zap.String(logg.Selector, selector),
			zap.Error(err))

		return
	}

	h.mu.Lock()
	h.baselines[key] = fp
	h.mu.Unlock()
}

func (h *Healer) Baseline(key string) *entity.Fingerprint {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.baselines[key]
}

func (h *Healer) Clear() {
	h.mu.Lock()
	h.baselines = make(map[string]*entity.Fingerprint)
	h.mu.Unlock()
}

// Heal runs the action against the original selector first, then against
// ranked proposals derived from the recorded baseline. Proposals must also
// pass the similarity check so that "found an element" is not mistaken for
// "found the same element". Each candidate is retried per the configured
// attempts before the chain moves on, so transient flakiness does not get
// mistaken for locator drift.
func (h *Healer) Heal(ctx context.Context, key, original string, act func(ctx context.Context, selector string) error) error {
	attempts := h.config.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	delay := time.Duration(h.config.RetryDelayMs) * time.Millisecond

	candidates := []Candidate[struct{}]{
		{
			Name: "original " + original,
			Run: func(ctx context.Context) (struct{}, error) {
				return struct{}{}, Retry(ctx, attempts, delay, func(ctx context.Context) error {
					return act(ctx, original)
				})
			},
		},
	}

	baseline := h.Baseline(key)

	proposals := Propose(baseline)
	if max := h.config.MaxCandidates; max > 0 && len(proposals) > max {
		proposals = proposals[:max]
	}

	for _, proposal := range proposals {
		selector := proposal.Selector

		candidates = append(candidates, Candidate[struct{}]{
			Name: "healed " + selector,
			Run: func(ctx context.Context) (struct{}, error) {
				if err := h.verify(ctx, baseline, selector); err != nil {
					return struct{}{}, err
				}

				h.logger.Info("Healing locator",
					zap.String(logg.Element, key),
					zap.String(logg.Selector, selector))

				return struct{}{}, Retry(ctx, attempts, delay, func(ctx context.Context) error {
					return act(ctx, selector)
				})
			},
		})
	}

	_, err := TryInOrder(ctx, candidates)

	return err
}

func (h *Healer) verify(ctx context.Context, baseline *entity.Fingerprint, selector string) error {
	current, err := h.driver.Capture(ctx, selector)
	if err != nil {
		return err
	}

	if score := Similarity(baseline, current); score < similarityThreshold {
		return &lowSimilarityError{selector: selector, score: score}
	}

	return nil
}

type lowSimilarityError struct {
	selector string
	score    float64
}

func (e *lowSimilarityError) Error() string {
	return "candidate " + e.selector + " rejected: similarity below threshold"
}
