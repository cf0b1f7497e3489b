package healing

import (
	"context"
	"time"

	"ui-harness/internal/locator"
	"ui-harness/internal/ports"
	"ui-harness/pkg/logg"

	"go.uber.org/zap"
)

// Resilient binds one logical element to an ordered list of alternative
// locators. Every operation walks the chain through TryInOrder; each
// candidate performs the complete action or none of it.
type Resilient struct {
	driver        ports.Driver
	logger        *zap.Logger
	name          string
	selectors     []locator.Selector
	waitTimeout   time.Duration
	retryAttempts int
	retryDelay    time.Duration
}

type ResilientOption func(*Resilient)

// WithRetry retries each candidate before moving to the next one, trading
// latency for tolerance of transient flakiness.
func WithRetry(attempts int, delay time.Duration) ResilientOption {
	return func(r *Resilient) {
		r.retryAttempts = attempts
		r.retryDelay = delay
	}
}

func WithWaitTimeout(timeout time.Duration) ResilientOption {
	return func(r *Resilient) {
		r.waitTimeout = timeout
	}
}

func NewResilient(driver ports.Driver, logger *zap.Logger, name string, locators []string, opts ...ResilientOption) (*Resilient, error) {
	selectors := make([]locator.Selector, 0, len(locators))

	for _, loc := range locators {
		sel, err := locator.Resolve(loc)
		if err != nil {
			return nil, err
		}

		selectors = append(selectors, sel)
	}

	r := &Resilient{
		driver:        driver,
		logger:        logger.With(zap.String(logg.Layer, "Resilient"), zap.String(logg.Element, name)),
		name:          name,
		selectors:     selectors,
		waitTimeout:   10 * time.Second,
		retryAttempts: 1,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Do runs the action against each locator in turn until one commits.
func (r *Resilient) Do(ctx context.Context, action func(ctx context.Context, selector string) error) error {
	candidates := make([]Candidate[struct{}], 0, len(r.selectors))

	for _, sel := range r.selectors {
		native := sel.Native()

		candidates = append(candidates, Candidate[struct{}]{
			Name: sel.String(),
			Run: func(ctx context.Context) (struct{}, error) {
				err := Retry(ctx, r.retryAttempts, r.retryDelay, func(ctx context.Context) error {
					if err := r.driver.WaitFor(ctx, native, ports.WaitStateVisible, r.waitTimeout); err != nil {
						return err
					}

					return action(ctx, native)
				})

				return struct{}{}, err
			},
		})
	}

	_, err := TryInOrder(ctx, candidates)
	if err != nil {
		r.logger.Warn("All locator candidates failed", zap.Error(err))
	}

	return err
}

func (r *Resilient) Click(ctx context.Context) error {
	return r.Do(ctx, func(ctx context.Context, selector string) error {
		return r.driver.Click(ctx, selector)
	})
}

func (r *Resilient) Fill(ctx context.Context, value string) error {
	return r.Do(ctx, func(ctx context.Context, selector string) error {
		return r.driver.Fill(ctx, selector, value)
	})
}

func (r *Resilient) Text(ctx context.Context) (string, error) {
	var text string

	err := r.Do(ctx, func(ctx context.Context, selector string) error {
		var innerErr error
		text, innerErr = r.driver.Text(ctx, selector)

		return innerErr
	})

	return text, err
}
