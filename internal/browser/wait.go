package browser

import (
	"context"
	"time"

	"ui-harness/internal/ports"
	"ui-harness/pkg/apperr"
	"ui-harness/pkg/logg"
	"ui-harness/pkg/tracing"

	"github.com/playwright-community/playwright-go"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// WaitFor blocks until the selector reaches the requested state or the
// timeout elapses. All synchronization in the harness goes through here;
// there are no fixed sleeps anywhere on the action paths.
func (m *Manager) WaitFor(ctx context.Context, selector string, state ports.WaitState, timeout time.Duration) (err error) {
	const op = "WaitFor"
	logger := m.logger.With(
		zap.String(logg.Operation, op),
		zap.String(logg.Selector, selector),
		zap.String(logg.Wait, string(state)),
	)

	ctx, step := tracing.StartSpan(ctx, m.tracer, logger, op,
		attribute.String("selector", selector),
		attribute.String("state", string(state)))
	defer func() {
		step.End(err)
	}()

	if err := m.ensureReady(ctx, op); err != nil {
		return err
	}

	deadline := time.Now().Add(timeout)

	var pwState *playwright.WaitForSelectorState

	switch state {
	case ports.WaitStateAttached:
		pwState = playwright.WaitForSelectorStateAttached
	case ports.WaitStateHidden:
		pwState = playwright.WaitForSelectorStateHidden
	default:
		// clickable starts from visible and then polls enabled below
		pwState = playwright.WaitForSelectorStateVisible
	}

	_, err = m.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
		State:   pwState,
	})

	if err != nil {
		return apperr.Wrap(op, apperr.CodeTimeout, err, map[string]any{
			apperr.MetaReason:   "wait_selector_timeout",
			apperr.MetaSelector: selector,
			apperr.MetaWait:     string(state),
			apperr.MetaStage:    apperr.StageWait,
		})
	}

	if state != ports.WaitStateClickable {
		return nil
	}

	step.AddEvent("visible, polling for enabled")

	return m.pollEnabled(ctx, op, selector, deadline)
}

// pollEnabled re-checks the enabled condition until the deadline. Polling is
// context-aware so a cancelled run does not stall out the full timeout.
func (m *Manager) pollEnabled(ctx context.Context, op, selector string, deadline time.Time) error {
	ticker := time.NewTicker(pollInterval * time.Millisecond)
	defer ticker.Stop()

	for {
		enabled, err := m.page.IsEnabled(selector)
		if err == nil && enabled {
			return nil
		}

		if time.Now().After(deadline) {
			return apperr.Wrap(op, apperr.CodeTimeout, err, map[string]any{
				apperr.MetaReason:   "enabled_poll_timeout",
				apperr.MetaSelector: selector,
				apperr.MetaWait:     string(ports.WaitStateClickable),
				apperr.MetaStage:    apperr.StageWait,
			})
		}

		select {
		case <-ctx.Done():
			return apperr.Wrap(op, apperr.CodeTimeout, ctx.Err(), map[string]any{
				apperr.MetaReason:   "context_cancelled",
				apperr.MetaSelector: selector,
			})
		case <-ticker.C:
		}
	}
}
