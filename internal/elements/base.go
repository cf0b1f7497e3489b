// Package elements provides the typed wrappers a dynamic page hands out.
// Each wrapper binds one declared element to the driver, applies the
// element's wait policy before acting, and logs every action under the
// element's name. Wrappers are composed from a shared base plus free
// helpers; there is no deep inheritance.
package elements

import (
	"context"
	"time"

	"ui-harness/internal/entity"
	"ui-harness/internal/locator"
	"ui-harness/internal/ports"
	"ui-harness/pkg/apperr"
	"ui-harness/pkg/logg"

	"go.uber.org/zap"
)

const DefaultTimeout = 10 * time.Second

// pickTimeout converts an optional per-wrapper timeout in milliseconds.
func pickTimeout(ms []int) time.Duration {
	if len(ms) > 0 && ms[0] > 0 {
		return time.Duration(ms[0]) * time.Millisecond
	}

	return DefaultTimeout
}

// Healer is the self-healing hook actions are routed through when one is
// attached. Implemented by the healing package.
type Healer interface {
	Heal(ctx context.Context, key, original string, act func(ctx context.Context, selector string) error) error
	Record(ctx context.Context, key, selector string)
}

// Base carries what every wrapper needs: the driver, the resolved selector,
// the original locator string for diagnostics, and the wait policy.
type Base struct {
	driver   ports.Driver
	logger   *zap.Logger
	healer   Healer
	name     string
	rawLoc   string
	selector locator.Selector
	wait     entity.WaitType
	timeout  time.Duration
}

// AttachHealer routes subsequent actions through the healing chain. The
// healing key ties baselines to the declared locator, not just the name.
func (b *Base) AttachHealer(h Healer) {
	b.healer = h
}

func newBase(driver ports.Driver, logger *zap.Logger, def *entity.ElementDefinition, pageTimeout time.Duration) (Base, error) {
	sel, err := locator.Resolve(def.Locator)
	if err != nil {
		return Base{}, err
	}

	timeout := pageTimeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if def.Timeout > 0 {
		timeout = time.Duration(def.Timeout) * time.Millisecond
	}

	return Base{
		driver:   driver,
		logger:   logger.With(zap.String(logg.Element, def.Name), zap.String(logg.Locator, def.Locator)),
		name:     def.Name,
		rawLoc:   def.Locator,
		selector: sel,
		wait:     def.WaitPolicy(),
		timeout:  timeout,
	}, nil
}

func (b *Base) Name() string {
	return b.name
}

func (b *Base) Locator() string {
	return b.rawLoc
}

func (b *Base) Selector() locator.Selector {
	return b.selector
}

func waitStateFor(wait entity.WaitType) ports.WaitState {
	switch wait {
	case entity.WaitClickable:
		return ports.WaitStateClickable
	case entity.WaitPresent:
		return ports.WaitStateAttached
	case entity.WaitInvisible:
		return ports.WaitStateHidden
	default:
		return ports.WaitStateVisible
	}
}

// ready applies the element's wait policy. On timeout the error carries the
// element name, locator, and wait type so a human can fix the definition.
func (b *Base) ready(ctx context.Context) error {
	const op = "element.ready"

	err := b.driver.WaitFor(ctx, b.selector.Native(), waitStateFor(b.wait), b.timeout)
	if err != nil {
		return apperr.Wrap(op, apperr.CodeElementNotReady, err, map[string]any{
			apperr.MetaElement: b.name,
			apperr.MetaLocator: b.rawLoc,
			apperr.MetaWait:    string(b.wait),
		})
	}

	return nil
}

// act wraps the wait-then-do sequence shared by every mutating operation.
// With a healer attached, the wait and the action run per candidate selector
// so alternates get the same readiness treatment as the original.
func (b *Base) act(ctx context.Context, op string, fn func(ctx context.Context, selector string) error) error {
	b.logger.Info("Element action", zap.String(logg.Operation, op))

	if b.healer != nil {
		return b.actHealing(ctx, op, fn)
	}

	if err := b.ready(ctx); err != nil {
		return err
	}

	if err := fn(ctx, b.selector.Native()); err != nil {
		return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaElement: b.name,
			apperr.MetaLocator: b.rawLoc,
		})
	}

	return nil
}

func (b *Base) healingKey() string {
	return b.name + "@" + b.rawLoc
}

func (b *Base) actHealing(ctx context.Context, op string, fn func(ctx context.Context, selector string) error) error {
	run := func(ctx context.Context, selector string) error {
		if err := b.driver.WaitFor(ctx, selector, waitStateFor(b.wait), b.timeout); err != nil {
			return err
		}

		return fn(ctx, selector)
	}

	err := b.healer.Heal(ctx, b.healingKey(), b.selector.Native(), run)
	if err != nil {
		return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaElement: b.name,
			apperr.MetaLocator: b.rawLoc,
		})
	}

	b.healer.Record(ctx, b.healingKey(), b.selector.Native())

	return nil
}

// IsDisplayed is a non-asserting probe: any resolution failure reads as
// "not displayed" rather than an error.
func (b *Base) IsDisplayed(ctx context.Context) bool {
	visible, err := b.driver.IsVisible(ctx, b.selector.Native())
	if err != nil {
		b.logger.Debug("Visibility probe failed", zap.Error(err))

		return false
	}

	return visible
}

// Exists probes for DOM presence without asserting.
func (b *Base) Exists(ctx context.Context) bool {
	count, err := b.driver.Count(ctx, b.selector.Native())
	if err != nil {
		return false
	}

	return count > 0
}

func (b *Base) WaitVisible(ctx context.Context) error {
	const op = "WaitVisible"

	err := b.driver.WaitFor(ctx, b.selector.Native(), ports.WaitStateVisible, b.timeout)
	if err != nil {
		return apperr.Wrap(op, apperr.CodeElementNotReady, err, map[string]any{
			apperr.MetaElement: b.name,
			apperr.MetaLocator: b.rawLoc,
			apperr.MetaWait:    string(entity.WaitVisible),
		})
	}

	return nil
}

func (b *Base) WaitClickable(ctx context.Context) error {
	const op = "WaitClickable"

	err := b.driver.WaitFor(ctx, b.selector.Native(), ports.WaitStateClickable, b.timeout)
	if err != nil {
		return apperr.Wrap(op, apperr.CodeElementNotReady, err, map[string]any{
			apperr.MetaElement: b.name,
			apperr.MetaLocator: b.rawLoc,
			apperr.MetaWait:    string(entity.WaitClickable),
		})
	}

	return nil
}

func (b *Base) GetText(ctx context.Context) (string, error) {
	if err := b.ready(ctx); err != nil {
		return "", err
	}

	return b.driver.Text(ctx, b.selector.Native())
}

func (b *Base) GetAttribute(ctx context.Context, name string) (string, error) {
	if err := b.ready(ctx); err != nil {
		return "", err
	}

	return b.driver.Attribute(ctx, b.selector.Native(), name)
}

func (b *Base) ScrollIntoView(ctx context.Context) error {
	return b.act(ctx, "ScrollIntoView", b.driver.ScrollIntoView)
}

func (b *Base) Highlight(ctx context.Context) error {
	return b.act(ctx, "Highlight", b.driver.Highlight)
}
