package elements

import (
	"context"

	"ui-harness/internal/entity"
	"ui-harness/internal/ports"
	"ui-harness/pkg/apperr"

	"go.uber.org/zap"
)

// Button wraps clickable controls. Clicking waits for the element to be
// actionable per its wait policy first.
type Button struct {
	Base
}

func NewButton(driver ports.Driver, logger *zap.Logger, def *entity.ElementDefinition, timeout ...int) (*Button, error) {
	base, err := newBase(driver, logger, def, pickTimeout(timeout))
	if err != nil {
		return nil, err
	}

	return &Button{Base: base}, nil
}

func (b *Button) Click(ctx context.Context) error {
	return b.act(ctx, "Click", b.driver.Click)
}

func (b *Button) DoubleClick(ctx context.Context) error {
	return b.act(ctx, "DoubleClick", b.driver.DoubleClick)
}

func (b *Button) RightClick(ctx context.Context) error {
	return b.act(ctx, "RightClick", b.driver.RightClick)
}

// ClickViaScript dispatches a DOM click, bypassing actionability checks.
// A last resort for controls obscured by overlays.
func (b *Button) ClickViaScript(ctx context.Context) error {
	return b.act(ctx, "ClickViaScript", b.driver.ClickViaScript)
}

func (b *Button) IsEnabled(ctx context.Context) bool {
	enabled, err := b.driver.IsEnabled(ctx, b.selector.Native())
	if err != nil {
		return false
	}

	return enabled
}

// VerifyEnabled asserts the enabled state, failing with context when the
// button cannot be interrogated or is disabled.
func (b *Button) VerifyEnabled(ctx context.Context) error {
	const op = "Button.VerifyEnabled"

	if err := b.ready(ctx); err != nil {
		return err
	}

	enabled, err := b.driver.IsEnabled(ctx, b.selector.Native())
	if err != nil {
		return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaElement: b.name,
		})
	}

	if !enabled {
		return apperr.WrapErrorWithReason(op, apperr.CodeActionFailed, "button_disabled")
	}

	return nil
}
