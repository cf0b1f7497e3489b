package elements

import (
	"context"

	"ui-harness/internal/entity"
	"ui-harness/internal/ports"
	"ui-harness/pkg/apperr"

	"go.uber.org/zap"
)

// Checkbox wraps binary toggles. Check and Uncheck are idempotent: setting
// a box to the state it is already in succeeds without another click.
type Checkbox struct {
	Base
}

func NewCheckbox(driver ports.Driver, logger *zap.Logger, def *entity.ElementDefinition, timeout ...int) (*Checkbox, error) {
	base, err := newBase(driver, logger, def, pickTimeout(timeout))
	if err != nil {
		return nil, err
	}

	return &Checkbox{Base: base}, nil
}

func (c *Checkbox) Check(ctx context.Context) error {
	return c.SetChecked(ctx, true)
}

func (c *Checkbox) Uncheck(ctx context.Context) error {
	return c.SetChecked(ctx, false)
}

func (c *Checkbox) SetChecked(ctx context.Context, checked bool) error {
	return c.act(ctx, "SetChecked", func(ctx context.Context, selector string) error {
		return c.driver.SetChecked(ctx, selector, checked)
	})
}

func (c *Checkbox) IsChecked(ctx context.Context) (bool, error) {
	if err := c.ready(ctx); err != nil {
		return false, err
	}

	return c.driver.IsChecked(ctx, c.selector.Native())
}

func (c *Checkbox) Toggle(ctx context.Context) error {
	checked, err := c.IsChecked(ctx)
	if err != nil {
		return err
	}

	return c.SetChecked(ctx, !checked)
}

// VerifyState fails when the box is not in the expected state.
func (c *Checkbox) VerifyState(ctx context.Context, expected bool) error {
	const op = "Checkbox.VerifyState"

	checked, err := c.IsChecked(ctx)
	if err != nil {
		return err
	}

	if checked != expected {
		return apperr.Wrap(op, apperr.CodeActionFailed, nil, map[string]any{
			apperr.MetaElement: c.name,
			apperr.MetaReason:  "state_mismatch",
			"expected":         expected,
			"actual":           checked,
		})
	}

	return nil
}
