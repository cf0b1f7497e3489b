package elements

import (
	"context"

	"ui-harness/internal/entity"
	"ui-harness/internal/ports"
	"ui-harness/pkg/apperr"

	"go.uber.org/zap"
)

// Combobox wraps native select controls.
type Combobox struct {
	Base
}

func NewCombobox(driver ports.Driver, logger *zap.Logger, def *entity.ElementDefinition, timeout ...int) (*Combobox, error) {
	base, err := newBase(driver, logger, def, pickTimeout(timeout))
	if err != nil {
		return nil, err
	}

	return &Combobox{Base: base}, nil
}

func (c *Combobox) SelectByText(ctx context.Context, text string) error {
	return c.act(ctx, "SelectByText", func(ctx context.Context, selector string) error {
		return c.driver.SelectByLabel(ctx, selector, text)
	})
}

func (c *Combobox) SelectByValue(ctx context.Context, value string) error {
	return c.act(ctx, "SelectByValue", func(ctx context.Context, selector string) error {
		return c.driver.SelectByValue(ctx, selector, value)
	})
}

func (c *Combobox) SelectByIndex(ctx context.Context, index int) error {
	const op = "Combobox.SelectByIndex"

	if index < 0 {
		return apperr.Wrap(op, apperr.CodeInvalidParameter, nil, map[string]any{
			apperr.MetaElement: c.name,
			apperr.MetaIndex:   index,
			apperr.MetaReason:  "negative_index",
		})
	}

	return c.act(ctx, "SelectByIndex", func(ctx context.Context, selector string) error {
		return c.driver.SelectByIndex(ctx, selector, index)
	})
}

func (c *Combobox) GetSelectedOption(ctx context.Context) (string, error) {
	if err := c.ready(ctx); err != nil {
		return "", err
	}

	return c.driver.SelectedText(ctx, c.selector.Native())
}

func (c *Combobox) GetAllOptions(ctx context.Context) ([]string, error) {
	if err := c.ready(ctx); err != nil {
		return nil, err
	}

	return c.driver.OptionTexts(ctx, c.selector.Native())
}

func (c *Combobox) HasOption(ctx context.Context, text string) (bool, error) {
	options, err := c.GetAllOptions(ctx)
	if err != nil {
		return false, err
	}

	for _, option := range options {
		if option == text {
			return true, nil
		}
	}

	return false, nil
}
