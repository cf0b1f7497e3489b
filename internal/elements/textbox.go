package elements

import (
	"context"

	"ui-harness/internal/entity"
	"ui-harness/internal/ports"

	"go.uber.org/zap"
)

// Textbox wraps text inputs and textareas.
type Textbox struct {
	Base
}

func NewTextbox(driver ports.Driver, logger *zap.Logger, def *entity.ElementDefinition, timeout ...int) (*Textbox, error) {
	base, err := newBase(driver, logger, def, pickTimeout(timeout))
	if err != nil {
		return nil, err
	}

	return &Textbox{Base: base}, nil
}

// Type sends the value key by key, firing per-character input events.
func (t *Textbox) Type(ctx context.Context, value string) error {
	return t.act(ctx, "Type", func(ctx context.Context, selector string) error {
		return t.driver.TypeText(ctx, selector, value)
	})
}

// SetValue replaces the current content in one operation.
func (t *Textbox) SetValue(ctx context.Context, value string) error {
	return t.act(ctx, "SetValue", func(ctx context.Context, selector string) error {
		return t.driver.Fill(ctx, selector, value)
	})
}

func (t *Textbox) Clear(ctx context.Context) error {
	return t.act(ctx, "Clear", t.driver.ClearInput)
}

func (t *Textbox) ClearAndType(ctx context.Context, value string) error {
	if err := t.Clear(ctx); err != nil {
		return err
	}

	return t.Type(ctx, value)
}

func (t *Textbox) GetValue(ctx context.Context) (string, error) {
	if err := t.ready(ctx); err != nil {
		return "", err
	}

	return t.driver.InputValue(ctx, t.selector.Native())
}

func (t *Textbox) IsEmpty(ctx context.Context) (bool, error) {
	value, err := t.GetValue(ctx)
	if err != nil {
		return false, err
	}

	return value == "", nil
}

// IsReadonly checks attribute presence rather than value: readonly is a
// boolean attribute and readonly="" still means readonly.
func (t *Textbox) IsReadonly(ctx context.Context) bool {
	has, err := t.driver.HasAttribute(ctx, t.selector.Native(), "readonly")
	if err != nil {
		return false
	}

	return has
}

func (t *Textbox) PressEnter(ctx context.Context) error {
	return t.Press(ctx, "Enter")
}

func (t *Textbox) PressTab(ctx context.Context) error {
	return t.Press(ctx, "Tab")
}

func (t *Textbox) PressEscape(ctx context.Context) error {
	return t.Press(ctx, "Escape")
}

func (t *Textbox) Press(ctx context.Context, key string) error {
	return t.act(ctx, "Press "+key, func(ctx context.Context, selector string) error {
		return t.driver.Press(ctx, selector, key)
	})
}
