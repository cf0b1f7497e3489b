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

// dynamicBase holds a locator template with one placeholder. Nothing is
// resolved until a concrete parameter arrives; each call binds the template
// anew, so one wrapper serves any number of parameter values.
type dynamicBase struct {
	driver   ports.Driver
	logger   *zap.Logger
	name     string
	template string
	wait     entity.WaitType
	timeout  time.Duration
}

func newDynamicBase(driver ports.Driver, logger *zap.Logger, def *entity.ElementDefinition, timeoutMs []int) (dynamicBase, error) {
	const op = "elements.newDynamicBase"

	if locator.PlaceholderCount(def.Locator) != 1 {
		return dynamicBase{}, apperr.Wrap(op, apperr.CodeInvalidPageDef, nil, map[string]any{
			apperr.MetaElement: def.Name,
			apperr.MetaLocator: def.Locator,
			apperr.MetaReason:  "placeholder_count_not_one",
		})
	}

	timeout := pickTimeout(timeoutMs)
	if def.Timeout > 0 {
		timeout = time.Duration(def.Timeout) * time.Millisecond
	}

	return dynamicBase{
		driver:   driver,
		logger:   logger.With(zap.String(logg.Element, def.Name), zap.String(logg.Locator, def.Locator)),
		name:     def.Name,
		template: def.Locator,
		wait:     def.WaitPolicy(),
		timeout:  timeout,
	}, nil
}

func (d *dynamicBase) Name() string {
	return d.name
}

func (d *dynamicBase) Template() string {
	return d.template
}

// bind substitutes the parameter into the template and resolves the result.
// An empty parameter is rejected before it can silently widen the match.
func (d *dynamicBase) bind(parameter string) (locator.Selector, error) {
	expanded, err := locator.Expand(d.template, parameter)
	if err != nil {
		return locator.Selector{}, err
	}

	return locator.Resolve(expanded)
}

func (d *dynamicBase) ready(ctx context.Context, sel locator.Selector, parameter string) error {
	const op = "element.ready"

	err := d.driver.WaitFor(ctx, sel.Native(), waitStateFor(d.wait), d.timeout)
	if err != nil {
		return apperr.Wrap(op, apperr.CodeElementNotReady, err, map[string]any{
			apperr.MetaElement:   d.name,
			apperr.MetaLocator:   d.template,
			apperr.MetaParameter: parameter,
			apperr.MetaWait:      string(d.wait),
		})
	}

	return nil
}

func (d *dynamicBase) act(ctx context.Context, op, parameter string, fn func(ctx context.Context, selector string) error) error {
	sel, err := d.bind(parameter)
	if err != nil {
		return err
	}

	d.logger.Info("Element action",
		zap.String(logg.Operation, op),
		zap.String("parameter", parameter))

	if err := d.ready(ctx, sel, parameter); err != nil {
		return err
	}

	if err := fn(ctx, sel.Native()); err != nil {
		return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaElement:   d.name,
			apperr.MetaLocator:   d.template,
			apperr.MetaParameter: parameter,
		})
	}

	return nil
}

// DynamicLabel reads text nodes addressed by a runtime parameter.
type DynamicLabel struct {
	dynamicBase
}

func NewDynamicLabel(driver ports.Driver, logger *zap.Logger, def *entity.ElementDefinition, timeout ...int) (*DynamicLabel, error) {
	base, err := newDynamicBase(driver, logger, def, timeout)
	if err != nil {
		return nil, err
	}

	return &DynamicLabel{dynamicBase: base}, nil
}

func (d *DynamicLabel) GetText(ctx context.Context, parameter string) (string, error) {
	sel, err := d.bind(parameter)
	if err != nil {
		return "", err
	}

	if err := d.ready(ctx, sel, parameter); err != nil {
		return "", err
	}

	return d.driver.Text(ctx, sel.Native())
}

func (d *DynamicLabel) IsDisplayed(ctx context.Context, parameter string) bool {
	sel, err := d.bind(parameter)
	if err != nil {
		return false
	}

	visible, err := d.driver.IsVisible(ctx, sel.Native())
	if err != nil {
		return false
	}

	return visible
}

// DynamicButton clicks controls addressed by a runtime parameter, such as
// a row action button bound to a record identifier.
type DynamicButton struct {
	dynamicBase
}

func NewDynamicButton(driver ports.Driver, logger *zap.Logger, def *entity.ElementDefinition, timeout ...int) (*DynamicButton, error) {
	base, err := newDynamicBase(driver, logger, def, timeout)
	if err != nil {
		return nil, err
	}

	return &DynamicButton{dynamicBase: base}, nil
}

func (d *DynamicButton) Click(ctx context.Context, parameter string) error {
	return d.act(ctx, "Click", parameter, d.driver.Click)
}

func (d *DynamicButton) DoubleClick(ctx context.Context, parameter string) error {
	return d.act(ctx, "DoubleClick", parameter, d.driver.DoubleClick)
}

func (d *DynamicButton) IsEnabled(ctx context.Context, parameter string) bool {
	sel, err := d.bind(parameter)
	if err != nil {
		return false
	}

	enabled, err := d.driver.IsEnabled(ctx, sel.Native())
	if err != nil {
		return false
	}

	return enabled
}

// DynamicLink is a DynamicButton that also exposes its target.
type DynamicLink struct {
	DynamicButton
}

func NewDynamicLink(driver ports.Driver, logger *zap.Logger, def *entity.ElementDefinition, timeout ...int) (*DynamicLink, error) {
	button, err := NewDynamicButton(driver, logger, def, timeout...)
	if err != nil {
		return nil, err
	}

	return &DynamicLink{DynamicButton: *button}, nil
}

func (d *DynamicLink) GetHref(ctx context.Context, parameter string) (string, error) {
	sel, err := d.bind(parameter)
	if err != nil {
		return "", err
	}

	if err := d.ready(ctx, sel, parameter); err != nil {
		return "", err
	}

	return d.driver.Attribute(ctx, sel.Native(), "href")
}
