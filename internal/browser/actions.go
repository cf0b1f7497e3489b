package browser

import (
	"context"

	"ui-harness/pkg/apperr"
	"ui-harness/pkg/logg"
	"ui-harness/pkg/tracing"

	"github.com/playwright-community/playwright-go"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

func (m *Manager) actionTimeout() float64 {
	return float64(m.config.BrowserConfig.Timeout)
}

// actionErr wraps a driver failure in the uniform action_failed shape.
func actionErr(op, selector, reason string, err error) error {
	return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
		apperr.MetaReason:   reason,
		apperr.MetaStage:    apperr.StageAction,
		apperr.MetaSelector: selector,
	})
}

func (m *Manager) Click(ctx context.Context, selector string) (err error) {
	const op = "Click"
	logger := m.logger.With(zap.String(logg.Operation, op), zap.String(logg.Selector, selector))

	ctx, step := tracing.StartSpan(ctx, m.tracer, logger, op, attribute.String("selector", selector))
	defer func() {
		step.End(err)
	}()

	if err := m.ensureReady(ctx, op); err != nil {
		return err
	}

	err = m.page.Click(selector, playwright.PageClickOptions{
		Timeout: playwright.Float(m.actionTimeout()),
	})
	if err != nil {
		return actionErr(op, selector, "click_failed", err)
	}

	return nil
}

func (m *Manager) DoubleClick(ctx context.Context, selector string) (err error) {
	const op = "DoubleClick"
	logger := m.logger.With(zap.String(logg.Operation, op), zap.String(logg.Selector, selector))

	ctx, step := tracing.StartSpan(ctx, m.tracer, logger, op, attribute.String("selector", selector))
	defer func() {
		step.End(err)
	}()

	if err := m.ensureReady(ctx, op); err != nil {
		return err
	}

	err = m.page.Dblclick(selector, playwright.PageDblclickOptions{
		Timeout: playwright.Float(m.actionTimeout()),
	})
	if err != nil {
		return actionErr(op, selector, "double_click_failed", err)
	}

	return nil
}

func (m *Manager) RightClick(ctx context.Context, selector string) (err error) {
	const op = "RightClick"
	logger := m.logger.With(zap.String(logg.Operation, op), zap.String(logg.Selector, selector))

	ctx, step := tracing.StartSpan(ctx, m.tracer, logger, op, attribute.String("selector", selector))
	defer func() {
		step.End(err)
	}()

	if err := m.ensureReady(ctx, op); err != nil {
		return err
	}

	err = m.page.Click(selector, playwright.PageClickOptions{
		Timeout: playwright.Float(m.actionTimeout()),
		Button:  playwright.MouseButtonRight,
	})
	if err != nil {
		return actionErr(op, selector, "right_click_failed", err)
	}

	return nil
}

// ClickViaScript dispatches the click in page context, bypassing hit testing.
// Used as a fallback when an overlay intercepts the pointer.
func (m *Manager) ClickViaScript(ctx context.Context, selector string) (err error) {
	const op = "ClickViaScript"
	logger := m.logger.With(zap.String(logg.Operation, op), zap.String(logg.Selector, selector))

	ctx, step := tracing.StartSpan(ctx, m.tracer, logger, op, attribute.String("selector", selector))
	defer func() {
		step.End(err)
	}()

	el, err := m.handle(ctx, op, selector)
	if err != nil {
		return err
	}

	if _, err = el.Evaluate("el => el.click()"); err != nil {
		return actionErr(op, selector, "script_click_failed", err)
	}

	return nil
}

func (m *Manager) Fill(ctx context.Context, selector, value string) (err error) {
	const op = "Fill"
	logger := m.logger.With(zap.String(logg.Operation, op), zap.String(logg.Selector, selector))

	ctx, step := tracing.StartSpan(ctx, m.tracer, logger, op, attribute.String("selector", selector))
	defer func() {
		step.End(err)
	}()

	if err := m.ensureReady(ctx, op); err != nil {
		return err
	}

	err = m.page.Fill(selector, value, playwright.PageFillOptions{
		Timeout: playwright.Float(m.actionTimeout()),
	})
	if err != nil {
		return actionErr(op, selector, "fill_failed", err)
	}

	return nil
}

// TypeText types character by character, firing the per-key events that some
// autocomplete widgets depend on. Fill is the fast path.
func (m *Manager) TypeText(ctx context.Context, selector, value string) (err error) {
	const op = "TypeText"
	logger := m.logger.With(zap.String(logg.Operation, op), zap.String(logg.Selector, selector))

	ctx, step := tracing.StartSpan(ctx, m.tracer, logger, op, attribute.String("selector", selector))
	defer func() {
		step.End(err)
	}()

	if err := m.ensureReady(ctx, op); err != nil {
		return err
	}

	err = m.page.Type(selector, value, playwright.PageTypeOptions{
		Timeout: playwright.Float(m.actionTimeout()),
	})
	if err != nil {
		return actionErr(op, selector, "type_failed", err)
	}

	return nil
}

func (m *Manager) ClearInput(ctx context.Context, selector string) (err error) {
	const op = "ClearInput"
	logger := m.logger.With(zap.String(logg.Operation, op), zap.String(logg.Selector, selector))

	ctx, step := tracing.StartSpan(ctx, m.tracer, logger, op, attribute.String("selector", selector))
	defer func() {
		step.End(err)
	}()

	if err := m.ensureReady(ctx, op); err != nil {
		return err
	}

	err = m.page.Fill(selector, "", playwright.PageFillOptions{
		Timeout: playwright.Float(m.actionTimeout()),
	})
	if err != nil {
		return actionErr(op, selector, "clear_failed", err)
	}

	return nil
}

func (m *Manager) Press(ctx context.Context, selector, key string) (err error) {
	const op = "Press"
	logger := m.logger.With(zap.String(logg.Operation, op), zap.String(logg.Selector, selector))

	ctx, step := tracing.StartSpan(ctx, m.tracer, logger, op,
		attribute.String("selector", selector),
		attribute.String("key", key))
	defer func() {
		step.End(err)
	}()

	if err := m.ensureReady(ctx, op); err != nil {
		return err
	}

	err = m.page.Press(selector, key, playwright.PagePressOptions{
		Timeout: playwright.Float(m.actionTimeout()),
	})
	if err != nil {
		return actionErr(op, selector, "press_failed", err)
	}

	return nil
}

func (m *Manager) SetChecked(ctx context.Context, selector string, checked bool) (err error) {
	const op = "SetChecked"
	logger := m.logger.With(zap.String(logg.Operation, op), zap.String(logg.Selector, selector))

	ctx, step := tracing.StartSpan(ctx, m.tracer, logger, op,
		attribute.String("selector", selector),
		attribute.Bool("checked", checked))
	defer func() {
		step.End(err)
	}()

	if err := m.ensureReady(ctx, op); err != nil {
		return err
	}

	err = m.page.SetChecked(selector, checked, playwright.PageSetCheckedOptions{
		Timeout: playwright.Float(m.actionTimeout()),
	})
	if err != nil {
		return actionErr(op, selector, "set_checked_failed", err)
	}

	return nil
}

func (m *Manager) SelectByLabel(ctx context.Context, selector, label string) error {
	return m.selectOption(ctx, "SelectByLabel", selector, playwright.SelectOptionValues{
		Labels: &[]string{label},
	})
}

func (m *Manager) SelectByValue(ctx context.Context, selector, value string) error {
	return m.selectOption(ctx, "SelectByValue", selector, playwright.SelectOptionValues{
		Values: &[]string{value},
	})
}

func (m *Manager) SelectByIndex(ctx context.Context, selector string, index int) error {
	return m.selectOption(ctx, "SelectByIndex", selector, playwright.SelectOptionValues{
		Indexes: &[]int{index},
	})
}

func (m *Manager) selectOption(ctx context.Context, op, selector string, values playwright.SelectOptionValues) (err error) {
	logger := m.logger.With(zap.String(logg.Operation, op), zap.String(logg.Selector, selector))

	ctx, step := tracing.StartSpan(ctx, m.tracer, logger, op, attribute.String("selector", selector))
	defer func() {
		step.End(err)
	}()

	if err := m.ensureReady(ctx, op); err != nil {
		return err
	}

	selected, err := m.page.SelectOption(selector, values, playwright.PageSelectOptionOptions{
		Timeout: playwright.Float(m.actionTimeout()),
	})
	if err != nil {
		return actionErr(op, selector, "select_failed", err)
	}

	if len(selected) == 0 {
		return actionErr(op, selector, "no_option_matched", nil)
	}

	return nil
}

func (m *Manager) ScrollIntoView(ctx context.Context, selector string) (err error) {
	const op = "ScrollIntoView"
	logger := m.logger.With(zap.String(logg.Operation, op), zap.String(logg.Selector, selector))

	ctx, step := tracing.StartSpan(ctx, m.tracer, logger, op, attribute.String("selector", selector))
	defer func() {
		step.End(err)
	}()

	el, err := m.handle(ctx, op, selector)
	if err != nil {
		return err
	}

	if err = el.ScrollIntoViewIfNeeded(playwright.ElementHandleScrollIntoViewIfNeededOptions{
		Timeout: playwright.Float(m.actionTimeout()),
	}); err != nil {
		return actionErr(op, selector, "scroll_failed", err)
	}

	return nil
}

// Highlight draws a red outline around the element. Diagnostic aid for
// headed runs; a no-op visually in headless mode but still validates the
// selector.
func (m *Manager) Highlight(ctx context.Context, selector string) (err error) {
	const op = "Highlight"
	logger := m.logger.With(zap.String(logg.Operation, op), zap.String(logg.Selector, selector))

	ctx, step := tracing.StartSpan(ctx, m.tracer, logger, op, attribute.String("selector", selector))
	defer func() {
		step.End(err)
	}()

	el, err := m.handle(ctx, op, selector)
	if err != nil {
		return err
	}

	if _, err = el.Evaluate("el => { el.style.outline = '2px solid red'; }"); err != nil {
		return actionErr(op, selector, "highlight_failed", err)
	}

	return nil
}
