package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ui-harness/internal/entity"
	"ui-harness/pkg/apperr"
	"ui-harness/pkg/logg"
	"ui-harness/pkg/tracing"

	"github.com/playwright-community/playwright-go"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// handle resolves the selector to a live element handle or fails with
// not_found.
func (m *Manager) handle(ctx context.Context, op, selector string) (playwright.ElementHandle, error) {
	if err := m.ensureReady(ctx, op); err != nil {
		return nil, err
	}

	el, err := m.page.QuerySelector(selector)
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeNotFound, err, map[string]any{
			apperr.MetaReason:   "query_failed",
			apperr.MetaSelector: selector,
		})
	}

	if el == nil {
		return nil, apperr.Wrap(op, apperr.CodeNotFound, fmt.Errorf("element not found: %s", selector), map[string]any{
			apperr.MetaReason:   "element_not_found",
			apperr.MetaSelector: selector,
		})
	}

	return el, nil
}

func (m *Manager) Text(ctx context.Context, selector string) (text string, err error) {
	const op = "Text"
	logger := m.logger.With(zap.String(logg.Operation, op), zap.String(logg.Selector, selector))

	ctx, step := tracing.StartSpan(ctx, m.tracer, logger, op, attribute.String("selector", selector))
	defer func() {
		step.End(err)
	}()

	el, err := m.handle(ctx, op, selector)
	if err != nil {
		return "", err
	}

	text, err = el.TextContent()
	if err != nil {
		return "", apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason:   "text_content_failed",
			apperr.MetaSelector: selector,
		})
	}

	return strings.TrimSpace(text), nil
}

func (m *Manager) Attribute(ctx context.Context, selector, name string) (string, error) {
	const op = "Attribute"

	el, err := m.handle(ctx, op, selector)
	if err != nil {
		return "", err
	}

	value, err := el.GetAttribute(name)
	if err != nil {
		return "", apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason:   "get_attribute_failed",
			apperr.MetaSelector: selector,
			apperr.MetaField:    name,
		})
	}

	return value, nil
}

// HasAttribute reports attribute presence, which GetAttribute cannot:
// boolean attributes like readonly are commonly present with an empty value.
func (m *Manager) HasAttribute(ctx context.Context, selector, name string) (bool, error) {
	const op = "HasAttribute"

	el, err := m.handle(ctx, op, selector)
	if err != nil {
		return false, err
	}

	result, err := el.Evaluate("(el, name) => el.hasAttribute(name)", name)
	if err != nil {
		return false, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason:   "has_attribute_failed",
			apperr.MetaSelector: selector,
			apperr.MetaField:    name,
		})
	}

	has, _ := result.(bool)

	return has, nil
}

func (m *Manager) InputValue(ctx context.Context, selector string) (string, error) {
	const op = "InputValue"

	if err := m.ensureReady(ctx, op); err != nil {
		return "", err
	}

	value, err := m.page.InputValue(selector, playwright.PageInputValueOptions{
		Timeout: playwright.Float(m.actionTimeout()),
	})
	if err != nil {
		return "", apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason:   "input_value_failed",
			apperr.MetaSelector: selector,
		})
	}

	return value, nil
}

func (m *Manager) IsVisible(ctx context.Context, selector string) (bool, error) {
	const op = "IsVisible"

	if err := m.ensureReady(ctx, op); err != nil {
		return false, err
	}

	return m.page.IsVisible(selector)
}

func (m *Manager) IsEnabled(ctx context.Context, selector string) (bool, error) {
	const op = "IsEnabled"

	if err := m.ensureReady(ctx, op); err != nil {
		return false, err
	}

	return m.page.IsEnabled(selector)
}

func (m *Manager) IsChecked(ctx context.Context, selector string) (bool, error) {
	const op = "IsChecked"

	if err := m.ensureReady(ctx, op); err != nil {
		return false, err
	}

	return m.page.IsChecked(selector)
}

func (m *Manager) SelectedText(ctx context.Context, selector string) (string, error) {
	const op = "SelectedText"

	el, err := m.handle(ctx, op, selector)
	if err != nil {
		return "", err
	}

	result, err := el.Evaluate("el => el.selectedIndex >= 0 ? el.options[el.selectedIndex].text : ''")
	if err != nil {
		return "", apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason:   "selected_text_failed",
			apperr.MetaSelector: selector,
		})
	}

	text, _ := result.(string)

	return text, nil
}

func (m *Manager) OptionTexts(ctx context.Context, selector string) ([]string, error) {
	const op = "OptionTexts"

	el, err := m.handle(ctx, op, selector)
	if err != nil {
		return nil, err
	}

	result, err := el.Evaluate("el => Array.from(el.options).map(o => o.text)")
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason:   "option_texts_failed",
			apperr.MetaSelector: selector,
		})
	}

	items, ok := result.([]interface{})
	if !ok {
		return nil, apperr.WrapErrorWithReason(op, apperr.CodeInternal, "unexpected_result_type")
	}

	texts := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			texts = append(texts, s)
		}
	}

	return texts, nil
}

func (m *Manager) Count(ctx context.Context, selector string) (int, error) {
	const op = "Count"

	if err := m.ensureReady(ctx, op); err != nil {
		return 0, err
	}

	elements, err := m.page.QuerySelectorAll(selector)
	if err != nil {
		return 0, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason:   "query_all_failed",
			apperr.MetaSelector: selector,
		})
	}

	return len(elements), nil
}

func (m *Manager) nth(ctx context.Context, op, selector string, index int) (playwright.ElementHandle, error) {
	if err := m.ensureReady(ctx, op); err != nil {
		return nil, err
	}

	elements, err := m.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason:   "query_all_failed",
			apperr.MetaSelector: selector,
		})
	}

	if index < 0 || index >= len(elements) {
		return nil, apperr.Wrap(op, apperr.CodeNotFound, fmt.Errorf("index %d out of range, %d elements match %s", index, len(elements), selector), map[string]any{
			apperr.MetaReason:   "index_out_of_range",
			apperr.MetaSelector: selector,
			apperr.MetaIndex:    index,
		})
	}

	return elements[index], nil
}

func (m *Manager) TextAt(ctx context.Context, selector string, index int) (string, error) {
	const op = "TextAt"

	el, err := m.nth(ctx, op, selector, index)
	if err != nil {
		return "", err
	}

	text, err := el.TextContent()
	if err != nil {
		return "", apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason:   "text_content_failed",
			apperr.MetaSelector: selector,
			apperr.MetaIndex:    index,
		})
	}

	return strings.TrimSpace(text), nil
}

func (m *Manager) ClickAt(ctx context.Context, selector string, index int) error {
	const op = "ClickAt"

	el, err := m.nth(ctx, op, selector, index)
	if err != nil {
		return err
	}

	if err := el.Click(playwright.ElementHandleClickOptions{
		Timeout: playwright.Float(m.actionTimeout()),
	}); err != nil {
		return actionErr(op, selector, "click_at_failed", err)
	}

	return nil
}

func (m *Manager) AllTexts(ctx context.Context, selector string) ([]string, error) {
	const op = "AllTexts"

	if err := m.ensureReady(ctx, op); err != nil {
		return nil, err
	}

	elements, err := m.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason:   "query_all_failed",
			apperr.MetaSelector: selector,
		})
	}

	texts := make([]string, 0, len(elements))

	for _, el := range elements {
		text, err := el.TextContent()
		if err != nil {
			continue
		}

		texts = append(texts, strings.TrimSpace(text))
	}

	return texts, nil
}

// Capture snapshots the resolved element's identifying attributes for the
// healing baseline.
func (m *Manager) Capture(ctx context.Context, selector string) (fp *entity.Fingerprint, err error) {
	const op = "Capture"
	logger := m.logger.With(zap.String(logg.Operation, op), zap.String(logg.Selector, selector))

	ctx, step := tracing.StartSpan(ctx, m.tracer, logger, op, attribute.String("selector", selector))
	defer func() {
		step.End(err)
	}()

	el, err := m.handle(ctx, op, selector)
	if err != nil {
		return nil, err
	}

	result, err := el.Evaluate(fingerprintScript)
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason:   "fingerprint_failed",
			apperr.MetaSelector: selector,
		})
	}

	raw, ok := result.(map[string]interface{})
	if !ok {
		return nil, apperr.WrapErrorWithReason(op, apperr.CodeInternal, "unexpected_result_type")
	}

	fp = &entity.Fingerprint{
		Attributes: make(map[string]string),
		CapturedAt: time.Now(),
	}

	if tag, ok := raw["tag"].(string); ok {
		fp.Tag = tag
	}

	if text, ok := raw["text"].(string); ok {
		fp.Text = strings.TrimSpace(text)
	}

	if attrs, ok := raw["attributes"].(map[string]interface{}); ok {
		for k, v := range attrs {
			if s, ok := v.(string); ok {
				fp.Attributes[k] = s
			}
		}
	}

	return fp, nil
}
