package pagefactory

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"ui-harness/internal/config"
	"ui-harness/internal/elements"
	"ui-harness/internal/entity"
	"ui-harness/internal/healing"
	"ui-harness/internal/ports"
	"ui-harness/pkg/apperr"
	"ui-harness/pkg/logg"

	"go.uber.org/zap"
)

// DynamicPage is a live page object: a validated definition bound to the
// driver. Wrappers are built lazily on first access and cached per
// name and type, so repeated access returns the same instance.
type DynamicPage struct {
	driver ports.Driver
	logger *zap.Logger
	config *config.Config
	healer *healing.Healer
	def    *entity.PageDefinition

	mu       sync.Mutex
	wrappers map[string]any
}

func newDynamicPage(driver ports.Driver, logger *zap.Logger, cfg *config.Config, healer *healing.Healer, def *entity.PageDefinition) *DynamicPage {
	return &DynamicPage{
		driver:   driver,
		logger:   logger.With(zap.String(logg.Page, def.PageName)),
		config:   cfg,
		healer:   healer,
		def:      def,
		wrappers: make(map[string]any),
	}
}

func (p *DynamicPage) Name() string {
	return p.def.PageName
}

func (p *DynamicPage) Definition() *entity.PageDefinition {
	return p.def
}

func (p *DynamicPage) HasElement(name string) bool {
	return p.def.HasElement(name)
}

func (p *DynamicPage) ElementNames() []string {
	return p.def.ElementNames()
}

// Open navigates to the page URL. Relative URLs resolve against the
// configured base URL; a page without a URL cannot be opened directly.
func (p *DynamicPage) Open(ctx context.Context) error {
	const op = "DynamicPage.Open"

	if p.def.URL == "" {
		return apperr.Wrap(op, apperr.CodeInvalidPageDef, nil, map[string]any{
			apperr.MetaPage:   p.def.PageName,
			apperr.MetaReason: "page_has_no_url",
		})
	}

	target := p.def.URL

	if !strings.Contains(target, "://") && p.config.BrowserConfig.BaseURL != "" {
		joined, err := url.JoinPath(p.config.BrowserConfig.BaseURL, target)
		if err != nil {
			return apperr.Wrap(op, apperr.CodeInvalidPageDef, err, map[string]any{
				apperr.MetaPage:   p.def.PageName,
				apperr.MetaURL:    target,
				apperr.MetaReason: "url_join_failed",
			})
		}

		target = joined
	}

	return p.driver.Navigate(ctx, target)
}

// Element returns the wrapper for a declared element, building it on first
// access. The cache key includes the declared type, so a definition reload
// that changes an element's type never serves a stale wrapper.
func (p *DynamicPage) Element(name string) (any, error) {
	const op = "DynamicPage.Element"

	def := p.def.FindElement(name)
	if def == nil {
		return nil, apperr.Wrap(op, apperr.CodeElementNotFound, nil, map[string]any{
			apperr.MetaPage:    p.def.PageName,
			apperr.MetaElement: name,
			apperr.MetaReason:  "not_declared",
		})
	}

	key := name + "/" + string(def.Type)

	p.mu.Lock()
	defer p.mu.Unlock()

	if wrapper, ok := p.wrappers[key]; ok {
		return wrapper, nil
	}

	timeout := p.def.Timeout
	if timeout <= 0 {
		timeout = p.config.BrowserConfig.WaitTimeout
	}

	wrapper, err := elements.New(p.driver, p.logger, def, timeout)
	if err != nil {
		return nil, err
	}

	if p.healer != nil && p.config.HealingConfig.Enabled {
		if healable, ok := wrapper.(interface{ AttachHealer(elements.Healer) }); ok {
			healable.AttachHealer(p.healer)
		}
	}

	p.wrappers[key] = wrapper

	return wrapper, nil
}

// typed fetches and asserts a wrapper in one step.
func typed[T any](p *DynamicPage, name string) (T, error) {
	const op = "DynamicPage.Element"

	var zero T

	wrapper, err := p.Element(name)
	if err != nil {
		return zero, err
	}

	t, ok := wrapper.(T)
	if !ok {
		return zero, apperr.Wrap(op, apperr.CodeInvalidArgument, nil, map[string]any{
			apperr.MetaPage:    p.def.PageName,
			apperr.MetaElement: name,
			apperr.MetaReason:  "type_mismatch",
			"actual":           fmt.Sprintf("%T", wrapper),
		})
	}

	return t, nil
}

func (p *DynamicPage) Button(name string) (*elements.Button, error) {
	return typed[*elements.Button](p, name)
}

func (p *DynamicPage) Textbox(name string) (*elements.Textbox, error) {
	return typed[*elements.Textbox](p, name)
}

func (p *DynamicPage) Combobox(name string) (*elements.Combobox, error) {
	return typed[*elements.Combobox](p, name)
}

func (p *DynamicPage) Checkbox(name string) (*elements.Checkbox, error) {
	return typed[*elements.Checkbox](p, name)
}

func (p *DynamicPage) Label(name string) (*elements.Label, error) {
	return typed[*elements.Label](p, name)
}

func (p *DynamicPage) Collection(name string) (*elements.Collection, error) {
	return typed[*elements.Collection](p, name)
}

func (p *DynamicPage) DynamicLabel(name string) (*elements.DynamicLabel, error) {
	return typed[*elements.DynamicLabel](p, name)
}

func (p *DynamicPage) DynamicButton(name string) (*elements.DynamicButton, error) {
	return typed[*elements.DynamicButton](p, name)
}

func (p *DynamicPage) DynamicLink(name string) (*elements.DynamicLink, error) {
	return typed[*elements.DynamicLink](p, name)
}

// VerifyRequired checks that every required element is present in the DOM.
// Used as a page-load assertion after Open.
func (p *DynamicPage) VerifyRequired(ctx context.Context) error {
	const op = "DynamicPage.VerifyRequired"

	for i := range p.def.Elements {
		def := &p.def.Elements[i]

		if !def.IsRequired() || def.Type.IsDynamic() {
			continue
		}

		wrapper, err := p.Element(def.Name)
		if err != nil {
			return err
		}

		probe, ok := wrapper.(interface{ Exists(context.Context) bool })
		if !ok {
			continue
		}

		if !probe.Exists(ctx) {
			return apperr.Wrap(op, apperr.CodeElementNotFound, nil, map[string]any{
				apperr.MetaPage:    p.def.PageName,
				apperr.MetaElement: def.Name,
				apperr.MetaLocator: def.Locator,
				apperr.MetaReason:  "required_element_missing",
			})
		}
	}

	return nil
}
