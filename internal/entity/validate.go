package entity

import (
	"fmt"
	"strings"

	"ui-harness/internal/locator"
	"ui-harness/pkg/apperr"
)

var knownTypes = map[ElementType]struct{}{
	TypeButton:        {},
	TypeTextbox:       {},
	TypeCombobox:      {},
	TypeCheckbox:      {},
	TypeLabel:         {},
	TypeCollection:    {},
	TypeDynamicLabel:  {},
	TypeDynamicButton: {},
	TypeDynamicLink:   {},
	TypeListElement:   {},
}

// ParseElementType normalizes a declared type string to the closed enum.
func ParseElementType(s string) (ElementType, error) {
	t := ElementType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := knownTypes[t]; !ok {
		return "", fmt.Errorf("unknown element type %q", s)
	}

	return t, nil
}

// Validate checks the page definition invariants: non-empty page name,
// non-empty element set, unique element names, and per-element locator and
// type rules. It is called once at load time; definitions are immutable
// afterwards.
func (p *PageDefinition) Validate() error {
	const op = "PageDefinition.Validate"

	if strings.TrimSpace(p.PageName) == "" {
		return apperr.WrapErrorWithReason(op, apperr.CodeInvalidPageDef, "missing pageName")
	}

	if len(p.Elements) == 0 {
		return apperr.Wrap(op, apperr.CodeInvalidPageDef, fmt.Errorf("page %q declares no elements", p.PageName), map[string]any{
			apperr.MetaPage: p.PageName,
		})
	}

	seen := make(map[string]struct{}, len(p.Elements))

	for i := range p.Elements {
		el := &p.Elements[i]

		if err := el.validate(); err != nil {
			return apperr.Wrap(op, apperr.CodeInvalidPageDef, err, map[string]any{
				apperr.MetaPage:    p.PageName,
				apperr.MetaElement: el.Name,
			})
		}

		if _, dup := seen[el.Name]; dup {
			return apperr.Wrap(op, apperr.CodeInvalidPageDef, fmt.Errorf("duplicate element name %q", el.Name), map[string]any{
				apperr.MetaPage:    p.PageName,
				apperr.MetaElement: el.Name,
			})
		}
		seen[el.Name] = struct{}{}
	}

	return nil
}

func (e *ElementDefinition) validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("element with locator %q has no name", e.Locator)
	}

	if strings.TrimSpace(e.Locator) == "" {
		return fmt.Errorf("element %q has no locator", e.Name)
	}

	if _, err := ParseElementType(string(e.Type)); err != nil {
		return fmt.Errorf("element %q: %w", e.Name, err)
	}

	count := locator.PlaceholderCount(e.Locator)

	if e.Type.IsDynamic() && count != 1 {
		return fmt.Errorf("element %q is dynamic but its locator has %d placeholders, want exactly 1", e.Name, count)
	}

	if !e.Type.IsDynamic() && count != 0 {
		return fmt.Errorf("element %q is not dynamic but its locator contains a placeholder", e.Name)
	}

	switch e.Wait {
	case "", WaitVisible, WaitClickable, WaitPresent, WaitInvisible:
	default:
		return fmt.Errorf("element %q has unknown wait type %q", e.Name, e.Wait)
	}

	return nil
}
