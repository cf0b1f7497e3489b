// Package locator parses the prefixed locator strings used in page
// definitions into driver-native selectors. Resolution is a pure string
// transformation with no driver involvement.
package locator

import (
	"fmt"
	"strings"

	"ui-harness/pkg/apperr"
)

type Kind string

const (
	KindXPath Kind = "xpath"
	KindCSS   Kind = "css"
	KindID    Kind = "id"
	KindClass Kind = "class"
	KindName  Kind = "name"
)

// Recognized prefixes in priority order. Matching is anchored at the start
// of the string so CSS attribute selectors containing '=' are never
// misparsed as a prefix.
var prefixes = []struct {
	prefix string
	kind   Kind
}{
	{"xpath=", KindXPath},
	{"css=", KindCSS},
	{"id=", KindID},
	{"class=", KindClass},
	{"name=", KindName},
}

// Selector is a resolved locator: the strategy kind plus the stripped value.
type Selector struct {
	Kind  Kind
	Value string
}

// Native renders the selector in the form the browser driver consumes.
func (s Selector) Native() string {
	switch s.Kind {
	case KindXPath:
		return "xpath=" + s.Value
	case KindID:
		return "#" + s.Value
	case KindClass:
		return "." + s.Value
	case KindName:
		return fmt.Sprintf("[name=%q]", s.Value)
	default:
		return s.Value
	}
}

func (s Selector) String() string {
	return string(s.Kind) + "=" + s.Value
}

// Resolve parses a locator string into a Selector. Strings without a
// recognized prefix are treated as CSS selectors.
func Resolve(locatorString string) (Selector, error) {
	const op = "locator.Resolve"

	if strings.TrimSpace(locatorString) == "" {
		return Selector{}, apperr.WrapErrorWithReason(op, apperr.CodeInvalidArgument, "missing locator")
	}

	for _, p := range prefixes {
		if strings.HasPrefix(locatorString, p.prefix) {
			return Selector{Kind: p.kind, Value: locatorString[len(p.prefix):]}, nil
		}
	}

	return Selector{Kind: KindCSS, Value: locatorString}, nil
}

const (
	placeholderVerb  = "%s"
	placeholderIndex = "{index}"
)

// PlaceholderCount counts the parameter slots in a dynamic locator template.
func PlaceholderCount(template string) int {
	return strings.Count(template, placeholderVerb) + strings.Count(template, placeholderIndex)
}

// Expand substitutes the runtime parameter into a dynamic locator template.
// The parameter must be non-empty: resolving an un-substituted template would
// silently match nothing or the wrong element.
func Expand(template, parameter string) (string, error) {
	const op = "locator.Expand"

	if parameter == "" {
		return "", apperr.Wrap(op, apperr.CodeInvalidParameter, fmt.Errorf("empty parameter for template %q", template), map[string]any{
			apperr.MetaLocator: template,
			apperr.MetaReason:  "empty_parameter",
		})
	}

	if strings.Contains(template, placeholderIndex) {
		return strings.Replace(template, placeholderIndex, parameter, 1), nil
	}

	if strings.Contains(template, placeholderVerb) {
		return strings.Replace(template, placeholderVerb, parameter, 1), nil
	}

	return "", apperr.Wrap(op, apperr.CodeInvalidParameter, fmt.Errorf("template %q has no placeholder", template), map[string]any{
		apperr.MetaLocator: template,
		apperr.MetaReason:  "missing_placeholder",
	})
}
