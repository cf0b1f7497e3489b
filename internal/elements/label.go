package elements

import (
	"context"
	"regexp"
	"strings"

	"ui-harness/internal/entity"
	"ui-harness/internal/ports"
	"ui-harness/pkg/apperr"

	"go.uber.org/zap"
)

// Label wraps read-only text nodes.
type Label struct {
	Base
}

func NewLabel(driver ports.Driver, logger *zap.Logger, def *entity.ElementDefinition, timeout ...int) (*Label, error) {
	base, err := newBase(driver, logger, def, pickTimeout(timeout))
	if err != nil {
		return nil, err
	}

	return &Label{Base: base}, nil
}

func (l *Label) ContainsText(ctx context.Context, substring string) (bool, error) {
	text, err := l.GetText(ctx)
	if err != nil {
		return false, err
	}

	return strings.Contains(text, substring), nil
}

func (l *Label) EqualsText(ctx context.Context, expected string) (bool, error) {
	text, err := l.GetText(ctx)
	if err != nil {
		return false, err
	}

	return text == expected, nil
}

func (l *Label) MatchesPattern(ctx context.Context, pattern string) (bool, error) {
	const op = "Label.MatchesPattern"

	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, apperr.Wrap(op, apperr.CodeInvalidParameter, err, map[string]any{
			apperr.MetaElement:   l.name,
			apperr.MetaParameter: pattern,
			apperr.MetaReason:    "invalid_pattern",
		})
	}

	text, err := l.GetText(ctx)
	if err != nil {
		return false, err
	}

	return re.MatchString(text), nil
}
