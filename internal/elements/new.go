package elements

import (
	"ui-harness/internal/entity"
	"ui-harness/internal/ports"
	"ui-harness/pkg/apperr"

	"go.uber.org/zap"
)

// New builds the wrapper matching the declared element type. List elements
// share the Collection wrapper; the distinct type only signals intent in
// the page definition.
func New(driver ports.Driver, logger *zap.Logger, def *entity.ElementDefinition, timeout ...int) (any, error) {
	const op = "elements.New"

	switch def.Type {
	case entity.TypeButton:
		return NewButton(driver, logger, def, timeout...)
	case entity.TypeTextbox:
		return NewTextbox(driver, logger, def, timeout...)
	case entity.TypeCombobox:
		return NewCombobox(driver, logger, def, timeout...)
	case entity.TypeCheckbox:
		return NewCheckbox(driver, logger, def, timeout...)
	case entity.TypeLabel:
		return NewLabel(driver, logger, def, timeout...)
	case entity.TypeCollection, entity.TypeListElement:
		return NewCollection(driver, logger, def, timeout...)
	case entity.TypeDynamicLabel:
		return NewDynamicLabel(driver, logger, def, timeout...)
	case entity.TypeDynamicButton:
		return NewDynamicButton(driver, logger, def, timeout...)
	case entity.TypeDynamicLink:
		return NewDynamicLink(driver, logger, def, timeout...)
	default:
		return nil, apperr.Wrap(op, apperr.CodeInvalidPageDef, nil, map[string]any{
			apperr.MetaElement: def.Name,
			apperr.MetaReason:  "unknown_element_type",
			"type":             string(def.Type),
		})
	}
}
