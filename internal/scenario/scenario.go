// Package scenario executes declarative UI scenarios: ordered steps acting
// on page objects, recorded step by step into a run report.
package scenario

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"ui-harness/pkg/apperr"

	"github.com/ghodss/yaml"
)

// Action is the closed set of step verbs.
type Action string

const (
	ActionOpen          Action = "open"
	ActionClick         Action = "click"
	ActionType          Action = "type"
	ActionSetValue      Action = "set_value"
	ActionClear         Action = "clear"
	ActionCheck         Action = "check"
	ActionUncheck       Action = "uncheck"
	ActionSelect        Action = "select"
	ActionPress         Action = "press"
	ActionVerifyText    Action = "verify_text"
	ActionVerifyVisible Action = "verify_visible"
	ActionScreenshot    Action = "screenshot"
)

// StepDefinition is one declared step. Value holds the typed text, the
// option label, the expected text, or the key, depending on the action.
// Parameter feeds dynamic elements. Data references test data by
// "file:dotted.path" instead of inlining the value.
type StepDefinition struct {
	Action    Action `json:"action"`
	Page      string `json:"page,omitempty"`
	Element   string `json:"element,omitempty"`
	Value     string `json:"value,omitempty"`
	Parameter string `json:"parameter,omitempty"`
	Data      string `json:"data,omitempty"`
}

type Definition struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Steps       []StepDefinition `json:"steps"`
}

// LoadDefinition reads a scenario file, JSON or YAML by extension.
func LoadDefinition(path string) (*Definition, error) {
	const op = "scenario.LoadDefinition"

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeNotFound, err, map[string]any{
			apperr.MetaReason: "scenario_unreadable",
			apperr.MetaSource: path,
		})
	}

	var def Definition

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &def)
	default:
		err = json.Unmarshal(raw, &def)
	}

	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInvalidArgument, err, map[string]any{
			apperr.MetaReason: "scenario_unparsable",
			apperr.MetaSource: path,
		})
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}

	return &def, nil
}

func (d *Definition) Validate() error {
	const op = "scenario.Validate"

	if d.Name == "" {
		return apperr.WrapErrorWithReason(op, apperr.CodeInvalidArgument, "scenario name is required")
	}

	if len(d.Steps) == 0 {
		return apperr.WrapErrorWithReason(op, apperr.CodeInvalidArgument, "scenario has no steps")
	}

	for i, step := range d.Steps {
		if err := step.validate(); err != nil {
			return apperr.Wrap(op, apperr.CodeInvalidArgument, err, map[string]any{
				apperr.MetaIndex:  i,
				apperr.MetaReason: "invalid_step",
			})
		}
	}

	return nil
}

func (s *StepDefinition) validate() error {
	const op = "scenario.step.validate"

	switch s.Action {
	case ActionOpen, ActionScreenshot:
		if s.Page == "" {
			return apperr.WrapErrorWithReason(op, apperr.CodeInvalidArgument, "page is required")
		}
	case ActionClick, ActionClear, ActionCheck, ActionUncheck, ActionVerifyVisible:
		if s.Page == "" || s.Element == "" {
			return apperr.WrapErrorWithReason(op, apperr.CodeInvalidArgument, "page and element are required")
		}
	case ActionType, ActionSetValue, ActionSelect, ActionPress, ActionVerifyText:
		if s.Page == "" || s.Element == "" {
			return apperr.WrapErrorWithReason(op, apperr.CodeInvalidArgument, "page and element are required")
		}
		if s.Value == "" && s.Data == "" {
			return apperr.WrapErrorWithReason(op, apperr.CodeInvalidArgument, "value or data reference is required")
		}
	default:
		return apperr.WrapErrorWithReason(op, apperr.CodeInvalidArgument, "unknown action "+string(s.Action))
	}

	return nil
}
