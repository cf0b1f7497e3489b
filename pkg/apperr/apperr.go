package apperr

import (
	"errors"
	"fmt"
)

const (
	MetaReason    = "reason"
	MetaStage     = "stage"
	MetaField     = "field"
	MetaPage      = "page"
	MetaElement   = "element"
	MetaSelector  = "selector"
	MetaLocator   = "locator"
	MetaWait      = "wait"
	MetaParameter = "parameter"
	MetaSource    = "source"
	MetaURL       = "url"
	MetaIndex     = "index"
	MetaAttempts  = "attempts"

	StageBrowser    = "browser"
	StagePageLoad   = "page_load"
	StageResolution = "resolution"
	StageWait       = "wait"
	StageAction     = "action"
	StageHealing    = "healing"
	StageNavigation = "navigation"
	StageTestData   = "test_data"

	CodeInternal            = "internal"
	CodeInvalidArgument     = "invalid_argument"
	CodeNotFound            = "not_found"
	CodeTimeout             = "timeout"
	CodeBrowserNotReady     = "browser_not_ready"
	CodeInvalidPageDef      = "invalid_page_definition"
	CodeElementNotFound     = "element_not_found"
	CodeElementNotReady     = "element_not_ready"
	CodeActionFailed        = "action_failed"
	CodeAllCandidatesFailed = "all_candidates_failed"
	CodeInvalidParameter    = "invalid_parameter"
)

type Error struct {
	Op       string
	Code     string
	Err      error
	Metadata map[string]any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}

	return e.Op
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Wrap(op, code string, err error, metadata map[string]any) error {
	if metadata == nil {
		metadata = make(map[string]any)
	}

	return &Error{
		Op:       op,
		Code:     code,
		Err:      err,
		Metadata: metadata,
	}
}

func WrapWithReason(op, code string, err error, reason string) error {
	return Wrap(op, code, err, map[string]any{
		MetaReason: reason,
	})
}

func WrapErrorWithReason(op, code, reason string) error {
	return Wrap(op, code, errors.New(reason), map[string]any{
		MetaReason: reason,
	})
}

func InvalidReqError(op, field string, err error) error {
	return Wrap(op, CodeInvalidArgument, err, map[string]any{
		MetaField:  field,
		MetaReason: "invalid_request",
	})
}

func NotFoundError(op string, err error) error {
	return Wrap(op, CodeNotFound, err, map[string]any{
		MetaReason: "not_found",
	})
}

// CodeOf returns the code of the outermost *Error in err's chain,
// or CodeInternal when err carries no code.
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}

	return CodeInternal
}

// IsCode reports whether any error in err's chain carries the given code.
func IsCode(err error, code string) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		if appErr.Code == code {
			return true
		}

		return IsCode(appErr.Err, code)
	}

	return false
}
