package entity

import (
	"time"

	"github.com/google/uuid"
)

// ElementType is the closed set of wrapper kinds a page definition may declare.
type ElementType string

const (
	TypeButton        ElementType = "button"
	TypeTextbox       ElementType = "textbox"
	TypeCombobox      ElementType = "combobox"
	TypeCheckbox      ElementType = "checkbox"
	TypeLabel         ElementType = "label"
	TypeCollection    ElementType = "collection"
	TypeDynamicLabel  ElementType = "dynamic_label"
	TypeDynamicButton ElementType = "dynamic_button"
	TypeDynamicLink   ElementType = "dynamic_link"
	TypeListElement   ElementType = "list_element"
)

// IsDynamic reports whether the type takes a runtime parameter that is
// substituted into the locator placeholder before resolution.
func (t ElementType) IsDynamic() bool {
	switch t {
	case TypeDynamicLabel, TypeDynamicButton, TypeDynamicLink:
		return true
	}

	return false
}

type WaitType string

const (
	WaitVisible   WaitType = "visible"
	WaitClickable WaitType = "clickable"
	WaitPresent   WaitType = "present"
	WaitInvisible WaitType = "invisible"
)

type ElementDefinition struct {
	Name        string      `json:"name"`
	Locator     string      `json:"locator"`
	Type        ElementType `json:"type"`
	Description string      `json:"description,omitempty"`
	Timeout     int         `json:"timeout,omitempty"`
	Required    *bool       `json:"required,omitempty"`
	Wait        WaitType    `json:"wait,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
}

// IsRequired defaults to true when the field is omitted.
func (e *ElementDefinition) IsRequired() bool {
	return e.Required == nil || *e.Required
}

func (e *ElementDefinition) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}

	return false
}

// WaitPolicy returns the declared wait type, falling back to a default
// derived from the element type: interactive controls wait for clickable,
// everything else waits for visible.
func (e *ElementDefinition) WaitPolicy() WaitType {
	if e.Wait != "" {
		return e.Wait
	}

	switch e.Type {
	case TypeButton, TypeCombobox, TypeCheckbox, TypeDynamicButton, TypeDynamicLink:
		return WaitClickable
	default:
		return WaitVisible
	}
}

type PageDefinition struct {
	PageName    string              `json:"pageName"`
	URL         string              `json:"url,omitempty"`
	Description string              `json:"description,omitempty"`
	Timeout     int                 `json:"timeout,omitempty"`
	Tags        []string            `json:"tags,omitempty"`
	Metadata    map[string]any      `json:"metadata,omitempty"`
	Elements    []ElementDefinition `json:"elements"`

	index map[string]*ElementDefinition
}

// BuildIndex prepares the by-name lookup table. Called once after decoding;
// lookups before it fall back to a linear scan.
func (p *PageDefinition) BuildIndex() {
	p.index = make(map[string]*ElementDefinition, len(p.Elements))
	for i := range p.Elements {
		p.index[p.Elements[i].Name] = &p.Elements[i]
	}
}

func (p *PageDefinition) FindElement(name string) *ElementDefinition {
	if p.index != nil {
		return p.index[name]
	}

	for i := range p.Elements {
		if p.Elements[i].Name == name {
			return &p.Elements[i]
		}
	}

	return nil
}

func (p *PageDefinition) HasElement(name string) bool {
	return p.FindElement(name) != nil
}

func (p *PageDefinition) ElementNames() []string {
	names := make([]string, 0, len(p.Elements))
	for i := range p.Elements {
		names = append(names, p.Elements[i].Name)
	}

	return names
}

func (p *PageDefinition) ElementsByType(elementType ElementType) []ElementDefinition {
	var result []ElementDefinition

	for i := range p.Elements {
		if p.Elements[i].Type == elementType {
			result = append(result, p.Elements[i])
		}
	}

	return result
}

func (p *PageDefinition) ElementsByTag(tag string) []ElementDefinition {
	var result []ElementDefinition

	for i := range p.Elements {
		if p.Elements[i].HasTag(tag) {
			result = append(result, p.Elements[i])
		}
	}

	return result
}

func (p *PageDefinition) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}

	return false
}

func (p *PageDefinition) MetadataString(key, defaultValue string) string {
	if v, ok := p.Metadata[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}

	return defaultValue
}

type RunStatus string

const (
	RunStatusPending    RunStatus = "pending"
	RunStatusInProgress RunStatus = "in_progress"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
)

// Run is one execution of a scenario against a browser session.
type Run struct {
	ID          uuid.UUID
	Scenario    string
	Status      RunStatus
	CreatedAt   time.Time
	CompletedAt *time.Time
	Steps       []Step
	Error       string
}

type Step struct {
	ID          uuid.UUID
	Action      string
	Page        string
	Element     string
	Value       string
	Timestamp   time.Time
	Success     bool
	Error       string
}

// Fingerprint is a snapshot of a resolved element's identifying DOM
// attributes, captured on successful resolutions and used to propose
// replacement selectors when the original locator stops matching.
type Fingerprint struct {
	Tag        string            `json:"tag"`
	Text       string            `json:"text"`
	Attributes map[string]string `json:"attributes"`
	CapturedAt time.Time         `json:"capturedAt"`
}
