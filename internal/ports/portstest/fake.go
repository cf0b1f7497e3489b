// Package portstest provides an in-memory Driver for wrapper and factory
// tests. State is held in per-selector maps; every mutating call is recorded
// so tests can assert on the exact driver traffic.
package portstest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"ui-harness/internal/entity"
	"ui-harness/internal/ports"
)

type Call struct {
	Method   string
	Selector string
	Value    string
}

type FakeDriver struct {
	mu sync.Mutex

	ready      bool
	currentURL string
	pageTitle  string

	Texts        map[string]string
	Values       map[string]string
	Attributes   map[string]map[string]string
	Visible      map[string]bool
	Enabled      map[string]bool
	Checked      map[string]bool
	Options      map[string][]string
	Selected     map[string]string
	Items        map[string][]string
	Fingerprints map[string]*entity.Fingerprint

	// FailSelectors makes every operation on a listed selector fail,
	// simulating a locator that no longer matches.
	FailSelectors map[string]bool

	// FailTimes fails the next N operations on a selector and then lets
	// them through, simulating transient flakiness.
	FailTimes map[string]int

	Calls []Call
}

func NewFakeDriver() *FakeDriver {
	return &FakeDriver{
		ready:         true,
		Texts:         make(map[string]string),
		Values:        make(map[string]string),
		Attributes:    make(map[string]map[string]string),
		Visible:       make(map[string]bool),
		Enabled:       make(map[string]bool),
		Checked:       make(map[string]bool),
		Options:       make(map[string][]string),
		Selected:      make(map[string]string),
		Items:         make(map[string][]string),
		Fingerprints:  make(map[string]*entity.Fingerprint),
		FailSelectors: make(map[string]bool),
		FailTimes:     make(map[string]int),
	}
}

// AddElement registers a visible, enabled element under the selector.
func (f *FakeDriver) AddElement(selector, text string) {
	f.Texts[selector] = text
	f.Visible[selector] = true
	f.Enabled[selector] = true
}

func (f *FakeDriver) record(method, selector, value string) {
	f.mu.Lock()
	f.Calls = append(f.Calls, Call{Method: method, Selector: selector, Value: value})
	f.mu.Unlock()
}

func (f *FakeDriver) CallsTo(method string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []Call
	for _, c := range f.Calls {
		if c.Method == method {
			out = append(out, c)
		}
	}

	return out
}

func (f *FakeDriver) check(selector string) error {
	if f.FailSelectors[selector] {
		return fmt.Errorf("selector %q: no matches", selector)
	}

	if n := f.FailTimes[selector]; n > 0 {
		f.FailTimes[selector] = n - 1

		return fmt.Errorf("selector %q: transient failure", selector)
	}

	return nil
}

func (f *FakeDriver) Launch(_ context.Context) error {
	f.ready = true

	return nil
}

func (f *FakeDriver) Close(_ context.Context) error {
	f.ready = false

	return nil
}

func (f *FakeDriver) IsReady() bool {
	return f.ready
}

func (f *FakeDriver) Navigate(_ context.Context, url string) error {
	f.record("Navigate", "", url)
	f.currentURL = url

	return nil
}

func (f *FakeDriver) URL() string {
	return f.currentURL
}

func (f *FakeDriver) SetTitle(title string) {
	f.pageTitle = title
}

func (f *FakeDriver) Title() (string, error) {
	return f.pageTitle, nil
}

func (f *FakeDriver) WaitFor(_ context.Context, selector string, state ports.WaitState, _ time.Duration) error {
	if err := f.check(selector); err != nil {
		return err
	}

	switch state {
	case ports.WaitStateHidden:
		if f.Visible[selector] {
			return errors.New("still visible: " + selector)
		}
	case ports.WaitStateAttached:
		if !f.known(selector) {
			return errors.New("not attached: " + selector)
		}
	case ports.WaitStateClickable:
		if !f.Visible[selector] || !f.Enabled[selector] {
			return errors.New("not clickable: " + selector)
		}
	default:
		if !f.Visible[selector] {
			return errors.New("not visible: " + selector)
		}
	}

	return nil
}

func (f *FakeDriver) known(selector string) bool {
	if _, ok := f.Texts[selector]; ok {
		return true
	}
	if _, ok := f.Values[selector]; ok {
		return true
	}
	if _, ok := f.Visible[selector]; ok {
		return true
	}
	_, ok := f.Items[selector]

	return ok
}

func (f *FakeDriver) Click(_ context.Context, selector string) error {
	f.record("Click", selector, "")

	return f.check(selector)
}

func (f *FakeDriver) DoubleClick(_ context.Context, selector string) error {
	f.record("DoubleClick", selector, "")

	return f.check(selector)
}

func (f *FakeDriver) RightClick(_ context.Context, selector string) error {
	f.record("RightClick", selector, "")

	return f.check(selector)
}

func (f *FakeDriver) ClickViaScript(_ context.Context, selector string) error {
	f.record("ClickViaScript", selector, "")

	return f.check(selector)
}

func (f *FakeDriver) Fill(_ context.Context, selector, value string) error {
	f.record("Fill", selector, value)

	if err := f.check(selector); err != nil {
		return err
	}

	f.Values[selector] = value

	return nil
}

func (f *FakeDriver) TypeText(_ context.Context, selector, value string) error {
	f.record("TypeText", selector, value)

	if err := f.check(selector); err != nil {
		return err
	}

	f.Values[selector] += value

	return nil
}

func (f *FakeDriver) ClearInput(_ context.Context, selector string) error {
	f.record("ClearInput", selector, "")

	if err := f.check(selector); err != nil {
		return err
	}

	f.Values[selector] = ""

	return nil
}

func (f *FakeDriver) Press(_ context.Context, selector, key string) error {
	f.record("Press", selector, key)

	return f.check(selector)
}

func (f *FakeDriver) InputValue(_ context.Context, selector string) (string, error) {
	if err := f.check(selector); err != nil {
		return "", err
	}

	return f.Values[selector], nil
}

func (f *FakeDriver) Text(_ context.Context, selector string) (string, error) {
	if err := f.check(selector); err != nil {
		return "", err
	}

	return f.Texts[selector], nil
}

func (f *FakeDriver) Attribute(_ context.Context, selector, name string) (string, error) {
	if err := f.check(selector); err != nil {
		return "", err
	}

	return f.Attributes[selector][name], nil
}

func (f *FakeDriver) HasAttribute(_ context.Context, selector, name string) (bool, error) {
	if err := f.check(selector); err != nil {
		return false, err
	}

	_, ok := f.Attributes[selector][name]

	return ok, nil
}

func (f *FakeDriver) IsVisible(_ context.Context, selector string) (bool, error) {
	if err := f.check(selector); err != nil {
		return false, err
	}

	return f.Visible[selector], nil
}

func (f *FakeDriver) IsEnabled(_ context.Context, selector string) (bool, error) {
	if err := f.check(selector); err != nil {
		return false, err
	}

	return f.Enabled[selector], nil
}

func (f *FakeDriver) IsChecked(_ context.Context, selector string) (bool, error) {
	if err := f.check(selector); err != nil {
		return false, err
	}

	return f.Checked[selector], nil
}

func (f *FakeDriver) SetChecked(_ context.Context, selector string, checked bool) error {
	f.record("SetChecked", selector, fmt.Sprint(checked))

	if err := f.check(selector); err != nil {
		return err
	}

	f.Checked[selector] = checked

	return nil
}

func (f *FakeDriver) SelectByLabel(_ context.Context, selector, label string) error {
	f.record("SelectByLabel", selector, label)

	if err := f.check(selector); err != nil {
		return err
	}

	for _, option := range f.Options[selector] {
		if option == label {
			f.Selected[selector] = label

			return nil
		}
	}

	return fmt.Errorf("no option %q in %q", label, selector)
}

func (f *FakeDriver) SelectByValue(_ context.Context, selector, value string) error {
	f.record("SelectByValue", selector, value)

	if err := f.check(selector); err != nil {
		return err
	}

	f.Selected[selector] = value

	return nil
}

func (f *FakeDriver) SelectByIndex(_ context.Context, selector string, index int) error {
	f.record("SelectByIndex", selector, fmt.Sprint(index))

	if err := f.check(selector); err != nil {
		return err
	}

	options := f.Options[selector]
	if index < 0 || index >= len(options) {
		return fmt.Errorf("option index %d out of range", index)
	}

	f.Selected[selector] = options[index]

	return nil
}

func (f *FakeDriver) SelectedText(_ context.Context, selector string) (string, error) {
	if err := f.check(selector); err != nil {
		return "", err
	}

	return f.Selected[selector], nil
}

func (f *FakeDriver) OptionTexts(_ context.Context, selector string) ([]string, error) {
	if err := f.check(selector); err != nil {
		return nil, err
	}

	return f.Options[selector], nil
}

func (f *FakeDriver) Count(_ context.Context, selector string) (int, error) {
	if err := f.check(selector); err != nil {
		return 0, err
	}

	if items, ok := f.Items[selector]; ok {
		return len(items), nil
	}

	if f.known(selector) {
		return 1, nil
	}

	return 0, nil
}

func (f *FakeDriver) TextAt(_ context.Context, selector string, index int) (string, error) {
	if err := f.check(selector); err != nil {
		return "", err
	}

	items := f.Items[selector]
	if index < 0 || index >= len(items) {
		return "", fmt.Errorf("index %d out of range", index)
	}

	return items[index], nil
}

func (f *FakeDriver) ClickAt(_ context.Context, selector string, index int) error {
	f.record("ClickAt", selector, fmt.Sprint(index))

	if err := f.check(selector); err != nil {
		return err
	}

	if index < 0 || index >= len(f.Items[selector]) {
		return fmt.Errorf("index %d out of range", index)
	}

	return nil
}

func (f *FakeDriver) AllTexts(_ context.Context, selector string) ([]string, error) {
	if err := f.check(selector); err != nil {
		return nil, err
	}

	return f.Items[selector], nil
}

func (f *FakeDriver) ScrollIntoView(_ context.Context, selector string) error {
	f.record("ScrollIntoView", selector, "")

	return f.check(selector)
}

func (f *FakeDriver) Highlight(_ context.Context, selector string) error {
	f.record("Highlight", selector, "")

	return f.check(selector)
}

func (f *FakeDriver) Capture(_ context.Context, selector string) (*entity.Fingerprint, error) {
	if err := f.check(selector); err != nil {
		return nil, err
	}

	if fp, ok := f.Fingerprints[selector]; ok {
		return fp, nil
	}

	return nil, fmt.Errorf("no fingerprint for %q", selector)
}

func (f *FakeDriver) Screenshot(_ context.Context, path string) error {
	f.record("Screenshot", "", path)

	return nil
}

func (f *FakeDriver) Evaluate(_ context.Context, script string) (any, error) {
	f.record("Evaluate", "", strings.SplitN(script, "\n", 2)[0])

	return nil, nil
}

var _ ports.Driver = (*FakeDriver)(nil)
