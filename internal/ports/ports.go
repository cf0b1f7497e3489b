package ports

import (
	"context"
	"time"

	"ui-harness/internal/entity"
)

// WaitState is the driver-level wait condition. Clickable is implemented by
// the driver as visible plus enabled, polled until the deadline.
type WaitState string

const (
	WaitStateVisible   WaitState = "visible"
	WaitStateAttached  WaitState = "attached"
	WaitStateHidden    WaitState = "hidden"
	WaitStateClickable WaitState = "clickable"
)

// Driver is the browser capability set the element wrappers are built on.
// Implementations never expose driver-native handle types; everything is
// addressed by selector string so alternate locators can be swapped in.
type Driver interface {
	Launch(ctx context.Context) error
	Close(ctx context.Context) error
	IsReady() bool

	Navigate(ctx context.Context, url string) error
	URL() string
	Title() (string, error)

	WaitFor(ctx context.Context, selector string, state WaitState, timeout time.Duration) error

	Click(ctx context.Context, selector string) error
	DoubleClick(ctx context.Context, selector string) error
	RightClick(ctx context.Context, selector string) error
	ClickViaScript(ctx context.Context, selector string) error

	Fill(ctx context.Context, selector, value string) error
	TypeText(ctx context.Context, selector, value string) error
	ClearInput(ctx context.Context, selector string) error
	Press(ctx context.Context, selector, key string) error
	InputValue(ctx context.Context, selector string) (string, error)

	Text(ctx context.Context, selector string) (string, error)
	Attribute(ctx context.Context, selector, name string) (string, error)
	HasAttribute(ctx context.Context, selector, name string) (bool, error)
	IsVisible(ctx context.Context, selector string) (bool, error)
	IsEnabled(ctx context.Context, selector string) (bool, error)

	IsChecked(ctx context.Context, selector string) (bool, error)
	SetChecked(ctx context.Context, selector string, checked bool) error

	SelectByLabel(ctx context.Context, selector, label string) error
	SelectByValue(ctx context.Context, selector, value string) error
	SelectByIndex(ctx context.Context, selector string, index int) error
	SelectedText(ctx context.Context, selector string) (string, error)
	OptionTexts(ctx context.Context, selector string) ([]string, error)

	Count(ctx context.Context, selector string) (int, error)
	TextAt(ctx context.Context, selector string, index int) (string, error)
	ClickAt(ctx context.Context, selector string, index int) error
	AllTexts(ctx context.Context, selector string) ([]string, error)

	ScrollIntoView(ctx context.Context, selector string) error
	Highlight(ctx context.Context, selector string) error
	Capture(ctx context.Context, selector string) (*entity.Fingerprint, error)
	Screenshot(ctx context.Context, path string) error
	Evaluate(ctx context.Context, script string) (any, error)
}
