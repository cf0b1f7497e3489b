package scenario

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ui-harness/internal/config"
	"ui-harness/internal/entity"
	"ui-harness/internal/pagefactory"
	"ui-harness/internal/ports/portstest"
	"ui-harness/internal/testdata"
	"ui-harness/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const loginPageJSON = `{
  "pageName": "loginPage",
  "url": "/login",
  "elements": [
    {"name": "usernameInput", "locator": "id=username", "type": "textbox"},
    {"name": "passwordInput", "locator": "id=password", "type": "textbox"},
    {"name": "submitButton", "locator": "id=submit", "type": "button"},
    {"name": "welcomeBanner", "locator": "css=.banner", "type": "label"}
  ]
}`

const credentialsJSON = `{
  "admin": {"username": "admin", "password": "s3cret"}
}`

func newTestRunner(t *testing.T) (*Runner, *portstest.FakeDriver) {
	t.Helper()

	pagesDir := t.TempDir()
	dataDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(pagesDir, "loginPage.json"), []byte(loginPageJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "credentials.json"), []byte(credentialsJSON), 0o644))

	drv := portstest.NewFakeDriver()
	drv.AddElement("#username", "")
	drv.AddElement("#password", "")
	drv.AddElement("#submit", "Sign in")
	drv.AddElement(".banner", "Welcome back, admin")

	cfg := &config.Config{
		AppConfig:     &config.AppConfig{},
		BrowserConfig: &config.BrowserConfig{WaitTimeout: 100, BaseURL: "https://app.example.com"},
		PagesConfig:   &config.PagesConfig{PagesDir: pagesDir, TestDataDir: dataDir},
		HealingConfig: &config.HealingConfig{},
	}

	factory := pagefactory.NewFactory(pagefactory.Params{
		Driver: drv,
		Logger: zap.NewNop(),
		Config: cfg,
		Cache:  pagefactory.NewCache(),
	})

	loader := testdata.NewLoaderWith(zap.NewNop(), dataDir, nil)

	runner := NewRunner(Params{
		Driver:  drv,
		Factory: factory,
		Data:    loader,
		Logger:  zap.NewNop(),
	})

	return runner, drv
}

func loginScenario() *Definition {
	return &Definition{
		Name: "login",
		Steps: []StepDefinition{
			{Action: ActionOpen, Page: "loginPage"},
			{Action: ActionType, Page: "loginPage", Element: "usernameInput", Data: "credentials:admin.username"},
			{Action: ActionType, Page: "loginPage", Element: "passwordInput", Value: "s3cret"},
			{Action: ActionClick, Page: "loginPage", Element: "submitButton"},
			{Action: ActionVerifyText, Page: "loginPage", Element: "welcomeBanner", Value: "Welcome back"},
		},
	}
}

func TestRunExecutesAllSteps(t *testing.T) {
	runner, drv := newTestRunner(t)

	run, err := runner.Run(context.Background(), loginScenario())
	require.NoError(t, err)

	assert.Equal(t, entity.RunStatusCompleted, run.Status)
	assert.NotEqual(t, run.ID.String(), "00000000-0000-0000-0000-000000000000")
	require.Len(t, run.Steps, 5)
	require.NotNil(t, run.CompletedAt)

	for _, step := range run.Steps {
		assert.True(t, step.Success)
		assert.Empty(t, step.Error)
	}

	assert.Equal(t, "https://app.example.com/login", drv.URL())
	assert.Equal(t, "admin", drv.Values["#username"])
	assert.Equal(t, "s3cret", drv.Values["#password"])
	require.Len(t, drv.CallsTo("Click"), 1)
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	runner, drv := newTestRunner(t)
	drv.Enabled["#submit"] = false

	run, err := runner.Run(context.Background(), loginScenario())
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeElementNotReady))

	assert.Equal(t, entity.RunStatusFailed, run.Status)
	assert.NotEmpty(t, run.Error)
	require.NotNil(t, run.CompletedAt)

	// Steps up to and including the failed click are recorded.
	require.Len(t, run.Steps, 4)
	assert.True(t, run.Steps[2].Success)
	assert.False(t, run.Steps[3].Success)
	assert.NotEmpty(t, run.Steps[3].Error)
}

func TestRunVerifyTextMismatch(t *testing.T) {
	runner, drv := newTestRunner(t)
	drv.Texts[".banner"] = "Session expired"

	run, err := runner.Run(context.Background(), loginScenario())
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeActionFailed))
	assert.Equal(t, entity.RunStatusFailed, run.Status)
}

func TestRunMalformedDataReference(t *testing.T) {
	runner, _ := newTestRunner(t)

	def := &Definition{
		Name: "bad-data",
		Steps: []StepDefinition{
			{Action: ActionType, Page: "loginPage", Element: "usernameInput", Data: "no-colon-here"},
		},
	}

	_, err := runner.Run(context.Background(), def)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidArgument))
}

func TestDefinitionValidation(t *testing.T) {
	cases := []struct {
		name string
		def  Definition
	}{
		{"empty name", Definition{Steps: []StepDefinition{{Action: ActionOpen, Page: "p"}}}},
		{"no steps", Definition{Name: "s"}},
		{"unknown action", Definition{Name: "s", Steps: []StepDefinition{{Action: "teleport", Page: "p"}}}},
		{"click without element", Definition{Name: "s", Steps: []StepDefinition{{Action: ActionClick, Page: "p"}}}},
		{"type without value", Definition{Name: "s", Steps: []StepDefinition{{Action: ActionType, Page: "p", Element: "e"}}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.def.Validate()
			require.Error(t, err)
			assert.True(t, apperr.IsCode(err, apperr.CodeInvalidArgument))
		})
	}
}

func TestLoadDefinitionFromYAML(t *testing.T) {
	dir := t.TempDir()

	scenarioYAML := `name: smoke
steps:
  - action: open
    page: loginPage
  - action: verify_visible
    page: loginPage
    element: welcomeBanner
`
	path := filepath.Join(dir, "smoke.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenarioYAML), 0o644))

	def, err := LoadDefinition(path)
	require.NoError(t, err)
	assert.Equal(t, "smoke", def.Name)
	require.Len(t, def.Steps, 2)
	assert.Equal(t, ActionVerifyVisible, def.Steps[1].Action)
}
