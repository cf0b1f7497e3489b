package pagefactory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ui-harness/internal/config"
	"ui-harness/internal/entity"
	"ui-harness/internal/ports/portstest"
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
    {"name": "submitButton", "locator": "css=button[type='submit']", "type": "button"},
    {"name": "errorBanner", "locator": "css=.error", "type": "label", "required": false}
  ]
}`

const dashboardPageYAML = `pageName: dashboardPage
url: /dashboard
elements:
  - name: widgetRows
    locator: css=.widget
    type: collection
  - name: rowMenu
    locator: xpath=//div[@data-widget='%s']//button
    type: dynamic_button
`

func testConfig(pagesDir string) *config.Config {
	return &config.Config{
		AppConfig:     &config.AppConfig{},
		BrowserConfig: &config.BrowserConfig{WaitTimeout: 100, BaseURL: "https://app.example.com"},
		PagesConfig:   &config.PagesConfig{PagesDir: pagesDir},
		HealingConfig: &config.HealingConfig{},
	}
}

func newTestFactory(t *testing.T) (*Factory, *portstest.FakeDriver, string) {
	t.Helper()

	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "loginPage.json"), []byte(loginPageJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dashboardPage.yaml"), []byte(dashboardPageYAML), 0o644))

	drv := portstest.NewFakeDriver()

	factory := NewFactory(Params{
		Driver: drv,
		Logger: zap.NewNop(),
		Config: testConfig(dir),
		Cache:  NewCache(),
	})

	return factory, drv, dir
}

func TestLoadPageFromJSON(t *testing.T) {
	factory, _, _ := newTestFactory(t)

	page, err := factory.LoadPage(context.Background(), "loginPage")
	require.NoError(t, err)

	assert.Equal(t, "loginPage", page.Name())
	assert.True(t, page.HasElement("usernameInput"))
	assert.ElementsMatch(t,
		[]string{"usernameInput", "passwordInput", "submitButton", "errorBanner"},
		page.ElementNames())
	assert.True(t, factory.IsCached("loginPage"))
	assert.Equal(t, 1, factory.CacheSize())
}

func TestLoadPageFromYAML(t *testing.T) {
	factory, _, dir := newTestFactory(t)

	page, err := factory.LoadPage(context.Background(), filepath.Join(dir, "dashboardPage.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "dashboardPage", page.Name())
	assert.True(t, page.HasElement("rowMenu"))
}

func TestRepeatedLoadServedFromCache(t *testing.T) {
	factory, _, dir := newTestFactory(t)
	ctx := context.Background()

	_, err := factory.LoadPage(ctx, "loginPage")
	require.NoError(t, err)

	// Break the file on disk; the cached definition must keep serving.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "loginPage.json"), []byte("{broken"), 0o644))

	page, err := factory.LoadPage(ctx, "loginPage")
	require.NoError(t, err)
	assert.Equal(t, "loginPage", page.Name())
	assert.Equal(t, 1, factory.CacheSize())
}

func TestMismatchedFileStemStillServedFromCache(t *testing.T) {
	factory, _, dir := newTestFactory(t)
	ctx := context.Background()

	// The file stem does not follow the stem-equals-pageName convention.
	renamed := `{
  "pageName": "checkoutPage",
  "elements": [
    {"name": "payButton", "locator": "id=pay", "type": "button"}
  ]
}`
	path := filepath.Join(dir, "checkout_v2.json")
	require.NoError(t, os.WriteFile(path, []byte(renamed), 0o644))

	page, err := factory.LoadPage(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "checkoutPage", page.Name())
	assert.True(t, factory.IsCached("checkoutPage"))

	// Break the file; the second load through the same path must hit the
	// cached definition instead of re-parsing.
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	page, err = factory.LoadPage(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "checkoutPage", page.Name())
	assert.Equal(t, 1, factory.CacheSize())
}

func TestClearCacheForcesReparse(t *testing.T) {
	factory, _, dir := newTestFactory(t)
	ctx := context.Background()

	_, err := factory.LoadPage(ctx, "loginPage")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "loginPage.json"), []byte("{broken"), 0o644))

	factory.ClearCache()
	assert.Equal(t, 0, factory.CacheSize())

	_, err = factory.LoadPage(ctx, "loginPage")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidPageDef))
}

func TestClearCacheIdempotent(t *testing.T) {
	factory, _, _ := newTestFactory(t)

	factory.ClearCache()
	factory.ClearCache()
	assert.Equal(t, 0, factory.CacheSize())
}

func TestLoadPageRejectsDuplicateElementNames(t *testing.T) {
	factory, _, dir := newTestFactory(t)

	duplicated := `{
  "pageName": "dupPage",
  "elements": [
    {"name": "twin", "locator": "id=a", "type": "button"},
    {"name": "twin", "locator": "id=b", "type": "button"}
  ]
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dupPage.json"), []byte(duplicated), 0o644))

	_, err := factory.LoadPage(context.Background(), "dupPage")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidPageDef))
}

func TestLoadPageMissingFile(t *testing.T) {
	factory, _, _ := newTestFactory(t)

	_, err := factory.LoadPage(context.Background(), "ghostPage")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidPageDef))
}

func TestPreloadLoadsEveryDefinition(t *testing.T) {
	factory, _, _ := newTestFactory(t)

	require.NoError(t, factory.Preload(context.Background()))
	assert.Equal(t, 2, factory.CacheSize())
	assert.True(t, factory.IsCached("loginPage"))
	assert.True(t, factory.IsCached("dashboardPage"))
}

func TestWrapperAccessIsIdempotent(t *testing.T) {
	factory, _, _ := newTestFactory(t)

	page, err := factory.LoadPage(context.Background(), "loginPage")
	require.NoError(t, err)

	first, err := page.Button("submitButton")
	require.NoError(t, err)

	second, err := page.Button("submitButton")
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestElementNotDeclared(t *testing.T) {
	factory, _, _ := newTestFactory(t)

	page, err := factory.LoadPage(context.Background(), "loginPage")
	require.NoError(t, err)

	_, err = page.Element("ghostElement")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeElementNotFound))

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "loginPage", appErr.Metadata[apperr.MetaPage])
	assert.Equal(t, "ghostElement", appErr.Metadata[apperr.MetaElement])
}

func TestTypedAccessorRejectsMismatch(t *testing.T) {
	factory, _, _ := newTestFactory(t)

	page, err := factory.LoadPage(context.Background(), "loginPage")
	require.NoError(t, err)

	_, err = page.Combobox("submitButton")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidArgument))
}

func TestOpenResolvesAgainstBaseURL(t *testing.T) {
	factory, drv, _ := newTestFactory(t)

	page, err := factory.LoadPage(context.Background(), "loginPage")
	require.NoError(t, err)

	require.NoError(t, page.Open(context.Background()))
	assert.Equal(t, "https://app.example.com/login", drv.URL())
}

func TestVerifyRequiredReportsMissingElement(t *testing.T) {
	factory, drv, _ := newTestFactory(t)
	ctx := context.Background()

	page, err := factory.LoadPage(ctx, "loginPage")
	require.NoError(t, err)

	drv.AddElement("#username", "")
	drv.AddElement("#password", "")
	// submitButton never appears in the DOM; errorBanner is optional.

	err = page.VerifyRequired(ctx)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeElementNotFound))

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "submitButton", appErr.Metadata[apperr.MetaElement])
}

func TestSearchTextboxTypeThenRead(t *testing.T) {
	factory, drv, _ := newTestFactory(t)
	drv.AddElement("#search", "")

	page, err := factory.FromDefinition(&entity.PageDefinition{
		PageName: "searchPage",
		Elements: []entity.ElementDefinition{
			{Name: "search", Locator: "id=search", Type: entity.TypeTextbox},
		},
	})
	require.NoError(t, err)

	box, err := page.Textbox("search")
	require.NoError(t, err)

	ctx := context.Background()

	require.NoError(t, box.Type(ctx, "Da Nang"))

	value, err := box.GetValue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Da Nang", value)
}

func TestValidateSource(t *testing.T) {
	factory, _, dir := newTestFactory(t)

	require.NoError(t, factory.ValidateSource(filepath.Join(dir, "loginPage.json")))
	require.Error(t, factory.ValidateSource(filepath.Join(dir, "nope.json")))
	assert.Equal(t, 0, factory.CacheSize())
}
