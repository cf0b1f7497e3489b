package locator

import (
	"testing"

	"ui-harness/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePrefixes(t *testing.T) {
	cases := []struct {
		locator string
		kind    Kind
		value   string
		native  string
	}{
		{"xpath=//button[@id='go']", KindXPath, "//button[@id='go']", "xpath=//button[@id='go']"},
		{"css=.menu > li", KindCSS, ".menu > li", ".menu > li"},
		{"id=login", KindID, "login", "#login"},
		{"class=primary", KindClass, "primary", ".primary"},
		{"name=email", KindName, "email", `[name="email"]`},
	}

	for _, tc := range cases {
		t.Run(tc.locator, func(t *testing.T) {
			sel, err := Resolve(tc.locator)
			require.NoError(t, err)
			assert.Equal(t, tc.kind, sel.Kind)
			assert.Equal(t, tc.value, sel.Value)
			assert.Equal(t, tc.native, sel.Native())
		})
	}
}

func TestResolveDefaultsToCSS(t *testing.T) {
	sel, err := Resolve("button[type='submit']")
	require.NoError(t, err)
	assert.Equal(t, KindCSS, sel.Kind)
	assert.Equal(t, "button[type='submit']", sel.Native())
}

// An embedded '=' inside a CSS attribute selector must not be mistaken for
// a strategy prefix.
func TestResolveEmbeddedEquals(t *testing.T) {
	sel, err := Resolve(`css=[name='x=y']`)
	require.NoError(t, err)
	assert.Equal(t, KindCSS, sel.Kind)
	assert.Equal(t, `[name='x=y']`, sel.Value)

	sel, err = Resolve(`[data-qa='a=b']`)
	require.NoError(t, err)
	assert.Equal(t, KindCSS, sel.Kind)
	assert.Equal(t, `[data-qa='a=b']`, sel.Value)
}

func TestResolveEmptyRejected(t *testing.T) {
	for _, locator := range []string{"", "   "} {
		_, err := Resolve(locator)
		require.Error(t, err)
		assert.True(t, apperr.IsCode(err, apperr.CodeInvalidArgument))
	}
}

func TestPlaceholderCount(t *testing.T) {
	assert.Equal(t, 0, PlaceholderCount("id=static"))
	assert.Equal(t, 1, PlaceholderCount("xpath=//tr[@data-id='%s']"))
	assert.Equal(t, 1, PlaceholderCount("css=.row:nth-child({index})"))
	assert.Equal(t, 2, PlaceholderCount("xpath=//td[%s]/span[%s]"))
}

func TestExpandSubstitutesParameter(t *testing.T) {
	expanded, err := Expand("xpath=//tr[@data-id='%s']//button", "42")
	require.NoError(t, err)
	assert.Equal(t, "xpath=//tr[@data-id='42']//button", expanded)

	expanded, err = Expand("css=.row:nth-child({index})", "3")
	require.NoError(t, err)
	assert.Equal(t, "css=.row:nth-child(3)", expanded)
}

func TestExpandEmptyParameterRejected(t *testing.T) {
	_, err := Expand("xpath=//tr[@data-id='%s']", "")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidParameter))
}

func TestExpandWithoutPlaceholderRejected(t *testing.T) {
	_, err := Expand("id=static", "42")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidParameter))
}

func TestSelectorString(t *testing.T) {
	sel, err := Resolve("id=login")
	require.NoError(t, err)
	assert.Equal(t, "id=login", sel.String())
}
