package healing

import (
	"context"
	"testing"
	"time"

	"ui-harness/internal/config"
	"ui-harness/internal/entity"
	"ui-harness/internal/ports/portstest"
	"ui-harness/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func healingConfig() *config.HealingConfig {
	return &config.HealingConfig{Enabled: true, RetryAttempts: 1, MaxCandidates: 5}
}

func TestHealerRecordAndBaseline(t *testing.T) {
	drv := portstest.NewFakeDriver()
	drv.AddElement("#submit", "Submit")
	drv.Fingerprints["#submit"] = &entity.Fingerprint{
		Tag:        "button",
		Text:       "Submit",
		Attributes: map[string]string{"id": "submit"},
		CapturedAt: time.Now(),
	}

	h := NewHealer(drv, zap.NewNop(), healingConfig())

	h.Record(context.Background(), "submitButton", "#submit")
	require.NotNil(t, h.Baseline("submitButton"))

	h.Clear()
	assert.Nil(t, h.Baseline("submitButton"))
}

func TestHealerRecordFailureIsBestEffort(t *testing.T) {
	drv := portstest.NewFakeDriver()

	h := NewHealer(drv, zap.NewNop(), healingConfig())

	h.Record(context.Background(), "ghost", "#ghost")
	assert.Nil(t, h.Baseline("ghost"))
}

func TestHealRecoversThroughProposedSelector(t *testing.T) {
	drv := portstest.NewFakeDriver()
	ctx := context.Background()

	// The element used to live at #submit-btn; a redeploy renamed the id but
	// kept the test hook.
	baseline := &entity.Fingerprint{
		Tag:  "button",
		Text: "Submit order",
		Attributes: map[string]string{
			"id":          "submit-btn",
			"data-testid": "order-submit",
		},
	}

	healedSelector := `[data-testid="order-submit"]`
	drv.AddElement(healedSelector, "Submit order")
	drv.Fingerprints[healedSelector] = &entity.Fingerprint{
		Tag:  "button",
		Text: "Submit order",
		Attributes: map[string]string{
			"id":          "submit-btn-v2",
			"data-testid": "order-submit",
		},
	}
	drv.FailSelectors["#submit-btn"] = true

	h := NewHealer(drv, zap.NewNop(), healingConfig())
	h.baselines["submitButton"] = baseline

	err := h.Heal(ctx, "submitButton", "#submit-btn", func(ctx context.Context, selector string) error {
		return drv.Click(ctx, selector)
	})
	require.NoError(t, err)

	clicks := drv.CallsTo("Click")
	require.NotEmpty(t, clicks)
	assert.Equal(t, healedSelector, clicks[len(clicks)-1].Selector)
}

func TestHealRetriesFlakyCandidatePerConfig(t *testing.T) {
	drv := portstest.NewFakeDriver()
	drv.AddElement("#flaky", "Save")

	// The selector resolves, but the first two actions fail transiently.
	drv.FailTimes["#flaky"] = 2

	cfg := healingConfig()
	cfg.RetryAttempts = 3

	h := NewHealer(drv, zap.NewNop(), cfg)

	err := h.Heal(context.Background(), "saveButton", "#flaky", func(ctx context.Context, selector string) error {
		return drv.Click(ctx, selector)
	})
	require.NoError(t, err)

	clicks := drv.CallsTo("Click")
	require.Len(t, clicks, 3)

	for _, call := range clicks {
		assert.Equal(t, "#flaky", call.Selector)
	}
}

func TestHealDoesNotRetryWithSingleAttempt(t *testing.T) {
	drv := portstest.NewFakeDriver()
	drv.AddElement("#flaky", "Save")
	drv.FailTimes["#flaky"] = 1

	h := NewHealer(drv, zap.NewNop(), healingConfig())

	err := h.Heal(context.Background(), "saveButton", "#flaky", func(ctx context.Context, selector string) error {
		return drv.Click(ctx, selector)
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeAllCandidatesFailed))
	assert.Len(t, drv.CallsTo("Click"), 1)
}

func TestHealRejectsDissimilarCandidate(t *testing.T) {
	drv := portstest.NewFakeDriver()
	ctx := context.Background()

	baseline := &entity.Fingerprint{
		Tag:        "button",
		Text:       "Submit order",
		Attributes: map[string]string{"id": "submit-btn"},
	}

	drv.FailSelectors["#submit-btn"] = true

	// The bare-tag proposal resolves, but to a completely different element.
	drv.AddElement("button", "Cancel everything")
	drv.Fingerprints["button"] = &entity.Fingerprint{
		Tag:        "button",
		Text:       "Cancel everything",
		Attributes: map[string]string{"id": "cancel-all", "class": "nav"},
	}

	h := NewHealer(drv, zap.NewNop(), healingConfig())
	h.baselines["submitButton"] = baseline

	err := h.Heal(ctx, "submitButton", "#submit-btn", func(ctx context.Context, selector string) error {
		return drv.Click(ctx, selector)
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeAllCandidatesFailed))

	// The dissimilar candidate was rejected before its action ran.
	for _, call := range drv.CallsTo("Click") {
		assert.NotEqual(t, "button", call.Selector)
	}
}

func TestHealWithoutBaselineFailsWithOriginalError(t *testing.T) {
	drv := portstest.NewFakeDriver()
	drv.FailSelectors["#gone"] = true

	h := NewHealer(drv, zap.NewNop(), healingConfig())

	err := h.Heal(context.Background(), "goneButton", "#gone", func(ctx context.Context, selector string) error {
		return drv.Click(ctx, selector)
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeAllCandidatesFailed))

	var chain *ChainError
	require.ErrorAs(t, err, &chain)
	assert.Len(t, chain.Failures, 1)
}

func TestHealCapsProposals(t *testing.T) {
	drv := portstest.NewFakeDriver()
	drv.FailSelectors["#old"] = true

	baseline := &entity.Fingerprint{
		Tag:  "input",
		Text: "",
		Attributes: map[string]string{
			"id":         "field-a",
			"data-test":  "field",
			"name":       "field",
			"aria-label": "Field",
			"class":      "form-field wide",
		},
	}

	cfg := healingConfig()
	cfg.MaxCandidates = 2

	h := NewHealer(drv, zap.NewNop(), cfg)
	h.baselines["field"] = baseline

	err := h.Heal(context.Background(), "field", "#old", func(ctx context.Context, selector string) error {
		return drv.Click(ctx, selector)
	})
	require.Error(t, err)

	var chain *ChainError
	require.ErrorAs(t, err, &chain)

	// Original plus at most MaxCandidates proposals.
	assert.LessOrEqual(t, len(chain.Failures), 3)
}

func TestResilientFallsThroughLocators(t *testing.T) {
	drv := portstest.NewFakeDriver()
	drv.FailSelectors["#primary"] = true
	drv.AddElement(`[name="fallback"]`, "ok")

	r, err := NewResilient(drv, zap.NewNop(), "submit",
		[]string{"id=primary", "name=fallback"},
		WithWaitTimeout(50*time.Millisecond))
	require.NoError(t, err)

	require.NoError(t, r.Click(context.Background()))

	clicks := drv.CallsTo("Click")
	require.Len(t, clicks, 1)
	assert.Equal(t, `[name="fallback"]`, clicks[0].Selector)
}

func TestResilientReportsEveryLocator(t *testing.T) {
	drv := portstest.NewFakeDriver()
	drv.FailSelectors["#a"] = true
	drv.FailSelectors["#b"] = true

	r, err := NewResilient(drv, zap.NewNop(), "submit",
		[]string{"id=a", "id=b"},
		WithWaitTimeout(50*time.Millisecond))
	require.NoError(t, err)

	err = r.Click(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeAllCandidatesFailed))

	var chain *ChainError
	require.ErrorAs(t, err, &chain)
	assert.Len(t, chain.Failures, 2)
}
