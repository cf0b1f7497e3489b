package scenario

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ui-harness/internal/elements"
	"ui-harness/internal/entity"
	"ui-harness/internal/pagefactory"
	"ui-harness/internal/ports"
	"ui-harness/internal/testdata"
	"ui-harness/pkg/apperr"
	"ui-harness/pkg/logg"
	"ui-harness/pkg/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	runnerName   = "ScenarioRunner"
	runnerTracer = "scenario.runner"
)

// Runner executes scenario definitions against the live browser session.
type Runner struct {
	driver  ports.Driver
	factory *pagefactory.Factory
	data    *testdata.Loader
	logger  *zap.Logger
	tracer  trace.Tracer
}

type Params struct {
	fx.In

	Driver  ports.Driver
	Factory *pagefactory.Factory
	Data    *testdata.Loader
	Logger  *zap.Logger
}

func NewRunner(params Params) *Runner {
	return &Runner{
		driver:  params.Driver,
		factory: params.Factory,
		data:    params.Data,
		logger:  params.Logger.With(zap.String(logg.Layer, runnerName)),
		tracer:  otel.Tracer(runnerTracer),
	}
}

// Run executes every step in order, stopping at the first failure. The
// returned report always covers the executed prefix, failure included.
func (r *Runner) Run(ctx context.Context, def *Definition) (*entity.Run, error) {
	const op = "Run"
	logger := r.logger.With(zap.String(logg.Operation, op), zap.String(logg.Scenario, def.Name))

	var err error

	ctx, span := tracing.StartSpan(ctx, r.tracer, logger, op, attribute.String("scenario", def.Name))
	defer func() {
		span.End(err)
	}()

	run := &entity.Run{
		ID:        uuid.New(),
		Scenario:  def.Name,
		Status:    entity.RunStatusInProgress,
		CreatedAt: time.Now(),
	}

	logger.Info("Scenario started", zap.Int("steps", len(def.Steps)))

	for i, stepDef := range def.Steps {
		step := entity.Step{
			ID:        uuid.New(),
			Action:    string(stepDef.Action),
			Page:      stepDef.Page,
			Element:   stepDef.Element,
			Value:     stepDef.Value,
			Timestamp: time.Now(),
		}

		stepErr := r.execute(ctx, &stepDef)
		step.Success = stepErr == nil

		if stepErr != nil {
			step.Error = stepErr.Error()
			run.Steps = append(run.Steps, step)
			run.Status = entity.RunStatusFailed
			run.Error = stepErr.Error()

			now := time.Now()
			run.CompletedAt = &now

			logger.Error("Step failed",
				zap.Int(logg.Index, i),
				zap.String("action", string(stepDef.Action)),
				zap.Error(stepErr))

			err = stepErr

			return run, err
		}

		run.Steps = append(run.Steps, step)
	}

	run.Status = entity.RunStatusCompleted

	now := time.Now()
	run.CompletedAt = &now

	logger.Info("Scenario completed", zap.Int("steps", len(run.Steps)))

	return run, nil
}

// RunFile loads and executes a scenario file.
func (r *Runner) RunFile(ctx context.Context, path string) (*entity.Run, error) {
	def, err := LoadDefinition(path)
	if err != nil {
		return nil, err
	}

	return r.Run(ctx, def)
}

func (r *Runner) execute(ctx context.Context, step *StepDefinition) error {
	const op = "scenario.execute"

	value, err := r.stepValue(step)
	if err != nil {
		return err
	}

	page, err := r.factory.LoadPage(ctx, step.Page)
	if err != nil {
		return err
	}

	switch step.Action {
	case ActionOpen:
		return page.Open(ctx)

	case ActionScreenshot:
		path := value
		if path == "" {
			path = fmt.Sprintf("%s-%d.jpg", step.Page, time.Now().Unix())
		}

		return r.driver.Screenshot(ctx, path)

	case ActionClick:
		return r.click(ctx, page, step)

	case ActionType:
		box, err := page.Textbox(step.Element)
		if err != nil {
			return err
		}

		return box.Type(ctx, value)

	case ActionSetValue:
		box, err := page.Textbox(step.Element)
		if err != nil {
			return err
		}

		return box.SetValue(ctx, value)

	case ActionClear:
		box, err := page.Textbox(step.Element)
		if err != nil {
			return err
		}

		return box.Clear(ctx)

	case ActionCheck, ActionUncheck:
		box, err := page.Checkbox(step.Element)
		if err != nil {
			return err
		}

		return box.SetChecked(ctx, step.Action == ActionCheck)

	case ActionSelect:
		combo, err := page.Combobox(step.Element)
		if err != nil {
			return err
		}

		return combo.SelectByText(ctx, value)

	case ActionPress:
		box, err := page.Textbox(step.Element)
		if err != nil {
			return err
		}

		return box.Press(ctx, value)

	case ActionVerifyText:
		return r.verifyText(ctx, page, step, value)

	case ActionVerifyVisible:
		return r.verifyVisible(ctx, page, step)

	default:
		return apperr.WrapErrorWithReason(op, apperr.CodeInvalidArgument, "unknown action "+string(step.Action))
	}
}

func (r *Runner) click(ctx context.Context, page *pagefactory.DynamicPage, step *StepDefinition) error {
	wrapper, err := page.Element(step.Element)
	if err != nil {
		return err
	}

	switch el := wrapper.(type) {
	case *elements.Button:
		return el.Click(ctx)
	case *elements.DynamicButton:
		return el.Click(ctx, step.Parameter)
	case *elements.DynamicLink:
		return el.Click(ctx, step.Parameter)
	case *elements.Checkbox:
		return el.Check(ctx)
	default:
		return apperr.Wrap("scenario.click", apperr.CodeInvalidArgument, nil, map[string]any{
			apperr.MetaElement: step.Element,
			apperr.MetaReason:  "element_not_clickable",
			"type":             fmt.Sprintf("%T", wrapper),
		})
	}
}

func (r *Runner) verifyText(ctx context.Context, page *pagefactory.DynamicPage, step *StepDefinition, expected string) error {
	const op = "scenario.verifyText"

	wrapper, err := page.Element(step.Element)
	if err != nil {
		return err
	}

	var actual string

	switch el := wrapper.(type) {
	case *elements.Label:
		actual, err = el.GetText(ctx)
	case *elements.Textbox:
		actual, err = el.GetValue(ctx)
	case *elements.DynamicLabel:
		actual, err = el.GetText(ctx, step.Parameter)
	case interface {
		GetText(context.Context) (string, error)
	}:
		actual, err = el.GetText(ctx)
	default:
		return apperr.Wrap(op, apperr.CodeInvalidArgument, nil, map[string]any{
			apperr.MetaElement: step.Element,
			apperr.MetaReason:  "element_has_no_text",
		})
	}

	if err != nil {
		return err
	}

	if !strings.Contains(actual, expected) {
		return apperr.Wrap(op, apperr.CodeActionFailed, nil, map[string]any{
			apperr.MetaElement: step.Element,
			apperr.MetaReason:  "text_mismatch",
			"expected":         expected,
			"actual":           actual,
		})
	}

	return nil
}

func (r *Runner) verifyVisible(ctx context.Context, page *pagefactory.DynamicPage, step *StepDefinition) error {
	const op = "scenario.verifyVisible"

	wrapper, err := page.Element(step.Element)
	if err != nil {
		return err
	}

	probe, ok := wrapper.(interface{ IsDisplayed(context.Context) bool })
	if !ok {
		return apperr.Wrap(op, apperr.CodeInvalidArgument, nil, map[string]any{
			apperr.MetaElement: step.Element,
			apperr.MetaReason:  "element_has_no_visibility",
		})
	}

	if !probe.IsDisplayed(ctx) {
		return apperr.Wrap(op, apperr.CodeActionFailed, nil, map[string]any{
			apperr.MetaElement: step.Element,
			apperr.MetaReason:  "element_not_visible",
		})
	}

	return nil
}

// stepValue resolves the step's effective value: a "file:dotted.path" data
// reference wins over the inline value.
func (r *Runner) stepValue(step *StepDefinition) (string, error) {
	const op = "scenario.stepValue"

	if step.Data == "" {
		return step.Value, nil
	}

	file, path, ok := strings.Cut(step.Data, ":")
	if !ok {
		return "", apperr.Wrap(op, apperr.CodeInvalidArgument, nil, map[string]any{
			apperr.MetaReason: "malformed_data_reference",
			apperr.MetaField:  step.Data,
		})
	}

	return r.data.GetString(file, path)
}
