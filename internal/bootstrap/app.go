package bootstrap

import (
	"time"

	"ui-harness/internal/browser"
	"ui-harness/internal/config"
	"ui-harness/internal/console"
	"ui-harness/internal/healing"
	"ui-harness/internal/pagefactory"
	"ui-harness/internal/ports"
	"ui-harness/internal/scenario"
	"ui-harness/internal/testdata"

	"go.uber.org/fx"
)

func NewApp() *fx.App {
	return fx.New(
		fx.Provide(
			config.GetConfig,
			newLogger,
			newTraceProvider,

			fx.Annotate(browser.NewManager, fx.As(new(ports.Driver))),

			pagefactory.NewCache,
			pagefactory.NewFactory,

			healing.NewHealerFromConfig,

			testdata.NewLoader,
			scenario.NewRunner,

			console.NewInterface,
		),

		fx.Invoke(
			runConsole,
		),

		fx.StartTimeout(10*time.Second),
	)
}
