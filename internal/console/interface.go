// Package console is the interactive shell: load pages, poke elements, run
// scenarios against the live browser without writing a test file.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"ui-harness/internal/config"
	"ui-harness/internal/pagefactory"
	"ui-harness/internal/ports"
	"ui-harness/internal/scenario"
	"ui-harness/internal/testdata"
	"ui-harness/pkg/logg"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// errExit signals the command loop to terminate.
var errExit = errors.New("exit")

type Interface struct {
	config     *config.Config
	logger     *zap.Logger
	driver     ports.Driver
	factory    *pagefactory.Factory
	runner     *scenario.Runner
	data       *testdata.Loader
	shutdowner fx.Shutdowner
	ctx        context.Context
	cancel     context.CancelFunc
	sigChan    chan os.Signal
	stopping   atomic.Bool
}

type Params struct {
	fx.In

	Config     *config.Config
	Logger     *zap.Logger
	Driver     ports.Driver
	Factory    *pagefactory.Factory
	Runner     *scenario.Runner
	Data       *testdata.Loader
	Shutdowner fx.Shutdowner `optional:"true"`
}

func NewInterface(params Params) *Interface {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)

	return &Interface{
		config:     params.Config,
		logger:     params.Logger.With(zap.String(logg.Layer, "Console")),
		driver:     params.Driver,
		factory:    params.Factory,
		runner:     params.Runner,
		data:       params.Data,
		shutdowner: params.Shutdowner,
		ctx:        ctx,
		cancel:     cancel,
		sigChan:    sigChan,
	}
}

func (i *Interface) Start() error {
	i.printBanner()
	i.printHelp()

	signal.Notify(i.sigChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-i.sigChan
		fmt.Println("\n\nInterrupt received, shutting down...")
		i.requestShutdown()
	}()

	scanner := bufio.NewScanner(os.Stdin)

	for !i.stopping.Load() {
		fmt.Print("\n> ")

		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())

		if input == "" {
			continue
		}

		if err := i.handleCommand(input); err != nil {
			if errors.Is(err, errExit) {
				break
			}

			i.logger.Error("Command error", zap.Error(err))
			fmt.Printf("Error: %v\n", err)
		}
	}

	return i.requestShutdown()
}

// requestShutdown hands control to the fx lifecycle instead of exiting in
// place, so the stop hooks still close the browser session.
func (i *Interface) requestShutdown() error {
	if !i.stopping.CompareAndSwap(false, true) {
		return nil
	}

	i.cancel()

	if i.shutdowner != nil {
		return i.shutdowner.Shutdown()
	}

	return nil
}

func (i *Interface) Stop() error {
	i.stopping.Store(true)
	i.cancel()

	i.logger.Info("Console interface stopped")

	return nil
}

func (i *Interface) handleCommand(input string) error {
	parts := strings.Fields(input)
	command, args := parts[0], parts[1:]

	switch command {
	case "help", "h":
		i.printHelp()

		return nil
	case "exit", "quit", "q":
		fmt.Println("Shutting down...")

		return errExit
	case "open":
		return i.openPage(args)
	case "load":
		return i.loadPage(args)
	case "pages":
		return i.listPages()
	case "elements":
		return i.listElements(args)
	case "run":
		return i.runScenario(args)
	case "data":
		return i.showData(args)
	case "screenshot":
		return i.screenshot(args)
	case "clear-cache":
		i.factory.ClearCache()
		fmt.Println("Page cache cleared")

		return nil
	case "url":
		fmt.Println(i.driver.URL())

		return nil
	default:
		return fmt.Errorf("unknown command %q, type help", command)
	}
}

func (i *Interface) openPage(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: open <page>")
	}

	page, err := i.factory.LoadPage(i.ctx, args[0])
	if err != nil {
		return err
	}

	if err := page.Open(i.ctx); err != nil {
		return err
	}

	fmt.Printf("Opened %s at %s\n", page.Name(), i.driver.URL())

	return nil
}

func (i *Interface) loadPage(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: load <page-or-path>")
	}

	page, err := i.factory.LoadPage(i.ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Loaded %s: %d elements\n", page.Name(), len(page.ElementNames()))

	return nil
}

func (i *Interface) listPages() error {
	fmt.Printf("Cached pages: %d\n", i.factory.CacheSize())

	return nil
}

func (i *Interface) listElements(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: elements <page>")
	}

	page, err := i.factory.LoadPage(i.ctx, args[0])
	if err != nil {
		return err
	}

	for _, def := range page.Definition().Elements {
		fmt.Printf("  %-24s %-14s %s\n", def.Name, def.Type, def.Locator)
	}

	return nil
}

func (i *Interface) runScenario(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: run <scenario-file>")
	}

	fmt.Printf("\nRunning scenario %s\n", args[0])

	start := time.Now()

	run, err := i.runner.RunFile(i.ctx, args[0])
	if run != nil {
		fmt.Printf("\nRun %s: %s (%d steps, %s)\n", run.ID, run.Status, len(run.Steps), time.Since(start).Round(time.Millisecond))
	}

	if err != nil {
		fmt.Printf("Failure: %v\n", err)
	}

	return nil
}

func (i *Interface) showData(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: data <file> <dotted.path>")
	}

	value, err := i.data.Get(args[0], args[1])
	if err != nil {
		return err
	}

	fmt.Printf("%v\n", value)

	return nil
}

func (i *Interface) screenshot(args []string) error {
	path := fmt.Sprintf("screenshot-%d.jpg", time.Now().Unix())
	if len(args) > 0 {
		path = args[0]
	}

	if err := i.driver.Screenshot(i.ctx, path); err != nil {
		return err
	}

	fmt.Printf("Saved %s\n", path)

	return nil
}

func (i *Interface) printBanner() {
	banner := `
=========================================
          UI Test Harness
  Page objects from JSON, self-healing
  locators, scenario runner
=========================================
`
	fmt.Println(banner)
}

func (i *Interface) printHelp() {
	help := `
Available commands:
  help, h               - Show this help message
  exit, quit, q         - Exit the application
  open <page>           - Load a page definition and navigate to it
  load <page-or-path>   - Parse and cache a page definition
  pages                 - Show the page cache size
  elements <page>       - List the elements a page declares
  run <scenario-file>   - Execute a scenario file (JSON or YAML)
  data <file> <path>    - Print a test-data value by dotted path
  screenshot [path]     - Capture the current page
  clear-cache           - Drop every cached page definition
  url                   - Print the current page URL
`
	fmt.Println(help)
}
