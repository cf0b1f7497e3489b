// Package pagefactory turns declarative page definitions into live page
// objects. Definitions come from JSON or YAML files; parsed definitions and
// constructed wrappers are cached so repeated access is cheap.
package pagefactory

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"ui-harness/internal/config"
	"ui-harness/internal/entity"
	"ui-harness/internal/healing"
	"ui-harness/internal/ports"
	"ui-harness/pkg/apperr"
	"ui-harness/pkg/logg"
	"ui-harness/pkg/tracing"

	"github.com/ghodss/yaml"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	factoryName   = "PageFactory"
	factoryTracer = "pagefactory"
)

type Factory struct {
	driver ports.Driver
	logger *zap.Logger
	tracer trace.Tracer
	config *config.Config
	cache  *Cache
	healer *healing.Healer

	// aliases maps a source stem to the pageName it parsed into, for files
	// whose stem does not follow the stem-equals-pageName convention.
	mu      sync.RWMutex
	aliases map[string]string
}

type Params struct {
	fx.In

	Driver ports.Driver
	Logger *zap.Logger
	Config *config.Config
	Cache  *Cache
	Healer *healing.Healer `optional:"true"`
}

func NewFactory(params Params) *Factory {
	return &Factory{
		driver:  params.Driver,
		logger:  params.Logger.With(zap.String(logg.Layer, factoryName)),
		tracer:  otel.Tracer(factoryTracer),
		config:  params.Config,
		cache:   params.Cache,
		healer:  params.Healer,
		aliases: make(map[string]string),
	}
}

// LoadPage builds a page object from a definition source. The source is
// either a path to a JSON/YAML file or a bare page name resolved against
// the configured pages directory. Definitions parse and validate once;
// later loads of the same page are served from the cache.
func (f *Factory) LoadPage(ctx context.Context, source string) (page *DynamicPage, err error) {
	const op = "LoadPage"
	logger := f.logger.With(zap.String(logg.Operation, op), zap.String(logg.Source, source))

	_, step := tracing.StartSpan(ctx, f.tracer, logger, op, attribute.String("source", source))
	defer func() {
		step.End(err)
	}()

	if cached, ok := f.cache.Get(f.cacheKey(source)); ok {
		step.AddEvent("cache hit")

		return newDynamicPage(f.driver, f.logger, f.config, f.healer, cached), nil
	}

	def, err := f.parseSource(source)
	if err != nil {
		return nil, err
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}

	def.BuildIndex()
	f.cache.Put(def)

	if stem := pageNameFromSource(source); stem != def.PageName {
		f.mu.Lock()
		f.aliases[stem] = def.PageName
		f.mu.Unlock()

		logger.Warn("Definition file stem differs from pageName",
			zap.String(logg.Page, def.PageName))
	}

	logger.Info("Page definition loaded",
		zap.String(logg.Page, def.PageName),
		zap.Int("elements", len(def.Elements)))

	return newDynamicPage(f.driver, f.logger, f.config, f.healer, def), nil
}

// FromDefinition builds a page object from an already parsed definition,
// bypassing file loading. Used by callers that assemble definitions in code.
func (f *Factory) FromDefinition(def *entity.PageDefinition) (*DynamicPage, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	def.BuildIndex()
	f.cache.Put(def)

	return newDynamicPage(f.driver, f.logger, f.config, f.healer, def), nil
}

// ValidateSource parses and validates a definition without caching it.
func (f *Factory) ValidateSource(source string) error {
	def, err := f.parseSource(source)
	if err != nil {
		return err
	}

	return def.Validate()
}

// Preload walks the pages directory and loads every definition file,
// surfacing broken definitions at startup rather than mid-run.
func (f *Factory) Preload(ctx context.Context) (err error) {
	const op = "Preload"
	logger := f.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, f.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	dir := f.config.PagesConfig.PagesDir

	entries, err := os.ReadDir(dir)
	if err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "pages_dir_unreadable",
			apperr.MetaSource: dir,
		})
	}

	loaded := 0

	for _, entry := range entries {
		if entry.IsDir() || !isDefinitionFile(entry.Name()) {
			continue
		}

		if _, err := f.LoadPage(ctx, filepath.Join(dir, entry.Name())); err != nil {
			return err
		}

		loaded++
	}

	logger.Info("Pages preloaded", zap.Int("count", loaded))

	return nil
}

func (f *Factory) ClearCache() {
	f.cache.Clear()

	f.mu.Lock()
	f.aliases = make(map[string]string)
	f.mu.Unlock()

	f.logger.Info("Page cache cleared")
}

func (f *Factory) RemoveFromCache(pageName string) {
	f.cache.Remove(pageName)
}

func (f *Factory) CacheSize() int {
	return f.cache.Size()
}

func (f *Factory) IsCached(pageName string) bool {
	_, ok := f.cache.Get(pageName)

	return ok
}

func (f *Factory) parseSource(source string) (*entity.PageDefinition, error) {
	const op = "pagefactory.parseSource"

	path := source
	if !isDefinitionFile(path) {
		path = filepath.Join(f.config.PagesConfig.PagesDir, source+".json")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInvalidPageDef, err, map[string]any{
			apperr.MetaReason: "definition_unreadable",
			apperr.MetaSource: path,
		})
	}

	var def entity.PageDefinition

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &def)
	default:
		err = json.Unmarshal(raw, &def)
	}

	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInvalidPageDef, err, map[string]any{
			apperr.MetaReason: "definition_unparsable",
			apperr.MetaSource: path,
		})
	}

	return &def, nil
}

func isDefinitionFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}

	return false
}

// cacheKey derives the cache key for a source before parsing it: the file
// stem (or bare page name), redirected through the alias table when the stem
// is known to differ from the pageName.
func (f *Factory) cacheKey(source string) string {
	stem := pageNameFromSource(source)

	f.mu.RLock()
	defer f.mu.RUnlock()

	if name, ok := f.aliases[stem]; ok {
		return name
	}

	return stem
}

// pageNameFromSource derives the file stem for paths, the source itself for
// bare page names.
func pageNameFromSource(source string) string {
	base := filepath.Base(source)

	return strings.TrimSuffix(base, filepath.Ext(base))
}
