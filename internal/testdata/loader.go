package testdata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"ui-harness/internal/config"
	"ui-harness/pkg/apperr"
	"ui-harness/pkg/logg"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const loaderName = "TestDataLoader"

// Loader reads JSON test-data files, resolves date tokens in every string
// leaf, and caches the result per file.
type Loader struct {
	logger   *zap.Logger
	resolver *DateResolver
	dir      string

	mu    sync.RWMutex
	cache map[string]map[string]any
}

type LoaderParams struct {
	fx.In

	Logger *zap.Logger
	Config *config.Config
}

func NewLoader(params LoaderParams) *Loader {
	return &Loader{
		logger:   params.Logger.With(zap.String(logg.Layer, loaderName)),
		resolver: NewDateResolver(),
		dir:      params.Config.PagesConfig.TestDataDir,
		cache:    make(map[string]map[string]any),
	}
}

// NewLoaderWith builds a loader with an explicit directory and resolver.
// Used by tests and by callers outside the fx graph.
func NewLoaderWith(logger *zap.Logger, dir string, resolver *DateResolver) *Loader {
	if resolver == nil {
		resolver = NewDateResolver()
	}

	return &Loader{
		logger:   logger.With(zap.String(logg.Layer, loaderName)),
		resolver: resolver,
		dir:      dir,
		cache:    make(map[string]map[string]any),
	}
}

// Load reads a test-data file by bare name or path. Tokens are resolved at
// load time, so every consumer of a cached file sees the same values.
func (l *Loader) Load(name string) (map[string]any, error) {
	const op = "Load"

	key := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))

	l.mu.RLock()
	cached, ok := l.cache[key]
	l.mu.RUnlock()

	if ok {
		return cached, nil
	}

	path := name
	if filepath.Ext(path) == "" {
		path = filepath.Join(l.dir, name+".json")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeNotFound, err, map[string]any{
			apperr.MetaReason: "test_data_unreadable",
			apperr.MetaSource: path,
			apperr.MetaStage:  apperr.StageTestData,
		})
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInvalidArgument, err, map[string]any{
			apperr.MetaReason: "test_data_unparsable",
			apperr.MetaSource: path,
			apperr.MetaStage:  apperr.StageTestData,
		})
	}

	resolved, _ := l.resolveValue(data).(map[string]any)

	l.mu.Lock()
	l.cache[key] = resolved
	l.mu.Unlock()

	l.logger.Info("Test data loaded",
		zap.String(logg.Source, path),
		zap.Int("keys", len(resolved)))

	return resolved, nil
}

// resolveValue walks the decoded structure and rewrites string leaves,
// including strings inside nested maps and slices.
func (l *Loader) resolveValue(value any) any {
	switch v := value.(type) {
	case string:
		return l.resolver.Resolve(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			out[key] = l.resolveValue(inner)
		}

		return out
	case []any:
		out := make([]any, len(v))
		for i, inner := range v {
			out[i] = l.resolveValue(inner)
		}

		return out
	default:
		return value
	}
}

// Get fetches a value by dotted path, e.g. "credentials.admin.username".
func (l *Loader) Get(file, path string) (any, error) {
	const op = "Get"

	data, err := l.Load(file)
	if err != nil {
		return nil, err
	}

	var current any = data

	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, l.missingKey(op, file, path)
		}

		current, ok = node[segment]
		if !ok {
			return nil, l.missingKey(op, file, path)
		}
	}

	return current, nil
}

func (l *Loader) GetString(file, path string) (string, error) {
	const op = "GetString"

	value, err := l.Get(file, path)
	if err != nil {
		return "", err
	}

	s, ok := value.(string)
	if !ok {
		return "", apperr.Wrap(op, apperr.CodeInvalidArgument, fmt.Errorf("value at %q is %T, not string", path, value), map[string]any{
			apperr.MetaSource: file,
			apperr.MetaField:  path,
			apperr.MetaStage:  apperr.StageTestData,
		})
	}

	return s, nil
}

func (l *Loader) GetInt(file, path string) (int, error) {
	const op = "GetInt"

	value, err := l.Get(file, path)
	if err != nil {
		return 0, err
	}

	f, ok := value.(float64)
	if !ok {
		return 0, apperr.Wrap(op, apperr.CodeInvalidArgument, fmt.Errorf("value at %q is %T, not number", path, value), map[string]any{
			apperr.MetaSource: file,
			apperr.MetaField:  path,
			apperr.MetaStage:  apperr.StageTestData,
		})
	}

	return int(f), nil
}

func (l *Loader) GetBool(file, path string) (bool, error) {
	const op = "GetBool"

	value, err := l.Get(file, path)
	if err != nil {
		return false, err
	}

	b, ok := value.(bool)
	if !ok {
		return false, apperr.Wrap(op, apperr.CodeInvalidArgument, fmt.Errorf("value at %q is %T, not bool", path, value), map[string]any{
			apperr.MetaSource: file,
			apperr.MetaField:  path,
			apperr.MetaStage:  apperr.StageTestData,
		})
	}

	return b, nil
}

// TestCase returns one named case from the file's "testCases" object.
func (l *Loader) TestCase(file, caseName string) (map[string]any, error) {
	const op = "TestCase"

	value, err := l.Get(file, "testCases."+caseName)
	if err != nil {
		return nil, err
	}

	tc, ok := value.(map[string]any)
	if !ok {
		return nil, apperr.Wrap(op, apperr.CodeInvalidArgument, fmt.Errorf("test case %q is %T, not object", caseName, value), map[string]any{
			apperr.MetaSource: file,
			apperr.MetaStage:  apperr.StageTestData,
		})
	}

	return tc, nil
}

func (l *Loader) missingKey(op, file, path string) error {
	return apperr.Wrap(op, apperr.CodeNotFound, fmt.Errorf("no value at %q", path), map[string]any{
		apperr.MetaSource: file,
		apperr.MetaField:  path,
		apperr.MetaStage:  apperr.StageTestData,
	})
}

func (l *Loader) Remove(name string) {
	l.mu.Lock()
	delete(l.cache, name)
	l.mu.Unlock()
}

func (l *Loader) ClearCache() {
	l.mu.Lock()
	l.cache = make(map[string]map[string]any)
	l.mu.Unlock()
}

func (l *Loader) CacheSize() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.cache)
}
