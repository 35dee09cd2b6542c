package config

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/querylab/retrievalcfg/internal/metrics"
)

const (
	// EnvConfigPath overrides the config file location.
	EnvConfigPath = "RETRIEVAL_CONFIG_PATH"
	// DefaultPath is the built-in config file location.
	DefaultPath = "config/retrieval.yaml"
)

// ResolvePath picks the config file path. Priority: explicit argument, then
// RETRIEVAL_CONFIG_PATH, then the built-in default. The first candidate that
// exists as a regular file wins; if none exist, the first candidate is
// returned anyway so the caller gets a clear file-not-found signal instead of
// silently reading an unintended file.
func ResolvePath(explicit string) string {
	var candidates []string
	if explicit != "" {
		candidates = append(candidates, explicit)
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		candidates = append(candidates, env)
	}
	candidates = append(candidates, DefaultPath)

	for _, c := range candidates {
		if fileExists(c) {
			return c
		}
	}
	return candidates[0]
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Loader reads and memoizes retrieval configuration documents.
// Load never fails: a missing or unparseable file degrades to the built-in
// default path, and failing that to an empty document, so a broken config
// means "hard-coded defaults everywhere" rather than a crashed pipeline.
type Loader struct {
	mu     sync.Mutex
	cache  map[string]Document
	logger *zap.Logger
}

// NewLoader creates a Loader. logger may be nil.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{cache: make(map[string]Document), logger: logger}
}

// Load resolves path (see ResolvePath; empty means no explicit path) and
// returns the parsed document. Results are memoized by resolved absolute
// path, so repeated calls do not re-read the file.
func (l *Loader) Load(path string) Document {
	resolved := ResolvePath(path)
	key := cacheKey(resolved)

	l.mu.Lock()
	if doc, ok := l.cache[key]; ok {
		l.mu.Unlock()
		metrics.ConfigCacheTotal.WithLabelValues("hit").Inc()
		return doc
	}
	l.mu.Unlock()
	metrics.ConfigCacheTotal.WithLabelValues("miss").Inc()

	doc, ok := l.readFile(resolved)
	if !ok {
		if resolved != DefaultPath {
			metrics.ConfigLoadsTotal.WithLabelValues("fallback").Inc()
			doc, ok = l.readFile(DefaultPath)
		}
		if !ok {
			doc = Document{}
		}
	}

	l.mu.Lock()
	l.cache[key] = doc
	l.mu.Unlock()
	return doc
}

// Clear drops all memoized documents. Intended for tests and for services
// that reload configuration between tenants.
func (l *Loader) Clear() {
	l.mu.Lock()
	l.cache = make(map[string]Document)
	l.mu.Unlock()
}

// CandidateLimits loads doc from the default path when nil.
func (l *Loader) CandidateLimits(doc Document) CandidateLimits {
	if doc == nil {
		doc = l.Load("")
	}
	return CandidateLimitsFrom(doc)
}

// FusionSettings loads doc from the default path when nil.
func (l *Loader) FusionSettings(doc Document) FusionSettings {
	if doc == nil {
		doc = l.Load("")
	}
	return FusionSettingsFrom(doc)
}

// PrefilterSettings loads doc from the default path when nil.
func (l *Loader) PrefilterSettings(doc Document) PrefilterSettings {
	if doc == nil {
		doc = l.Load("")
	}
	return PrefilterSettingsFrom(doc)
}

// RerankSettings loads doc from the default path when nil.
func (l *Loader) RerankSettings(doc Document) RerankSettings {
	if doc == nil {
		doc = l.Load("")
	}
	return RerankSettingsFrom(doc)
}

func (l *Loader) readFile(path string) (Document, bool) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		l.logger.Warn("Retrieval config unreadable, falling back",
			zap.String("path", path), zap.Error(err))
		metrics.ConfigLoadsTotal.WithLabelValues("missing").Inc()
		return nil, false
	}

	// Decode into a plain map[string]any: yaml.v3 reuses the target map's
	// named type for nested mappings, which would make Section's
	// map[string]any assertion fail on sub-sections.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		l.logger.Warn("Retrieval config unparseable, falling back",
			zap.String("path", path), zap.Error(err))
		metrics.ConfigLoadsTotal.WithLabelValues("parse_error").Inc()
		return nil, false
	}
	doc := Document(raw)
	if doc == nil {
		// Empty file parses to a nil mapping
		doc = Document{}
	}
	metrics.ConfigLoadsTotal.WithLabelValues("ok").Inc()
	return doc, true
}

func cacheKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
