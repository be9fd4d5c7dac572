// Package i18n serves the UI label tables and detects the request language.
//
// Tables are YAML documents keyed by module, then label:
//
//	Tag:
//	  Color: "Farbe"
//
// The embedded tables can be overlaid by files in an override directory
// named after the language code (de.yaml). Overrides are reloaded when
// they change.
package i18n

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/omsapp/tag-server/internal/watcher"
)

//go:embed lang/*.yaml
var embedded embed.FS

// Module is the label module of the tag UI.
const Module = "Tag"

// DefaultLanguage is used when a request names no supported language.
const DefaultLanguage = "en"

// Keys lists the labels of the tag module.
var Keys = []string{"Color", "Create", "Empty", "Icon", "Language", "List", "Save", "Tag", "Tags", "Title"}

// Table maps module -> key -> label.
type Table map[string]map[string]string

// Options configures a Catalog.
type Options struct {
	DefaultLanguage string // falls back to DefaultLanguage when empty
	OverrideDir     string // optional directory of <lang>.yaml overrides
	Logger          *slog.Logger
}

// Catalog holds the label tables of every supported language.
// It is safe for concurrent use.
type Catalog struct {
	base        map[string]Table
	overrideDir string
	defaultLang string
	logger      *slog.Logger

	mu      sync.RWMutex
	tables  map[string]Table
	codes   []string // codes[i] corresponds to matcher index i
	matcher language.Matcher
}

// Supported returns the language codes of the embedded tables, sorted.
func Supported() []string {
	entries, err := embedded.ReadDir("lang")
	if err != nil {
		return nil
	}
	codes := make([]string, 0, len(entries))
	for _, e := range entries {
		codes = append(codes, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	slices.Sort(codes)
	return codes
}

// New loads the embedded tables and any overrides.
func New(opts Options) (*Catalog, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	defaultLang := opts.DefaultLanguage
	if defaultLang == "" {
		defaultLang = DefaultLanguage
	}

	base := make(map[string]Table)
	for _, code := range Supported() {
		data, err := embedded.ReadFile("lang/" + code + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("read embedded %s: %w", code, err)
		}
		table, err := parseTable(data)
		if err != nil {
			return nil, fmt.Errorf("parse embedded %s: %w", code, err)
		}
		base[code] = table
	}
	if _, ok := base[defaultLang]; !ok {
		return nil, fmt.Errorf("default language %q has no label table", defaultLang)
	}

	c := &Catalog{
		base:        base,
		overrideDir: opts.OverrideDir,
		defaultLang: defaultLang,
		logger:      logger,
	}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

func parseTable(data []byte) (Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	if t == nil {
		t = Table{}
	}
	return t, nil
}

// Reload rebuilds the tables from the embedded set and the override directory.
// A malformed override file is skipped with a warning.
func (c *Catalog) Reload() error {
	tables := make(map[string]Table, len(c.base))
	for code, t := range c.base {
		tables[code] = cloneTable(t)
	}

	if c.overrideDir != "" {
		files, err := filepath.Glob(filepath.Join(c.overrideDir, "*.yaml"))
		if err != nil {
			return fmt.Errorf("list overrides: %w", err)
		}
		for _, path := range files {
			code := strings.TrimSuffix(filepath.Base(path), ".yaml")
			if _, err := language.Parse(code); err != nil {
				c.logger.Warn("skipping override with invalid language code", "path", path)
				continue
			}
			//#nosec G304 -- path comes from globbing the configured override directory
			data, err := os.ReadFile(path)
			if err != nil {
				c.logger.Warn("failed to read label override", "path", path, "error", err)
				continue
			}
			override, err := parseTable(data)
			if err != nil {
				c.logger.Warn("failed to parse label override", "path", path, "error", err)
				continue
			}
			merged, ok := tables[code]
			if !ok {
				merged = Table{}
				tables[code] = merged
			}
			for module, labels := range override {
				if merged[module] == nil {
					merged[module] = map[string]string{}
				}
				maps.Copy(merged[module], labels)
			}
		}
	}

	// The default language goes first so a failed match resolves to it.
	codes := []string{c.defaultLang}
	for code := range tables {
		if code != c.defaultLang {
			codes = append(codes, code)
		}
	}
	slices.Sort(codes[1:])

	tags := make([]language.Tag, len(codes))
	for i, code := range codes {
		tags[i] = language.Make(code)
	}

	c.mu.Lock()
	c.tables = tables
	c.codes = codes
	c.matcher = language.NewMatcher(tags)
	c.mu.Unlock()

	c.logger.Debug("label tables loaded", "languages", len(codes))
	return nil
}

func cloneTable(t Table) Table {
	out := make(Table, len(t))
	for module, labels := range t {
		out[module] = maps.Clone(labels)
	}
	return out
}

// Languages returns the codes with a label table, sorted.
func (c *Catalog) Languages() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	codes := slices.Clone(c.codes)
	slices.Sort(codes)
	return codes
}

// Default returns the fallback language code.
func (c *Catalog) Default() string {
	return c.defaultLang
}

// Label returns the tag-module label for key in lang, falling back to
// English and then to the key itself.
func (c *Catalog) Label(lang, key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, code := range []string{lang, DefaultLanguage} {
		if v, ok := c.tables[code][Module][key]; ok && v != "" {
			return v
		}
	}
	return key
}

// Labels resolves every key in Keys for lang.
func (c *Catalog) Labels(lang string) map[string]string {
	out := make(map[string]string, len(Keys))
	for _, key := range Keys {
		out[key] = c.Label(lang, key)
	}
	return out
}

// Detect picks the best supported language for an Accept-Language header.
func (c *Catalog) Detect(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return c.defaultLang
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return c.defaultLang
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	_, index, confidence := c.matcher.Match(tags...)
	if confidence == language.No {
		return c.defaultLang
	}
	return c.codes[index]
}

// Normalize returns the base ISO-639-1 code of lang ("de-AT" -> "de"),
// or "" when lang does not parse.
func Normalize(lang string) string {
	tag, err := language.Parse(strings.TrimSpace(lang))
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	return base.String()
}

// Watch reloads the tables whenever an override file changes. It blocks
// until ctx is cancelled. Without an override directory it returns at once.
func (c *Catalog) Watch(ctx context.Context) error {
	if c.overrideDir == "" {
		return nil
	}

	w, err := watcher.New(c.logger, watcher.Options{Extensions: []string{".yaml"}})
	if err != nil {
		return err
	}
	defer w.Stop()

	if err := w.Watch(c.overrideDir); err != nil {
		return err
	}

	go func() { _ = w.Start(ctx) }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			c.logger.Info("label override changed, reloading", "path", ev.Path, "event", ev.Type.String())
			if err := c.Reload(); err != nil {
				c.logger.Warn("failed to reload labels", "error", err)
			}
		case err := <-w.Errors():
			c.logger.Warn("label watcher error", "error", err)
		}
	}
}
