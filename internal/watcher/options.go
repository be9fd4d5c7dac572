package watcher

import (
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Options configures the file watcher behavior.
type Options struct {
	// Extensions limits events to files with these extensions (".yaml").
	// Empty means every file.
	Extensions []string
	// SettleDelay is how long a file must stay quiet before it is reported.
	SettleDelay time.Duration
}

// setDefaults applies default values to unset options.
func (o *Options) setDefaults() {
	if o.SettleDelay == 0 {
		o.SettleDelay = 100 * time.Millisecond
	}
}

// shouldIgnore reports whether path is hidden, an editor backup, or has
// an extension outside the allowed set.
func (o *Options) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return true
	}
	if len(o.Extensions) == 0 {
		return false
	}
	return !slices.Contains(o.Extensions, strings.ToLower(filepath.Ext(base)))
}
