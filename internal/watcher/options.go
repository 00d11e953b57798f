package watcher

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/comixapp/comix-server/pkg/comicbox"
)

// Options configures a Watcher.
type Options struct {
	// SettleDelay is how long a file must stop changing before an event
	// fires. Large archives copied into the library grow for a while.
	SettleDelay time.Duration
}

// setDefaults applies defaults for unset options.
func (o *Options) setDefaults() {
	if o.SettleDelay <= 0 {
		o.SettleDelay = 2 * time.Second
	}
}

// shouldIgnore reports whether a path is noise: hidden entries and
// anything that is not a comic archive.
func (o *Options) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	// Directories pass through so new ones get watched.
	if filepath.Ext(base) == "" {
		return false
	}
	return comicbox.FormatForPath(path) == comicbox.FormatUnknown
}
