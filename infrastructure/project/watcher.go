package project

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/zkhudr/gemini-agent/infrastructure/logging"
)

// watchedNames are the context source files whose changes invalidate a
// previously loaded context string.
var watchedNames = map[string]bool{
	"gemini.md":        true,
	"context.md":       true,
	"config.yaml":      true,
	"project.yaml":     true,
	"README.md":        true,
	"readme.md":        true,
	"README.txt":       true,
	"package.json":     true,
	"go.mod":           true,
	"Cargo.toml":       true,
	".gitignore":       true,
	"requirements.txt": true,
	"pyproject.toml":   true,
}

// Watcher observes the project root for changes to context source files and
// invokes a callback, so interactive callers know a loaded context is stale.
type Watcher struct {
	watcher  *fsnotify.Watcher
	onChange func(path string)
}

// NewWatcher watches the aggregator's project root and its .gemini
// directory. onChange is called with the changed path.
func NewWatcher(a *Aggregator, onChange func(path string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fw.Add(a.projectRoot); err != nil {
		fw.Close()
		return nil, err
	}
	// The notes/config directory may not exist yet; ignore the error.
	_ = fw.Add(filepath.Join(a.projectRoot, ".gemini"))

	return &Watcher{watcher: fw, onChange: onChange}, nil
}

// Run processes events until the context is cancelled or the watcher closes.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !watchedNames[filepath.Base(event.Name)] {
				continue
			}
			logging.Debug().Str("path", event.Name).Msg("context source changed")
			if w.onChange != nil {
				w.onChange(event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn().Err(err).Msg("context watcher error")
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
