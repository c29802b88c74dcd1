// Package watcher reloads the audit rule file when it changes on disk.
package watcher

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"devtriage/internal/audit"
)

// Watcher watches a file for changes
type Watcher struct {
	path     string
	onChange func()
	debounce time.Duration
}

// New creates a new file watcher
func New(path string, onChange func()) *Watcher {
	return &Watcher{
		path:     path,
		onChange: onChange,
		debounce: 500 * time.Millisecond,
	}
}

// WithDebounce sets the debounce duration
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Watch starts watching the file for changes.
// It blocks until the context is cancelled or an error occurs.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	// Watch the directory so files replaced by editors are still seen
	absPath, err := filepath.Abs(w.path)
	if err != nil {
		return err
	}
	if err := fw.Add(filepath.Dir(absPath)); err != nil {
		return err
	}

	log.Printf("Watcher: watching %s for changes", absPath)

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	stop := func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}
	defer stop()

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}

			name, err := filepath.Abs(event.Name)
			if err != nil || name != absPath {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				if ctx.Err() != nil {
					return
				}
				log.Printf("Watcher: file changed: %s", absPath)
				w.onChange()
			})
			mu.Unlock()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watcher: error: %v", err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RuleSetter accepts a replacement rule set
type RuleSetter interface {
	SetRules(rules []audit.Rule) error
}

// ReloadRules returns a callback that loads the built-in rules plus the rule
// file at path into engine. On failure the engine keeps its current rules.
func ReloadRules(engine RuleSetter, path string) func() {
	return func() {
		rules, err := audit.LoadRuleSet(path)
		if err != nil {
			log.Printf("Watcher: Warning: keeping previous rules: %v", err)
			return
		}
		if err := engine.SetRules(rules); err != nil {
			log.Printf("Watcher: Warning: keeping previous rules: %v", err)
			return
		}
		log.Printf("Watcher: loaded %d rules from %s", len(rules), path)
	}
}

// WatchRules reloads the rule file into engine whenever it changes.
// It blocks until ctx is cancelled.
func WatchRules(ctx context.Context, engine RuleSetter, path string) error {
	return New(path, ReloadRules(engine, path)).Watch(ctx)
}
