// Package watch reruns work when descriptor files below a scan root change.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/specialistvlad/modgen/internal/ctxlog"
)

// DefaultDebounce is how long the watcher waits for a burst of events to
// settle before reporting it.
const DefaultDebounce = 200 * time.Millisecond

// Options tunes a Watcher.
type Options struct {
	Debounce time.Duration
	// Ignore lists directories whose contents never trigger a change, such as
	// the output directory the orchestrator itself writes to.
	Ignore []string
	// Extensions are the file suffixes that count as descriptor changes.
	Extensions []string
}

// DefaultOptions watches HCL descriptors and CMake fragments.
func DefaultOptions() Options {
	return Options{
		Debounce:   DefaultDebounce,
		Extensions: []string{".hcl", ".cmake"},
	}
}

// ChangeFunc receives the sorted, de-duplicated paths of one change burst.
type ChangeFunc func(ctx context.Context, changed []string) error

// Watcher observes a directory tree.
type Watcher struct {
	root    string
	opts    Options
	watcher *fsnotify.Watcher
}

// New starts watching root and every directory below it.
func New(root string, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{root: root, opts: opts, watcher: fw}
	if err := w.addRecursive(root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

func (w *Watcher) ignored(path string) bool {
	for _, dir := range w.opts.Ignore {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && path != w.root
}

func (w *Watcher) relevant(path string) bool {
	if w.ignored(path) {
		return false
	}
	for _, ext := range w.opts.Extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// Run delivers change bursts to onChange until ctx is cancelled or onChange
// fails. Directories created while running are watched as well.
func (w *Watcher) Run(ctx context.Context, onChange ChangeFunc) error {
	logger := ctxlog.FromContext(ctx)
	pending := make(map[string]struct{})
	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !w.ignored(event.Name) {
					if err := w.addRecursive(event.Name); err != nil {
						logger.Warn("Failed to watch new directory.", "path", event.Name, "error", err)
					}
					// Files may have landed before the directory was watched.
					pending[event.Name] = struct{}{}
				}
			}
			if !w.relevant(event.Name) {
				if _, ok := pending[event.Name]; !ok {
					continue
				}
			}
			logger.Debug("Descriptor change observed.", "path", event.Name, "op", event.Op.String())
			pending[event.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
			} else {
				timer.Reset(w.opts.Debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)
			if err := onChange(ctx, changed); err != nil {
				return err
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("File watcher error.", "error", err)
		}
	}
}
