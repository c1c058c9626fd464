package runner

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"onehop/internal/asset"
	"onehop/internal/logging"
)

const watchDebounce = 500 * time.Millisecond

// SuiteWatcher watches a suite YAML file and invokes a callback with the
// freshly loaded suite whenever the file changes. Events are debounced
// because editors produce bursts of writes, and the parent directory is
// watched rather than the file itself because save-by-rename replaces the
// inode.
type SuiteWatcher struct {
	path     string
	onChange func(*asset.Suite)

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
	once    sync.Once
}

// NewSuiteWatcher creates a watcher for the suite file at path.
func NewSuiteWatcher(path string, onChange func(*asset.Suite)) (*SuiteWatcher, error) {
	if onChange == nil {
		return nil, fmt.Errorf("suite watcher requires a change callback")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve suite path: %w", err)
	}
	return &SuiteWatcher{
		path:     abs,
		onChange: onChange,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. It returns once the underlying watch is
// established; events are delivered on a background goroutine until Stop.
func (w *SuiteWatcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}
	w.watcher = watcher

	go w.loop()
	logging.Runner("watching suite file %s", w.path)
	return nil
}

func (w *SuiteWatcher) loop() {
	defer close(w.doneCh)
	defer w.watcher.Close()

	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-w.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				timerCh = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(watchDebounce)
			}

		case <-timerCh:
			timer = nil
			timerCh = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Runner("suite watcher error: %v", err)
		}
	}
}

func (w *SuiteWatcher) reload() {
	suite, err := asset.LoadSuite(w.path)
	if err != nil {
		logging.Runner("suite %s changed but failed to load: %v", w.path, err)
		return
	}
	logging.Runner("suite %s reloaded: %d assets", w.path, len(suite.Assets))
	w.onChange(suite)
}

// Stop halts the watcher and waits for the event loop to exit.
func (w *SuiteWatcher) Stop() {
	w.once.Do(func() {
		close(w.stopCh)
		<-w.doneCh
	})
}
