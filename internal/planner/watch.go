package planner

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// RuleWatcher reloads the planner's rule table when the rules file changes
// on disk. The table stays data-driven: edits take effect without a
// restart and without touching loop logic.
type RuleWatcher struct {
	path    string
	planner *Planner
	watcher *fsnotify.Watcher
	done    chan struct{}
	logf    func(format string, args ...interface{})
}

// WatchRules starts watching the rules file and applies valid reloads to
// the planner. Invalid edits are logged and ignored; the previous table
// stays active.
func WatchRules(path string, p *Planner, logf func(format string, args ...interface{})) (*RuleWatcher, error) {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory, not the file: editors replace files with
	// rename, which drops a direct file watch.
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}

	rw := &RuleWatcher{
		path:    path,
		planner: p,
		watcher: w,
		done:    make(chan struct{}),
		logf:    logf,
	}
	go rw.loop()
	return rw, nil
}

func (rw *RuleWatcher) loop() {
	for {
		select {
		case <-rw.done:
			return
		case event, ok := <-rw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(rw.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			rules, err := LoadRules(rw.path)
			if err != nil {
				rw.logf("[planner] rules reload skipped: %v", err)
				continue
			}
			rw.planner.SetRules(rules)
			rw.logf("[planner] reloaded %d rules from %s", len(rules), rw.path)
		case err, ok := <-rw.watcher.Errors:
			if !ok {
				return
			}
			rw.logf("[planner] rules watcher error: %v", err)
		}
	}
}

// Close stops the watcher.
func (rw *RuleWatcher) Close() error {
	close(rw.done)
	return rw.watcher.Close()
}
