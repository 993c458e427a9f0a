package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gnolang/rmlint/internal/parse"
	tt "github.com/gnolang/rmlint/internal/types"
)

// watchDebounce groups bursts of writes to one file into a single run.
const watchDebounce = 100 * time.Millisecond

var (
	ErrAlreadyWatching = errors.New("already watching")
	ErrNotWatching     = errors.New("not watching")
)

type watchState struct {
	mu      sync.Mutex
	pending map[string]*time.Timer
	done    chan struct{}
	wg      sync.WaitGroup
}

// OnIssues sets the callback invoked with the result of every re-lint in
// watch mode. Without one, results are only logged.
func (e *Engine) OnIssues(fn func(filename string, issues []tt.Issue)) {
	e.onIssues = fn
}

// StartWatching re-lints Ruby files under the engine's root whenever they
// are written.
func (e *Engine) StartWatching() error {
	if e.isWatching {
		return ErrAlreadyWatching
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}

	for _, dir := range e.watchDirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if path != dir && e.isIgnoredPath(path) {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		})
		if err != nil {
			watcher.Close()
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}

	e.watcher = watcher
	e.watch = &watchState{
		pending: make(map[string]*time.Timer),
		done:    make(chan struct{}),
	}
	e.isWatching = true

	e.watch.wg.Add(1)
	go e.watchLoop(e.watch)
	return nil
}

// StopWatching stops the watch loop and releases the watcher.
func (e *Engine) StopWatching() error {
	if !e.isWatching {
		return ErrNotWatching
	}

	e.isWatching = false
	close(e.watch.done)
	err := e.watcher.Close()
	e.watch.wg.Wait()

	e.watch.mu.Lock()
	for name, timer := range e.watch.pending {
		timer.Stop()
		delete(e.watch.pending, name)
	}
	e.watch.mu.Unlock()
	return err
}

func (e *Engine) watchLoop(state *watchState) {
	defer state.wg.Done()
	for {
		select {
		case <-state.done:
			return
		case event, ok := <-e.watcher.Events:
			if !ok {
				return
			}
			e.handleFileEvent(state, event)
		case err, ok := <-e.watcher.Errors:
			if !ok {
				return
			}
			e.logger.Error("watch error", zap.Error(err))
		}
	}
}

func (e *Engine) handleFileEvent(state *watchState, event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	if !parse.IsRubyFile(event.Name) || e.isIgnoredPath(event.Name) {
		return
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	if timer, ok := state.pending[event.Name]; ok {
		timer.Reset(watchDebounce)
		return
	}
	name := event.Name
	state.pending[name] = time.AfterFunc(watchDebounce, func() {
		state.mu.Lock()
		delete(state.pending, name)
		state.mu.Unlock()

		select {
		case <-state.done:
			return
		default:
		}
		e.relint(name)
	})
}

func (e *Engine) relint(filename string) {
	if e.cache != nil {
		e.cache.Invalidate(filename)
	}
	issues, err := e.Run(filename)
	if err != nil {
		e.logger.Error("lint failed", zap.String("file", filename), zap.Error(err))
		return
	}
	e.reportIssues(filename, issues)
}

func (e *Engine) reportIssues(filename string, issues []tt.Issue) {
	if e.onIssues != nil {
		e.onIssues(filename, issues)
	}

	if len(issues) == 0 {
		e.logger.Info("no issues found", zap.String("file", filename))
		return
	}

	e.logger.Info("issues found", zap.String("file", filename), zap.Int("count", len(issues)))
	for _, issue := range issues {
		e.logger.Debug("issue",
			zap.String("rule", issue.Rule),
			zap.Int("line", issue.Start.Line),
			zap.String("message", issue.Message),
		)
	}
}
