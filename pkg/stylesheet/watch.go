package stylesheet

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/stylegraph/pkg/errors"
)

// DefaultDebounce is the quiet period Watch waits for after a change before
// reloading.
const DefaultDebounce = 100 * time.Millisecond

// Watch calls fn with the freshly loaded sheet every time the file at path
// changes, until ctx is cancelled. Bursts of events within debounce are
// coalesced into one reload. A sheet that fails to load is reported to fn as
// an error and watching continues.
//
// The parent directory is watched rather than the file so editors that save
// by renaming a temporary file are picked up.
func Watch(ctx context.Context, path string, debounce time.Duration, fn func(*Sheet, error)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", path)
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		abs = filepath.Join(dir, filepath.Base(abs))
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create watcher")
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "watch %s", filepath.Dir(abs))
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fn(nil, errors.Wrap(errors.ErrCodeInternal, err, "watch %s", path))
		case <-timer.C:
			fn(Load(abs))
		}
	}
}
