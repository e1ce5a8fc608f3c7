package testing

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"apicase/pkg/logging"
)

// DefaultDebounce is the quiet period Watch waits for after the last change.
const DefaultDebounce = 500 * time.Millisecond

// Watch calls onChange whenever files under dirs change, at most once per
// debounce period, until ctx is done. onChange runs on the calling goroutine,
// so calls never overlap. Subdirectories created later are watched too.
func Watch(ctx context.Context, dirs []string, debounce time.Duration, onChange func()) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, dir := range dirs {
		if err := addRecursive(watcher, dir); err != nil {
			logging.Warn("Watcher", "Failed to watch %s: %v", dir, err)
		}
	}

	fire := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addRecursive(watcher, event.Name)
				}
			}
			logging.Debug("Watcher", "Change detected: %s %s", event.Op, event.Name)

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Error("Watcher", err, "Filesystem watcher error")
		}
	}
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			logging.Debug("Watcher", "Watching directory: %s", path)
			return watcher.Add(path)
		}
		return nil
	})
}
