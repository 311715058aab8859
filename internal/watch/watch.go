// Package watch implements the compiler's --watch convenience mode:
// recompile whenever the source file changes, using fsnotify.
package watch

import (
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Run blocks, invoking compile(path) once immediately and again on
// every write/create event to path, until stop is closed or the
// watcher's channels are closed. Watcher errors are logged and watching
// continues. compile is responsible for printing its own
// diagnostics/output.
func Run(path string, logger *slog.Logger, stop <-chan struct{}, compile func(path string)) error {
	if logger == nil {
		logger = slog.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return err
	}

	compile(path)
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	for {
		select {
		case <-stop:
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			evAbs, err := filepath.Abs(ev.Name)
			if err != nil || evAbs != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			logger.Debug("source changed, recompiling", "path", path, "op", ev.Op.String())
			compile(path)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error", "error", err)
		}
	}
}
