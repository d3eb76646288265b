// util/filesystemwatcher.go
// Copyright(c) 2025 xpwx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/avtools/xpwx/log"
)

const (
	// DefaultDebounceDelay is how long a file must stay quiet after a
	// detected change before the update callback fires; writers rewrite
	// the whole file, so a single write burst becomes one notification.
	DefaultDebounceDelay = 1 * time.Second

	// DefaultPollInterval is the periodic re-check cadence. Filesystem
	// notifications are not guaranteed to fire on all platforms and
	// filesystems (network mounts in particular), so the watcher verifies
	// by polling as a backstop.
	DefaultPollInterval = 10 * time.Second
)

// FileSystemWatcher reports when a single file has been created or
// modified, surviving deletion and recreation of the file. It watches
// both the file and its parent directory, debounces bursts of writes, and
// falls back to polling.
//
// Deletion of the file is deliberately not reported; consumers keep their
// last loaded data until new data appears.
type FileSystemWatcher struct {
	debounceDelay time.Duration
	pollInterval  time.Duration
	minFileSize   int64
	lg            *log.Logger

	path     string
	onUpdate func(path string)
	fsw      *fsnotify.Watcher

	// Change-detection state; written in Start before the goroutine
	// exists and only by the goroutine afterwards.
	lastModified time.Time
	lastSize     int64
	haveState    bool

	mu      sync.Mutex
	started bool
	stopped bool
	stop    chan struct{}
	done    chan struct{}
}

func NewFileSystemWatcher(lg *log.Logger) *FileSystemWatcher {
	return &FileSystemWatcher{
		debounceDelay: DefaultDebounceDelay,
		pollInterval:  DefaultPollInterval,
		lg:            lg,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// SetDebounceDelay, SetPollInterval, and SetMinFileSize tune the watcher;
// they must be called before Start.
func (w *FileSystemWatcher) SetDebounceDelay(d time.Duration) { w.debounceDelay = d }
func (w *FileSystemWatcher) SetPollInterval(d time.Duration)  { w.pollInterval = d }

// SetMinFileSize sets the size in bytes the file must exceed to count as
// present; rejects still-empty or truncated in-progress writes.
func (w *FileSystemWatcher) SetMinFileSize(size int64) { w.minFileSize = size }

// Start begins watching path and performs an immediate first check, which
// records the file's current state without firing onUpdate: whatever is
// on disk when Start returns is the baseline, and only changes from it
// (including later creation of a missing file) are reported. onUpdate is
// called on the watcher's goroutine.
func (w *FileSystemWatcher) Start(path string, onUpdate func(path string)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	w.path = path
	w.onUpdate = onUpdate
	w.fsw = fsw

	// Baseline: anything already on disk is the caller's to load
	// directly, not something to notify about.
	if fi, err := os.Stat(path); err == nil && fi.Mode().IsRegular() && fi.Size() > w.minFileSize {
		w.lastModified, w.lastSize, w.haveState = fi.ModTime(), fi.Size(), true
	}

	// Watch the file to get changes. This fails harmlessly if the file
	// does not exist yet.
	if err := fsw.Add(path); err != nil {
		w.lg.Debugf("cannot watch %s: %v", path, err)
	}
	// Watch the directory to catch the file being added, removed, or
	// atomically renamed into place.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		w.lg.Warnf("cannot watch %s: %v", filepath.Dir(path), err)
	}

	w.mu.Lock()
	w.started = true
	w.mu.Unlock()

	go w.watch()
	return nil
}

// Stop cancels pending notifications and releases the native watches; it
// is idempotent.
func (w *FileSystemWatcher) Stop() {
	w.mu.Lock()
	if !w.started || w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	w.mu.Unlock()

	close(w.stop)
	<-w.done
}

func (w *FileSystemWatcher) watch() {
	defer close(w.done)
	defer w.fsw.Close()

	// The debounce timer starts disarmed; stopTimer drains a fired timer
	// so that Reset always arms cleanly.
	stopTimer := func(t *time.Timer) {
		if !t.Stop() {
			select {
			case <-t.C:
			default:
			}
		}
	}
	debounce := time.NewTimer(time.Hour)
	stopTimer(debounce)
	poll := time.NewTimer(w.pollInterval)
	defer stopTimer(debounce)
	defer stopTimer(poll)

	// Invoked on any native notification or poll timer expiry.
	check := func() {
		stopTimer(poll)

		fi, err := os.Stat(w.path)
		if err != nil || !fi.Mode().IsRegular() || fi.Size() <= w.minFileSize {
			// No data available (not an error): keep polling so an
			// eventual (re)creation is noticed.
			poll.Reset(w.pollInterval)
			return
		}

		if !w.haveState || fi.ModTime().After(w.lastModified) || fi.Size() != w.lastSize {
			w.lastModified, w.lastSize, w.haveState = fi.ModTime(), fi.Size(), true

			// Start or extend the delayed notification.
			w.lg.Debugf("%s: changed, debouncing", w.path)
			stopTimer(debounce)
			debounce.Reset(w.debounceDelay)
		} else {
			poll.Reset(w.pollInterval)
		}
	}

	base := filepath.Base(w.path)
	for {
		select {
		case <-w.stop:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			// Directory watches report events for every entry; only this
			// file is interesting. The stat comparison in check filters
			// out notification noise for the file itself.
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				// A recreated file needs its own watch re-added; the
				// directory watch alone already covers it, so failure
				// only costs redundancy.
				_ = w.fsw.Add(w.path)
			}
			check()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.lg.Warnf("watching %s: %v", w.path, err)

		case <-debounce.C:
			w.onUpdate(w.path)
			poll.Reset(w.pollInterval)

		case <-poll.C:
			check()
		}
	}
}
