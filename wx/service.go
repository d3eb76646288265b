// wx/service.go
// Copyright(c) 2025 xpwx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package wx

import (
	"os"
	"sync"
	"time"

	"github.com/avtools/xpwx/geo"
	"github.com/avtools/xpwx/log"
	"github.com/avtools/xpwx/util"
)

// UpdateEvent is posted to the service's event stream after each
// successful re-read that followed a detected file change.
type UpdateEvent struct {
	Path     string
	Stations int
}

// Config bundles the service's tunables; the zero value selects the
// defaults, which suit the X-Plane weather engine's write cadence.
type Config struct {
	// DebounceDelay is how long the file must stay quiet after a change
	// before it is re-read; coalesces bursts of partial writes.
	DebounceDelay time.Duration
	// PollInterval is the fallback poll period for platforms where
	// filesystem notifications are unreliable.
	PollInterval time.Duration
	// MinFileSize rejects still-truncated in-progress writes.
	MinFileSize int64
}

// Service maintains a live station weather index over a dump file that an
// external weather engine rewrites periodically. It owns the file monitor
// and the index; queries and re-reads may run concurrently since the
// index is replaced wholesale, never mutated in place, after a read.
type Service struct {
	mu      sync.Mutex
	path    string
	index   *Index
	watcher *util.FileSystemWatcher

	locator Locator
	config  Config
	events  *util.EventStream[UpdateEvent]
	lg      *log.Logger
}

// NewService starts watching path and, if the file already exists, loads
// it immediately. The initial load does not post an UpdateEvent; only
// subsequent detected changes do. An empty path creates an idle service
// that Reset can point at a file later.
func NewService(path string, locator Locator, config Config, lg *log.Logger) (*Service, error) {
	s := &Service{
		index:   NewIndex(),
		locator: locator,
		config:  config,
		events:  util.NewEventStream[UpdateEvent](lg),
		lg:      lg,
	}
	if err := s.start(path); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) start(path string) error {
	s.mu.Lock()
	s.path = path
	s.mu.Unlock()
	if path == "" {
		return nil
	}

	// The watcher takes its baseline before the eager read so that a
	// write landing in between still gets detected (and at worst causes
	// one redundant reload).
	w := util.NewFileSystemWatcher(s.lg)
	if s.config.DebounceDelay > 0 {
		w.SetDebounceDelay(s.config.DebounceDelay)
	}
	if s.config.PollInterval > 0 {
		w.SetPollInterval(s.config.PollInterval)
	}
	if s.config.MinFileSize > 0 {
		w.SetMinFileSize(s.config.MinFileSize)
	}
	if err := w.Start(path, s.pathChanged); err != nil {
		return err
	}

	s.mu.Lock()
	s.watcher = w
	s.mu.Unlock()

	if fi, err := os.Stat(path); err == nil && fi.Mode().IsRegular() {
		if index, err := ReadFile(path, s.locator, s.lg); err == nil {
			s.mu.Lock()
			s.index = index
			s.mu.Unlock()
		} else {
			s.lg.Warnf("initial weather load failed: %v", err)
		}
	}
	// else wait for the file to be created

	return nil
}

// pathChanged runs on the watcher's goroutine once a detected change has
// settled. A failed read keeps the previous index authoritative.
func (s *Service) pathChanged(path string) {
	index, err := ReadFile(path, s.locator, s.lg)
	if err != nil {
		s.lg.Warnf("weather reload failed: %v", err)
		return
	}

	s.mu.Lock()
	s.index = index
	s.mu.Unlock()

	s.lg.Infof("%s: weather updated, %d stations", path, index.Size())
	s.events.Post(UpdateEvent{Path: path, Stations: index.Size()})
}

func (s *Service) currentIndex() *Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// GetMETAR returns the raw observation for exactly the given station, or
// an empty string if it has none.
func (s *Service) GetMETAR(ident string) string {
	return s.currentIndex().Value(ident).Raw
}

// GetStationWeather answers a query for ident at pos: the station's own
// observation when it has one, otherwise the geographically nearest
// station's. The result is stamped with the query's wall-clock time.
func (s *Service) GetStationWeather(ident string, pos geo.Pos) Result {
	result := Result{RequestIdent: ident, RequestPos: pos}

	if found, metar := s.currentIndex().GetTypeOrNearest(ident, pos); found != "" {
		if found == ident {
			result.MetarForStation = metar.Raw
		} else {
			result.MetarForNearest = metar.Raw
		}
	}

	result.Time = time.Now()
	return result
}

// Stations returns the number of indexed stations.
func (s *Service) Stations() int {
	return s.currentIndex().Size()
}

// Subscribe returns a subscription that receives an UpdateEvent per
// successful reload.
func (s *Service) Subscribe() *util.EventsSubscription[UpdateEvent] {
	return s.events.Subscribe()
}

// Reset tears down the watcher and index and starts over against a new
// path; pending debounce or poll activity for the old path is cancelled
// first so no stale event fires against the new configuration.
func (s *Service) Reset(path string) error {
	s.stopWatcher()

	s.mu.Lock()
	s.index = NewIndex()
	s.mu.Unlock()

	return s.start(path)
}

// Close stops the watcher and drops the index. The service is unusable
// afterwards except via Reset.
func (s *Service) Close() {
	s.stopWatcher()

	s.mu.Lock()
	s.index = NewIndex()
	s.path = ""
	s.mu.Unlock()
}

func (s *Service) stopWatcher() {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	if w != nil {
		w.Stop()
	}
}
