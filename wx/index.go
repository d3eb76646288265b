// wx/index.go
// Copyright(c) 2025 xpwx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package wx

import (
	"sync"

	"github.com/avtools/xpwx/geo"
)

// DefaultIndexCapacity is the expected station count of an X-Plane
// weather dump; the index works fine past it, this just sizes the
// initial allocation.
const DefaultIndexCapacity = 5000

type indexEntry struct {
	metar METAR
	pos   geo.Pos
}

// Index maps station idents to their latest observation and supports
// nearest-station queries by position. Entries are only inserted with a
// valid position so every entry participates in spatial lookups.
//
// Lookups never fail: absent idents yield zero values.
type Index struct {
	mu      sync.Mutex
	entries map[string]indexEntry
	// tree is rebuilt on demand after mutations; nearest queries between
	// mutations share one build.
	tree      *geo.KDNode
	treeDirty bool
}

func NewIndex() *Index {
	return &Index{entries: make(map[string]indexEntry, DefaultIndexCapacity)}
}

// Insert adds or overwrites the observation for metar.Ident. Entries
// without a valid position cannot be indexed spatially and are rejected.
func (idx *Index) Insert(metar METAR, pos geo.Pos) bool {
	if !pos.IsValid() {
		return false
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries[metar.Ident] = indexEntry{metar: metar, pos: pos}
	idx.treeDirty = true
	return true
}

func (idx *Index) Contains(ident string) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	_, ok := idx.entries[ident]
	return ok
}

// Value returns the observation for ident, or a zero METAR if the station
// has none.
func (idx *Index) Value(ident string) METAR {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.entries[ident].metar
}

// GetTypeOrNearest returns the observation for ident if the station
// reported, and otherwise the observation of the station closest to pos by
// great-circle distance. The returned ident names the station actually
// matched, so callers can distinguish exact from nearest; it is empty if
// the index is empty or, for a miss, if pos is invalid.
func (idx *Index) GetTypeOrNearest(ident string, pos geo.Pos) (string, METAR) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if e, ok := idx.entries[ident]; ok {
		return ident, e.metar
	}

	if idx.treeDirty {
		points := make([]geo.KDPoint, 0, len(idx.entries))
		for id, e := range idx.entries {
			points = append(points, geo.KDPoint{Ident: id, Location: e.pos})
		}
		idx.tree = geo.BuildKDTree(points)
		idx.treeDirty = false
	}

	if nearest, ok := idx.tree.Nearest(pos); ok {
		return nearest.Ident, idx.entries[nearest.Ident].metar
	}
	return "", METAR{}
}

// Position returns the stored position for ident; invalid if absent.
func (idx *Index) Position(ident string) geo.Pos {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if e, ok := idx.entries[ident]; ok {
		return e.pos
	}
	return geo.InvalidPos()
}

func (idx *Index) Clear() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries = make(map[string]indexEntry, DefaultIndexCapacity)
	idx.tree = nil
	idx.treeDirty = false
}

func (idx *Index) Size() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return len(idx.entries)
}

func (idx *Index) IsEmpty() bool {
	return idx.Size() == 0
}
