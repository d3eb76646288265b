// wx/index_test.go
// Copyright(c) 2025 xpwx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package wx

import (
	"testing"
	"time"

	"github.com/avtools/xpwx/geo"
)

func TestIndexInsert(t *testing.T) {
	idx := NewIndex()

	if idx.Insert(METAR{Ident: "KJFK", Raw: "KJFK ..."}, geo.InvalidPos()) {
		t.Error("insert with an invalid position must be rejected")
	}
	if !idx.IsEmpty() {
		t.Error("rejected insert must not be stored")
	}

	if !idx.Insert(METAR{Ident: "KJFK", Raw: "KJFK 120051Z"}, geo.MakePos(-73.78, 40.64)) {
		t.Error("insert with a valid position failed")
	}
	if !idx.Contains("KJFK") || idx.Size() != 1 {
		t.Error("inserted entry missing")
	}

	// Same ident again overwrites rather than duplicating.
	idx.Insert(METAR{Ident: "KJFK", Raw: "KJFK 120151Z"}, geo.MakePos(-73.78, 40.64))
	if idx.Size() != 1 {
		t.Errorf("expected 1 entry after overwrite, got %d", idx.Size())
	}
	if raw := idx.Value("KJFK").Raw; raw != "KJFK 120151Z" {
		t.Errorf("overwrite kept old value %q", raw)
	}
}

func TestIndexValueAbsent(t *testing.T) {
	idx := NewIndex()
	// Lookups never fail; they degrade to zero values.
	if m := idx.Value("KORD"); m.Ident != "" || m.Raw != "" || !m.Time.IsZero() {
		t.Errorf("absent ident should yield a zero METAR, got %+v", m)
	}
	if idx.Contains("KORD") {
		t.Error("empty index contains nothing")
	}
	if pos := idx.Position("KORD"); pos.IsValid() {
		t.Error("absent ident should yield an invalid position")
	}
}

func TestIndexGetTypeOrNearest(t *testing.T) {
	idx := NewIndex()
	idx.Insert(METAR{Ident: "KJFK", Raw: "KJFK 120051Z"}, geo.MakePos(-73.78, 40.64))
	idx.Insert(METAR{Ident: "KLAX", Raw: "KLAX 120053Z"}, geo.MakePos(-118.41, 33.94))
	idx.Insert(METAR{Ident: "EGLL", Raw: "EGLL 1150Z"}, geo.MakePos(-0.46, 51.47))

	// Exact match wins regardless of the query position.
	found, m := idx.GetTypeOrNearest("KLAX", geo.MakePos(-0.46, 51.47))
	if found != "KLAX" || m.Raw != "KLAX 120053Z" {
		t.Errorf("expected exact KLAX match, got %q %+v", found, m)
	}

	// No exact match: nearest by great-circle distance.
	found, m = idx.GetTypeOrNearest("KEWR", geo.MakePos(-74.17, 40.69))
	if found != "KJFK" {
		t.Errorf("expected nearest KJFK, got %q", found)
	}
	if m.Raw != "KJFK 120051Z" {
		t.Errorf("wrong observation for nearest match: %+v", m)
	}

	// A query near London finds Heathrow.
	if found, _ := idx.GetTypeOrNearest("EGKK", geo.MakePos(-0.19, 51.15)); found != "EGLL" {
		t.Errorf("expected nearest EGLL, got %q", found)
	}

	// Invalid query position with no exact match: no result.
	if found, _ := idx.GetTypeOrNearest("KEWR", geo.InvalidPos()); found != "" {
		t.Errorf("expected no match for invalid position, got %q", found)
	}
}

func TestIndexGetTypeOrNearestEmpty(t *testing.T) {
	idx := NewIndex()
	found, m := idx.GetTypeOrNearest("KJFK", geo.MakePos(-73.78, 40.64))
	if found != "" || m.Raw != "" {
		t.Errorf("empty index should report no match, got %q %+v", found, m)
	}
}

func TestIndexNearestSeesMutations(t *testing.T) {
	idx := NewIndex()
	idx.Insert(METAR{Ident: "KSFO", Raw: "KSFO A"}, geo.MakePos(-122.37, 37.62))

	query := geo.MakePos(-122.0, 37.0)
	if found, _ := idx.GetTypeOrNearest("KXXX", query); found != "KSFO" {
		t.Fatalf("expected KSFO, got %q", found)
	}

	// Inserting a closer station after a nearest query must be visible
	// to the next query.
	idx.Insert(METAR{Ident: "KSJC", Raw: "KSJC B"}, geo.MakePos(-121.93, 37.36))
	if found, _ := idx.GetTypeOrNearest("KXXX", query); found != "KSJC" {
		t.Errorf("expected KSJC after insert, got %q", found)
	}
}

func TestIndexNearestDeterministicTie(t *testing.T) {
	// Two stations at the same position; the lexically smallest ident
	// must be returned no matter the insertion order.
	pos := geo.MakePos(10, 50)
	for _, order := range [][]string{{"EDDF", "EDDA"}, {"EDDA", "EDDF"}} {
		idx := NewIndex()
		for _, id := range order {
			idx.Insert(METAR{Ident: id, Raw: id + " raw", Time: time.Now()}, pos)
		}
		if found, _ := idx.GetTypeOrNearest("XXXX", geo.MakePos(11, 51)); found != "EDDA" {
			t.Errorf("insertion order %v: expected EDDA, got %q", order, found)
		}
	}
}

func TestIndexClear(t *testing.T) {
	idx := NewIndex()
	idx.Insert(METAR{Ident: "KBOS", Raw: "KBOS ..."}, geo.MakePos(-71.01, 42.36))
	if idx.IsEmpty() {
		t.Fatal("index should not be empty before clear")
	}

	idx.Clear()
	if !idx.IsEmpty() || idx.Size() != 0 {
		t.Error("clear should drop all entries")
	}
	if found, _ := idx.GetTypeOrNearest("KXXX", geo.MakePos(-71, 42)); found != "" {
		t.Errorf("cleared index should have no nearest match, got %q", found)
	}
}
