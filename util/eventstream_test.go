// util/eventstream_test.go
// Copyright(c) 2025 xpwx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"math/rand"
	"testing"
)

func TestEventStream(t *testing.T) {
	es := NewEventStream[int](nil)

	es.Post(0)
	sub := es.Subscribe()
	if len(sub.Get()) != 0 {
		t.Errorf("Returned non-empty slice")
	}

	es.Post(1)
	es.Post(2)
	s := sub.Get()
	if len(s) != 2 {
		t.Errorf("didn't return 2 item slice")
	}

	if s[0] != 1 {
		t.Errorf("Expected 1, got %v", s[0])
	}
	if s[1] != 2 {
		t.Errorf("Expected 2, got %v", s[1])
	}

	if len(sub.Get()) != 0 {
		t.Errorf("Returned non-empty slice")
	}
}

func TestEventStreamGetRetained(t *testing.T) {
	// Slices returned by Get must stay valid after later posts; Get
	// itself may compact the stream, which reuses the backing array.
	es := NewEventStream[int](nil)
	sub := es.Subscribe()

	es.Post(1)
	got := sub.Get()
	es.Post(2)

	if len(got) != 1 || got[0] != 1 {
		t.Errorf("retained slice changed by a later Post: %v", got)
	}
}

func TestEventStreamLongWarnLatch(t *testing.T) {
	// The long-stream warning fires once per stream, not once per
	// compaction pass.
	es := NewEventStream[int](nil)
	es.Subscribe() // never consumes

	for i := 0; i < 1500; i++ {
		es.Post(i)
	}
	es.compact()
	if !es.warnedLong {
		t.Error("long stream did not latch the warning")
	}
	es.compact()
	if !es.warnedLong {
		t.Error("warning latch did not stick")
	}
}

func TestEventStreamCompact(t *testing.T) {
	es := NewEventStream[int](nil)

	// multiple consumers, at different offsets
	subs := [4]*EventsSubscription[int]{es.Subscribe(), es.Subscribe(), es.Subscribe(), es.Subscribe()}
	// consume probability
	p := [4]float32{1, 0.75, 0.05, 0.5}
	// next value we expect to get from the stream
	var idx [4]int

	i, iter := 0, 0
	for i < 65536 {
		// Add a bunch of consecutive numbers to the stream
		n := rand.Intn(255)
		for j := 0; j < n; j++ {
			es.Post(i + j)
		}
		i += n

		if iter == 1 {
			subs[1].Unsubscribe()
		}

		for c, prob := range p {
			if rand.Float32() > prob || (iter > 0 && c == 1) /* unsubscribed */ {
				continue
			}
			s := subs[c].Get()
			for _, sv := range s {
				if idx[c] != sv {
					t.Errorf("expected %d, got %d for consumer %d", idx[c], sv, c)
				}
				idx[c]++
			}
		}

		es.compact()
		iter++
	}

	if cap(es.events) > i/2 {
		t.Errorf("is compaction not happening? len %d cap %d", len(es.events), cap(es.events))
	}
}
