// wx/locator.go
// Copyright(c) 2025 xpwx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package wx

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/avtools/xpwx/geo"
)

// Locator resolves a station ident to its geographic position. It is
// backed by an external station/airport database; stations the backing
// data does not know return an invalid Pos.
type Locator interface {
	ResolvePosition(ident string) geo.Pos
}

// LocatorFunc adapts a lookup function to the Locator interface.
type LocatorFunc func(ident string) geo.Pos

func (f LocatorFunc) ResolvePosition(ident string) geo.Pos {
	return f(ident)
}

// CachingLocator wraps a Locator with an LRU cache. Every re-read of the
// weather file resolves each station again; for resolvers that go to disk
// or farther, the cache makes those repeats free. Failed resolutions are
// not cached so that stations appearing in a later navdata load resolve.
type CachingLocator struct {
	backing Locator
	cache   *lru.Cache[string, geo.Pos]
}

func NewCachingLocator(backing Locator) *CachingLocator {
	cache, err := lru.New[string, geo.Pos](DefaultIndexCapacity)
	if err != nil {
		// Only fails for a non-positive size.
		panic(err)
	}
	return &CachingLocator{backing: backing, cache: cache}
}

func (c *CachingLocator) ResolvePosition(ident string) geo.Pos {
	if pos, ok := c.cache.Get(ident); ok {
		return pos
	}
	pos := c.backing.ResolvePosition(ident)
	if pos.IsValid() {
		c.cache.Add(ident, pos)
	}
	return pos
}
