// stations/db.go
// Copyright(c) 2025 xpwx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package stations

import (
	"encoding/csv"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/avtools/xpwx/geo"
	"github.com/avtools/xpwx/log"
	"github.com/avtools/xpwx/util"
)

// DB is a station coordinate table loaded from a CSV file with
// "ident,lat,lon" rows. It resolves weather station idents to positions
// for spatial indexing; it is a stand-in for a full navdata database.
type DB struct {
	locations map[string]geo.Pos
}

// cachedTable is the msgpack form stored in the object cache; the source
// file's modification time decides freshness.
type cachedTable struct {
	SourceModTime time.Time
	Locations     map[string]geo.Pos
}

// Load reads the station table at path. Files ending in .zst are
// transparently decompressed. Parsed tables are cached in the user cache
// directory keyed by the source path and invalidated by its modification
// time, so large tables only pay the parse once.
func Load(path string, lg *log.Logger) (*DB, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	cacheKey := cachePath(path)
	var cached cachedTable
	if _, err := util.CacheRetrieveObject(cacheKey, &cached); err == nil &&
		cached.SourceModTime.Equal(fi.ModTime()) {
		lg.Debugf("%s: station table from cache, %d stations", path, len(cached.Locations))
		return &DB{locations: cached.Locations}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		zr, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(0))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}

	locations, err := parseCSV(r, path, lg)
	if err != nil {
		return nil, err
	}

	if err := util.CacheStoreObject(cacheKey, cachedTable{
		SourceModTime: fi.ModTime(),
		Locations:     locations,
	}); err != nil {
		// The cache is an optimization; a failed store only costs the
		// next load a re-parse.
		lg.Warnf("%s: unable to cache station table: %v", path, err)
	}

	lg.Infof("%s: loaded %d stations", path, len(locations))
	return &DB{locations: locations}, nil
}

func cachePath(source string) string {
	abs, err := filepath.Abs(source)
	if err != nil {
		abs = source
	}
	h := fnv.New32a()
	h.Write([]byte(abs))
	return fmt.Sprintf("stations-%s-%08x.msgpack", filepath.Base(source), h.Sum32())
}

func parseCSV(r io.Reader, path string, lg *log.Logger) (map[string]geo.Pos, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true

	locations := make(map[string]geo.Pos)
	for line := 1; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			lg.Warnf("%s:%d: %v", path, line, err)
			continue
		}

		ident := strings.ToUpper(strings.TrimSpace(record[0]))
		if ident == "" {
			continue
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(record[1]), "lat") {
			// Header row. Anything else unparseable on line 1 is a bad
			// data row and gets warned about below like any other.
			continue
		}

		lat, latErr := strconv.ParseFloat(strings.TrimSpace(record[1]), 32)
		lon, lonErr := strconv.ParseFloat(strings.TrimSpace(record[2]), 32)
		if latErr != nil || lonErr != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			lg.Warnf("%s:%d: bad coordinates for %q", path, line, ident)
			continue
		}

		locations[ident] = geo.MakePos(float32(lon), float32(lat))
	}

	return locations, nil
}

// ResolvePosition implements wx.Locator.
func (d *DB) ResolvePosition(ident string) geo.Pos {
	if pos, ok := d.locations[strings.ToUpper(ident)]; ok {
		return pos
	}
	return geo.InvalidPos()
}

func (d *DB) Size() int {
	return len(d.locations)
}
