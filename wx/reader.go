// wx/reader.go
// Copyright(c) 2025 xpwx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package wx

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/avtools/xpwx/log"
)

// The weather dump is line oriented:
//
//	2017/07/30 18:45
//	KHYI 301845Z 13007KT 070V130 10SM SCT075 38/17 A2996
//
//	2017/07/30 18:55
//	KPRO 301855Z AUTO 11003KT 10SM CLR 26/14 A3022 RMK AO2 T02570135
//
// A date line sets the timestamp for the observation lines that follow it.
var (
	// Recognize a station observation by its leading ident.
	identRegexp = regexp.MustCompile(`^[A-Z0-9]{2,5}$`)

	// Recognize the date part of a timestamp header.
	dateRegexp = regexp.MustCompile(`^\d{4}/\d{2}/\d{2}`)
)

const dateLayout = "2006/01/02 15:04"

// ReadFile parses the weather dump at path into a fresh Index, resolving
// station positions through locator. Stations without a resolvable
// position are skipped; if a station appears under several date headers,
// the observation with the newest header wins regardless of file order.
//
// The returned error is non-nil only when the file cannot be read at all;
// the caller is expected to keep whatever index it already has in that
// case, since stale weather beats no weather.
func ReadFile(path string, locator Locator, lg *log.Logger) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open weather file: %w", err)
	}
	defer f.Close()

	index := NewIndex()

	var lastTimestamp time.Time
	lineNum := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if dateRegexp.MatchString(line) {
			// 2017/10/29 11:45
			lastTimestamp, err = time.Parse(dateLayout, line)
			if err != nil {
				// Observations under a bad header carry no timestamp.
				lg.Warnf("%s:%d: unparseable date header %q", path, lineNum, line)
				lastTimestamp = time.Time{}
			}
			continue
		}

		ident, _, _ := strings.Cut(line, " ")
		if !identRegexp.MatchString(ident) {
			lg.Warnf("%s:%d: malformed METAR line %q", path, lineNum, line)
			continue
		}

		if index.Contains(ident) && index.Value(ident).Time.After(lastTimestamp) {
			// Already loaded one from a newer timestamp block.
			continue
		}

		// Add only if a position is known; otherwise it can't be indexed.
		if pos := locator.ResolvePosition(ident); pos.IsValid() {
			index.Insert(METAR{Ident: ident, Raw: line, Time: lastTimestamp}, pos)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read weather file: %w", err)
	}

	lg.Debugf("%s: loaded %d METARs", path, index.Size())
	return index, nil
}
