// main.go
// Copyright(c) 2025 xpwx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

// Standalone watcher daemon: keeps a live index over an X-Plane weather
// dump file and reports updates; with -lookup it answers a single query
// and exits.

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/avtools/xpwx/geo"
	"github.com/avtools/xpwx/log"
	"github.com/avtools/xpwx/stations"
	"github.com/avtools/xpwx/wx"
)

var (
	weatherPath  = flag.String("path", "", "path to the weather dump file (e.g. X-Plane's METAR.rwx)")
	stationsPath = flag.String("stations", "", "path to the station table CSV (ident,lat,lon), optionally .zst compressed")
	logLevel     = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir       = flag.String("logdir", "", "log file directory")
	debounce     = flag.Duration("debounce", 0, "override the change debounce delay")
	poll         = flag.Duration("poll", 0, "override the fallback poll interval")
	lookup       = flag.String("lookup", "", "answer one query and exit; IDENT or IDENT@lat,lon")
)

func main() {
	flag.Parse()

	if *weatherPath == "" || *stationsPath == "" {
		fmt.Fprintln(os.Stderr, "both -path and -stations are required")
		flag.Usage()
		os.Exit(2)
	}

	lg := log.New(*logLevel, *logDir)

	db, err := stations.Load(*stationsPath, lg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", *stationsPath, err)
		os.Exit(1)
	}

	svc, err := wx.NewService(*weatherPath, wx.NewCachingLocator(db), wx.Config{
		DebounceDelay: *debounce,
		PollInterval:  *poll,
	}, lg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", *weatherPath, err)
		os.Exit(1)
	}
	defer svc.Close()

	if *lookup != "" {
		runLookup(svc, *lookup)
		return
	}

	fmt.Printf("watching %s: %d stations reporting\n", *weatherPath, svc.Stations())

	sub := svc.Subscribe()
	defer sub.Unsubscribe()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "shutting down")
			return
		case <-ticker.C:
			for _, ev := range sub.Get() {
				fmt.Printf("%s: weather updated, %d stations reporting\n", ev.Path, ev.Stations)
			}
		}
	}
}

// runLookup answers a single "IDENT" or "IDENT@lat,lon" query.
func runLookup(svc *wx.Service, query string) {
	ident, at, haveAt := strings.Cut(query, "@")
	ident = strings.ToUpper(strings.TrimSpace(ident))

	pos := geo.InvalidPos()
	if haveAt {
		latStr, lonStr, ok := strings.Cut(at, ",")
		if !ok {
			fmt.Fprintf(os.Stderr, "%s: expected IDENT@lat,lon\n", query)
			os.Exit(2)
		}
		lat, latErr := strconv.ParseFloat(strings.TrimSpace(latStr), 32)
		lon, lonErr := strconv.ParseFloat(strings.TrimSpace(lonStr), 32)
		if latErr != nil || lonErr != nil {
			fmt.Fprintf(os.Stderr, "%s: expected IDENT@lat,lon\n", query)
			os.Exit(2)
		}
		pos = geo.MakePos(float32(lon), float32(lat))
	}

	result := svc.GetStationWeather(ident, pos)
	switch {
	case result.MetarForStation != "":
		fmt.Println(result.MetarForStation)
	case result.MetarForNearest != "":
		fmt.Printf("no report for %s; nearest station reports:\n%s\n", ident, result.MetarForNearest)
	default:
		fmt.Printf("no weather available for %s\n", ident)
		os.Exit(1)
	}
}
