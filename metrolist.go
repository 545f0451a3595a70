// Copyright 2025 The Metrolist Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/ShiromiyaG/Metrolist/config"
	"github.com/ShiromiyaG/Metrolist/library"
	"github.com/ShiromiyaG/Metrolist/logger"
)

var osExit = os.Exit // A variable to allow mocking os.Exit in tests

const DEVELOPMENT = "development"

// Version is the program version; usually set from BuildInfo
var Version string = DEVELOPMENT

// drainLogs prints whatever the components logged during a run.
func drainLogs(log *logger.Logger) {
	for {
		select {
		case line := <-log.Prints:
			fmt.Fprintln(os.Stderr, line)
		default:
			return
		}
	}
}

// fail reports an error and exits. os.Exit skips defers, so the queued log
// lines are drained here first; a failed run is when they matter most.
func fail(log *logger.Logger, code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	drainLogs(log)
	osExit(code)
}

// return codes:
// 0 - OK
// 1 - runtime errors
// 2 - config errors
func main() {
	help := flag.Bool("help", false, "Print usage")
	configFile := flag.String("config", "", "use config `file`")
	list := flag.Bool("list", false, "list server data")
	search := flag.String("search", "", "search the server for `query`")
	random := flag.Int("random", 0, "fetch `n` random songs")
	version := flag.Bool("version", false, "print the metrolist version and exit")

	flag.Parse()
	if *help {
		fmt.Printf("USAGE: %s <args>\n", os.Args[0])
		flag.Usage()
		osExit(0)
	}
	if Version == DEVELOPMENT {
		if bi, ok := debug.ReadBuildInfo(); ok {
			Version = bi.Main.Version
		}
	}
	if *version {
		fmt.Printf("metrolist %s\n", Version)
		osExit(0)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read configuration: %v\n", err)
		osExit(2)
	}

	log := logger.Init()
	defer drainLogs(log)

	lib := library.New(log)
	lib.SetConfig(cfg)

	if lib.State() != library.StateReady {
		fail(log, 2, "Subsonic integration is disabled or unconfigured; nothing to do.\n")
	}

	ctx := context.Background()

	info, err := lib.TestConnection(ctx)
	if err != nil {
		fail(log, 1, "Error reaching server: %s\n", err)
	}
	fmt.Printf("Server %-20s: %s\n", "Subsonic API version", info.Version)
	fmt.Printf("Server %-20s: %s\n", "type", info.Type)
	fmt.Printf("Server %-20s: %s\n", "version", info.ServerVersion)
	fmt.Printf("Server %-20s: %t\n", "is OpenSubsonic", info.OpenSubsonic)

	if *search != "" {
		results, err := lib.Search(ctx, *search)
		if err != nil {
			fail(log, 1, "Error searching: %s\n", err)
		}
		fmt.Printf("%-27s: %d\n", "Matching artists", len(results.Artists))
		for _, a := range results.Artists {
			fmt.Printf("  %s (%s)\n", a.Name, a.ID)
		}
		fmt.Printf("%-27s: %d\n", "Matching albums", len(results.Albums))
		for _, a := range results.Albums {
			fmt.Printf("  %s - %s (%s)\n", a.ArtistName, a.Title, a.ID)
		}
		fmt.Printf("%-27s: %d\n", "Matching songs", len(results.Songs))
		for _, s := range results.Songs {
			fmt.Printf("  %s - %s (%s)\n", s.ArtistName, s.Title, s.ID)
		}
	}

	if *random > 0 {
		songs, err := lib.RandomSongs(ctx, *random, "")
		if err != nil {
			fail(log, 1, "Error fetching random songs: %s\n", err)
		}
		for _, s := range songs {
			fmt.Printf("  %s - %s (%s)\n", s.ArtistName, s.Title, s.ID)
		}
	}

	if *list {
		artists, err := lib.Artists(ctx)
		if err != nil {
			fail(log, 1, "Error fetching artists from server: %s\n", err)
		}
		albumCount := 0
		for _, a := range artists {
			albumCount += a.AlbumCount
		}
		fmt.Printf("%-27s: %d\n", "Artists", len(artists))
		fmt.Printf("%-27s: %d\n", "Albums", albumCount)

		playlists, err := lib.Playlists(ctx)
		if err != nil {
			fail(log, 1, "Error fetching playlists from server: %s\n", err)
		}
		fmt.Printf("%-27s: %d\n", "Playlists", len(playlists))
		for _, pl := range playlists {
			fmt.Printf("  %25s: %d\n", pl.Name, pl.SongCount)
		}
	}
}
