// Copyright 2025 The Metrolist Authors
// SPDX-License-Identifier: GPL-3.0-only

package library

import (
	"context"
	"time"
)

// The unified entity shapes consumed by the rest of the application. IDs
// and thumbnail references are always in boundary (prefixed-string) form.
// Fields the Subsonic protocol has no equivalent for carry fixed defaults:
// Explicit, IsLocal, and IsUploaded are false, and InLibrary is the moment
// the entity was mapped, since every server song is "in the library".

// Song is a unified track.
type Song struct {
	ID            string
	Title         string
	ArtistID      string // empty when the server omitted it
	ArtistName    string
	AlbumID       string
	AlbumName     string
	Duration      int // seconds; -1 when unknown
	Year          int
	ThumbnailURL  string
	Explicit      bool
	Liked         bool
	LikedDate     time.Time // zero unless Liked
	Date          time.Time // server "created" timestamp
	TotalPlayTime time.Duration
	InLibrary     time.Time
	IsLocal       bool
	IsUploaded    bool
}

// Album is a unified album. Songs is populated only on single-album
// fetches, not in lists.
type Album struct {
	ID             string
	Title          string
	ArtistID       string
	ArtistName     string
	Year           int
	ThumbnailURL   string
	SongCount      int
	Duration       int // seconds
	Explicit       bool
	LastUpdateTime time.Time
	LikedDate      time.Time
	InLibrary      time.Time
	IsLocal        bool
	IsUploaded     bool
	Songs          []Song
}

// Artist is a unified artist.
type Artist struct {
	ID             string
	Name           string
	ThumbnailURL   string
	AlbumCount     int
	LastUpdateTime time.Time
	BookmarkedAt   time.Time // zero unless starred
	IsLocal        bool
}

// Playlist is a unified playlist. Songs is populated only on single-
// playlist fetches.
type Playlist struct {
	ID           string
	Name         string
	Comment      string
	Owner        string
	Public       bool
	SongCount    int
	Duration     int // seconds
	ThumbnailURL string
	Created      time.Time
	Changed      time.Time
	Songs        []Song
}

// SearchResults is the unified triple returned by Search.
type SearchResults struct {
	Songs   []Song
	Albums  []Album
	Artists []Artist
}

// Store is the persistent catalog the application writes unified entities
// into. It is an external collaborator: this package calls it write-through
// after successful fetches and never reads from it; storage lifetime and
// schema are the application's concern. A nil Store disables the writes.
type Store interface {
	SaveSongs(ctx context.Context, songs []Song) error
	SaveAlbums(ctx context.Context, albums []Album) error
	SaveArtists(ctx context.Context, artists []Artist) error
}
