// Copyright 2025 The Metrolist Authors
// SPDX-License-Identifier: GPL-3.0-only

package library

import (
	"strings"
	"time"

	"github.com/ShiromiyaG/Metrolist/subsonic"
)

// Mapping from provider-native payloads to the unified shapes. Provider
// fields are copied 1:1 where present; a starred timestamp becomes the
// liked flag and date; cover ids become thumbnail markers via CoverRef.

// parseDate parses the protocol's timestamp format,
// YYYY-MM-DDTHH:MM:SS[.mmm]Z, where the fractional seconds and trailing Z
// may each be absent. An absent or malformed string maps to now rather
// than failing the whole entity.
func parseDate(s string) time.Time {
	if s == "" {
		return time.Now()
	}
	clean := strings.TrimSuffix(s, "Z")
	if dot := strings.Index(clean, "."); dot >= 0 {
		clean = clean[:dot]
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05", clean, time.Local)
	if err != nil {
		return time.Now()
	}
	return t
}

// starredDate returns the zero time when the entity is not starred.
func starredDate(starred *string) time.Time {
	if starred == nil {
		return time.Time{}
	}
	return parseDate(*starred)
}

func coverRefOf(coverArt subsonic.ID) string {
	if coverArt == "" {
		return ""
	}
	return CoverRef(string(coverArt))
}

func subsonicIDOf(native subsonic.ID) string {
	if native == "" {
		return ""
	}
	return SubsonicID(string(native)).String()
}

// mapSong converts a native song. Duration -1 means the server omitted it.
// TotalPlayTime is an estimate (playCount x duration), not an authoritative
// listening total; the protocol reports no such total.
func mapSong(s subsonic.Song) Song {
	duration := s.Duration
	if duration == 0 {
		duration = -1
	}
	return Song{
		ID:            SubsonicID(string(s.ID)).String(),
		Title:         s.Title,
		ArtistID:      subsonicIDOf(s.ArtistID),
		ArtistName:    s.Artist,
		AlbumID:       subsonicIDOf(s.AlbumID),
		AlbumName:     s.Album,
		Duration:      duration,
		Year:          s.Year,
		ThumbnailURL:  coverRefOf(s.CoverArt),
		Explicit:      false,
		Liked:         s.Starred != nil,
		LikedDate:     starredDate(s.Starred),
		Date:          parseDate(s.Created),
		TotalPlayTime: time.Duration(s.PlayCount) * time.Duration(s.Duration) * time.Second,
		InLibrary:     time.Now(),
		IsLocal:       false,
		IsUploaded:    false,
	}
}

func mapSongs(songs []subsonic.Song) []Song {
	out := make([]Song, len(songs))
	for i, s := range songs {
		out[i] = mapSong(s)
	}
	return out
}

func mapAlbum(a subsonic.Album) Album {
	return Album{
		ID:             SubsonicID(string(a.ID)).String(),
		Title:          a.Name,
		ArtistID:       subsonicIDOf(a.ArtistID),
		ArtistName:     a.Artist,
		Year:           a.Year,
		ThumbnailURL:   coverRefOf(a.CoverArt),
		SongCount:      a.SongCount,
		Duration:       a.Duration,
		Explicit:       false,
		LastUpdateTime: parseDate(a.Created),
		LikedDate:      starredDate(a.Starred),
		InLibrary:      time.Now(),
		IsLocal:        false,
		IsUploaded:     false,
	}
}

func mapAlbums(albums []subsonic.Album) []Album {
	out := make([]Album, len(albums))
	for i, a := range albums {
		out[i] = mapAlbum(a)
	}
	return out
}

func mapAlbumWithSongs(a subsonic.AlbumWithSongs) Album {
	album := mapAlbum(a.Album)
	album.Songs = mapSongs(a.Songs)
	return album
}

func mapArtist(a subsonic.Artist) Artist {
	return Artist{
		ID:             SubsonicID(string(a.ID)).String(),
		Name:           a.Name,
		ThumbnailURL:   coverRefOf(a.CoverArt),
		AlbumCount:     a.AlbumCount,
		LastUpdateTime: time.Now(),
		BookmarkedAt:   starredDate(a.Starred),
		IsLocal:        false,
	}
}

func mapArtists(artists []subsonic.Artist) []Artist {
	out := make([]Artist, len(artists))
	for i, a := range artists {
		out[i] = mapArtist(a)
	}
	return out
}

func mapPlaylist(p subsonic.Playlist) Playlist {
	return Playlist{
		ID:           SubsonicID(string(p.ID)).String(),
		Name:         p.Name,
		Comment:      p.Comment,
		Owner:        p.Owner,
		Public:       p.Public,
		SongCount:    p.SongCount,
		Duration:     p.Duration,
		ThumbnailURL: coverRefOf(p.CoverArt),
		Created:      parseDate(p.Created),
		Changed:      parseDate(p.Changed),
	}
}

func mapPlaylistWithSongs(p subsonic.PlaylistWithSongs) Playlist {
	playlist := mapPlaylist(p.Playlist)
	playlist.Songs = mapSongs(p.Entries)
	return playlist
}
