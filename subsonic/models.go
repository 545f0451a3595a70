// Copyright 2025 The Metrolist Authors
// SPDX-License-Identifier: GPL-3.0-only

package subsonic

import (
	"encoding/json"
	"strconv"
)

// ID is a server-native identifier. Most servers send strings, but some
// (notably older Subsonic releases) send bare integers, so it unmarshals
// from either.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, (*string)(id))
	}
	var i int
	if err := json.Unmarshal(b, &i); err != nil {
		return err
	}
	*id = ID(strconv.Itoa(i))
	return nil
}

// serverError is the error object inside a failed envelope.
type serverError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Song is a single track. Nearly every field is optional in the protocol;
// absent numerics are zero, absent strings empty, and Starred is nil when
// the song is not starred.
type Song struct {
	ID          ID      `json:"id"`
	Parent      ID      `json:"parent"`
	Title       string  `json:"title"`
	Album       string  `json:"album"`
	Artist      string  `json:"artist"`
	Track       int     `json:"track"`
	Year        int     `json:"year"`
	Genre       string  `json:"genre"`
	CoverArt    ID      `json:"coverArt"`
	Size        int64   `json:"size"`
	ContentType string  `json:"contentType"`
	Suffix      string  `json:"suffix"`
	Duration    int     `json:"duration"`
	BitRate     int     `json:"bitRate"`
	Path        string  `json:"path"`
	AlbumID     ID      `json:"albumId"`
	ArtistID    ID      `json:"artistId"`
	Created     string  `json:"created"`
	Starred     *string `json:"starred"`
	DiscNumber  int     `json:"discNumber"`
	PlayCount   int64   `json:"playCount"`
}

// Album is an album without its track list.
type Album struct {
	ID        ID      `json:"id"`
	Name      string  `json:"name"`
	Artist    string  `json:"artist"`
	ArtistID  ID      `json:"artistId"`
	CoverArt  ID      `json:"coverArt"`
	SongCount int     `json:"songCount"`
	Duration  int     `json:"duration"`
	Created   string  `json:"created"`
	Year      int     `json:"year"`
	Genre     string  `json:"genre"`
	Starred   *string `json:"starred"`
	PlayCount int64   `json:"playCount"`
}

// AlbumWithSongs is the getAlbum payload: album metadata plus tracks.
type AlbumWithSongs struct {
	Album
	Songs []Song `json:"song"`
}

// Artist is an artist summary. The getArtist payload reuses it with the
// album list populated.
type Artist struct {
	ID         ID      `json:"id"`
	Name       string  `json:"name"`
	CoverArt   ID      `json:"coverArt"`
	AlbumCount int     `json:"albumCount"`
	Starred    *string `json:"starred"`
	Albums     []Album `json:"album"`
}

// Playlist is a playlist without entries.
type Playlist struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	Comment   string `json:"comment"`
	Owner     string `json:"owner"`
	Public    bool   `json:"public"`
	SongCount int    `json:"songCount"`
	Duration  int    `json:"duration"`
	Created   string `json:"created"`
	Changed   string `json:"changed"`
	CoverArt  ID     `json:"coverArt"`
}

// PlaylistWithSongs is the getPlaylist/createPlaylist payload.
type PlaylistWithSongs struct {
	Playlist
	Entries []Song `json:"entry"`
}

// SearchResult is the search3 payload: three independently bounded lists.
type SearchResult struct {
	Artists []Artist `json:"artist"`
	Albums  []Album  `json:"album"`
	Songs   []Song   `json:"song"`
}

type artistIndex struct {
	Name    string   `json:"name"`
	Artists []Artist `json:"artist"`
}

type artistIndexes struct {
	Index []artistIndex `json:"index"`
}

type songList struct {
	Songs []Song `json:"song"`
}

type albumList struct {
	Albums []Album `json:"album"`
}

type playlistList struct {
	Playlists []Playlist `json:"playlist"`
}

// Response is the inner object of every subsonic-response envelope. Exactly
// one payload field is populated per endpoint; the rest stay zero.
type Response struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Type          string `json:"type"`
	ServerVersion string `json:"serverVersion"`
	OpenSubsonic  bool   `json:"openSubsonic"`

	Error serverError `json:"error"`

	SearchResult SearchResult      `json:"searchResult3"`
	Artists      artistIndexes     `json:"artists"`
	Artist       Artist            `json:"artist"`
	Album        AlbumWithSongs    `json:"album"`
	RandomSongs  songList          `json:"randomSongs"`
	AlbumList    albumList         `json:"albumList2"`
	Playlists    playlistList      `json:"playlists"`
	Playlist     PlaylistWithSongs `json:"playlist"`
}

type responseWrapper struct {
	Response Response `json:"subsonic-response"`
}

// ServerInfo is what Ping learns about the server.
type ServerInfo struct {
	Version       string
	Type          string
	ServerVersion string
	OpenSubsonic  bool
}
