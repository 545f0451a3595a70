// Copyright 2025 The Metrolist Authors
// SPDX-License-Identifier: GPL-3.0-only

package library

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/ShiromiyaG/Metrolist/config"
	"github.com/ShiromiyaG/Metrolist/logger"
	"github.com/ShiromiyaG/Metrolist/subsonic"
)

// State is the facade's configuration state.
type State int

const (
	// StateDisabled: the integration is switched off.
	StateDisabled State = iota
	// StateUnconfigured: enabled, but server URL or credentials missing.
	StateUnconfigured
	// StateReady: enabled and fully configured; the only state in which
	// network calls are issued.
	StateReady
)

var (
	// ErrNotReady is returned by operations that cannot degrade to an
	// empty result when the integration is disabled or unconfigured. No
	// network call was issued.
	ErrNotReady = errors.New("library: subsonic integration is not configured")

	// ErrForeignID is returned when an operation that needs a Subsonic
	// entity receives an identifier from the streaming provider.
	ErrForeignID = errors.New("library: identifier does not name a subsonic entity")
)

// snapshot pairs a Config with the client built from it. Requests capture
// one snapshot and use it end to end; a concurrent settings update swaps
// the pointer and can never mix old and new fields mid-request.
type snapshot struct {
	cfg    config.Config
	client *subsonic.Client // nil unless the config is Ready
}

// Library is the single entry point the application calls for Subsonic
// catalog, favorite, playlist, and URL operations. The rest of the app
// calls it unconditionally; when the integration is off, list reads come
// back empty and nothing touches the network.
type Library struct {
	logger     logger.LoggerInterface
	store      Store
	clientOpts []subsonic.Option
	current    atomic.Pointer[snapshot]
}

// Option configures a Library.
type Option func(*Library)

// WithStore installs the catalog store that mapped entities are written
// through to after successful fetches.
func WithStore(s Store) Option {
	return func(l *Library) { l.store = s }
}

// WithClientOptions forwards options (HTTP client, rate limiter) to every
// subsonic.Client the library builds.
func WithClientOptions(opts ...subsonic.Option) Option {
	return func(l *Library) { l.clientOpts = opts }
}

func New(log logger.LoggerInterface, opts ...Option) *Library {
	l := &Library{logger: log}
	for _, opt := range opts {
		opt(l)
	}
	l.current.Store(&snapshot{})
	return l
}

// SetConfig atomically replaces the configuration. The snapshot (config
// plus client) is built up front and swapped in one store, so concurrent
// requests observe either the old or the new configuration, never a mix.
func (l *Library) SetConfig(cfg config.Config) {
	cfg = cfg.Normalize()
	snap := &snapshot{cfg: cfg}
	if cfg.Enabled && cfg.Complete() {
		snap.client = subsonic.Init(cfg.ServerURL, cfg.Username, cfg.Password, l.logger, l.clientOpts...)
	}
	l.current.Store(snap)
}

// Config returns the current configuration snapshot.
func (l *Library) Config() config.Config {
	return l.current.Load().cfg
}

// State derives the facade state from the current configuration.
func (l *Library) State() State {
	snap := l.current.Load()
	switch {
	case !snap.cfg.Enabled:
		return StateDisabled
	case snap.client == nil:
		return StateUnconfigured
	default:
		return StateReady
	}
}

// ready returns the captured snapshot when the library may issue calls.
func (l *Library) ready() (*snapshot, bool) {
	snap := l.current.Load()
	return snap, snap.client != nil
}

// saveSongs and friends push mapped entities into the catalog store.
// Persistence is best-effort: a store failure is logged and the fetched
// result is still returned to the caller.
func (l *Library) saveSongs(ctx context.Context, songs []Song) {
	if l.store == nil || len(songs) == 0 {
		return
	}
	if err := l.store.SaveSongs(ctx, songs); err != nil {
		l.logger.PrintError("store.SaveSongs", err)
	}
}

func (l *Library) saveAlbums(ctx context.Context, albums []Album) {
	if l.store == nil || len(albums) == 0 {
		return
	}
	if err := l.store.SaveAlbums(ctx, albums); err != nil {
		l.logger.PrintError("store.SaveAlbums", err)
	}
}

func (l *Library) saveArtists(ctx context.Context, artists []Artist) {
	if l.store == nil || len(artists) == 0 {
		return
	}
	if err := l.store.SaveArtists(ctx, artists); err != nil {
		l.logger.PrintError("store.SaveArtists", err)
	}
}

// TestConnection pings the server to validate the configuration.
func (l *Library) TestConnection(ctx context.Context) (subsonic.ServerInfo, error) {
	snap, ok := l.ready()
	if !ok {
		return subsonic.ServerInfo{}, ErrNotReady
	}
	return snap.client.Ping(ctx)
}

// Search queries songs, albums, and artists with the protocol's default
// limits. While not Ready it returns empty results without any I/O, so
// callers can merge it into provider search unconditionally.
func (l *Library) Search(ctx context.Context, query string) (SearchResults, error) {
	snap, ok := l.ready()
	if !ok {
		return SearchResults{}, nil
	}
	result, err := snap.client.Search(ctx, query, 0, 0, 0)
	if err != nil {
		return SearchResults{}, err
	}
	results := SearchResults{
		Songs:   mapSongs(result.Songs),
		Albums:  mapAlbums(result.Albums),
		Artists: mapArtists(result.Artists),
	}
	l.saveSongs(ctx, results.Songs)
	l.saveAlbums(ctx, results.Albums)
	l.saveArtists(ctx, results.Artists)
	return results, nil
}

// Artists lists every artist on the server. Empty while not Ready.
func (l *Library) Artists(ctx context.Context) ([]Artist, error) {
	snap, ok := l.ready()
	if !ok {
		return nil, nil
	}
	artists, err := snap.client.GetArtists(ctx)
	if err != nil {
		return nil, err
	}
	mapped := mapArtists(artists)
	l.saveArtists(ctx, mapped)
	return mapped, nil
}

// Artist fetches one artist by unified id.
func (l *Library) Artist(ctx context.Context, id string) (Artist, error) {
	snap, ok := l.ready()
	if !ok {
		return Artist{}, ErrNotReady
	}
	parsed := ParseID(id)
	if parsed.Source != SourceSubsonic {
		return Artist{}, ErrForeignID
	}
	artist, err := snap.client.GetArtist(ctx, parsed.Native)
	if err != nil {
		return Artist{}, err
	}
	return mapArtist(artist), nil
}

// Album fetches one album with its songs by unified id.
func (l *Library) Album(ctx context.Context, id string) (Album, error) {
	snap, ok := l.ready()
	if !ok {
		return Album{}, ErrNotReady
	}
	parsed := ParseID(id)
	if parsed.Source != SourceSubsonic {
		return Album{}, ErrForeignID
	}
	album, err := snap.client.GetAlbum(ctx, parsed.Native)
	if err != nil {
		return Album{}, err
	}
	mapped := mapAlbumWithSongs(album)
	l.saveAlbums(ctx, []Album{mapped})
	l.saveSongs(ctx, mapped.Songs)
	return mapped, nil
}

// RandomSongs fetches count random songs, optionally genre-filtered.
// Empty while not Ready.
func (l *Library) RandomSongs(ctx context.Context, count int, genre string) ([]Song, error) {
	snap, ok := l.ready()
	if !ok {
		return nil, nil
	}
	songs, err := snap.client.GetRandomSongs(ctx, count, genre)
	if err != nil {
		return nil, err
	}
	mapped := mapSongs(songs)
	l.saveSongs(ctx, mapped)
	return mapped, nil
}

// AlbumList fetches an album list ("recent", "newest", "frequent", ...)
// with paging. Empty while not Ready.
func (l *Library) AlbumList(ctx context.Context, listType string, count, offset int) ([]Album, error) {
	snap, ok := l.ready()
	if !ok {
		return nil, nil
	}
	albums, err := snap.client.GetAlbumList(ctx, listType, count, offset)
	if err != nil {
		return nil, err
	}
	mapped := mapAlbums(albums)
	l.saveAlbums(ctx, mapped)
	return mapped, nil
}

// RecentAlbums is AlbumList("recent") without paging.
func (l *Library) RecentAlbums(ctx context.Context, count int) ([]Album, error) {
	return l.AlbumList(ctx, "recent", count, 0)
}

// Playlists lists the server playlists without entries.
func (l *Library) Playlists(ctx context.Context) ([]Playlist, error) {
	snap, ok := l.ready()
	if !ok {
		return nil, nil
	}
	playlists, err := snap.client.GetPlaylists(ctx)
	if err != nil {
		return nil, err
	}
	mapped := make([]Playlist, len(playlists))
	for i, p := range playlists {
		mapped[i] = mapPlaylist(p)
	}
	return mapped, nil
}

// Playlist fetches one playlist with its songs by unified id.
func (l *Library) Playlist(ctx context.Context, id string) (Playlist, error) {
	snap, ok := l.ready()
	if !ok {
		return Playlist{}, ErrNotReady
	}
	parsed := ParseID(id)
	if parsed.Source != SourceSubsonic {
		return Playlist{}, ErrForeignID
	}
	playlist, err := snap.client.GetPlaylist(ctx, parsed.Native)
	if err != nil {
		return Playlist{}, err
	}
	mapped := mapPlaylistWithSongs(playlist)
	l.saveSongs(ctx, mapped.Songs)
	return mapped, nil
}

// decodeSubsonic maps a unified id to its native form or fails with
// ErrForeignID. Mutating operations never silently skip foreign ids.
func decodeSubsonic(id string) (string, error) {
	parsed := ParseID(id)
	if parsed.Source != SourceSubsonic {
		return "", ErrForeignID
	}
	return parsed.Native, nil
}

// SetSongStarred stars or unstars a song. Unlike reads, favorite changes
// never degrade to a no-op: calling this while not Ready is an error.
func (l *Library) SetSongStarred(ctx context.Context, id string, starred bool) error {
	snap, ok := l.ready()
	if !ok {
		return ErrNotReady
	}
	native, err := decodeSubsonic(id)
	if err != nil {
		return err
	}
	if starred {
		return snap.client.Star(ctx, native, "", "")
	}
	return snap.client.Unstar(ctx, native, "", "")
}

// SetAlbumStarred stars or unstars an album.
func (l *Library) SetAlbumStarred(ctx context.Context, id string, starred bool) error {
	snap, ok := l.ready()
	if !ok {
		return ErrNotReady
	}
	native, err := decodeSubsonic(id)
	if err != nil {
		return err
	}
	if starred {
		return snap.client.Star(ctx, "", native, "")
	}
	return snap.client.Unstar(ctx, "", native, "")
}

// SetArtistStarred stars or unstars an artist.
func (l *Library) SetArtistStarred(ctx context.Context, id string, starred bool) error {
	snap, ok := l.ready()
	if !ok {
		return ErrNotReady
	}
	native, err := decodeSubsonic(id)
	if err != nil {
		return err
	}
	if starred {
		return snap.client.Star(ctx, "", "", native)
	}
	return snap.client.Unstar(ctx, "", "", native)
}

// CreatePlaylist creates a server playlist from unified song ids. Every id
// must be a Subsonic id; provider songs cannot live in server playlists.
func (l *Library) CreatePlaylist(ctx context.Context, name string, songIDs []string) (Playlist, error) {
	snap, ok := l.ready()
	if !ok {
		return Playlist{}, ErrNotReady
	}
	native := make([]string, len(songIDs))
	for i, id := range songIDs {
		n, err := decodeSubsonic(id)
		if err != nil {
			return Playlist{}, err
		}
		native[i] = n
	}
	playlist, err := snap.client.CreatePlaylist(ctx, name, native)
	if err != nil {
		return Playlist{}, err
	}
	return mapPlaylistWithSongs(playlist), nil
}

// PlaylistUpdate describes a playlist mutation in unified terms. Removal
// indexes refer to the playlist's positions before this update's additions
// are applied; both are sent in a single request to preserve that order.
type PlaylistUpdate struct {
	Name          string
	Comment       string
	AddSongIDs    []string
	RemoveIndexes []int
}

// UpdatePlaylist applies an update to a server playlist.
func (l *Library) UpdatePlaylist(ctx context.Context, id string, update PlaylistUpdate) error {
	snap, ok := l.ready()
	if !ok {
		return ErrNotReady
	}
	nativeID, err := decodeSubsonic(id)
	if err != nil {
		return err
	}
	native := subsonic.PlaylistUpdate{
		Name:            update.Name,
		Comment:         update.Comment,
		IndexesToRemove: update.RemoveIndexes,
	}
	for _, songID := range update.AddSongIDs {
		n, err := decodeSubsonic(songID)
		if err != nil {
			return err
		}
		native.SongIDsToAdd = append(native.SongIDsToAdd, n)
	}
	return snap.client.UpdatePlaylist(ctx, nativeID, native)
}

// DeletePlaylist deletes a server playlist.
func (l *Library) DeletePlaylist(ctx context.Context, id string) error {
	snap, ok := l.ready()
	if !ok {
		return ErrNotReady
	}
	native, err := decodeSubsonic(id)
	if err != nil {
		return err
	}
	return snap.client.DeletePlaylist(ctx, native)
}

// StreamURL resolves a unified song id to a playback URL, capped at the
// configured maximum bit rate. The URL embeds its own fresh credentials
// and is consumed by the audio pipeline directly.
func (l *Library) StreamURL(songID string) (string, error) {
	snap, ok := l.ready()
	if !ok {
		return "", ErrNotReady
	}
	native, err := decodeSubsonic(songID)
	if err != nil {
		return "", err
	}
	return snap.client.StreamURL(native, snap.cfg.MaxBitRate), nil
}

// DownloadURL resolves a unified song id to an uncapped stream URL, so a
// saved file is never transcoded.
func (l *Library) DownloadURL(songID string) (string, error) {
	snap, ok := l.ready()
	if !ok {
		return "", ErrNotReady
	}
	native, err := decodeSubsonic(songID)
	if err != nil {
		return "", err
	}
	return snap.client.DownloadURL(native), nil
}

// CoverArtURL resolves a thumbnail reference produced by the mapper into a
// fetchable image URL. Provider thumbnail URLs (no cover marker) fail with
// ErrForeignID; the caller should use them as-is.
func (l *Library) CoverArtURL(thumbnailRef string, size int) (string, error) {
	snap, ok := l.ready()
	if !ok {
		return "", ErrNotReady
	}
	coverID, isCover := ParseCoverRef(thumbnailRef)
	if !isCover {
		return "", ErrForeignID
	}
	return snap.client.CoverArtURL(coverID, size), nil
}

// Scrobble reports playback of a song. The playback engine calls it with
// submission=false when a song starts and submission=true when it finishes
// or is skipped past half its duration.
func (l *Library) Scrobble(ctx context.Context, songID string, submission bool) error {
	snap, ok := l.ready()
	if !ok {
		return ErrNotReady
	}
	native, err := decodeSubsonic(songID)
	if err != nil {
		return err
	}
	return snap.client.Scrobble(ctx, native, submission)
}
