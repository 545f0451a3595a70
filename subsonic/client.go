// Copyright 2025 The Metrolist Authors
// SPDX-License-Identifier: GPL-3.0-only

// Package subsonic implements a client for the Subsonic REST protocol as
// spoken by Navidrome, Airsonic, and other OpenSubsonic-compatible servers.
// Every call is an HTTP GET under /rest/ carrying a fresh salted md5 token;
// responses arrive in a uniform "subsonic-response" JSON envelope.
package subsonic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/ShiromiyaG/Metrolist/logger"
)

// defaultTimeout bounds every request. The protocol mandates no timeout;
// 30s is generous enough for a slow self-hosted box on a WAN link.
const defaultTimeout = 30 * time.Second

// Default search limits, matching the server-side defaults.
const (
	DefaultArtistCount = 20
	DefaultAlbumCount  = 20
	DefaultSongCount   = 50
)

// Client talks to one Subsonic server. It is immutable after construction
// and safe for concurrent use; every call generates its own salt/token, so
// calls share nothing but the HTTP connection pool. Build a new Client when
// the configuration changes.
type Client struct {
	Host     string // base URL, no trailing slash
	Username string
	Password string

	httpClient *http.Client
	limiter    *rate.Limiter
	logger     logger.LoggerInterface
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default 30s-timeout HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLimiter installs a client-side rate limiter, waited on before every
// request. Useful against small servers that throttle bursts.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

func Init(host, username, password string, log logger.LoggerInterface, opts ...Option) *Client {
	c := &Client{
		Host:       host,
		Username:   username,
		Password:   password,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getResponse performs one envelope call: GET the endpoint, decode the
// envelope, and translate failures into the Error taxonomy. It never
// retries and keeps no state between calls.
func (c *Client) getResponse(ctx context.Context, endpoint string, params url.Values) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &Error{Kind: KindNetwork, Op: endpoint, Err: err}
		}
	}

	requestURL := c.endpointURL(endpoint, c.buildQuery(params))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Op: endpoint, Err: err}
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Op: endpoint, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, &Error{Kind: KindProtocol, Op: endpoint,
			Err: fmt.Errorf("unexpected status code %d (%s)", res.StatusCode, res.Status)}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Op: endpoint, Err: err}
	}

	var decoded responseWrapper
	if err := json.Unmarshal(body, &decoded); err != nil {
		// Keep the body out of the returned error; it goes to the log
		// for diagnosis instead.
		if c.logger != nil {
			c.logger.Printf("[%s] unparseable response body: %s", endpoint, body)
		}
		return nil, &Error{Kind: KindProtocol, Op: endpoint, Err: err}
	}

	resp := decoded.Response
	if resp.Status != "ok" {
		return nil, &Error{Kind: KindServer, Op: endpoint,
			Code: resp.Error.Code, Message: resp.Error.Message}
	}
	return &resp, nil
}

// Ping checks connectivity and credentials.
// https://opensubsonic.netlify.app/docs/endpoints/ping/
func (c *Client) Ping(ctx context.Context) (ServerInfo, error) {
	resp, err := c.getResponse(ctx, "ping", nil)
	if err != nil {
		return ServerInfo{}, err
	}
	return ServerInfo{
		Version:       resp.Version,
		Type:          resp.Type,
		ServerVersion: resp.ServerVersion,
		OpenSubsonic:  resp.OpenSubsonic,
	}, nil
}

// Search queries all ID3 fields globally via search3. Zero counts fall back
// to the 20/20/50 defaults. An empty query is legal; the result is whatever
// the server decides to return for it.
// https://opensubsonic.netlify.app/docs/endpoints/search3/
func (c *Client) Search(ctx context.Context, query string, artistCount, albumCount, songCount int) (SearchResult, error) {
	if artistCount <= 0 {
		artistCount = DefaultArtistCount
	}
	if albumCount <= 0 {
		albumCount = DefaultAlbumCount
	}
	if songCount <= 0 {
		songCount = DefaultSongCount
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("artistCount", strconv.Itoa(artistCount))
	params.Set("albumCount", strconv.Itoa(albumCount))
	params.Set("songCount", strconv.Itoa(songCount))
	resp, err := c.getResponse(ctx, "search3", params)
	if err != nil {
		return SearchResult{}, err
	}
	return resp.SearchResult, nil
}

// GetArtists returns all artists as one flat list. The server groups them
// into alphabetic index buckets; the buckets are a presentation detail, so
// they are flattened here, preserving bucket order.
// https://opensubsonic.netlify.app/docs/endpoints/getartists/
func (c *Client) GetArtists(ctx context.Context) ([]Artist, error) {
	resp, err := c.getResponse(ctx, "getArtists", nil)
	if err != nil {
		return nil, err
	}
	var artists []Artist
	for _, index := range resp.Artists.Index {
		artists = append(artists, index.Artists...)
	}
	return artists, nil
}

// GetArtist fetches one artist with its albums. A missing id surfaces as a
// KindServer error satisfying IsNotFound.
// https://opensubsonic.netlify.app/docs/endpoints/getartist/
func (c *Client) GetArtist(ctx context.Context, id string) (Artist, error) {
	params := url.Values{}
	params.Set("id", id)
	resp, err := c.getResponse(ctx, "getArtist", params)
	if err != nil {
		return Artist{}, err
	}
	return resp.Artist, nil
}

// GetAlbum fetches one album with its songs.
// https://opensubsonic.netlify.app/docs/endpoints/getalbum/
func (c *Client) GetAlbum(ctx context.Context, id string) (AlbumWithSongs, error) {
	params := url.Values{}
	params.Set("id", id)
	resp, err := c.getResponse(ctx, "getAlbum", params)
	if err != nil {
		return AlbumWithSongs{}, err
	}
	return resp.Album, nil
}

// GetRandomSongs fetches up to size random songs, optionally filtered by
// genre. Order is server-defined.
func (c *Client) GetRandomSongs(ctx context.Context, size int, genre string) ([]Song, error) {
	if size <= 0 {
		size = DefaultSongCount
	}
	params := url.Values{}
	params.Set("size", strconv.Itoa(size))
	if genre != "" {
		params.Set("genre", genre)
	}
	resp, err := c.getResponse(ctx, "getRandomSongs", params)
	if err != nil {
		return nil, err
	}
	return resp.RandomSongs.Songs, nil
}

// GetAlbumList fetches an album list of the given type ("recent", "newest",
// "frequent", ...) with paging.
// https://opensubsonic.netlify.app/docs/endpoints/getalbumlist2/
func (c *Client) GetAlbumList(ctx context.Context, listType string, size, offset int) ([]Album, error) {
	if size <= 0 {
		size = DefaultSongCount
	}
	params := url.Values{}
	params.Set("type", listType)
	params.Set("size", strconv.Itoa(size))
	params.Set("offset", strconv.Itoa(offset))
	resp, err := c.getResponse(ctx, "getAlbumList2", params)
	if err != nil {
		return nil, err
	}
	return resp.AlbumList.Albums, nil
}

// GetPlaylists lists all playlists visible to the user, without entries.
func (c *Client) GetPlaylists(ctx context.Context) ([]Playlist, error) {
	resp, err := c.getResponse(ctx, "getPlaylists", nil)
	if err != nil {
		return nil, err
	}
	return resp.Playlists.Playlists, nil
}

// GetPlaylist fetches one playlist with its entries.
func (c *Client) GetPlaylist(ctx context.Context, id string) (PlaylistWithSongs, error) {
	params := url.Values{}
	params.Set("id", id)
	resp, err := c.getResponse(ctx, "getPlaylist", params)
	if err != nil {
		return PlaylistWithSongs{}, err
	}
	return resp.Playlist, nil
}

// starParams builds the id parameters shared by Star and Unstar. Exactly
// one of songID/albumID/artistID is meaningful per call; the server ignores
// empty ones, and so do we.
func starParams(songID, albumID, artistID string) url.Values {
	params := url.Values{}
	if songID != "" {
		params.Set("id", songID)
	}
	if albumID != "" {
		params.Set("albumId", albumID)
	}
	if artistID != "" {
		params.Set("artistId", artistID)
	}
	return params
}

// Star marks a song, album, or artist as a favorite. Starring something
// already starred is a server-side no-op.
func (c *Client) Star(ctx context.Context, songID, albumID, artistID string) error {
	_, err := c.getResponse(ctx, "star", starParams(songID, albumID, artistID))
	return err
}

// Unstar removes the favorite mark. Unstarring something never starred
// still succeeds; the server is idempotent and we add no local check.
func (c *Client) Unstar(ctx context.Context, songID, albumID, artistID string) error {
	_, err := c.getResponse(ctx, "unstar", starParams(songID, albumID, artistID))
	return err
}

// CreatePlaylist creates a playlist with the given name and optional
// initial songs, returning it with entries populated.
func (c *Client) CreatePlaylist(ctx context.Context, name string, songIDs []string) (PlaylistWithSongs, error) {
	params := url.Values{}
	params.Set("name", name)
	for _, id := range songIDs {
		params.Add("songId", id)
	}
	resp, err := c.getResponse(ctx, "createPlaylist", params)
	if err != nil {
		return PlaylistWithSongs{}, err
	}
	return resp.Playlist, nil
}

// PlaylistUpdate describes one updatePlaylist call. Additions and removals
// are independent and may both be present; removal indexes refer to the
// playlist as it was before this call's additions are applied, which is why
// both are batched into a single request rather than issued separately.
type PlaylistUpdate struct {
	Name            string
	Comment         string
	SongIDsToAdd    []string
	IndexesToRemove []int
}

// UpdatePlaylist applies an update to an existing playlist.
func (c *Client) UpdatePlaylist(ctx context.Context, playlistID string, update PlaylistUpdate) error {
	params := url.Values{}
	params.Set("playlistId", playlistID)
	if update.Name != "" {
		params.Set("name", update.Name)
	}
	if update.Comment != "" {
		params.Set("comment", update.Comment)
	}
	for _, id := range update.SongIDsToAdd {
		params.Add("songIdToAdd", id)
	}
	for _, idx := range update.IndexesToRemove {
		params.Add("songIndexToRemove", strconv.Itoa(idx))
	}
	_, err := c.getResponse(ctx, "updatePlaylist", params)
	return err
}

// DeletePlaylist deletes a playlist by id.
func (c *Client) DeletePlaylist(ctx context.Context, id string) error {
	params := url.Values{}
	params.Set("id", id)
	_, err := c.getResponse(ctx, "deletePlaylist", params)
	return err
}

// Scrobble reports a playback event for play counts and history. submission
// is false for a "now playing" notification and true for a final submission.
func (c *Client) Scrobble(ctx context.Context, id string, submission bool) error {
	params := url.Values{}
	params.Set("id", id)
	params.Set("submission", strconv.FormatBool(submission))
	_, err := c.getResponse(ctx, "scrobble", params)
	return err
}
