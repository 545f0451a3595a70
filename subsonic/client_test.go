// Copyright 2025 The Metrolist Authors
// SPDX-License-Identifier: GPL-3.0-only

package subsonic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// envelope wraps a payload fragment in a successful subsonic-response.
func envelope(payload string) string {
	body := `"status":"ok","version":"1.16.1"`
	if payload != "" {
		body += "," + payload
	}
	return `{"subsonic-response":{` + body + `}}`
}

func failedEnvelope(code int, message string) string {
	return fmt.Sprintf(
		`{"subsonic-response":{"status":"failed","version":"1.16.1","error":{"code":%d,"message":%q}}}`,
		code, message)
}

func newTestServer(t *testing.T, handler http.HandlerFunc, opts ...Option) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, Init(server.URL, "admin", "sesame", nil, opts...)
}

func TestGetResponse(t *testing.T) {
	testCases := []struct {
		name         string
		serverStatus int
		serverBody   string
		wantKind     Kind
	}{
		{
			name:         "Success",
			serverStatus: http.StatusOK,
			serverBody:   envelope(""),
			wantKind:     0,
		},
		{
			name:         "Non-200 Status Code",
			serverStatus: http.StatusBadGateway,
			serverBody:   "upstream broke",
			wantKind:     KindProtocol,
		},
		{
			name:         "Invalid JSON Response",
			serverStatus: http.StatusOK,
			serverBody:   `{"subsonic-response":{"status":`,
			wantKind:     KindProtocol,
		},
		{
			name:         "Failed Envelope",
			serverStatus: http.StatusOK,
			serverBody:   failedEnvelope(40, "Wrong username or password."),
			wantKind:     KindServer,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.serverStatus)
				fmt.Fprint(w, tc.serverBody)
			})

			resp, err := client.getResponse(context.Background(), "ping", nil)
			if tc.wantKind == 0 {
				require.NoError(t, err)
				assert.Equal(t, "ok", resp.Status)
				return
			}

			var se *Error
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tc.wantKind, se.Kind)
			assert.Equal(t, "ping", se.Op)
		})
	}
}

// A limiter that can never admit a request fails the call up front as a
// network-kind error; the server is never contacted.
func TestLimiterRejectionIsNetworkFailure(t *testing.T) {
	hits := 0
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, envelope(""))
	}, WithLimiter(rate.NewLimiter(rate.Limit(1), 0)))

	_, err := client.Ping(context.Background())
	assert.True(t, IsNetwork(err), "expected a network failure, got %v", err)
	assert.Zero(t, hits)
}

func TestLimiterSpacesRequests(t *testing.T) {
	interval := 50 * time.Millisecond
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, envelope(""))
	}, WithLimiter(rate.NewLimiter(rate.Every(interval), 1)))
	ctx := context.Background()

	start := time.Now()
	_, err := client.Ping(ctx)
	require.NoError(t, err)
	_, err = client.Ping(ctx)
	require.NoError(t, err)

	// The burst covers the first call; the second has to wait out the
	// interval.
	assert.GreaterOrEqual(t, time.Since(start), interval)
}

func TestGetResponseNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	client := Init(server.URL, "admin", "sesame", nil)
	server.Close()

	_, err := client.getResponse(context.Background(), "ping", nil)
	assert.True(t, IsNetwork(err), "expected a network failure, got %v", err)
}

func TestGetResponseCancelled(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.getResponse(ctx, "ping", nil)
	assert.True(t, IsNetwork(err), "expected a network failure, got %v", err)
}

func TestServerErrorPassedThroughVerbatim(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, failedEnvelope(50, "admin is not authorized to star."))
	})

	err := client.Star(context.Background(), "s1", "", "")
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, KindServer, se.Kind)
	assert.Equal(t, 50, se.Code)
	assert.Equal(t, "admin is not authorized to star.", se.Message)
}

// Every JSON call must carry the full identification parameter set with a
// valid token for its own salt.
func TestIdentificationParams(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "admin", q.Get("u"))
		assert.Equal(t, APIVersion, q.Get("v"))
		assert.Equal(t, ClientName, q.Get("c"))
		assert.Equal(t, "json", q.Get("f"))
		assert.Equal(t, authToken("sesame", q.Get("s")), q.Get("t"))
		fmt.Fprint(w, envelope(""))
	})

	_, err := client.Ping(context.Background())
	require.NoError(t, err)
}

func TestPing(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/ping.view", r.URL.Path)
		fmt.Fprint(w, envelope(`"type":"navidrome","serverVersion":"0.52.5","openSubsonic":true`))
	})

	info, err := client.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.16.1", info.Version)
	assert.Equal(t, "navidrome", info.Type)
	assert.Equal(t, "0.52.5", info.ServerVersion)
	assert.True(t, info.OpenSubsonic)
}

func TestSearchDefaults(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/rest/search3.view", r.URL.Path)
		assert.Equal(t, "knife", q.Get("query"))
		assert.Equal(t, "20", q.Get("artistCount"))
		assert.Equal(t, "20", q.Get("albumCount"))
		assert.Equal(t, "50", q.Get("songCount"))
		fmt.Fprint(w, envelope(`"searchResult3":{
			"artist":[{"id":"ar-1","name":"The Knife"}],
			"album":[{"id":"al-1","name":"Silent Shout","artistId":"ar-1"}],
			"song":[{"id":"s-1","title":"Marble House","albumId":"al-1"}]}`))
	})

	result, err := client.Search(context.Background(), "knife", 0, 0, 0)
	require.NoError(t, err)
	require.Len(t, result.Artists, 1)
	require.Len(t, result.Albums, 1)
	require.Len(t, result.Songs, 1)
	assert.Equal(t, ID("ar-1"), result.Artists[0].ID)
	assert.Equal(t, "Marble House", result.Songs[0].Title)
}

func TestSearchEmptyQueryIsLegal(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "", r.URL.Query().Get("query"))
		fmt.Fprint(w, envelope(`"searchResult3":{}`))
	})

	result, err := client.Search(context.Background(), "", 5, 5, 5)
	require.NoError(t, err)
	assert.Empty(t, result.Songs)
}

func TestGetArtistsFlattensIndexes(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, envelope(`"artists":{"index":[
			{"name":"B","artist":[{"id":"1","name":"Beirut"},{"id":"2","name":"Boards of Canada"}]},
			{"name":"T","artist":[{"id":"3","name":"Tindersticks"}]}]}`))
	})

	artists, err := client.GetArtists(context.Background())
	require.NoError(t, err)
	require.Len(t, artists, 3)
	assert.Equal(t, "Beirut", artists[0].Name)
	assert.Equal(t, "Boards of Canada", artists[1].Name)
	assert.Equal(t, "Tindersticks", artists[2].Name)
}

func TestGetAlbumNotFound(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, failedEnvelope(CodeNotFound, "Album not found."))
	})

	_, err := client.GetAlbum(context.Background(), "nope")
	assert.True(t, IsNotFound(err), "expected not-found, got %v", err)
	assert.False(t, IsNotFound(fmt.Errorf("plain error")))
}

func TestGetAlbum(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "al-300", r.URL.Query().Get("id"))
		fmt.Fprint(w, envelope(`"album":{"id":"al-300","name":"Spirit of Eden","artist":"Talk Talk",
			"songCount":2,"duration":2460,
			"song":[{"id":"s-1","title":"The Rainbow"},{"id":"s-2","title":"Eden"}]}`))
	})

	album, err := client.GetAlbum(context.Background(), "al-300")
	require.NoError(t, err)
	assert.Equal(t, "Spirit of Eden", album.Name)
	require.Len(t, album.Songs, 2)
	assert.Equal(t, "Eden", album.Songs[1].Title)
}

func TestGetRandomSongsGenre(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "10", q.Get("size"))
		assert.Equal(t, "jazz", q.Get("genre"))
		fmt.Fprint(w, envelope(`"randomSongs":{"song":[{"id":"s-9","title":"Naima"}]}`))
	})

	songs, err := client.GetRandomSongs(context.Background(), 10, "jazz")
	require.NoError(t, err)
	require.Len(t, songs, 1)
}

func TestGetAlbumList(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "recent", q.Get("type"))
		assert.Equal(t, "25", q.Get("size"))
		assert.Equal(t, "50", q.Get("offset"))
		fmt.Fprint(w, envelope(`"albumList2":{"album":[{"id":"al-1","name":"Laughing Stock"}]}`))
	})

	albums, err := client.GetAlbumList(context.Background(), "recent", 25, 50)
	require.NoError(t, err)
	require.Len(t, albums, 1)
	assert.Equal(t, "Laughing Stock", albums[0].Name)
}

// A numeric id from an old server still decodes.
func TestNumericIDs(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, envelope(`"playlists":{"playlist":[{"id":17,"name":"roadtrip","songCount":3}]}`))
	})

	playlists, err := client.GetPlaylists(context.Background())
	require.NoError(t, err)
	require.Len(t, playlists, 1)
	assert.Equal(t, ID("17"), playlists[0].ID)
}

// starServer is a fake that tracks starred ids the way a real server does:
// star and unstar are idempotent, unstarring something never starred is
// fine.
type starServer struct {
	starred map[string]bool
}

func (s *starServer) handle(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		id = r.URL.Query().Get("albumId")
	}
	if id == "" {
		id = r.URL.Query().Get("artistId")
	}
	switch r.URL.Path {
	case "/rest/star.view":
		s.starred[id] = true
	case "/rest/unstar.view":
		delete(s.starred, id)
	default:
		fmt.Fprint(w, failedEnvelope(0, "unexpected endpoint "+r.URL.Path))
		return
	}
	fmt.Fprint(w, `{"subsonic-response":{"status":"ok","version":"1.16.1"}}`)
}

func TestStarUnstar(t *testing.T) {
	fake := &starServer{starred: map[string]bool{}}
	_, client := newTestServer(t, fake.handle)
	ctx := context.Background()

	require.NoError(t, client.Star(ctx, "s1", "", ""))
	assert.True(t, fake.starred["s1"])

	require.NoError(t, client.Unstar(ctx, "s1", "", ""))
	assert.False(t, fake.starred["s1"])

	// Unstar before ever starring still succeeds; idempotence is the
	// server's concern and the client adds no local check.
	require.NoError(t, client.Unstar(ctx, "s2", "", ""))

	require.NoError(t, client.Star(ctx, "", "al9", ""))
	assert.True(t, fake.starred["al9"])
	require.NoError(t, client.Star(ctx, "", "", "ar3"))
	assert.True(t, fake.starred["ar3"])
}

func TestCreatePlaylist(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/rest/createPlaylist.view", r.URL.Path)
		assert.Equal(t, "evening", q.Get("name"))
		assert.Equal(t, []string{"s1", "s2"}, q["songId"])
		fmt.Fprint(w, envelope(`"playlist":{"id":"pl-1","name":"evening","songCount":2,
			"entry":[{"id":"s1","title":"one"},{"id":"s2","title":"two"}]}`))
	})

	playlist, err := client.CreatePlaylist(context.Background(), "evening", []string{"s1", "s2"})
	require.NoError(t, err)
	assert.Equal(t, ID("pl-1"), playlist.ID)
	require.Len(t, playlist.Entries, 2)
}

// playlistServer applies updatePlaylist the way the protocol defines it:
// removal indexes refer to the playlist before this call's additions.
type playlistServer struct {
	songs []string
}

func (p *playlistServer) handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch r.URL.Path {
	case "/rest/updatePlaylist.view":
		indexes := make([]int, 0, len(q["songIndexToRemove"]))
		for _, raw := range q["songIndexToRemove"] {
			i, err := strconv.Atoi(raw)
			if err != nil {
				fmt.Fprint(w, failedEnvelope(0, "bad index"))
				return
			}
			indexes = append(indexes, i)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(indexes)))
		for _, i := range indexes {
			p.songs = append(p.songs[:i], p.songs[i+1:]...)
		}
		p.songs = append(p.songs, q["songIdToAdd"]...)
		fmt.Fprint(w, `{"subsonic-response":{"status":"ok","version":"1.16.1"}}`)
	case "/rest/getPlaylist.view":
		entries := make([]map[string]string, len(p.songs))
		for i, id := range p.songs {
			entries[i] = map[string]string{"id": id}
		}
		raw, _ := json.Marshal(entries)
		fmt.Fprintf(w, `{"subsonic-response":{"status":"ok","version":"1.16.1","playlist":{"id":"pl-1","name":"mix","entry":%s}}}`, raw)
	default:
		fmt.Fprint(w, failedEnvelope(0, "unexpected endpoint "+r.URL.Path))
	}
}

func TestUpdatePlaylistRemovalsApplyBeforeAdditions(t *testing.T) {
	fake := &playlistServer{songs: []string{"a", "b", "c"}}
	_, client := newTestServer(t, fake.handle)
	ctx := context.Background()

	err := client.UpdatePlaylist(ctx, "pl-1", PlaylistUpdate{
		SongIDsToAdd:    []string{"x", "y"},
		IndexesToRemove: []int{0},
	})
	require.NoError(t, err)

	playlist, err := client.GetPlaylist(ctx, "pl-1")
	require.NoError(t, err)

	got := make([]string, len(playlist.Entries))
	for i, e := range playlist.Entries {
		got[i] = string(e.ID)
	}
	// Index 0 was removed from the original three songs; the two added
	// songs are appended after.
	assert.Equal(t, []string{"b", "c", "x", "y"}, got)
}

func TestUpdatePlaylistOmitsEmptyFields(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "pl-2", q.Get("playlistId"))
		assert.False(t, q.Has("name"))
		assert.False(t, q.Has("comment"))
		assert.False(t, q.Has("songIndexToRemove"))
		assert.Equal(t, []string{"s7"}, q["songIdToAdd"])
		fmt.Fprint(w, envelope(""))
	})

	err := client.UpdatePlaylist(context.Background(), "pl-2", PlaylistUpdate{
		SongIDsToAdd: []string{"s7"},
	})
	require.NoError(t, err)
}

func TestDeletePlaylist(t *testing.T) {
	deleted := false
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/deletePlaylist.view", r.URL.Path)
		assert.Equal(t, "pl-1", r.URL.Query().Get("id"))
		deleted = true
		fmt.Fprint(w, envelope(""))
	})

	require.NoError(t, client.DeletePlaylist(context.Background(), "pl-1"))
	assert.True(t, deleted)
}

func TestScrobble(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/rest/scrobble.view", r.URL.Path)
		assert.Equal(t, "s-1", q.Get("id"))
		assert.Equal(t, "true", q.Get("submission"))
		fmt.Fprint(w, envelope(""))
	})

	require.NoError(t, client.Scrobble(context.Background(), "s-1", true))
}
