// Copyright 2025 The Metrolist Authors
// SPDX-License-Identifier: GPL-3.0-only

package subsonic

import "strconv"

// The URLs built here do not go through getResponse; they are handed to an
// audio pipeline or image loader that fetches them directly. Each one
// embeds its own fresh salt/token, so URLs built from identical inputs are
// different strings yet all independently valid. Nothing here touches the
// network.

// StreamURL returns the playback URL for a song. maxBitRate caps server
// transcoding in kbit/s; 0 omits the parameter entirely, which requests
// the server's default (typically the original file untranscoded).
func (c *Client) StreamURL(songID string, maxBitRate int) string {
	query := c.defaultQuery()
	query.Set("id", songID)
	if maxBitRate > 0 {
		query.Set("maxBitRate", strconv.Itoa(maxBitRate))
	}
	return c.endpointURL("stream", query)
}

// DownloadURL returns a stream URL with no bit-rate cap, for download
// semantics where transcoding would corrupt the saved file.
func (c *Client) DownloadURL(songID string) string {
	return c.StreamURL(songID, 0)
}

// CoverArtURL returns the image URL for a cover-art id. size requests a
// square scaled to that many pixels; 0 omits it and returns the original.
func (c *Client) CoverArtURL(coverArtID string, size int) string {
	query := c.defaultQuery()
	query.Set("id", coverArtID)
	if size > 0 {
		query.Set("size", strconv.Itoa(size))
	}
	return c.endpointURL("getCoverArt", query)
}
