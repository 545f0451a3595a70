// Copyright 2025 The Metrolist Authors
// SPDX-License-Identifier: GPL-3.0-only

// Package library merges the Subsonic catalog into the application's
// identifier space. Entities from the streaming provider and from a
// Subsonic server live in the same tables, caches, and favorites set, so
// every Subsonic-native id is wrapped in a tagged ID whose string form
// carries a prefix the streaming provider's id format cannot produce.
package library

import "strings"

const (
	// idPrefix marks a Subsonic-native entity id in string form.
	idPrefix = "subsonic_"
	// coverPrefix marks a Subsonic cover-art reference stored in a
	// thumbnail-URL field. Chosen so that neither prefix is a prefix of
	// the other; a cover reference can never parse as an entity id.
	coverPrefix = "subsonic-art-"
)

// Source tags which provider an identifier belongs to.
type Source int

const (
	// SourceStreaming is the default provider; its ids pass through bare.
	SourceStreaming Source = iota
	// SourceSubsonic ids are namespaced with idPrefix in string form.
	SourceSubsonic
)

// ID is a provider-tagged identifier. All internal logic and comparisons
// use this form; the prefixed string exists only at the persistence and UI
// boundary, where callers must treat it as opaque.
type ID struct {
	Source Source
	Native string
}

// SubsonicID tags a server-native id.
func SubsonicID(native string) ID {
	return ID{Source: SourceSubsonic, Native: native}
}

// ParseID decodes a boundary string back into a tagged ID. Strings without
// the prefix are streaming-provider ids; the provider's id alphabet cannot
// produce the prefix, so the two spaces never collide.
func ParseID(s string) ID {
	if native, ok := strings.CutPrefix(s, idPrefix); ok {
		return ID{Source: SourceSubsonic, Native: native}
	}
	return ID{Source: SourceStreaming, Native: s}
}

// String serializes the ID for the boundary. ParseID(id.String()) == id
// for every ID this package produces.
func (id ID) String() string {
	if id.Source == SourceSubsonic {
		return idPrefix + id.Native
	}
	return id.Native
}

// IsSubsonic reports whether a boundary string names a Subsonic entity.
func IsSubsonic(s string) bool {
	return strings.HasPrefix(s, idPrefix)
}

// CoverRef encodes a server-native cover-art id into a thumbnail-field
// marker, resolved to a real URL only by the facade's CoverArtURL.
func CoverRef(nativeCoverID string) string {
	return coverPrefix + nativeCoverID
}

// ParseCoverRef decodes a thumbnail-field value. ok is false when the
// value is not a Subsonic cover marker (e.g. a provider thumbnail URL).
func ParseCoverRef(s string) (nativeCoverID string, ok bool) {
	return strings.CutPrefix(s, coverPrefix)
}
