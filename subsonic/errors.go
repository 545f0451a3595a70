// Copyright 2025 The Metrolist Authors
// SPDX-License-Identifier: GPL-3.0-only

package subsonic

import (
	"errors"
	"fmt"
)

// Kind classifies a failed call.
type Kind int

const (
	// KindNetwork is a transport-level failure: connection refused, DNS,
	// timeout, cancelled context. Safe to retry.
	KindNetwork Kind = iota + 1
	// KindProtocol is a response we could not interpret: non-200 status
	// or a body that does not parse as a subsonic-response envelope.
	// Usually a server/version mismatch; not retried automatically.
	KindProtocol
	// KindServer is an explicit error envelope from the server. Code and
	// Message carry the server's values verbatim.
	KindServer
)

// Subsonic error codes we distinguish. The full table lives in the server
// protocol; everything else is passed through untouched.
const (
	CodeGeneric       = 0
	CodeWrongAuth     = 40
	CodeNotAuthorized = 50
	CodeNotFound      = 70
)

// Error is the failure type returned by every Client operation.
type Error struct {
	Kind    Kind
	Op      string // endpoint name, e.g. "getAlbum"
	Code    int    // server error code, KindServer only
	Message string // server error message, KindServer only
	Err     error  // underlying cause, KindNetwork/KindProtocol
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindServer:
		return fmt.Sprintf("subsonic: %s: server error %d: %s", e.Op, e.Code, e.Message)
	case KindProtocol:
		return fmt.Sprintf("subsonic: %s: bad response: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("subsonic: %s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func kindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

// IsNetwork reports whether err is a transport-level failure.
func IsNetwork(err error) bool { return kindOf(err) == KindNetwork }

// IsProtocol reports whether err is a malformed-response failure.
func IsProtocol(err error) bool { return kindOf(err) == KindProtocol }

// IsServer reports whether err is an explicit server rejection.
func IsServer(err error) bool { return kindOf(err) == KindServer }

// IsNotFound reports whether err is the server telling us the requested
// entity does not exist. Callers use this to distinguish "missing" from
// "broken" on single-entity fetches.
func IsNotFound(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == KindServer && se.Code == CodeNotFound
}
