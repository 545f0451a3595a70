// Copyright 2025 The Metrolist Authors
// SPDX-License-Identifier: GPL-3.0-only

package subsonic

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// saltBytes is the entropy of a generated salt. The Subsonic API only asks
// for "a random string", but the salt doubles as a replay guard, so it must
// come from a CSPRNG and never be reused.
const saltBytes = 16

// newSalt returns a fresh 32-character lowercase hex salt.
func newSalt() string {
	b := make([]byte, saltBytes)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms; if it does,
		// issuing an unauthenticated request is not an option.
		panic(fmt.Sprintf("subsonic: reading random salt: %v", err))
	}
	return hex.EncodeToString(b)
}

// authToken computes the Subsonic authentication token for a password and
// salt: lowercase hex md5(password + salt). Deterministic for a fixed pair.
func authToken(password, salt string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(password+salt)))
}
