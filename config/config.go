// Copyright 2025 The Metrolist Authors
// SPDX-License-Identifier: GPL-3.0-only

// Package config holds the Subsonic connection settings and loads them from
// the application's key/value preference store (a viper-backed TOML file).
package config

import "strings"

// DefaultMaxBitRate caps stream transcoding when the user sets nothing.
const DefaultMaxBitRate = 320

// Config is one immutable snapshot of the Subsonic settings. The facade
// swaps whole snapshots atomically; nothing mutates a Config after it is
// handed out, so a request that captured one can read it freely while a
// settings update lands.
type Config struct {
	Enabled    bool
	ServerURL  string
	Username   string
	Password   string
	MaxBitRate int
}

// Normalize strips the trailing slash from the server URL and fills the
// bit-rate default. Returns the cleaned copy.
func (c Config) Normalize() Config {
	c.ServerURL = strings.TrimRight(c.ServerURL, "/")
	if c.MaxBitRate <= 0 {
		c.MaxBitRate = DefaultMaxBitRate
	}
	return c
}

// Complete reports whether all credentials needed to issue a call are set.
// An enabled but incomplete Config means "unconfigured", not an error.
func (c Config) Complete() bool {
	return c.ServerURL != "" && c.Username != "" && c.Password != ""
}
