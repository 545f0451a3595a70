// Copyright 2025 The Metrolist Authors
// SPDX-License-Identifier: GPL-3.0-only

package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Load reads the Subsonic settings from a TOML config file. With an empty
// path the usual locations are searched ($HOME/.config/metrolist, then the
// working directory). Credentials are only required when the integration
// is enabled; a disabled config is always valid.
func Load(configFile string) (Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("metrolist")
		v.SetConfigType("toml")
		v.AddConfigPath("$HOME/.config/metrolist")
		v.AddConfigPath(".")
	}

	v.SetDefault("server.enabled", false)
	v.SetDefault("client.max-bitrate", DefaultMaxBitRate)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("config file error: %w", err)
	}

	cfg := Config{
		Enabled:    v.GetBool("server.enabled"),
		ServerURL:  v.GetString("server.host"),
		Username:   v.GetString("auth.username"),
		Password:   v.GetString("auth.password"),
		MaxBitRate: v.GetInt("client.max-bitrate"),
	}.Normalize()

	if cfg.Enabled {
		for _, prop := range []string{"server.host", "auth.username", "auth.password"} {
			if !v.IsSet(prop) {
				return Config{}, fmt.Errorf("config property %s is required when server.enabled is true", prop)
			}
		}
	}

	return cfg, nil
}
