package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/numvault/internal/server"
)

type fileConfig struct {
	ListenAddr      string `toml:"listen_addr"`
	AdminListenAddr string `toml:"admin_listen_addr"`
	DataDir         string `toml:"data_dir"`
	DefaultToken    string `toml:"default_token"`
	RequestTimeout  string `toml:"request_timeout"`
	ReadBufferSize  int    `toml:"read_buffer_size"`
}

// loadConfig overlays keys present in the TOML file onto cfg; absent
// keys keep their defaults.
func loadConfig(path string, cfg server.Config) (server.Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return server.Config{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("listen_addr") {
		if addr := strings.TrimSpace(raw.ListenAddr); addr != "" {
			cfg.ListenAddr = addr
		}
	}

	if meta.IsDefined("admin_listen_addr") {
		cfg.AdminListenAddr = strings.TrimSpace(raw.AdminListenAddr)
	}

	if meta.IsDefined("data_dir") {
		if dir := strings.TrimSpace(raw.DataDir); dir != "" {
			cfg.DataDir = dir
		}
	}

	if meta.IsDefined("default_token") {
		if token := strings.TrimSpace(raw.DefaultToken); token != "" {
			cfg.DefaultToken = token
		}
	}

	if meta.IsDefined("request_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.RequestTimeout))
		if err != nil {
			return server.Config{}, fmt.Errorf("parse request_timeout: %w", err)
		}
		cfg.RequestTimeout = d
	}

	if meta.IsDefined("read_buffer_size") {
		if raw.ReadBufferSize <= 0 {
			return server.Config{}, fmt.Errorf("read_buffer_size must be positive, got %d", raw.ReadBufferSize)
		}
		cfg.ReadBufferSize = raw.ReadBufferSize
	}

	return cfg, nil
}
