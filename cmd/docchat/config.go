package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/docchat"
	"gopkg.in/yaml.v3"
)

const defaultBaseURL = "http://localhost:8000"

// config is the fully resolved configuration.
type config struct {
	BaseURL         string
	TenantID        string
	Token           string
	FallbackTimeout time.Duration
	LogPath         string
	LogLevel        string
	Store           storeConfig
}

// fileConfig mirrors config.yaml.
type fileConfig struct {
	BaseURL         string        `yaml:"base_url"`
	TenantID        string        `yaml:"tenant_id"`
	Token           string        `yaml:"token"`
	FallbackTimeout time.Duration `yaml:"fallback_timeout"`
	LogPath         string        `yaml:"log_path"`
	LogLevel        string        `yaml:"log_level"`
	Store           storeConfig   `yaml:"store"`
}

type storeConfig struct {
	Kind     string        `yaml:"kind"` // file, sqlite, redis or none
	Path     string        `yaml:"path"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// flagValues holds command-line overrides. Zero values mean unset.
type flagValues struct {
	BaseURL         string
	TenantID        string
	Token           string
	FallbackTimeout time.Duration
	StoreKind       string
	LogPath         string
}

// envValues holds the DOCCHAT_* environment variables.
type envValues struct {
	Token    string
	BaseURL  string
	TenantID string
}

// loadConfigFile reads a YAML config file. A missing file is not an error
// unless the path was given explicitly.
func loadConfigFile(path string, explicit bool) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return fileConfig{}, nil
	}
	if err != nil {
		return fileConfig{}, fmt.Errorf("read config: %w", err)
	}
	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fileConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fc, nil
}

// resolveConfig merges the sources with precedence flag > env > file >
// defaults. home anchors the default paths.
func resolveConfig(f flagValues, e envValues, fc fileConfig, home string) (config, error) {
	dir := filepath.Join(home, ".docchat")
	cfg := config{
		BaseURL:         firstNonEmpty(f.BaseURL, e.BaseURL, fc.BaseURL, defaultBaseURL),
		TenantID:        firstNonEmpty(f.TenantID, e.TenantID, fc.TenantID),
		Token:           firstNonEmpty(f.Token, e.Token, fc.Token),
		FallbackTimeout: docchat.DefaultFallbackTimeout,
		LogPath:         firstNonEmpty(f.LogPath, fc.LogPath, filepath.Join(dir, "docchat.log")),
		LogLevel:        firstNonEmpty(fc.LogLevel, "info"),
		Store:           fc.Store,
	}
	switch {
	case f.FallbackTimeout != 0:
		cfg.FallbackTimeout = f.FallbackTimeout
	case fc.FallbackTimeout != 0:
		cfg.FallbackTimeout = fc.FallbackTimeout
	}
	cfg.Store.Kind = strings.ToLower(firstNonEmpty(f.StoreKind, fc.Store.Kind, "file"))
	if cfg.Store.Path == "" {
		switch cfg.Store.Kind {
		case "file":
			cfg.Store.Path = filepath.Join(dir, "sessions")
		case "sqlite":
			cfg.Store.Path = filepath.Join(dir, "sessions.db")
		}
	}

	if cfg.TenantID == "" {
		return config{}, errors.New("tenant id is required (set -tenant, DOCCHAT_TENANT or tenant_id in the config file)")
	}
	if cfg.FallbackTimeout < 0 {
		return config{}, fmt.Errorf("fallback timeout must be positive, got %s", cfg.FallbackTimeout)
	}
	switch cfg.Store.Kind {
	case "file", "sqlite", "none":
	case "redis":
		if cfg.Store.Addr == "" {
			return config{}, errors.New("redis store requires store.addr")
		}
	default:
		return config{}, fmt.Errorf("unknown store kind %q (want file, sqlite, redis or none)", cfg.Store.Kind)
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
