package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/docchat"
	dcjson "github.com/fwojciec/docchat/json"
	"github.com/fwojciec/docchat/redis"
	"github.com/fwojciec/docchat/sqlite"
)

// openStore returns the configured session store and a function releasing
// it. The store is nil when persistence is disabled.
func openStore(ctx context.Context, cfg storeConfig) (docchat.SessionStore, func() error, error) {
	nop := func() error { return nil }
	switch cfg.Kind {
	case "none":
		return nil, nop, nil
	case "file":
		return dcjson.NewStore(cfg.Path), nop, nil
	case "sqlite":
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, nil, fmt.Errorf("create store directory: %w", err)
			}
		}
		s, err := sqlite.Open(ctx, cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "redis":
		s, err := redis.Open(ctx, redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
			Prefix:   cfg.Prefix,
			TTL:      cfg.TTL,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store kind %q", cfg.Kind)
	}
}

// loadOrCreateSession resumes the stored session id, or starts a new one
// for tenant when id is empty.
func loadOrCreateSession(ctx context.Context, store docchat.SessionStore, id, tenant string) (docchat.Session, error) {
	if id == "" {
		return docchat.NewSession(tenant), nil
	}
	if store == nil {
		return docchat.Session{}, fmt.Errorf("resuming session %s requires a session store", id)
	}
	s, err := store.Load(ctx, id)
	if err != nil {
		return docchat.Session{}, fmt.Errorf("load session: %w", err)
	}
	if s.TenantID != tenant {
		return docchat.Session{}, fmt.Errorf("session %s belongs to tenant %q, not %q", id, s.TenantID, tenant)
	}
	return s, nil
}
