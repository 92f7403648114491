// Package redis stores docchat sessions in Redis, one key per session.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/docchat"
	docjson "github.com/fwojciec/docchat/json"
	"github.com/redis/go-redis/v9"
)

var _ docchat.SessionStore = (*Store)(nil)

const defaultPrefix = "docchat:"

// Options configures a Store.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // key prefix, default "docchat:"
	TTL      time.Duration // zero keeps sessions forever
}

// Store is a SessionStore backed by Redis. Sessions are stored as JSON
// envelopes under <prefix>session:<id>.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// Open connects to Redis and verifies the connection with PING.
func Open(ctx context.Context, opts Options) (*Store, error) {
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, errors.New("redis: address is required")
	}
	prefix := strings.TrimSpace(opts.Prefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	if !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return &Store{client: client, prefix: prefix, ttl: opts.TTL}, nil
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Save writes sess, replacing any previous value.
func (s *Store) Save(ctx context.Context, sess docchat.Session) error {
	if sess.ID == "" {
		return fmt.Errorf("redis: session id is required: %w", docchat.ErrValidation)
	}
	data, err := docjson.MarshalSession(sess)
	if err != nil {
		return fmt.Errorf("redis: marshal: %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.sessionKey(sess.ID), data, s.ttl)
	if sess.TenantID != "" {
		pipe.ZAdd(ctx, s.tenantKey(sess.TenantID), redis.Z{
			Score:  float64(sess.UpdatedAt.Unix()),
			Member: sess.ID,
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: save %s: %w", sess.ID, err)
	}
	return nil
}

// Load returns the session stored under id.
func (s *Store) Load(ctx context.Context, id string) (docchat.Session, error) {
	data, err := s.client.Get(ctx, s.sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return docchat.Session{}, fmt.Errorf("redis: %s: %w", id, docchat.ErrSessionNotFound)
	}
	if err != nil {
		return docchat.Session{}, fmt.Errorf("redis: load %s: %w", id, err)
	}
	sess, err := docjson.UnmarshalSession(data)
	if err != nil {
		return docchat.Session{}, fmt.Errorf("redis: %s: %w", id, err)
	}
	return sess, nil
}

// List returns the ids of a tenant's sessions, most recently updated first.
// Ids whose session key has expired may still be listed.
func (s *Store) List(ctx context.Context, tenantID string) ([]string, error) {
	ids, err := s.client.ZRevRange(ctx, s.tenantKey(tenantID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: list: %w", err)
	}
	return ids, nil
}

func (s *Store) sessionKey(id string) string { return s.prefix + "session:" + id }

func (s *Store) tenantKey(tenant string) string { return s.prefix + "tenant:" + tenant }
