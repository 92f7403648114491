package json

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fwojciec/docchat"
)

var _ docchat.SessionStore = (*Store)(nil)

// Store keeps one JSON file per session in a directory.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir. The directory is created on the
// first Save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Save writes s to <dir>/<id>.json.
func (s *Store) Save(ctx context.Context, sess docchat.Session) error {
	path, err := s.path(sess.ID)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return Save(path, sess)
}

// Load reads the session stored under id.
func (s *Store) Load(ctx context.Context, id string) (docchat.Session, error) {
	path, err := s.path(id)
	if err != nil {
		return docchat.Session{}, err
	}
	if err := ctx.Err(); err != nil {
		return docchat.Session{}, err
	}
	sess, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return docchat.Session{}, fmt.Errorf("%s: %w", id, docchat.ErrSessionNotFound)
	}
	return sess, err
}

// List returns the ids of a tenant's sessions, most recently updated first.
// Files that cannot be decoded are skipped.
func (s *Store) List(ctx context.Context, tenantID string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	var found []docchat.Session
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		sess, err := Load(filepath.Join(s.dir, e.Name()))
		if err != nil || sess.TenantID != tenantID {
			continue
		}
		found = append(found, sess)
	}
	sort.Slice(found, func(i, j int) bool {
		if !found[i].UpdatedAt.Equal(found[j].UpdatedAt) {
			return found[i].UpdatedAt.After(found[j].UpdatedAt)
		}
		return found[i].ID < found[j].ID
	})
	ids := make([]string, len(found))
	for i, sess := range found {
		ids[i] = sess.ID
	}
	return ids, nil
}

func (s *Store) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid session id %q: %w", id, docchat.ErrValidation)
	}
	return filepath.Join(s.dir, id+".json"), nil
}
