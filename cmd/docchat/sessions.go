package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fwojciec/docchat"
	"github.com/mattn/go-runewidth"
)

// sessionLister is implemented by stores that can enumerate a tenant's
// sessions.
type sessionLister interface {
	List(ctx context.Context, tenantID string) ([]string, error)
}

// listSessions prints one line per stored session of tenant: id, last
// update and the opening question.
func listSessions(ctx context.Context, store docchat.SessionStore, tenant string, w io.Writer) error {
	lister, ok := store.(sessionLister)
	if !ok {
		return errors.New("listing sessions requires a file, sqlite or redis store")
	}
	ids, err := lister.List(ctx, tenant)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintf(w, "No stored sessions for tenant %s.\n", tenant)
		return nil
	}
	for _, id := range ids {
		s, err := store.Load(ctx, id)
		if errors.Is(err, docchat.ErrSessionNotFound) {
			// Expired between List and Load.
			continue
		}
		if err != nil {
			return fmt.Errorf("load session %s: %w", id, err)
		}
		fmt.Fprintf(w, "%s  %s  %s\n", id, s.UpdatedAt.Local().Format(time.DateTime), firstQuestion(s))
	}
	return nil
}

func firstQuestion(s docchat.Session) string {
	for _, m := range s.Messages {
		if m.Role == docchat.RoleUser {
			return runewidth.Truncate(strings.Join(strings.Fields(m.Content), " "), 60, "…")
		}
	}
	return "(empty)"
}
