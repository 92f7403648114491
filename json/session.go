// Package json persists docchat sessions as versioned JSON documents. The
// same document is the file format of Store and the row/value body used by
// the sqlite and redis stores.
package json

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/docchat"
)

const envelopeVersion = 1

type envelope struct {
	Version   int          `json:"version"`
	ID        string       `json:"id"`
	TenantID  string       `json:"tenant_id"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Messages  []messageDTO `json:"messages"`
}

// MarshalSession encodes s as a compact envelope. Every message is
// validated and the session must belong to a tenant.
func MarshalSession(s docchat.Session) ([]byte, error) {
	msgs := make([]messageDTO, 0, len(s.Messages))
	for i, msg := range s.Messages {
		dto, err := marshalMessage(msg)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		msgs = append(msgs, dto)
	}
	if s.TenantID == "" {
		return nil, fmt.Errorf("session %q has no tenant id: %w", s.ID, docchat.ErrValidation)
	}
	return json.Marshal(envelope{
		Version:   envelopeVersion,
		ID:        s.ID,
		TenantID:  s.TenantID,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Messages:  msgs,
	})
}

// UnmarshalSession decodes an envelope written by MarshalSession.
func UnmarshalSession(data []byte) (docchat.Session, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return docchat.Session{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != envelopeVersion {
		return docchat.Session{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}

	s := docchat.Session{
		ID:        env.ID,
		TenantID:  env.TenantID,
		CreatedAt: env.CreatedAt,
		UpdatedAt: env.UpdatedAt,
		Messages:  make([]docchat.ChatMessage, 0, len(env.Messages)),
	}
	for i, dto := range env.Messages {
		msg, err := unmarshalMessage(dto)
		if err != nil {
			return docchat.Session{}, fmt.Errorf("message %d: %w", i, err)
		}
		s.Messages = append(s.Messages, msg)
	}
	if s.TenantID == "" {
		return docchat.Session{}, fmt.Errorf("session %q has no tenant id: %w", s.ID, docchat.ErrValidation)
	}
	return s, nil
}

// Save writes s to path as indented JSON. The file is written to a temporary
// sibling, synced and renamed, so readers never see a torn document.
func Save(path string, s docchat.Session) error {
	data, err := MarshalSession(s)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		return fmt.Errorf("indent: %w", err)
	}
	pretty.WriteByte('\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(pretty.Bytes()); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads the session saved at path.
func Load(path string) (docchat.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return docchat.Session{}, fmt.Errorf("read session: %w", err)
	}
	s, err := UnmarshalSession(data)
	if err != nil {
		return docchat.Session{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
