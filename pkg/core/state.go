package core

import (
	"context"
	"errors"
	"fmt"
)

// Keys under which Launchpad persists its records.
const (
	StateKey   = "codex_app_state_v1"
	SessionKey = "auth_session"
)

// ErrKeyNotFound is returned by KVStore.Get when nothing is stored under a key.
var ErrKeyNotFound = errors.New("key not found")

// KVStore persists serialized records under string keys.
// Delete of a missing key is not an error.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// AppState is the persisted layout of both registries.
type AppState struct {
	Connections []Connection `json:"connections"`
	Pipelines   []Pipeline   `json:"pipeline"`
}

// Validate reports whether the decoded state is well formed: every record
// carries an id unique within its registry and a known status.
func (s AppState) Validate() error {
	seen := make(map[string]struct{}, len(s.Connections))
	for i, c := range s.Connections {
		if c.ID == "" {
			return fmt.Errorf("connection %d has no id", i)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("duplicate connection id %q", c.ID)
		}
		seen[c.ID] = struct{}{}
		if !c.Status.Valid() {
			return fmt.Errorf("connection %q has unknown status %q", c.ID, c.Status)
		}
	}

	seen = make(map[string]struct{}, len(s.Pipelines))
	for i, p := range s.Pipelines {
		if p.ID == "" {
			return fmt.Errorf("pipeline %d has no id", i)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("duplicate pipeline id %q", p.ID)
		}
		seen[p.ID] = struct{}{}
		if !p.Status.Valid() {
			return fmt.Errorf("pipeline %q has unknown status %q", p.ID, p.Status)
		}
	}
	return nil
}
