package state

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/leapstack-labs/launchpad/internal/testutil"
	"github.com/leapstack-labs/launchpad/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s core.KVStore) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, core.StateKey)
	assert.ErrorIs(t, err, core.ErrKeyNotFound)

	require.NoError(t, s.Put(ctx, core.StateKey, []byte(`{"connections":[]}`)))
	got, err := s.Get(ctx, core.StateKey)
	require.NoError(t, err)
	assert.Equal(t, `{"connections":[]}`, string(got))

	require.NoError(t, s.Put(ctx, core.StateKey, []byte(`{"pipeline":[]}`)))
	got, err = s.Get(ctx, core.StateKey)
	require.NoError(t, err)
	assert.Equal(t, `{"pipeline":[]}`, string(got))

	require.NoError(t, s.Put(ctx, core.SessionKey, []byte(`{"token":"x"}`)))
	require.NoError(t, s.Delete(ctx, core.SessionKey))
	_, err = s.Get(ctx, core.SessionKey)
	assert.ErrorIs(t, err, core.ErrKeyNotFound)

	// deleting again is fine
	assert.NoError(t, s.Delete(ctx, core.SessionKey))

	assert.Error(t, s.Put(ctx, "../escape", []byte("x")))
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	exerciseStore(t, s)
	require.NoError(t, s.Close())
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	value := []byte("abc")
	require.NoError(t, s.Put(ctx, "k", value))
	value[0] = 'z'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "state"))
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestFileStore_Layout(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Put(context.Background(), core.StateKey, []byte("{}")))

	data, err := os.ReadFile(filepath.Join(dir, core.StateKey+".json"))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStore_KeyForPath(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		want   string
		wantOK bool
	}{
		{"state file", filepath.Join(dir, "auth_session.json"), "auth_session", true},
		{"temp file", filepath.Join(dir, ".auth_session-123.tmp"), "", false},
		{"other dir", filepath.Join(dir, "sub", "auth_session.json"), "", false},
		{"bad key", filepath.Join(dir, "Bad Key.json"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.KeyForPath(tt.path)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewFileStore_RequiresDir(t *testing.T) {
	_, err := NewFileStore("")
	assert.Error(t, err)
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := Open(ctx, Options{Driver: DriverSQLite, Path: path})
	require.NoError(t, err)
	exerciseStore(t, s)
	require.NoError(t, s.Close())

	// values survive reopening and migrations are idempotent
	s, err = Open(ctx, Options{Driver: DriverSQLite, Path: path})
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	got, err := s.Get(ctx, core.StateKey)
	require.NoError(t, err)
	assert.Equal(t, `{"pipeline":[]}`, string(got))

	sqlStore, ok := s.(*SQLStore)
	require.True(t, ok)
	version, err := MigrationVersion(sqlStore.db, sqlStore.dialect)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}

func TestSQLStore_NotOpened(t *testing.T) {
	s := &SQLStore{}
	ctx := context.Background()

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.ErrorIs(t, s.Put(ctx, "k", nil), ErrNotOpen)
	assert.ErrorIs(t, s.Delete(ctx, "k"), ErrNotOpen)
	assert.NoError(t, s.Close())
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		opts    Options
		want    any
		wantErr bool
	}{
		{"memory", Options{Driver: DriverMemory}, &MemoryStore{}, false},
		{"file", Options{Driver: DriverFile, Path: t.TempDir()}, &FileStore{}, false},
		{"default is file", Options{Path: t.TempDir()}, &FileStore{}, false},
		{"sqlite without path", Options{Driver: DriverSQLite}, nil, true},
		{"postgres without dsn", Options{Driver: DriverPostgres}, nil, true},
		{"mysql without dsn", Options{Driver: DriverMySQL}, nil, true},
		{"unknown", Options{Driver: "redis"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(ctx, tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, s)
			_ = s.Close()
		})
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu      sync.Mutex
		changed []string
	)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, s, 150*time.Millisecond, testutil.NewTestLogger(t), func(key string) {
			mu.Lock()
			changed = append(changed, key)
			mu.Unlock()
		})
	}()

	// give the watcher time to register the directory
	time.Sleep(50 * time.Millisecond)

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, core.StateKey+".json"), []byte("{}"), 0o600))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(changed) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []string{core.StateKey}, changed)
	mu.Unlock()

	cancel()
	assert.NoError(t, <-done)
}
