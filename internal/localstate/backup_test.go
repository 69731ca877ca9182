package localstate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMemoryObjects() *memoryObjects {
	return &memoryObjects{objects: make(map[string][]byte)}
}

func (m *memoryObjects) PutObject(_ context.Context, bucket, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.objects[bucket+"/"+key] = append([]byte(nil), data...)
	return nil
}

func (m *memoryObjects) GetObject(_ context.Context, bucket, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

func (m *memoryObjects) ListObjects(_ context.Context, bucket, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for full := range m.objects {
		key := strings.TrimPrefix(full, bucket+"/")
		if key != full && strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func TestBackupAndRestore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	objects := newMemoryObjects()

	source := newTestStore(t)
	secret, err := source.GenerateSecret("app")
	require.NoError(t, err)
	_, err = source.GenerateTLSIdentity("app")
	require.NoError(t, err)
	require.NoError(t, source.WriteLocations("app", Locations{LoadBalancer: "10.0.0.1"}, sampleRoster()))

	n, err := source.Backup(ctx, objects, "backups", "app")
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	keys, err := objects.ListObjects(ctx, "backups", "app/")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"app/app-cert.pem",
		"app/app-key.pem",
		"app/app.secret",
		"app/locations-app.json",
		"app/locations-app.yaml",
	}, keys)

	// An unrelated object under the prefix is ignored on restore.
	require.NoError(t, objects.PutObject(ctx, "backups", "app/../../etc/passwd", []byte("x")))

	target := newTestStore(t)
	restored, err := target.Restore(ctx, objects, "backups", "app", false)
	require.NoError(t, err)
	assert.Equal(t, 5, restored)

	got, err := target.Secret("app")
	require.NoError(t, err)
	assert.Equal(t, secret, got)

	roster, err := target.ReadNodeRoster("app")
	require.NoError(t, err)
	assert.Equal(t, sampleRoster(), roster)

	info, err := os.Stat(filepath.Join(target.Root(), "app-key.pem"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// The target is now running; a second restore needs force.
	_, err = target.Restore(ctx, objects, "backups", "app", false)
	require.ErrorIs(t, err, ErrAlreadyRunning)
	_, err = target.Restore(ctx, objects, "backups", "app", true)
	require.NoError(t, err)
}

func TestBackup_NothingToBackUp(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	_, err := store.Backup(context.Background(), newMemoryObjects(), "backups", "app")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestBackup_PutFailure(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	_, err := store.GenerateSecret("app")
	require.NoError(t, err)

	objects := newMemoryObjects()
	objects.putErr = errors.New("access denied")

	_, err = store.Backup(context.Background(), objects, "backups", "app")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestRestore_NoBackup(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	_, err := store.Restore(context.Background(), newMemoryObjects(), "backups", "app", false)
	require.ErrorIs(t, err, ErrNotFound)
}
