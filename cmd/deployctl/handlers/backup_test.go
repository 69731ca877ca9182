package handlers

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/deployctl/internal/config"
	"github.com/imamik/deployctl/internal/localstate"
)

func TestBackupAndRestore(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.cfg.Backup.Bucket = "deployctl-backups"
	objects := newMemoryObjects()
	newObjectStore = func(_ context.Context, b config.BackupConfig) (objectStore, error) {
		assert.Equal(t, "deployctl-backups", b.Bucket)
		return objects, nil
	}

	require.NoError(t, Up(ctx, e.g, UpOptions{Keyname: "app", Layout: writeLayout(t, twoNodeLayout)}))
	e.out.Reset()
	secret, err := e.store(t).Secret("app")
	require.NoError(t, err)

	require.NoError(t, Backup(ctx, e.g, "app"))
	var res BackupResult
	e.decode(t, &res)
	assert.Equal(t, BackupResult{Keyname: "app", Bucket: "deployctl-backups", Files: 5}, res)

	err = Restore(ctx, e.g, "app", false)
	require.ErrorIs(t, err, localstate.ErrAlreadyRunning)

	// Restore into a fresh state directory.
	e.cfg.StateDir = filepath.Join(t.TempDir(), "restored")
	require.NoError(t, Restore(ctx, e.g, "app", false))
	e.decode(t, &res)
	assert.Equal(t, 5, res.Files)

	got, err := e.store(t).Secret("app")
	require.NoError(t, err)
	assert.Equal(t, secret, got)
}

func TestBackup_NotConfigured(t *testing.T) {
	e := newEnv(t)

	err := Backup(context.Background(), e.g, "app")
	require.Error(t, err)
	assert.True(t, config.IsConfigurationError(err))
}
