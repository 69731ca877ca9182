package localstate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/deployctl/internal/config"
)

func sampleRoster() Roster {
	return Roster{
		{PublicIP: "10.0.0.1", PrivateIP: "192.168.0.1", Jobs: []string{"db_master"}},
		{PublicIP: "10.0.0.2", PrivateIP: "192.168.0.2", Jobs: []string{"db_master", "login"}},
	}
}

func TestEnsureNotRunning(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	require.NoError(t, store.EnsureNotRunning("app", false))
	require.NoError(t, store.EnsureNotRunning("app", true))

	require.NoError(t, store.WriteLocations("app", Locations{LoadBalancer: "10.0.0.1"}, sampleRoster()))

	err := store.EnsureNotRunning("app", false)
	require.ErrorIs(t, err, ErrAlreadyRunning)
	assert.Contains(t, err.Error(), "--force")

	require.NoError(t, store.EnsureNotRunning("app", true))
	require.NoError(t, store.EnsureNotRunning("other", false))
}

func TestEnsureNotRunning_ForceSkipsValidation(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	require.NoError(t, store.EnsureNotRunning("", true))
	assert.True(t, config.IsConfigurationError(store.EnsureNotRunning("", false)))
}

func TestWriteLocations_RoundTrip(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	roster := sampleRoster()

	secret, err := store.GenerateSecret("app")
	require.NoError(t, err)

	require.NoError(t, store.WriteLocations("app", Locations{
		LoadBalancer: "10.0.0.1",
		InstanceID:   "i-123",
		DBMaster:     "10.0.0.1",
		Group:        "prod",
		Table:        "cassandra",
	}, roster))

	got, err := store.ReadNodeRoster("app")
	require.NoError(t, err)
	assert.Equal(t, roster, got)

	loc, err := store.ReadLocations("app")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", loc.LoadBalancer)
	assert.Equal(t, "i-123", loc.InstanceID)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, loc.IPs)
	assert.Equal(t, config.InfrastructureXen, loc.Infrastructure)
	assert.Equal(t, secret, loc.Secret)

	infra, err := store.Infrastructure("app")
	require.NoError(t, err)
	assert.Equal(t, "xen", infra)

	group, err := store.Group("app")
	require.NoError(t, err)
	assert.Equal(t, "prod", group)

	for _, name := range []string{"locations-app.yaml", "locations-app.json"} {
		info, err := os.Stat(filepath.Join(store.Root(), name))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(), name)
	}
}

func TestWriteLocations_KeepsExplicitValues(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	require.NoError(t, store.WriteLocations("app", Locations{
		IPs:            []string{"1.2.3.4"},
		Infrastructure: "hcloud",
		Secret:         "explicit",
	}, sampleRoster()))

	loc, err := store.ReadLocations("app")
	require.NoError(t, err)
	assert.Equal(t, []string{"1.2.3.4"}, loc.IPs)
	assert.Equal(t, "hcloud", loc.Infrastructure)
	assert.Equal(t, "explicit", loc.Secret)
}

func TestWriteLocations_RejectsNodeWithoutAddress(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	err := store.WriteLocations("app", Locations{}, Roster{{Jobs: []string{"login"}}})
	require.Error(t, err)
	assert.True(t, config.IsConfigurationError(err))
	require.NoError(t, store.EnsureNotRunning("app", false))
}

func TestReadNodeRoster_Errors(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	_, err := store.ReadNodeRoster("app")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, os.MkdirAll(store.Root(), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(store.Root(), "locations-app.json"), []byte("{not json"), 0o600))

	_, err = store.ReadNodeRoster("app")
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestReadLocations_Corrupt(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	require.NoError(t, os.MkdirAll(store.Root(), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(store.Root(), "locations-app.yaml"), []byte("ips: [unterminated"), 0o600))

	_, err := store.ReadLocations("app")
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestHostWithRole(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	require.NoError(t, store.WriteLocations("app", Locations{}, sampleRoster()))

	host, err := store.HostWithRole("app", "login")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.2", host)

	host, err = store.HostWithRole("app", "db_master")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", host, "first match wins")

	login, err := store.LoginHost("app")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.2", login)

	_, err = store.HostWithRole("app", "missing")
	require.ErrorIs(t, err, ErrRoleNotFound)

	var roleErr *RoleNotFoundError
	require.True(t, errors.As(err, &roleErr))
	assert.Equal(t, "missing", roleErr.Role)
	assert.Equal(t, "couldn't find a missing node in deployment app", err.Error())
}

func TestHostWithRole_NoRoster(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	_, err := store.HostWithRole("app", "login")
	require.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrRoleNotFound)
}

func TestParseLayout(t *testing.T) {
	t.Parallel()
	layout := `
- public_ip: 10.0.0.1
  jobs: [load_balancer, db_master]
- public_ip: 10.0.0.2
  private_ip: 192.168.0.2
  jobs:
    - login
`
	roster, err := ParseLayout([]byte(layout))
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "10.0.0.1", roster[0].PrivateIP, "private address defaults to public")
	assert.Equal(t, "192.168.0.2", roster[1].PrivateIP)
	assert.True(t, roster[0].HasRole(RoleDBMaster))

	host, ok := roster.HostWithRole(RoleLogin)
	assert.True(t, ok)
	assert.Equal(t, "10.0.0.2", host)
}

func TestParseLayout_Invalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		layout string
	}{
		{"empty", "[]"},
		{"no jobs", "- public_ip: 10.0.0.1\n"},
		{"no address", "- jobs: [login]\n"},
		{"not a list", "public_ip: 10.0.0.1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseLayout([]byte(tt.layout))
			require.Error(t, err)
		})
	}
}
