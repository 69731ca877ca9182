package platform

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/deployctl/internal/config"
	"github.com/imamik/deployctl/internal/platform/hcloud"
)

func TestAgents(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.HCloud.Token = "token"

	reg := Agents(cfg, logr.Discard())
	assert.Equal(t, []string{hcloud.ProviderName}, reg.Names())

	a, err := reg.New(hcloud.ProviderName)
	require.NoError(t, err)
	assert.Equal(t, hcloud.ProviderName, a.Name())
}

func TestAgents_MissingToken(t *testing.T) {
	t.Parallel()
	reg := Agents(config.Default(), logr.Discard())

	_, err := reg.New(hcloud.ProviderName)
	require.Error(t, err)
	assert.True(t, config.IsConfigurationError(err))
}

func TestAgents_Unknown(t *testing.T) {
	t.Parallel()
	reg := Agents(config.Default(), logr.Discard())

	_, err := reg.New("ec2")
	require.Error(t, err)
	assert.True(t, config.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "hcloud")
}
