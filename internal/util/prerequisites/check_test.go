package prerequisites

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	orig := LookPath
	t.Cleanup(func() { LookPath = orig })
	LookPath = func(name string) (string, error) {
		if name == "present" {
			return "/usr/bin/present", nil
		}
		return "", errors.New("not found")
	}

	results := Check([]Tool{
		{Name: "present", Required: true},
		{Name: "absent-optional", Required: false},
	})

	require.Len(t, results.Results, 2)
	assert.True(t, results.Results[0].Found)
	assert.Equal(t, "/usr/bin/present", results.Results[0].Path)
	assert.Empty(t, results.Results[0].Version, "no version args configured")
	assert.False(t, results.Results[1].Found)
	assert.False(t, results.HasErrors(), "only optional tools are missing")
	assert.NoError(t, results.Error())

	results = Check([]Tool{
		{Name: "absent-a", Required: true},
		{Name: "absent-b", Required: true},
	})
	assert.True(t, results.HasErrors())
	assert.EqualError(t, results.Error(), "missing required tools: absent-a, absent-b")
}

func TestDefaultTools(t *testing.T) {
	t.Parallel()
	for _, tool := range DefaultTools() {
		assert.True(t, tool.Required, tool.Name)
	}
	for _, tool := range OptionalTools() {
		assert.False(t, tool.Required, tool.Name)
	}
}

func TestToolVersion_NoArgs(t *testing.T) {
	t.Parallel()
	assert.Empty(t, toolVersion("/nonexistent", nil))
	assert.Empty(t, toolVersion("/nonexistent", []string{"--version"}))
}
