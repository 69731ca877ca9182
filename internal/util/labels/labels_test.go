package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	t.Parallel()
	got := New("prod").Build()
	assert.Equal(t, map[string]string{
		KeyGroup:     "prod",
		KeyManagedBy: ManagedBy,
	}, got)
}

func TestBuilder(t *testing.T) {
	t.Parallel()
	got := New("prod").
		WithKeyname("app").
		WithRole("").
		WithRole("db_master").
		Merge(map[string]string{"team": "data"}).
		Build()

	assert.Equal(t, "prod", got[KeyGroup])
	assert.Equal(t, "app", got[KeyKeyname])
	assert.Equal(t, "db_master", got[KeyRole])
	assert.Equal(t, "data", got["team"])
}

func TestBuild_ReturnsCopy(t *testing.T) {
	t.Parallel()
	b := New("prod")
	first := b.Build()
	first[KeyGroup] = "mutated"

	assert.Equal(t, "prod", b.Build()[KeyGroup])
}

func TestSelector(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		labels map[string]string
		want   string
	}{
		{"empty", nil, ""},
		{"single", map[string]string{"a": "1"}, "a=1"},
		{"sorted", map[string]string{"b": "2", "a": "1"}, "a=1,b=2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Selector(tt.labels))
		})
	}
	assert.Equal(t, "deployctl.io/group=prod", SelectorForGroup("prod"))
}
