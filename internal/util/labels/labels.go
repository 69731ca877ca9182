package labels

import (
	"sort"
	"strings"
)

// Label keys, namespaced under deployctl.io.
const (
	KeyGroup     = "deployctl.io/group"
	KeyKeyname   = "deployctl.io/keyname"
	KeyRole      = "deployctl.io/role"
	KeyManagedBy = "deployctl.io/managed-by"
)

// ManagedBy is the value of KeyManagedBy on every resource deployctl creates.
const ManagedBy = "deployctl"

// Builder accumulates labels for a single resource.
type Builder struct {
	labels map[string]string
}

// New starts a label set for a resource in the given security group.
func New(group string) *Builder {
	return &Builder{
		labels: map[string]string{
			KeyGroup:     group,
			KeyManagedBy: ManagedBy,
		},
	}
}

// WithKeyname records the deployment keyname.
func (b *Builder) WithKeyname(keyname string) *Builder {
	b.labels[KeyKeyname] = keyname
	return b
}

// WithRole records a node role. Empty roles are skipped.
func (b *Builder) WithRole(role string) *Builder {
	if role != "" {
		b.labels[KeyRole] = role
	}
	return b
}

// Merge adds all labels from extra, overwriting existing keys.
func (b *Builder) Merge(extra map[string]string) *Builder {
	for k, v := range extra {
		b.labels[k] = v
	}
	return b
}

// Build returns a copy of the labels.
func (b *Builder) Build() map[string]string {
	out := make(map[string]string, len(b.labels))
	for k, v := range b.labels {
		out[k] = v
	}
	return out
}

// SelectorForGroup returns the label selector matching every resource of group.
func SelectorForGroup(group string) string {
	return KeyGroup + "=" + group
}

// Selector renders labels as a comma-separated "k=v" selector with keys
// in sorted order.
func Selector(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+labels[k])
	}
	return strings.Join(parts, ",")
}
