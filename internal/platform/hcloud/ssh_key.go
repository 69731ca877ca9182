package hcloud

import (
	"context"
	"fmt"
	"strings"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// ensureSSHKey uploads publicKey under name. An existing key with the same
// name must carry the same public key.
func (a *Agent) ensureSSHKey(ctx context.Context, name, publicKey string, labels map[string]string) (*hcloud.SSHKey, bool, error) {
	publicKey = strings.TrimSpace(publicKey)
	return (&EnsureOperation[*hcloud.SSHKey, hcloud.SSHKeyCreateOpts, any]{
		Name:         name,
		ResourceType: "ssh key",
		Get:          a.client.SSHKey.Get,
		Create:       simpleCreate(a.client.SSHKey.Create),
		Validate: func(key *hcloud.SSHKey) error {
			if !sameAuthorizedKey(key.PublicKey, publicKey) {
				return fmt.Errorf("ssh key %s exists with a different public key", name)
			}
			return nil
		},
		CreateOptsMapper: func() hcloud.SSHKeyCreateOpts {
			return hcloud.SSHKeyCreateOpts{
				Name:      name,
				PublicKey: publicKey,
				Labels:    labels,
			}
		},
	}).Execute(ctx, a)
}

// sameAuthorizedKey compares the type and key fields, ignoring comments.
func sameAuthorizedKey(a, b string) bool {
	fa, fb := strings.Fields(a), strings.Fields(b)
	if len(fa) < 2 || len(fb) < 2 {
		return strings.TrimSpace(a) == strings.TrimSpace(b)
	}
	return fa[0] == fb[0] && fa[1] == fb[1]
}

func (a *Agent) deleteSSHKey(ctx context.Context, name string) error {
	return (&DeleteOperation[*hcloud.SSHKey]{
		Name:         name,
		ResourceType: "ssh key",
		Get:          a.client.SSHKey.Get,
		Delete:       a.client.SSHKey.Delete,
	}).Execute(ctx, a)
}
