// Package hcloud is the Hetzner Cloud provisioning agent.
//
// The agent keeps one private network and one firewall per security group
// and one SSH key per deployment. Servers are labelled with both the group
// and the deployment keyname; the firewall is applied to every server of
// the group through a label selector, so new servers are covered without
// an extra API call.
//
// Get-or-create and idempotent delete logic is shared through the generic
// EnsureOperation and DeleteOperation types. API errors are classified
// into retryable (locked, conflict) and fatal (not found, invalid input)
// before they reach the retry loop.
package hcloud
