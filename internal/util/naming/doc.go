// Package naming derives cloud resource names from a deployment's group
// and keyname.
//
// Shared infrastructure (network, firewall) is named after the group;
// per-deployment resources (SSH key, servers) after the keyname.
package naming
