// Package agent defines the provisioning backends deployctl can deploy
// onto and the registry that selects one by name.
//
// An Agent owns the full lifecycle of a deployment's machines on one
// infrastructure: credential checks, network security setup, starting,
// describing and terminating instances. Every resource an agent creates is
// tagged with the deployment's group so it can be found again.
//
// Concrete agents live under internal/platform.
package agent
