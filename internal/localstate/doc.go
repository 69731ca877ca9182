// Package localstate persists deployment metadata on the operator's machine.
//
// A [Store] owns one root directory (by default ~/.deployctl) and, for each
// deployment keyname, the files describing that deployment:
//
//   - <keyname>.secret: the shared secret token
//   - <keyname>.key: the SSH private key used to reach deployment nodes
//   - <keyname>-key.pem, <keyname>-cert.pem: the self-signed TLS identity
//   - locations-<keyname>.yaml: the [Locations] record
//   - locations-<keyname>.json: the node [Roster]
//
// The presence of the locations YAML file marks a deployment as running;
// [Store.EnsureNotRunning] uses it as an idempotency guard. Writers take an
// advisory lock per keyname so concurrent operator processes cannot
// interleave, and files are written to a temporary path and renamed into
// place so readers never observe partial content.
package localstate
