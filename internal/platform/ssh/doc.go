// Package ssh runs commands on deployment nodes over SSH.
//
// Client implements shell.Runner, so remote commands go through the same
// retrying executor as local ones. Host key verification is disabled by
// default because nodes are recreated with new host keys on every run.
package ssh
