// Package keygen generates the key material a deployment needs.
//
// SSH key pairs are produced in PEM format (private) and OpenSSH
// authorized_keys format (public), suitable for uploading to a cloud
// provider. Self-signed TLS identities are produced as PEM key and
// certificate pairs used to encrypt intra-deployment traffic.
package keygen
