// Package s3 stores deployment metadata backups in S3-compatible object
// storage such as Hetzner Object Storage.
//
// Objects are keyed <keyname>/<file> so a single bucket can hold the
// backups of many deployments.
package s3
