package handlers

import (
	"context"
	"fmt"
)

// BackupResult is the JSON output of backup and restore.
type BackupResult struct {
	Keyname string `json:"keyname"`
	Bucket  string `json:"bucket"`
	Files   int    `json:"files"`
}

// Backup uploads a deployment's metadata files to object storage,
// creating the bucket on first use.
func Backup(ctx context.Context, g Globals, keyname string) error {
	s, err := newSession(g)
	if err != nil {
		return err
	}
	objects, err := newObjectStore(ctx, s.cfg.Backup)
	if err != nil {
		return err
	}

	bucket := s.cfg.Backup.Bucket
	if err := objects.EnsureBucket(ctx, bucket); err != nil {
		return err
	}
	n, err := s.store.Backup(ctx, objects, bucket, keyname)
	if err != nil {
		return err
	}
	return printBackupResult(g, "Backed up", BackupResult{Keyname: keyname, Bucket: bucket, Files: n})
}

// Restore downloads a deployment's metadata files from object storage.
// It refuses to overwrite a recorded deployment unless force is set.
func Restore(ctx context.Context, g Globals, keyname string, force bool) error {
	s, err := newSession(g)
	if err != nil {
		return err
	}
	objects, err := newObjectStore(ctx, s.cfg.Backup)
	if err != nil {
		return err
	}

	bucket := s.cfg.Backup.Bucket
	n, err := s.store.Restore(ctx, objects, bucket, keyname, force)
	if err != nil {
		return err
	}
	return printBackupResult(g, "Restored", BackupResult{Keyname: keyname, Bucket: bucket, Files: n})
}

func printBackupResult(g Globals, verb string, res BackupResult) error {
	if g.JSON {
		return printJSON(res)
	}
	_, err := fmt.Fprintf(stdout, "%s %d files of %s (bucket %s)\n", verb, res.Files, res.Keyname, res.Bucket)
	return err
}
