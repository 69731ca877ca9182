package localstate

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// ObjectStore is the subset of an object storage client backups need.
type ObjectStore interface {
	PutObject(ctx context.Context, bucket, key string, data []byte) error
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
	ListObjects(ctx context.Context, bucket, prefix string) ([]string, error)
}

// Backup uploads every metadata file of keyname to bucket under
// "<keyname>/<file name>" and returns the number of files uploaded.
func (s *Store) Backup(ctx context.Context, objects ObjectStore, bucket, keyname string) (int, error) {
	files, err := s.Files(keyname)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, notFound("deployment files", filepath.Join(s.root, keyname+"*"))
	}

	for _, file := range files {
		data, err := readFile("deployment file", file)
		if err != nil {
			return 0, err
		}
		key := path.Join(keyname, filepath.Base(file))
		if err := objects.PutObject(ctx, bucket, key, data); err != nil {
			return 0, fmt.Errorf("failed to back up %s: %w", file, err)
		}
		s.log.V(1).Info("backed up file", "path", file, "bucket", bucket, "key", key)
	}
	return len(files), nil
}

// Restore downloads keyname's metadata files from bucket into the store.
// It refuses to overwrite a running deployment unless force is set, and
// ignores objects that are not deployment files.
func (s *Store) Restore(ctx context.Context, objects ObjectStore, bucket, keyname string, force bool) (int, error) {
	if err := s.EnsureNotRunning(keyname, force); err != nil {
		return 0, err
	}
	if err := ValidateKeyname(keyname); err != nil {
		return 0, err
	}

	known := make(map[string]string)
	for _, p := range s.filePaths(keyname) {
		known[filepath.Base(p)] = p
	}

	keys, err := objects.ListObjects(ctx, bucket, keyname+"/")
	if err != nil {
		return 0, fmt.Errorf("failed to list backup for %s: %w", keyname, err)
	}

	restored := 0
	for _, key := range keys {
		dest, ok := known[strings.TrimPrefix(key, keyname+"/")]
		if !ok {
			s.log.V(1).Info("skipping unknown backup object", "key", key)
			continue
		}
		data, err := objects.GetObject(ctx, bucket, key)
		if err != nil {
			return restored, fmt.Errorf("failed to restore %s: %w", key, err)
		}
		perm := privatePerm
		if dest == s.certificatePath(keyname) {
			perm = certPerm
		}
		if err := s.write(dest, data, perm); err != nil {
			return restored, err
		}
		restored++
	}
	if restored == 0 {
		return 0, fmt.Errorf("%w: no backup for %s in bucket %s", ErrNotFound, keyname, bucket)
	}
	return restored, nil
}
