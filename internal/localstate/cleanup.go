package localstate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Cleanup removes keyname's locations files and secret. It is idempotent:
// files that are already gone are skipped. Key material is kept so a
// deployment can be inspected or restarted with --force.
func (s *Store) Cleanup(keyname string) error {
	if err := ValidateKeyname(keyname); err != nil {
		return err
	}
	if !exists(s.root) {
		return nil
	}

	unlock, err := s.Lock(keyname)
	if err != nil {
		return err
	}
	defer func() { _ = unlock() }()

	var errs []error
	for _, path := range []string{
		s.locationsYAMLPath(keyname),
		s.locationsJSONPath(keyname),
		s.secretPath(keyname),
	} {
		err := os.Remove(path)
		switch {
		case err == nil:
			s.log.V(1).Info("removed file", "path", path)
		case errors.Is(err, fs.ErrNotExist):
			s.log.V(1).Info("file already absent", "path", path)
		default:
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", path, err))
		}
	}
	return errors.Join(errs...)
}
