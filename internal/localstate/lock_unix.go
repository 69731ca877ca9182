//go:build unix

package localstate

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Lock takes an exclusive advisory lock on keyname's lock file, blocking
// until it is available. The returned function releases it.
func (s *Store) Lock(keyname string) (func() error, error) {
	if err := ValidateKeyname(keyname); err != nil {
		return nil, err
	}
	if err := s.ensureRoot(); err != nil {
		return nil, err
	}

	path := s.lockPath(keyname)
	// #nosec G304
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, privatePerm)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file %s: %w", path, err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}

	return func() error {
		unlockErr := unix.Flock(int(f.Fd()), unix.LOCK_UN)
		closeErr := f.Close()
		if unlockErr != nil {
			return fmt.Errorf("failed to unlock %s: %w", path, unlockErr)
		}
		return closeErr
	}, nil
}
