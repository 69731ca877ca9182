package localstate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/deployctl/internal/config"
)

const (
	dirPerm     os.FileMode = 0o700
	privatePerm os.FileMode = 0o600
	certPerm    os.FileMode = 0o644
)

var keynamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Options configures a Store.
type Options struct {
	// RootDir holds every deployment's files. Required.
	RootDir string
	// Logger receives debug output; discarded when unset.
	Logger logr.Logger
	// Now overrides the clock used for certificate validity.
	Now func() time.Time
}

// Store reads and writes deployment metadata under a single root directory.
// It is the only component that touches files in that directory.
type Store struct {
	root string
	log  logr.Logger
	now  func() time.Time
}

// New creates a Store. The root directory is created lazily on first write.
func New(opts Options) (*Store, error) {
	if opts.RootDir == "" {
		return nil, config.Invalid("state_dir", "must not be empty", "set state_dir or DEPLOYCTL_STATE_DIR")
	}
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		root: filepath.Clean(opts.RootDir),
		log:  log.WithName("localstate"),
		now:  now,
	}, nil
}

// Root returns the directory the store manages.
func (s *Store) Root() string {
	return s.root
}

// ValidateKeyname rejects keynames that are empty or could escape the root directory.
func ValidateKeyname(keyname string) error {
	if !keynamePattern.MatchString(keyname) {
		return config.Invalid("keyname", fmt.Sprintf("invalid keyname %q", keyname),
			"use letters, digits, '.', '_' or '-', starting with a letter or digit")
	}
	return nil
}

func (s *Store) ensureRoot() error {
	if err := os.MkdirAll(s.root, dirPerm); err != nil {
		return fmt.Errorf("failed to create state directory %s: %w", s.root, err)
	}
	return nil
}

func (s *Store) secretPath(keyname string) string {
	return filepath.Join(s.root, keyname+".secret")
}

func (s *Store) sshKeyPath(keyname string) string {
	return filepath.Join(s.root, keyname+".key")
}

func (s *Store) privateKeyPath(keyname string) string {
	return filepath.Join(s.root, keyname+"-key.pem")
}

func (s *Store) certificatePath(keyname string) string {
	return filepath.Join(s.root, keyname+"-cert.pem")
}

func (s *Store) locationsYAMLPath(keyname string) string {
	return filepath.Join(s.root, "locations-"+keyname+".yaml")
}

func (s *Store) locationsJSONPath(keyname string) string {
	return filepath.Join(s.root, "locations-"+keyname+".json")
}

func (s *Store) lockPath(keyname string) string {
	return filepath.Join(s.root, "."+keyname+".lock")
}

// filePaths lists every metadata file a deployment can own.
func (s *Store) filePaths(keyname string) []string {
	return []string{
		s.secretPath(keyname),
		s.sshKeyPath(keyname),
		s.privateKeyPath(keyname),
		s.certificatePath(keyname),
		s.locationsYAMLPath(keyname),
		s.locationsJSONPath(keyname),
	}
}

// Files returns the metadata files that currently exist for keyname.
func (s *Store) Files(keyname string) ([]string, error) {
	if err := ValidateKeyname(keyname); err != nil {
		return nil, err
	}
	var files []string
	for _, path := range s.filePaths(keyname) {
		if exists(path) {
			files = append(files, path)
		}
	}
	return files, nil
}

// existingPath returns path if it exists, or ErrNotFound.
func existingPath(what, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", notFound(what, path)
		}
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return path, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// readFile reads path, mapping a missing file to ErrNotFound.
func readFile(what, path string) ([]byte, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound(what, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// writeFileAtomic writes data to a temporary file in the same directory and
// renames it over path, so readers see either the old or the new content.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		cleanup()
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}

func (s *Store) write(path string, data []byte, perm os.FileMode) error {
	if err := s.ensureRoot(); err != nil {
		return err
	}
	if err := writeFileAtomic(path, data, perm); err != nil {
		return err
	}
	s.log.V(1).Info("wrote file", "path", path)
	return nil
}
