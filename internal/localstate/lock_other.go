//go:build !unix

package localstate

// Lock is a no-op on platforms without flock(2).
func (s *Store) Lock(keyname string) (func() error, error) {
	if err := ValidateKeyname(keyname); err != nil {
		return nil, err
	}
	return func() error { return nil }, nil
}
