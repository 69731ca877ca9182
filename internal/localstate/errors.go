package localstate

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning is returned when a deployment's locations file exists.
	ErrAlreadyRunning = errors.New("deployment is already running")
	// ErrNotFound is returned when a deployment file does not exist.
	ErrNotFound = errors.New("deployment metadata not found")
	// ErrCorrupt is returned when a deployment file cannot be parsed.
	ErrCorrupt = errors.New("deployment metadata is corrupt")
	// ErrRoleNotFound is matched by every RoleNotFoundError.
	ErrRoleNotFound = errors.New("role not found")
)

// RoleNotFoundError is returned when no node in a roster performs a role.
type RoleNotFoundError struct {
	Keyname string
	Role    string
}

func (e *RoleNotFoundError) Error() string {
	return fmt.Sprintf("couldn't find a %s node in deployment %s", e.Role, e.Keyname)
}

// Is makes errors.Is(err, ErrRoleNotFound) succeed.
func (e *RoleNotFoundError) Is(target error) bool {
	return target == ErrRoleNotFound
}

func notFound(what, path string) error {
	return fmt.Errorf("%w: %s (%s)", ErrNotFound, what, path)
}

func corrupt(what, path string, err error) error {
	return fmt.Errorf("%w: %s (%s): %v", ErrCorrupt, what, path, err)
}
