package localstate

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// SecretLength is the number of characters in a deployment secret.
const SecretLength = 32

// GenerateSecret creates a new random secret for keyname, persists it and
// returns it. An existing secret is overwritten, so callers must not call
// this for a deployment that is running.
func (s *Store) GenerateSecret(keyname string) (string, error) {
	if err := ValidateKeyname(keyname); err != nil {
		return "", err
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	secret := strings.ReplaceAll(id.String(), "-", "")[:SecretLength]

	if err := s.write(s.secretPath(keyname), []byte(secret), privatePerm); err != nil {
		return "", err
	}
	return secret, nil
}

// Secret returns the secret stored for keyname.
func (s *Store) Secret(keyname string) (string, error) {
	if err := ValidateKeyname(keyname); err != nil {
		return "", err
	}
	data, err := readFile("secret", s.secretPath(keyname))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
