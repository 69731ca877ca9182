package localstate

import (
	"github.com/imamik/deployctl/internal/util/keygen"
)

// WriteSSHKey stores an SSH private key for keyname with permissions SSH accepts.
func (s *Store) WriteSSHKey(keyname string, privateKey []byte) error {
	if err := ValidateKeyname(keyname); err != nil {
		return err
	}
	return s.write(s.sshKeyPath(keyname), privateKey, privatePerm)
}

// GenerateSSHKey creates an RSA key pair, stores the private half and
// returns the public key in authorized_keys format.
func (s *Store) GenerateSSHKey(keyname string) ([]byte, error) {
	if err := ValidateKeyname(keyname); err != nil {
		return nil, err
	}
	pair, err := keygen.GenerateRSAKeyPair(keygen.DefaultBits)
	if err != nil {
		return nil, err
	}
	if err := s.WriteSSHKey(keyname, pair.PrivateKey); err != nil {
		return nil, err
	}
	return pair.PublicKey, nil
}

// SSHKeyPath returns the path of keyname's SSH private key.
func (s *Store) SSHKeyPath(keyname string) (string, error) {
	if err := ValidateKeyname(keyname); err != nil {
		return "", err
	}
	return existingPath("SSH key", s.sshKeyPath(keyname))
}
