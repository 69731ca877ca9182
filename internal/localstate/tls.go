package localstate

import (
	"time"

	"github.com/imamik/deployctl/internal/util/keygen"
)

const (
	certBackdate = 24 * time.Hour
	certValidity = 10 * 365 * 24 * time.Hour
)

// TLSSubject is the identity every deployment certificate is issued to and by.
var TLSSubject = keygen.Subject{
	Country:      "US",
	Organization: "deployctl",
	CommonName:   "deployctl.local",
	Email:        "support@deployctl.local",
}

// GenerateTLSIdentity creates a 2048-bit key and a self-signed certificate
// valid from 24 hours ago until ten years from now, and writes them to the
// deployment's -key.pem (owner read/write only) and -cert.pem files.
func (s *Store) GenerateTLSIdentity(keyname string) (*keygen.Identity, error) {
	if err := ValidateKeyname(keyname); err != nil {
		return nil, err
	}

	identity, err := keygen.GenerateSelfSignedIdentity(keygen.IdentityOptions{
		Bits:     keygen.DefaultBits,
		Subject:  TLSSubject,
		Backdate: certBackdate,
		Validity: certValidity,
		Now:      s.now(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.write(s.privateKeyPath(keyname), identity.PrivateKey, privatePerm); err != nil {
		return nil, err
	}
	if err := s.write(s.certificatePath(keyname), identity.Certificate, certPerm); err != nil {
		return nil, err
	}
	return identity, nil
}

// PrivateKeyPath returns the path of keyname's TLS private key.
func (s *Store) PrivateKeyPath(keyname string) (string, error) {
	if err := ValidateKeyname(keyname); err != nil {
		return "", err
	}
	return existingPath("TLS private key", s.privateKeyPath(keyname))
}

// CertificatePath returns the path of keyname's self-signed certificate.
func (s *Store) CertificatePath(keyname string) (string, error) {
	if err := ValidateKeyname(keyname); err != nil {
		return "", err
	}
	return existingPath("TLS certificate", s.certificatePath(keyname))
}
