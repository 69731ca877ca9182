package keygen

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/ssh"
)

// DefaultBits is the RSA modulus size used for deployment keys.
const DefaultBits = 2048

// KeyPair holds an RSA key pair in ready-to-use formats.
type KeyPair struct {
	// PrivateKey is the RSA private key in PEM-encoded PKCS#1 format.
	PrivateKey []byte
	// PublicKey is the public key in OpenSSH authorized_keys format.
	PublicKey []byte
}

// GenerateRSAKeyPair generates an RSA key pair for SSH access to deployment nodes.
func GenerateRSAKeyPair(bits int) (*KeyPair, error) {
	privateKey, err := newRSAKey(bits)
	if err != nil {
		return nil, err
	}

	publicRsaKey, err := ssh.NewPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH public key: %w", err)
	}

	return &KeyPair{
		PrivateKey: encodePrivateKey(privateKey),
		PublicKey:  ssh.MarshalAuthorizedKey(publicRsaKey),
	}, nil
}

// Subject describes the fixed organizational identity a self-signed
// certificate is issued to and by.
type Subject struct {
	Country      string
	Organization string
	CommonName   string
	Email        string
}

// Identity is a self-signed TLS certificate and its private key.
type Identity struct {
	// PrivateKey is the RSA private key in PEM-encoded PKCS#1 format.
	PrivateKey []byte
	// Certificate is the PEM-encoded X.509 certificate.
	Certificate []byte
	NotBefore   time.Time
	NotAfter    time.Time
}

// IdentityOptions controls self-signed certificate generation.
type IdentityOptions struct {
	Bits     int
	Subject  Subject
	Backdate time.Duration
	Validity time.Duration
	// Now overrides the clock; zero means time.Now().
	Now time.Time
}

// GenerateSelfSignedIdentity creates an RSA key and a certificate whose
// issuer equals its subject, valid from Now-Backdate to Now+Validity.
func GenerateSelfSignedIdentity(opts IdentityOptions) (*Identity, error) {
	if opts.Bits == 0 {
		opts.Bits = DefaultBits
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	if opts.Validity <= 0 {
		return nil, fmt.Errorf("certificate validity must be positive, got %s", opts.Validity)
	}

	privateKey, err := newRSAKey(opts.Bits)
	if err != nil {
		return nil, err
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("failed to generate serial number: %w", err)
	}

	name := pkix.Name{
		CommonName: opts.Subject.CommonName,
	}
	if opts.Subject.Country != "" {
		name.Country = []string{opts.Subject.Country}
	}
	if opts.Subject.Organization != "" {
		name.Organization = []string{opts.Subject.Organization}
	}

	template := &x509.Certificate{
		SerialNumber:          serialNumber,
		Subject:               name,
		Issuer:                name,
		NotBefore:             now.Add(-opts.Backdate),
		NotAfter:              now.Add(opts.Validity),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		SignatureAlgorithm:    x509.SHA256WithRSA,
	}
	if opts.Subject.Email != "" {
		template.EmailAddresses = []string{opts.Subject.Email}
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate: %w", err)
	}

	return &Identity{
		PrivateKey:  encodePrivateKey(privateKey),
		Certificate: pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER}),
		NotBefore:   template.NotBefore,
		NotAfter:    template.NotAfter,
	}, nil
}

func newRSAKey(bits int) (*rsa.PrivateKey, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA private key: %w", err)
	}
	if err := privateKey.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate RSA private key: %w", err)
	}
	return privateKey, nil
}

func encodePrivateKey(key *rsa.PrivateKey) []byte {
	return pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
}
