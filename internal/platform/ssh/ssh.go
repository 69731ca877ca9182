package ssh

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/imamik/deployctl/internal/shell"
	"github.com/imamik/deployctl/internal/util/retry"
)

const (
	// DefaultUser is the login used when Config.User is empty.
	DefaultUser = "root"

	defaultPort            = 22
	defaultDialTimeout     = 10 * time.Second
	defaultConnectAttempts = 10
	defaultRetryDelay      = 2 * time.Second
	defaultMaxDelay        = 10 * time.Second
)

var _ shell.Runner = (*Client)(nil)

// Config holds SSH client configuration.
type Config struct {
	Host       string
	Port       int
	User       string
	PrivateKey []byte

	// DialTimeout is the timeout for establishing the TCP connection.
	DialTimeout time.Duration
	// ConnectAttempts bounds how often a refused connection is retried.
	ConnectAttempts int
	// RetryDelay is the initial delay between connection attempts.
	RetryDelay time.Duration
	// HostKeyCallback defaults to ssh.InsecureIgnoreHostKey().
	HostKeyCallback ssh.HostKeyCallback
}

// Client executes commands on one remote node.
// The private key is parsed once; each Run opens its own connection.
type Client struct {
	config Config
	signer ssh.Signer
}

// NewClient validates cfg and parses its private key.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("ssh host cannot be empty")
	}
	if len(cfg.PrivateKey) == 0 {
		return nil, fmt.Errorf("ssh private key cannot be empty")
	}

	if cfg.User == "" {
		cfg.User = DefaultUser
	}
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	if cfg.ConnectAttempts == 0 {
		cfg.ConnectAttempts = defaultConnectAttempts
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.HostKeyCallback == nil {
		cfg.HostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // nodes are ephemeral
	}

	signer, err := ssh.ParsePrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return &Client{config: cfg, signer: signer}, nil
}

// Address returns host:port.
func (c *Client) Address() string {
	return net.JoinHostPort(c.config.Host, strconv.Itoa(c.config.Port))
}

// Run implements shell.Runner. stdout is returned, stderr is streamed to
// the given writer. A non-zero remote exit status is returned as
// *ssh.ExitError.
func (c *Client) Run(ctx context.Context, command string, stderr io.Writer) (string, error) {
	client, err := c.connect(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = client.Close() }()

	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create SSH session on %s: %w", c.config.Host, err)
	}
	defer func() { _ = session.Close() }()

	var stdout bytes.Buffer
	session.Stdout = &stdout
	if stderr != nil {
		session.Stderr = stderr
	}

	done := make(chan error, 1)
	go func() { done <- session.Run(command) }()

	select {
	case err := <-done:
		return stdout.String(), err
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		_ = client.Close()
		<-done
		return stdout.String(), fmt.Errorf("command on %s interrupted: %w", c.config.Host, ctx.Err())
	}
}

func (c *Client) connect(ctx context.Context) (*ssh.Client, error) {
	clientConfig := &ssh.ClientConfig{
		User:            c.config.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(c.signer)},
		HostKeyCallback: c.config.HostKeyCallback,
		Timeout:         c.config.DialTimeout,
	}

	addr := c.Address()
	var client *ssh.Client

	// Freshly booted nodes refuse connections until sshd is up.
	_, err := retry.Do(ctx, func(int) error {
		dialer := net.Dialer{Timeout: c.config.DialTimeout}
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return err
		}
		// The handshake runs over an already dialed connection, which
		// ClientConfig.Timeout does not cover.
		_ = conn.SetDeadline(time.Now().Add(c.config.DialTimeout))
		sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, clientConfig)
		if err != nil {
			_ = conn.Close()
			if strings.Contains(err.Error(), "unable to authenticate") {
				return retry.Fatal(err)
			}
			return err
		}
		_ = conn.SetDeadline(time.Time{})
		client = ssh.NewClient(sshConn, chans, reqs)
		return nil
	},
		retry.WithMaxAttempts(c.config.ConnectAttempts),
		retry.WithBackoff(retry.Exponential(c.config.RetryDelay, defaultMaxDelay, 2)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to establish SSH connection to %s: %w", addr, err)
	}
	return client, nil
}
