// Package netutil probes TCP reachability of deployment nodes.
package netutil

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"
)

const (
	// SSHPort is the port node reachability is checked on.
	SSHPort = 22
	// SSHWaitTimeout bounds how long a freshly booted node may take to accept SSH.
	SSHWaitTimeout = 5 * time.Minute

	dialTimeout  = 2 * time.Second
	pollInterval = 1 * time.Second
)

// PortOpen reports whether a TCP connection to ip:port succeeds.
func PortOpen(ctx context.Context, ip string, port int) bool {
	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(ip, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// WaitForPort polls ip:port every second until it accepts connections or
// timeout elapses.
func WaitForPort(ctx context.Context, ip string, port int, timeout time.Duration) error {
	address := net.JoinHostPort(ip, strconv.Itoa(port))

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if PortOpen(ctx, ip, port) {
		return nil
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return fmt.Errorf("timeout waiting for %s", address)
			}
			return ctx.Err()
		case <-ticker.C:
			if PortOpen(ctx, ip, port) {
				return nil
			}
		}
	}
}
