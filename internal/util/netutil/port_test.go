package netutil

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listen(t *testing.T) (string, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, port
}

// closedPort returns a port that was free a moment ago.
func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestPortOpen(t *testing.T) {
	t.Parallel()
	host, port := listen(t)
	assert.True(t, PortOpen(context.Background(), host, port))
	assert.False(t, PortOpen(context.Background(), "127.0.0.1", closedPort(t)))
}

func TestWaitForPort_Open(t *testing.T) {
	t.Parallel()
	host, port := listen(t)
	require.NoError(t, WaitForPort(context.Background(), host, port, 2*time.Second))
}

func TestWaitForPort_Timeout(t *testing.T) {
	t.Parallel()
	err := WaitForPort(context.Background(), "127.0.0.1", closedPort(t), 1500*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout waiting for")
}

func TestWaitForPort_Cancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WaitForPort(ctx, "127.0.0.1", closedPort(t), time.Minute)
	require.ErrorIs(t, err, context.Canceled)
}
