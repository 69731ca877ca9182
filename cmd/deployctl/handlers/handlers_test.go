package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"

	"github.com/imamik/deployctl/internal/agent"
	"github.com/imamik/deployctl/internal/config"
	"github.com/imamik/deployctl/internal/localstate"
)

// env replaces the package's collaborators for one test and restores
// them afterwards. Tests using it must not run in parallel.
type env struct {
	cfg   *config.Config
	out   *bytes.Buffer
	agent *fakeAgent
	g     Globals
}

func newEnv(t *testing.T) *env {
	t.Helper()

	origLoad, origAgents, origObjects := loadConfig, newAgents, newObjectStore
	origRemote, origLocal := newRemoteRunner, localRunner
	origPort, origWait, origTools := portOpen, waitForPort, checkTools
	origStdout, origStderr, origTTY := stdout, stderr, isInteractiveTTY
	origPrompt := promptCredentials
	t.Cleanup(func() {
		loadConfig, newAgents, newObjectStore = origLoad, origAgents, origObjects
		newRemoteRunner, localRunner = origRemote, origLocal
		portOpen, waitForPort, checkTools = origPort, origWait, origTools
		stdout, stderr, isInteractiveTTY = origStdout, origStderr, origTTY
		promptCredentials = origPrompt
	})

	e := &env{
		cfg:   config.Default(),
		out:   &bytes.Buffer{},
		agent: &fakeAgent{},
	}
	e.cfg.StateDir = filepath.Join(t.TempDir(), "state")
	e.cfg.Retry.Delay = time.Millisecond
	e.g = Globals{JSON: true}

	loadConfig = func(string) (*config.Config, error) { return e.cfg, nil }
	newAgents = func(*config.Config, logr.Logger) *agent.Registry {
		reg := agent.NewRegistry()
		reg.Register("hcloud", func() (agent.Agent, error) { return e.agent, nil })
		return reg
	}
	portOpen = func(context.Context, string, int) bool { return true }
	waitForPort = func(context.Context, string, int, time.Duration) error { return nil }
	stdout = e.out
	stderr = io.Discard
	isInteractiveTTY = func() bool { return false }
	return e
}

func (e *env) store(t *testing.T) *localstate.Store {
	t.Helper()
	store, err := localstate.New(localstate.Options{RootDir: e.cfg.StateDir})
	require.NoError(t, err)
	return store
}

// decode parses the JSON written to stdout and resets the buffer.
func (e *env) decode(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(e.out.Bytes(), v), e.out.String())
	e.out.Reset()
}

func writeLayout(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nodes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const twoNodeLayout = `
- public_ip: 192.168.1.10
  jobs: [load_balancer, db_master, login]
- public_ip: 192.168.1.11
  private_ip: 10.0.0.11
  jobs: [compute]
`

type fakeAgent struct {
	mu           sync.Mutex
	instances    []agent.Instance
	runErr       error
	terminateErr error

	calls  []string
	params []agent.Params
}

func (f *fakeAgent) record(call string, p agent.Params) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	f.params = append(f.params, p)
}

func (f *fakeAgent) Name() string { return "hcloud" }

func (f *fakeAgent) AssertCredentials(_ context.Context, p agent.Params) error {
	f.record("assert", p)
	return nil
}

func (f *fakeAgent) ConfigureSecurity(_ context.Context, p agent.Params) (bool, error) {
	f.record("security", p)
	return true, nil
}

func (f *fakeAgent) RunInstances(_ context.Context, p agent.Params, count int) (*agent.Instances, error) {
	f.record("run", p)
	if f.runErr != nil {
		return nil, f.runErr
	}
	return &agent.Instances{Items: f.instances[:count]}, nil
}

func (f *fakeAgent) DescribeInstances(_ context.Context, p agent.Params) (*agent.Instances, error) {
	f.record("describe", p)
	return &agent.Instances{Items: f.instances}, nil
}

func (f *fakeAgent) TerminateInstances(_ context.Context, p agent.Params) error {
	f.record("terminate", p)
	return f.terminateErr
}

func (f *fakeAgent) lastParams(call string) agent.Params {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i] == call {
			return f.params[i]
		}
	}
	return agent.Params{}
}

type memoryObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	buckets map[string]bool
}

func newMemoryObjects() *memoryObjects {
	return &memoryObjects{objects: map[string][]byte{}, buckets: map[string]bool{}}
}

func (m *memoryObjects) EnsureBucket(_ context.Context, bucket string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buckets[bucket] = true
	return nil
}

func (m *memoryObjects) BucketExists(_ context.Context, bucket string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buckets[bucket], nil
}

func (m *memoryObjects) PutObject(_ context.Context, bucket, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.buckets[bucket] {
		return errors.New("no such bucket")
	}
	m.objects[bucket+"/"+key] = data
	return nil
}

func (m *memoryObjects) GetObject(_ context.Context, bucket, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

func (m *memoryObjects) ListObjects(_ context.Context, bucket, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for full := range m.objects {
		if key, ok := strings.CutPrefix(full, bucket+"/"); ok && strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
