package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/deployctl/internal/config"
	"github.com/imamik/deployctl/internal/localstate"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := s3.New(s3.Options{
		Region:       "fsn1",
		BaseEndpoint: aws.String(server.URL),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("test-key", "test-secret", ""),
		HTTPClient:   &http.Client{Transport: &http.Transport{}},
	})
	return &Client{s3: client, region: "fsn1"}
}

func xmlResponse(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func listResult(truncated bool, next string, keys ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>backups</Name>`)
	fmt.Fprintf(&b, "<KeyCount>%d</KeyCount><IsTruncated>%t</IsTruncated>", len(keys), truncated)
	if next != "" {
		fmt.Fprintf(&b, "<NextContinuationToken>%s</NextContinuationToken>", next)
	}
	for _, k := range keys {
		fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>1</Size></Contents>", k)
	}
	b.WriteString("</ListBucketResult>")
	return b.String()
}

func TestNewClient(t *testing.T) {
	t.Parallel()
	client, err := NewClient(context.Background(), "https://fsn1.your-objectstorage.com", "fsn1", "ak", "sk", WithPathStyle(true))
	require.NoError(t, err)
	assert.Equal(t, "fsn1", client.Region())
	assert.True(t, client.s3.Options().UsePathStyle)
}

func TestFromConfig(t *testing.T) {
	t.Parallel()

	_, err := FromConfig(context.Background(), config.BackupConfig{Region: "fsn1"})
	require.Error(t, err)
	assert.True(t, config.IsConfigurationError(err))

	client, err := FromConfig(context.Background(), config.BackupConfig{
		Endpoint:  "https://fsn1.your-objectstorage.com",
		Region:    "fsn1",
		Bucket:    "backups",
		AccessKey: "ak",
		SecretKey: "sk",
	})
	require.NoError(t, err)
	assert.False(t, client.s3.Options().UsePathStyle)
}

func TestEnsureBucket(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		headStatus  int
		putStatus   int
		putBody     string
		wantCreated bool
		wantErr     bool
	}{
		{name: "exists", headStatus: http.StatusOK},
		{name: "missing", headStatus: http.StatusNotFound, putStatus: http.StatusOK, wantCreated: true},
		{
			name:       "already owned",
			headStatus: http.StatusNotFound,
			putStatus:  http.StatusConflict,
			putBody: `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>BucketAlreadyOwnedByYou</Code><Message>owned</Message></Error>`,
			wantCreated: true,
		},
		{
			name:       "taken by someone else",
			headStatus: http.StatusNotFound,
			putStatus:  http.StatusConflict,
			putBody: `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>BucketAlreadyExists</Code><Message>taken</Message></Error>`,
			wantCreated: true,
			wantErr:     true,
		},
		{name: "head forbidden", headStatus: http.StatusForbidden, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var mu sync.Mutex
			created := false
			client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.Method {
				case http.MethodHead:
					w.WriteHeader(tt.headStatus)
				case http.MethodPut:
					mu.Lock()
					created = true
					mu.Unlock()
					if tt.putBody != "" {
						xmlResponse(w, tt.putStatus, tt.putBody)
						return
					}
					w.WriteHeader(tt.putStatus)
				default:
					w.WriteHeader(http.StatusMethodNotAllowed)
				}
			}))

			err := client.EnsureBucket(context.Background(), "backups")
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, tt.wantCreated, created)
		})
	}
}

func TestPutAndGetObject(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	objects := map[string][]byte{}
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			objects[r.URL.Path] = body
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			body, ok := objects[r.URL.Path]
			if !ok {
				xmlResponse(w, http.StatusNotFound, `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
				return
			}
			w.Header().Set("Content-Length", fmt.Sprintf("%d", len(body)))
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(body)
		}
	}))

	ctx := context.Background()
	require.NoError(t, client.PutObject(ctx, "backups", "app/app.secret", []byte("s3cr3t")))

	mu.Lock()
	assert.Equal(t, []byte("s3cr3t"), objects["/backups/app/app.secret"])
	mu.Unlock()

	data, err := client.GetObject(ctx, "backups", "app/app.secret")
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cr3t"), data)

	_, err = client.GetObject(ctx, "backups", "app/missing")
	require.Error(t, err)
	var noSuchKey *types.NoSuchKey
	assert.ErrorAs(t, err, &noSuchKey)
}

func TestPutObject_Error(t *testing.T) {
	t.Parallel()
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		xmlResponse(w, http.StatusForbidden, `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>AccessDenied</Code><Message>denied</Message></Error>`)
	}))

	err := client.PutObject(context.Background(), "backups", "app/app.secret", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app/app.secret")
}

func TestListObjects_Paginates(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var prefixes []string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		mu.Lock()
		prefixes = append(prefixes, q.Get("prefix"))
		mu.Unlock()
		if q.Get("continuation-token") == "" {
			xmlResponse(w, http.StatusOK, listResult(true, "page-2", "app/app.secret", "app/app-key.pem"))
			return
		}
		xmlResponse(w, http.StatusOK, listResult(false, "", "app/locations-app.json"))
	}))

	keys, err := client.ListObjects(context.Background(), "backups", "app/")
	require.NoError(t, err)
	assert.Equal(t, []string{"app/app.secret", "app/app-key.pem", "app/locations-app.json"}, keys)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"app/", "app/"}, prefixes)
}

func TestListObjects_Empty(t *testing.T) {
	t.Parallel()
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		xmlResponse(w, http.StatusOK, listResult(false, ""))
	}))

	keys, err := client.ListObjects(context.Background(), "backups", "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestBackupRoundTrip(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	objects := map[string][]byte{}
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		key := strings.TrimPrefix(r.URL.Path, "/backups/")
		switch {
		case r.Method == http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			objects[key] = body
			w.WriteHeader(http.StatusOK)
		case r.URL.Query().Get("list-type") == "2":
			var keys []string
			for k := range objects {
				if strings.HasPrefix(k, r.URL.Query().Get("prefix")) {
					keys = append(keys, k)
				}
			}
			xmlResponse(w, http.StatusOK, listResult(false, "", keys...))
		default:
			body := objects[key]
			w.Header().Set("Content-Length", fmt.Sprintf("%d", len(body)))
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(body)
		}
	}))

	ctx := context.Background()
	source, err := localstate.New(localstate.Options{RootDir: t.TempDir()})
	require.NoError(t, err)
	secret, err := source.GenerateSecret("app")
	require.NoError(t, err)

	n, err := source.Backup(ctx, client, "backups", "app")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	target, err := localstate.New(localstate.Options{RootDir: t.TempDir()})
	require.NoError(t, err)
	n, err = target.Restore(ctx, client, "backups", "app", false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := target.Secret("app")
	require.NoError(t, err)
	assert.Equal(t, secret, got)
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		owned    bool
		notFound bool
	}{
		{name: "nil", err: nil},
		{name: "typed owned", err: &types.BucketAlreadyOwnedByYou{}, owned: true},
		{name: "typed exists elsewhere", err: &types.BucketAlreadyExists{}},
		{name: "owned code", err: &smithy.GenericAPIError{Code: "BucketAlreadyOwnedByYou"}, owned: true},
		{name: "typed no such bucket", err: &types.NoSuchBucket{}, notFound: true},
		{name: "typed not found", err: fmt.Errorf("head: %w", &types.NotFound{}), notFound: true},
		{name: "404 code", err: &smithy.GenericAPIError{Code: "404"}, notFound: true},
		{name: "access denied", err: &smithy.GenericAPIError{Code: "AccessDenied"}},
		{name: "plain", err: errors.New("connection reset")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.owned, isBucketAlreadyOwnedByYou(tt.err))
			assert.Equal(t, tt.notFound, isNotFoundError(tt.err))
		})
	}
}
