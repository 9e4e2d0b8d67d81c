package storage

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ruteri/web3-dashboard-backend/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIPFSNode struct {
	mu      sync.Mutex
	auth    []string
	added   [][]byte
	queries []string
	cid     string
	failAdd bool
}

func (n *fakeIPFSNode) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v0/id", func(w http.ResponseWriter, r *http.Request) {
		n.mu.Lock()
		n.auth = append(n.auth, r.Header.Get("Authorization"))
		n.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]string{"ID": "12D3KooWFakeNode"})
	})
	mux.HandleFunc("/api/v0/add", func(w http.ResponseWriter, r *http.Request) {
		n.mu.Lock()
		defer n.mu.Unlock()
		n.auth = append(n.auth, r.Header.Get("Authorization"))
		n.queries = append(n.queries, r.URL.RawQuery)

		if n.failAdd {
			http.Error(w, `{"Message":"pinning quota exceeded","Code":0,"Type":"error"}`, http.StatusInternalServerError)
			return
		}

		mr, err := r.MultipartReader()
		if !assert.NoError(t, err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		part, err := mr.NextPart()
		if !assert.NoError(t, err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(part)
		assert.NoError(t, err)
		n.added = append(n.added, data)

		_ = json.NewEncoder(w).Encode(map[string]string{"Name": n.cid, "Hash": n.cid, "Size": "9"})
	})
	return mux
}

func newFakeIPFS(t *testing.T) (*fakeIPFSNode, *httptest.Server) {
	id, err := ComputeCID([]byte("test data"))
	require.NoError(t, err)

	node := &fakeIPFSNode{cid: id.String()}
	srv := httptest.NewServer(node.handler(t))
	t.Cleanup(srv.Close)
	return node, srv
}

func TestIPFSBackend_Store(t *testing.T) {
	node, srv := newFakeIPFS(t)

	backend, err := NewIPFSBackend(srv.URL, "pin-token", 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.True(t, backend.Available(context.Background()))

	id, err := backend.Store(context.Background(), []byte("test data"), "a.txt")
	require.NoError(t, err)
	assert.Equal(t, interfaces.ContentID(node.cid), id)

	node.mu.Lock()
	defer node.mu.Unlock()
	require.Len(t, node.added, 1)
	assert.Equal(t, []byte("test data"), node.added[0])
	for _, auth := range node.auth {
		assert.Equal(t, "Bearer pin-token", auth)
	}
	require.Len(t, node.queries, 1)
	assert.Contains(t, node.queries[0], "pin=true")
	assert.Contains(t, node.queries[0], "cid-version=1")
}

func TestIPFSBackend_AddFailure(t *testing.T) {
	node, srv := newFakeIPFS(t)
	node.failAdd = true

	backend, err := NewIPFSBackend(srv.URL, "pin-token", 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	_, err = backend.Store(context.Background(), []byte("test data"), "a.txt")
	assert.Error(t, err)
}

func TestIPFSBackend_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	backend, err := NewIPFSBackend(url, "", time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	assert.False(t, backend.Available(context.Background()))
	_, err = backend.Store(context.Background(), []byte("x"), "x")
	assert.ErrorIs(t, err, interfaces.ErrBackendUnavailable)
}
