package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	shell "github.com/ipfs/go-ipfs-api"
	"github.com/ruteri/web3-dashboard-backend/interfaces"
)

// bearerTransport adds the pinning service credential to every request.
type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+t.token)
	return t.base.RoundTrip(req)
}

// IPFSBackend pins content through the IPFS HTTP API. It can target a local
// node or a hosted pinning service that speaks the same API.
type IPFSBackend struct {
	shell       *shell.Shell
	apiURL      string
	log         *slog.Logger
	locationURI string
}

// NewIPFSBackend creates an IPFS backend for the API at apiURL
// (e.g. "http://127.0.0.1:5001"). A non-empty token is sent as a bearer
// credential with every request.
func NewIPFSBackend(apiURL, token string, timeout time.Duration, log *slog.Logger) (*IPFSBackend, error) {
	if apiURL == "" {
		return nil, fmt.Errorf("%w: empty IPFS API address", interfaces.ErrInvalidLocationURI)
	}

	var transport http.RoundTripper = http.DefaultTransport
	if token != "" {
		transport = &bearerTransport{token: token, base: http.DefaultTransport}
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}

	return &IPFSBackend{
		shell:       shell.NewShellWithClient(apiURL, client),
		apiURL:      apiURL,
		log:         log,
		locationURI: fmt.Sprintf("ipfs://%s/?timeout=%s", apiURL, timeout),
	}, nil
}

// Store adds and pins data and returns the CID reported by the node.
// Returns ErrBackendUnavailable if the node is not reachable.
func (b *IPFSBackend) Store(ctx context.Context, data []byte, filename string) (interfaces.ContentID, error) {
	start := time.Now()

	if !b.shell.IsUp() {
		b.log.Warn("IPFS node unavailable", slog.String("api", b.apiURL))
		return "", interfaces.ErrBackendUnavailable
	}

	cid, err := b.shell.Add(bytes.NewReader(data),
		shell.Pin(true),
		shell.CidVersion(1),
		shell.RawLeaves(true),
	)
	if err != nil {
		b.log.Error("Failed to add data to IPFS",
			slog.String("filename", filename),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return "", fmt.Errorf("failed to add data to IPFS: %w", err)
	}

	id := interfaces.ContentID(cid)
	if err := ValidateCID(id); err != nil {
		return "", err
	}

	b.log.Debug("Pinned content in IPFS",
		slog.String("cid", cid),
		slog.String("filename", filename),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return id, nil
}

// Available checks if the IPFS node is accessible.
func (b *IPFSBackend) Available(ctx context.Context) bool {
	return b.shell.IsUp()
}

// Name returns a unique identifier for this storage backend.
func (b *IPFSBackend) Name() string {
	return fmt.Sprintf("ipfs-%s", b.apiURL)
}

// LocationURI returns the URI that identifies this storage backend.
func (b *IPFSBackend) LocationURI() string {
	return b.locationURI
}
