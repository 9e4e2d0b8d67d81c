package clients

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ruteri/web3-dashboard-backend/api"
	"github.com/ruteri/web3-dashboard-backend/cryptoutils"
	"github.com/ruteri/web3-dashboard-backend/interfaces"
)

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request failed with code %d: %s", e.StatusCode, e.Message)
}

// DashboardClient talks to the dashboard HTTP API.
type DashboardClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewDashboardClient creates a client for the API at baseURL
// (e.g. "http://localhost:8080"). The optional timeout defaults to 30 seconds.
func NewDashboardClient(baseURL string, timeout ...time.Duration) *DashboardClient {
	clientTimeout := 30 * time.Second
	if len(timeout) > 0 {
		clientTimeout = timeout[0]
	}

	return &DashboardClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: clientTimeout,
		},
	}
}

// SetToken sets the session token sent with authenticated requests.
func (c *DashboardClient) SetToken(token string) {
	c.token = token
}

// Token returns the current session token.
func (c *DashboardClient) Token() string {
	return c.token
}

// RequestNonce asks for a login challenge for walletAddress.
func (c *DashboardClient) RequestNonce(ctx context.Context, walletAddress string) (string, error) {
	var resp api.NonceResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/nonce", api.NonceRequest{WalletAddress: walletAddress}, &resp); err != nil {
		return "", err
	}
	return resp.Nonce, nil
}

// Verify submits a signed challenge. On success the returned token is
// stored on the client.
func (c *DashboardClient) Verify(ctx context.Context, walletAddress, signature, nonce string) (*api.VerifyResponse, error) {
	req := api.VerifyRequest{
		WalletAddress: walletAddress,
		Signature:     signature,
		Nonce:         nonce,
	}

	var resp api.VerifyResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/verify", req, &resp); err != nil {
		return nil, err
	}

	c.token = resp.Token
	return &resp, nil
}

// Login runs the full challenge/response flow for the wallet controlled by key.
func (c *DashboardClient) Login(ctx context.Context, key *ecdsa.PrivateKey) (*api.VerifyResponse, error) {
	address := cryptoutils.AddressOf(key).String()

	nonce, err := c.RequestNonce(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("nonce request failed: %w", err)
	}

	signature, err := cryptoutils.SignAuthMessage(nonce, key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign challenge: %w", err)
	}

	resp, err := c.Verify(ctx, address, signature, nonce)
	if err != nil {
		return nil, fmt.Errorf("verification failed: %w", err)
	}

	return resp, nil
}

// ListFiles returns the caller's files, newest first.
func (c *DashboardClient) ListFiles(ctx context.Context) ([]interfaces.File, error) {
	var files []interfaces.File
	if err := c.doJSON(ctx, http.MethodGet, "/api/files", nil, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// Upload sends content as a multipart upload named filename.
func (c *DashboardClient) Upload(ctx context.Context, filename string, content io.Reader) (*interfaces.File, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart body: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to read upload content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to create multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/files/upload", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var file interfaces.File
	if err := c.do(req, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// Delete removes one of the caller's files.
func (c *DashboardClient) Delete(ctx context.Context, fileID string) error {
	var resp api.DeleteResponse
	if err := c.doJSON(ctx, http.MethodDelete, "/api/files/"+url.PathEscape(fileID), nil, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("delete of %s was not acknowledged", fileID)
	}
	return nil
}

// AdminFiles returns every file with its owner's wallet address.
func (c *DashboardClient) AdminFiles(ctx context.Context) ([]interfaces.FileWithOwner, error) {
	var files []interfaces.FileWithOwner
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/files", nil, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// AdminAudit returns the most recent audit records.
func (c *DashboardClient) AdminAudit(ctx context.Context) ([]interfaces.AuditLog, error) {
	var logs []interfaces.AuditLog
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/audit", nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (c *DashboardClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *DashboardClient) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		reqJSON, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(reqJSON)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, out)
}

func (c *DashboardClient) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		var errResp api.ErrorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			apiErr.Message = errResp.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
