package clients

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ruteri/web3-dashboard-backend/api"
	"github.com/ruteri/web3-dashboard-backend/auth"
	"github.com/ruteri/web3-dashboard-backend/cryptoutils"
	"github.com/ruteri/web3-dashboard-backend/httpserver"
	"github.com/ruteri/web3-dashboard-backend/interfaces"
	"github.com/ruteri/web3-dashboard-backend/repository"
	"github.com/ruteri/web3-dashboard-backend/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *repository.Memory) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo := repository.NewMemory()
	sessions, err := auth.NewSessionIssuer([]byte("client-test-secret"), 0)
	require.NoError(t, err)
	backend, err := storage.NewFileBackend(t.TempDir(), logger)
	require.NoError(t, err)

	handler := httpserver.NewHandler(repo, auth.NewService(repo, sessions, logger), backend, nil, 0, logger)
	srv := httptest.NewServer(httpserver.New(&api.HTTPServerConfig{Log: logger}, handler, nil).Handler())
	t.Cleanup(srv.Close)

	return srv, repo
}

func TestDashboardClient_EndToEnd(t *testing.T) {
	srv, repo := newTestServer(t)
	ctx := context.Background()

	userKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	adminKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	_, err = repo.EnsureAdmin(ctx, cryptoutils.AddressOf(adminKey))
	require.NoError(t, err)

	user := NewDashboardClient(srv.URL)
	resp, err := user.Login(ctx, userKey)
	require.NoError(t, err)
	assert.False(t, resp.IsAdmin)
	assert.Equal(t, resp.Token, user.Token())

	file, err := user.Upload(ctx, "notes.txt", bytes.NewReader([]byte("some notes")))
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", file.Filename)
	assert.Equal(t, int64(10), file.FileSize)

	files, err := user.ListFiles(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, file.ID, files[0].ID)

	_, err = user.AdminFiles(ctx)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "admin access required", apiErr.Message)

	admin := NewDashboardClient(srv.URL)
	resp, err = admin.Login(ctx, adminKey)
	require.NoError(t, err)
	assert.True(t, resp.IsAdmin)

	all, err := admin.AdminFiles(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, cryptoutils.AddressOf(userKey).String(), all[0].WalletAddress)

	err = admin.Delete(ctx, file.ID)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)

	require.NoError(t, user.Delete(ctx, file.ID))

	logs, err := admin.AdminAudit(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, interfaces.AuditFileDelete, logs[0].Action)
	assert.Equal(t, interfaces.AuditFileUpload, logs[1].Action)
}

func TestDashboardClient_Unauthenticated(t *testing.T) {
	srv, _ := newTestServer(t)
	client := NewDashboardClient(srv.URL)

	_, err := client.ListFiles(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "authentication required", apiErr.Message)
}

func TestDashboardClient_VerifyFailure(t *testing.T) {
	srv, _ := newTestServer(t)
	client := NewDashboardClient(srv.URL)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signature, err := cryptoutils.SignAuthMessage("1", key)
	require.NoError(t, err)

	_, err = client.Verify(context.Background(), "0x1111111111111111111111111111111111111111", signature, "1")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "authentication failed", apiErr.Message)
	assert.Empty(t, client.Token())
}
