package repository

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ruteri/web3-dashboard-backend/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAddr(t *testing.T, hex string) interfaces.WalletAddress {
	t.Helper()
	addr, err := interfaces.NewWalletAddressFromHex(hex)
	require.NoError(t, err)
	return addr
}

func strPtr(s string) *string { return &s }

// testRepository runs behaviour shared by every interfaces.Repository
// implementation. newRepo must return an empty repository.
func testRepository(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	ctx := context.Background()

	t.Run("upsert nonce creates user once", func(t *testing.T) {
		repo := newRepo(t)
		lower := mustAddr(t, "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd")
		upper := mustAddr(t, "0xABCDEFABCDEFABCDEFABCDEFABCDEFABCDEFABCD")

		first, err := repo.UpsertNonce(ctx, lower, "1")
		require.NoError(t, err)
		require.NotNil(t, first.Nonce)
		assert.Equal(t, "1", *first.Nonce)
		assert.False(t, first.IsAdmin)

		second, err := repo.UpsertNonce(ctx, upper, "2")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "2", *second.Nonce)

		byWallet, err := repo.GetUserByWallet(ctx, lower)
		require.NoError(t, err)
		assert.Equal(t, first.ID, byWallet.ID)
		assert.True(t, byWallet.HasPendingNonce("2"))
		assert.False(t, byWallet.HasPendingNonce("1"))

		byID, err := repo.GetUser(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, lower, byID.WalletAddress)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.GetUserByWallet(ctx, mustAddr(t, "0x1111111111111111111111111111111111111111"))
		assert.ErrorIs(t, err, interfaces.ErrNotFound)

		_, err = repo.GetUser(ctx, "8d6c9e0e-5be5-4c55-bd3c-6a1f2d1d2a40")
		assert.ErrorIs(t, err, interfaces.ErrNotFound)

		_, err = repo.GetUser(ctx, "not-an-id")
		assert.ErrorIs(t, err, interfaces.ErrNotFound)
	})

	t.Run("consume nonce is compare and clear", func(t *testing.T) {
		repo := newRepo(t)
		user, err := repo.UpsertNonce(ctx, mustAddr(t, "0x2222222222222222222222222222222222222222"), "77")
		require.NoError(t, err)

		ok, err := repo.ConsumeNonce(ctx, user.ID, "78")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = repo.ConsumeNonce(ctx, user.ID, "77")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.ConsumeNonce(ctx, user.ID, "77")
		require.NoError(t, err)
		assert.False(t, ok)

		stored, err := repo.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.Nonce)
	})

	t.Run("concurrent consume succeeds once", func(t *testing.T) {
		repo := newRepo(t)
		user, err := repo.UpsertNonce(ctx, mustAddr(t, "0x3333333333333333333333333333333333333333"), "5")
		require.NoError(t, err)

		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := repo.ConsumeNonce(ctx, user.ID, "5")
				assert.NoError(t, err)
				if ok {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), wins.Load())
	})

	t.Run("ensure admin", func(t *testing.T) {
		repo := newRepo(t)
		addr := mustAddr(t, "0x4444444444444444444444444444444444444444")

		admin, err := repo.EnsureAdmin(ctx, addr)
		require.NoError(t, err)
		assert.True(t, admin.IsAdmin)
		assert.Nil(t, admin.Nonce)

		// nonce issuance keeps the flag
		user, err := repo.UpsertNonce(ctx, addr, "9")
		require.NoError(t, err)
		assert.Equal(t, admin.ID, user.ID)
		assert.True(t, user.IsAdmin)

		again, err := repo.EnsureAdmin(ctx, addr)
		require.NoError(t, err)
		assert.Equal(t, admin.ID, again.ID)
		assert.True(t, again.HasPendingNonce("9"))
	})

	t.Run("files and audit", func(t *testing.T) {
		repo := newRepo(t)
		alice, err := repo.UpsertNonce(ctx, mustAddr(t, "0x5555555555555555555555555555555555555555"), "1")
		require.NoError(t, err)
		bob, err := repo.UpsertNonce(ctx, mustAddr(t, "0x6666666666666666666666666666666666666666"), "1")
		require.NoError(t, err)

		var aliceFiles []*interfaces.File
		for i := 0; i < 3; i++ {
			f, err := repo.CreateFile(ctx, interfaces.File{
				UserID:   alice.ID,
				CID:      fmt.Sprintf("bafy%d", i),
				Filename: fmt.Sprintf("a%d.txt", i),
				FileSize: int64(i + 1),
				FileType: "text/plain",
			}, interfaces.AuditLog{
				UserID:   alice.ID,
				Action:   interfaces.AuditFileUpload,
				Metadata: strPtr(fmt.Sprintf(`{"filename":"a%d.txt","cid":"bafy%d"}`, i, i)),
			})
			require.NoError(t, err)
			assert.NotEmpty(t, f.ID)
			assert.False(t, f.UploadedAt.IsZero())
			aliceFiles = append(aliceFiles, f)
		}

		bobFile, err := repo.CreateFile(ctx, interfaces.File{
			UserID: bob.ID, CID: "bafy0", Filename: "b.bin", FileSize: 10, FileType: "application/octet-stream",
		}, interfaces.AuditLog{UserID: bob.ID, Action: interfaces.AuditFileUpload})
		require.NoError(t, err)

		listed, err := repo.ListFilesByUser(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, listed, 3)
		assert.Equal(t, aliceFiles[2].ID, listed[0].ID)
		assert.Equal(t, aliceFiles[0].ID, listed[2].ID)

		got, err := repo.GetFile(ctx, bobFile.ID)
		require.NoError(t, err)
		assert.Equal(t, "b.bin", got.Filename)
		assert.Equal(t, bob.ID, got.UserID)

		all, err := repo.ListFilesWithOwners(ctx)
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, bobFile.ID, all[0].ID)
		assert.Equal(t, bob.WalletAddress.String(), all[0].WalletAddress)
		assert.Equal(t, alice.WalletAddress.String(), all[1].WalletAddress)

		require.NoError(t, repo.DeleteFile(ctx, aliceFiles[1].ID, interfaces.AuditLog{
			UserID:   alice.ID,
			Action:   interfaces.AuditFileDelete,
			FileID:   strPtr(aliceFiles[1].ID),
			Metadata: strPtr(`{"filename":"a1.txt"}`),
		}))

		_, err = repo.GetFile(ctx, aliceFiles[1].ID)
		assert.ErrorIs(t, err, interfaces.ErrNotFound)

		err = repo.DeleteFile(ctx, aliceFiles[1].ID, interfaces.AuditLog{UserID: alice.ID, Action: interfaces.AuditFileDelete})
		assert.ErrorIs(t, err, interfaces.ErrNotFound)

		logs, err := repo.ListAuditLogs(ctx, 50)
		require.NoError(t, err)
		require.Len(t, logs, 5)
		assert.Equal(t, interfaces.AuditFileDelete, logs[0].Action)
		require.NotNil(t, logs[0].FileID)
		assert.Equal(t, aliceFiles[1].ID, *logs[0].FileID)
		assert.Equal(t, interfaces.AuditFileUpload, logs[1].Action)
		require.NotNil(t, logs[1].FileID)
		assert.Equal(t, bobFile.ID, *logs[1].FileID)
		assert.Nil(t, logs[1].Metadata)
		require.NotNil(t, logs[4].Metadata)
		assert.JSONEq(t, `{"filename":"a0.txt","cid":"bafy0"}`, *logs[4].Metadata)

		limited, err := repo.ListAuditLogs(ctx, 2)
		require.NoError(t, err)
		require.Len(t, limited, 2)
		assert.Equal(t, logs[0].ID, limited[0].ID)
	})

	t.Run("empty listings are not nil", func(t *testing.T) {
		repo := newRepo(t)

		files, err := repo.ListFilesByUser(ctx, "8d6c9e0e-5be5-4c55-bd3c-6a1f2d1d2a40")
		require.NoError(t, err)
		assert.NotNil(t, files)
		assert.Empty(t, files)

		all, err := repo.ListFilesWithOwners(ctx)
		require.NoError(t, err)
		assert.NotNil(t, all)

		logs, err := repo.ListAuditLogs(ctx, 50)
		require.NoError(t, err)
		assert.NotNil(t, logs)
	})

	t.Run("missing file", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.GetFile(ctx, "8d6c9e0e-5be5-4c55-bd3c-6a1f2d1d2a40")
		assert.ErrorIs(t, err, interfaces.ErrNotFound)

		_, err = repo.GetFile(ctx, "../../etc/passwd")
		assert.ErrorIs(t, err, interfaces.ErrNotFound)
	})
}
