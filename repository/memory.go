// Package repository provides the persistence layer: an in-memory store for
// development and tests, and a PostgreSQL store for deployments.
package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ruteri/web3-dashboard-backend/interfaces"
)

// Memory is a mutex-guarded in-memory implementation of interfaces.Repository.
type Memory struct {
	mu sync.Mutex

	users         map[string]*interfaces.User // by id
	usersByWallet map[string]string           // wallet key -> user id
	files         map[string]*interfaces.File
	audit         []interfaces.AuditLog

	now  func() time.Time
	last time.Time
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{
		users:         make(map[string]*interfaces.User),
		usersByWallet: make(map[string]string),
		files:         make(map[string]*interfaces.File),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func copyUser(u *interfaces.User) *interfaces.User {
	c := *u
	if u.Nonce != nil {
		nonce := *u.Nonce
		c.Nonce = &nonce
	}
	return &c
}

func (m *Memory) GetUser(ctx context.Context, id string) (*interfaces.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return copyUser(u), nil
}

func (m *Memory) GetUserByWallet(ctx context.Context, addr interfaces.WalletAddress) (*interfaces.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.usersByWallet[addr.Key()]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return copyUser(m.users[id]), nil
}

// tick returns a strictly increasing timestamp so that records created in
// the same clock tick still list in creation order. Must be called with mu held.
func (m *Memory) tick() time.Time {
	now := m.now()
	if !now.After(m.last) {
		now = m.last.Add(time.Microsecond)
	}
	m.last = now
	return now
}

// getOrCreateUser must be called with mu held.
func (m *Memory) getOrCreateUser(addr interfaces.WalletAddress) *interfaces.User {
	if id, ok := m.usersByWallet[addr.Key()]; ok {
		return m.users[id]
	}

	u := &interfaces.User{
		ID:            uuid.NewString(),
		WalletAddress: addr,
		CreatedAt:     m.now(),
	}
	m.users[u.ID] = u
	m.usersByWallet[addr.Key()] = u.ID
	return u
}

func (m *Memory) UpsertNonce(ctx context.Context, addr interfaces.WalletAddress, nonce string) (*interfaces.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.getOrCreateUser(addr)
	u.Nonce = &nonce
	return copyUser(u), nil
}

func (m *Memory) ConsumeNonce(ctx context.Context, userID string, nonce string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok || !u.HasPendingNonce(nonce) {
		return false, nil
	}
	u.Nonce = nil
	return true, nil
}

func (m *Memory) EnsureAdmin(ctx context.Context, addr interfaces.WalletAddress) (*interfaces.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.getOrCreateUser(addr)
	u.IsAdmin = true
	return copyUser(u), nil
}

func (m *Memory) GetFile(ctx context.Context, id string) (*interfaces.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.files[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	c := *f
	return &c, nil
}

// sortNewestFirst orders by upload time descending, breaking ties by id so
// listings are stable.
func sortNewestFirst(files []interfaces.File) {
	sort.Slice(files, func(i, j int) bool {
		if files[i].UploadedAt.Equal(files[j].UploadedAt) {
			return files[i].ID > files[j].ID
		}
		return files[i].UploadedAt.After(files[j].UploadedAt)
	})
}

func (m *Memory) ListFilesByUser(ctx context.Context, userID string) ([]interfaces.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := []interfaces.File{}
	for _, f := range m.files {
		if f.UserID == userID {
			res = append(res, *f)
		}
	}
	sortNewestFirst(res)
	return res, nil
}

func (m *Memory) ListFilesWithOwners(ctx context.Context) ([]interfaces.FileWithOwner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	files := make([]interfaces.File, 0, len(m.files))
	for _, f := range m.files {
		files = append(files, *f)
	}
	sortNewestFirst(files)

	res := make([]interfaces.FileWithOwner, 0, len(files))
	for _, f := range files {
		owner := interfaces.UnknownOwner
		if u, ok := m.users[f.UserID]; ok {
			owner = u.WalletAddress.String()
		}
		res = append(res, interfaces.FileWithOwner{File: f, WalletAddress: owner})
	}
	return res, nil
}

func (m *Memory) CreateFile(ctx context.Context, file interfaces.File, audit interfaces.AuditLog) (*interfaces.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.tick()
	file.ID = uuid.NewString()
	file.UploadedAt = now
	m.files[file.ID] = &file

	fileID := file.ID
	audit.FileID = &fileID
	m.appendAudit(audit, now)

	c := file
	return &c, nil
}

func (m *Memory) DeleteFile(ctx context.Context, id string, audit interfaces.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[id]; !ok {
		return interfaces.ErrNotFound
	}
	delete(m.files, id)
	m.appendAudit(audit, m.tick())
	return nil
}

// appendAudit must be called with mu held.
func (m *Memory) appendAudit(audit interfaces.AuditLog, now time.Time) {
	audit.ID = uuid.NewString()
	audit.Timestamp = now
	m.audit = append(m.audit, audit)
}

func (m *Memory) ListAuditLogs(ctx context.Context, limit int) ([]interfaces.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit <= 0 || limit > len(m.audit) {
		limit = len(m.audit)
	}

	// Records are appended in time order, so newest first is a reverse walk.
	res := make([]interfaces.AuditLog, 0, limit)
	for i := len(m.audit) - 1; i >= 0 && len(res) < limit; i-- {
		res = append(res, m.audit[i])
	}
	return res, nil
}

func (m *Memory) Close() error {
	return nil
}

var _ interfaces.Repository = (*Memory)(nil)
