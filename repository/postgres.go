package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/ruteri/web3-dashboard-backend/interfaces"
	"github.com/ruteri/web3-dashboard-backend/repository/migrations"
)

// dbtx is the subset of database/sql shared by *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Postgres implements interfaces.Repository on top of PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres connects to dsn and applies the embedded migrations.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	return NewPostgresFromDB(db), nil
}

// NewPostgresFromDB wraps an already opened and migrated database handle.
func NewPostgresFromDB(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// RunMigrations applies all pending schema migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}

// withTx runs fn in a transaction, committing on success and rolling back
// on error or panic.
func (p *Postgres) withTx(ctx context.Context, fn func(ctx context.Context, tx dbtx) error) (err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db begin error: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(ctx, tx)
}

const userColumns = `id, wallet_address, nonce, is_admin, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*interfaces.User, error) {
	var (
		user   interfaces.User
		wallet string
		nonce  sql.NullString
	)

	if err := row.Scan(&user.ID, &wallet, &nonce, &user.IsAdmin, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	addr, err := interfaces.NewWalletAddressFromHex(wallet)
	if err != nil {
		return nil, fmt.Errorf("stored wallet address %q is malformed: %w", wallet, err)
	}
	user.WalletAddress = addr

	if nonce.Valid {
		user.Nonce = &nonce.String
	}

	return &user, nil
}

func (p *Postgres) GetUser(ctx context.Context, id string) (*interfaces.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, interfaces.ErrNotFound
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(p.db.QueryRowContext(ctx, query, id))
}

func (p *Postgres) GetUserByWallet(ctx context.Context, addr interfaces.WalletAddress) (*interfaces.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(wallet_address) = $1`
	return scanUser(p.db.QueryRowContext(ctx, query, addr.Key()))
}

func (p *Postgres) UpsertNonce(ctx context.Context, addr interfaces.WalletAddress, nonce string) (*interfaces.User, error) {
	query :=
		`INSERT INTO users (id, wallet_address, nonce)
		 VALUES ($1, $2, $3)
		 ON CONFLICT ((lower(wallet_address))) DO UPDATE SET nonce = EXCLUDED.nonce
		 RETURNING ` + userColumns

	return scanUser(p.db.QueryRowContext(ctx, query, uuid.NewString(), addr.String(), nonce))
}

func (p *Postgres) ConsumeNonce(ctx context.Context, userID string, nonce string) (bool, error) {
	res, err := p.db.ExecContext(ctx,
		`UPDATE users SET nonce = NULL WHERE id = $1 AND nonce = $2`, userID, nonce)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return n == 1, nil
}

func (p *Postgres) EnsureAdmin(ctx context.Context, addr interfaces.WalletAddress) (*interfaces.User, error) {
	query :=
		`INSERT INTO users (id, wallet_address, is_admin)
		 VALUES ($1, $2, TRUE)
		 ON CONFLICT ((lower(wallet_address))) DO UPDATE SET is_admin = TRUE
		 RETURNING ` + userColumns

	return scanUser(p.db.QueryRowContext(ctx, query, uuid.NewString(), addr.String()))
}

const fileColumns = `id, user_id, cid, filename, file_size, file_type, uploaded_at`

func scanFile(row rowScanner, f *interfaces.File, extra ...any) error {
	dest := append([]any{&f.ID, &f.UserID, &f.CID, &f.Filename, &f.FileSize, &f.FileType, &f.UploadedAt}, extra...)
	return row.Scan(dest...)
}

func (p *Postgres) GetFile(ctx context.Context, id string) (*interfaces.File, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, interfaces.ErrNotFound
	}

	var f interfaces.File
	err := scanFile(p.db.QueryRowContext(ctx, `SELECT `+fileColumns+` FROM files WHERE id = $1`, id), &f)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &f, nil
}

func (p *Postgres) ListFilesByUser(ctx context.Context, userID string) ([]interfaces.File, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+fileColumns+` FROM files WHERE user_id = $1 ORDER BY uploaded_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	res := []interfaces.File{}
	for rows.Next() {
		var f interfaces.File
		if err := scanFile(rows, &f); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		res = append(res, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return res, nil
}

func (p *Postgres) ListFilesWithOwners(ctx context.Context) ([]interfaces.FileWithOwner, error) {
	query :=
		`SELECT f.id, f.user_id, f.cid, f.filename, f.file_size, f.file_type, f.uploaded_at,
		        COALESCE(u.wallet_address, $1)
		 FROM files f LEFT JOIN users u ON u.id = f.user_id
		 ORDER BY f.uploaded_at DESC, f.id DESC`

	rows, err := p.db.QueryContext(ctx, query, interfaces.UnknownOwner)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	res := []interfaces.FileWithOwner{}
	for rows.Next() {
		var f interfaces.FileWithOwner
		if err := scanFile(rows, &f.File, &f.WalletAddress); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		res = append(res, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return res, nil
}

func insertAudit(ctx context.Context, tx dbtx, audit interfaces.AuditLog) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO audit_logs (id, user_id, action, file_id, metadata) VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(), audit.UserID, string(audit.Action), audit.FileID, audit.Metadata)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (p *Postgres) CreateFile(ctx context.Context, file interfaces.File, audit interfaces.AuditLog) (*interfaces.File, error) {
	file.ID = uuid.NewString()

	err := p.withTx(ctx, func(ctx context.Context, tx dbtx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO files (id, user_id, cid, filename, file_size, file_type)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING uploaded_at`,
			file.ID, file.UserID, file.CID, file.Filename, file.FileSize, file.FileType).Scan(&file.UploadedAt)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		fileID := file.ID
		audit.FileID = &fileID
		return insertAudit(ctx, tx, audit)
	})
	if err != nil {
		return nil, err
	}

	return &file, nil
}

func (p *Postgres) DeleteFile(ctx context.Context, id string, audit interfaces.AuditLog) error {
	if _, err := uuid.Parse(id); err != nil {
		return interfaces.ErrNotFound
	}

	return p.withTx(ctx, func(ctx context.Context, tx dbtx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if n == 0 {
			return interfaces.ErrNotFound
		}

		return insertAudit(ctx, tx, audit)
	})
}

func (p *Postgres) ListAuditLogs(ctx context.Context, limit int) ([]interfaces.AuditLog, error) {
	if limit <= 0 {
		limit = math.MaxInt32
	}

	rows, err := p.db.QueryContext(ctx,
		`SELECT id, user_id, action, file_id, timestamp, metadata
		 FROM audit_logs ORDER BY timestamp DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	res := []interfaces.AuditLog{}
	for rows.Next() {
		var (
			a        interfaces.AuditLog
			action   string
			fileID   sql.NullString
			metadata sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.UserID, &action, &fileID, &a.Timestamp, &metadata); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		a.Action = interfaces.AuditAction(action)
		if fileID.Valid {
			a.FileID = &fileID.String
		}
		if metadata.Valid {
			a.Metadata = &metadata.String
		}
		res = append(res, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return res, nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

var _ interfaces.Repository = (*Postgres)(nil)
