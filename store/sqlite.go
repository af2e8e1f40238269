package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gagliardetto/solana-go"
	_ "modernc.org/sqlite"

	"github.com/blockberries/vault/types"
)

// Compile-time interface check.
var _ AccountStore = (*SQLite)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
  key BLOB PRIMARY KEY,
  owner BLOB NOT NULL,
  data BLOB NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT (STRFTIME('%Y-%m-%d %H:%M:%f','now'))
);
CREATE INDEX IF NOT EXISTS accounts_owner ON accounts(owner);`

// SQLite is an AccountStore backed by an embedded SQLite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and
// ensures the schema exists.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		return nil, ErrStore.Wrap("sqlite path is empty")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, ErrStore.Wrapf("open %s: %v", path, err)
	}
	// SQLite is single-writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, ErrStore.Wrapf("enable WAL: %v", err)
	}
	_, _ = db.ExecContext(ctx, "PRAGMA synchronous=NORMAL;")
	_, _ = db.ExecContext(ctx, "PRAGMA busy_timeout=5000;")

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, ErrStore.Wrapf("schema: %v", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(ctx context.Context, key solana.PublicKey) (types.AccountInfo, error) {
	var owner, data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT owner, data FROM accounts WHERE key = ?`, key.Bytes(),
	).Scan(&owner, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return types.AccountInfo{}, ErrAccountNotFound.Wrapf("%s", key)
	}
	if err != nil {
		return types.AccountInfo{}, ErrStore.Wrapf("get %s: %v", key, err)
	}
	return types.AccountInfo{
		Key:   key,
		Owner: solana.PublicKeyFromBytes(owner),
		Data:  data,
	}, nil
}

func (s *SQLite) Put(ctx context.Context, account types.AccountInfo) error {
	data := account.Data
	if data == nil {
		data = []byte{}
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO accounts (key, owner, data) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
  owner = excluded.owner,
  data = excluded.data,
  updated_at = (STRFTIME('%Y-%m-%d %H:%M:%f','now'))`,
		account.Key.Bytes(), account.Owner.Bytes(), data,
	)
	if err != nil {
		return ErrStore.Wrapf("put %s: %v", account.Key, err)
	}
	return nil
}

func (s *SQLite) CountOwned(ctx context.Context, owner solana.PublicKey) (uint64, error) {
	var n uint64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts WHERE owner = ?`, owner.Bytes(),
	).Scan(&n)
	if err != nil {
		return 0, ErrStore.Wrapf("count %s: %v", owner, err)
	}
	return n, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
