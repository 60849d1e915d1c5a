package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

type sqlDialect struct {
	driver string
	// migration queries
	createBlobsTable string
	// blob queries
	upsertBlob string
	getBlob    string
}

var (
	sqliteDialect = sqlDialect{
		driver: "sqlite3",
		createBlobsTable: `
  CREATE TABLE IF NOT EXISTS blobs (
  blob_key TEXT PRIMARY KEY,
  value BLOB NOT NULL,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
  )`,
		upsertBlob: `
  INSERT INTO blobs (blob_key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
  ON CONFLICT(blob_key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		getBlob: `SELECT value FROM blobs WHERE blob_key = ?`,
	}

	postgresDialect = sqlDialect{
		driver: "pgx",
		createBlobsTable: `
  CREATE TABLE IF NOT EXISTS blobs (
  blob_key TEXT PRIMARY KEY,
  value BYTEA NOT NULL,
  updated_at TIMESTAMPTZ DEFAULT NOW()
  )`,
		upsertBlob: `
  INSERT INTO blobs (blob_key, value, updated_at) VALUES ($1, $2, NOW())
  ON CONFLICT (blob_key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		getBlob: `SELECT value FROM blobs WHERE blob_key = $1`,
	}
)

// SQLBlobStore keeps blobs in a single table of a database/sql database.
type SQLBlobStore struct {
	db      *sql.DB
	dialect sqlDialect
}

// NewSQLiteBlobStore opens (and creates, if needed) the database file at dbPath.
func NewSQLiteBlobStore(ctx context.Context, dbPath string) (*SQLBlobStore, error) {
	// ensure directory exists
	err := os.MkdirAll(filepath.Dir(dbPath), os.ModePerm)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open(sqliteDialect.driver, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	return newSQLBlobStore(ctx, db, sqliteDialect)
}

func NewPostgresBlobStore(ctx context.Context, dsn string, maxOpenConns int) (*SQLBlobStore, error) {
	db, err := sql.Open(postgresDialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns)
	db.SetConnMaxIdleTime(time.Minute)

	return newSQLBlobStore(ctx, db, postgresDialect)
}

func newSQLBlobStore(ctx context.Context, db *sql.DB, dialect sqlDialect) (*SQLBlobStore, error) {
	// verify connection with database
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLBlobStore{db: db, dialect: dialect}

	if err := store.runMigrations(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func (r *SQLBlobStore) Close() error {
	return r.db.Close()
}

// runs migrations on initial start
func (r *SQLBlobStore) runMigrations(ctx context.Context) error {
	tables := []string{
		r.dialect.createBlobsTable,
	}

	for _, tableSQL := range tables {
		if _, err := r.db.ExecContext(ctx, tableSQL); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// +---------------------+
// |                     |
// |    Blob Queries     |
// |                     |
// +---------------------+

func (r *SQLBlobStore) Put(ctx context.Context, key string, blob []byte) error {
	_, err := r.db.ExecContext(ctx, r.dialect.upsertBlob, key, blob)
	if err != nil {
		return fmt.Errorf("error writing blob %q: %w", key, err)
	}
	return nil
}

func (r *SQLBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	var blob []byte
	err := r.db.QueryRowContext(ctx, r.dialect.getBlob, key).Scan(&blob)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("error reading blob %q: %w", key, err)
	}
	return blob, nil
}
