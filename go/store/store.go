// Package store persists the selection domain in SQLite. All writes run
// inside a database transaction which also carries the audit record of
// the mutation, so an observer can never see a mutation without its
// audit event.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	sqlite3 "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"

	"github.com/kjohn5218/route-selection-sub000/go/selection"
)

// catalogCacheSize bounds the cached period route catalogs. Periods are
// few; the bound exists to keep deleted periods from pinning memory.
const catalogCacheSize = 128

// Store is a SQLite-backed store for the selection domain.
type Store struct {
	db *sql.DB

	// catalogs caches period route catalogs for read-only paths.
	// Transactional paths always re-read the catalog inside their
	// transaction.
	catalogs *lru.Cache[string, []string]

	confirmSeq atomic.Uint64
}

// Open opens (creating if needed) the SQLite database at path and
// bootstraps the schema.
func Open(path string) (*Store, error) {
	var db, err = sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening SQLite database %q: %w", path, err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging SQLite database %q: %w", path, err)
	}
	if _, err = db.Exec(schema); err != nil {
		return nil, fmt.Errorf("bootstrapping schema: %w", err)
	}

	catalogs, err := lru.New[string, []string](catalogCacheSize)
	if err != nil {
		return nil, fmt.Errorf("building catalog cache: %w", err)
	}

	log.WithField("path", path).Info("opened selection database")

	return &Store{db: db, catalogs: catalogs}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// withTx runs fn inside a transaction, retrying once on a transient
// SQLite busy/locked error before surfacing it.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = s.runTx(ctx, fn)
		if err == nil || attempt > 0 || !transient(err) {
			return err
		}
		log.WithField("err", err).Warn("retrying transaction after transient storage error")
	}
}

func (s *Store) runTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	var tx, err = s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// transient reports whether err is a SQLite busy/locked condition worth
// a single transparent retry.
func transient(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	return false
}

// nextConfirmation issues an opaque, monotonic confirmation token. The
// UTC time prefix keeps tokens globally unique across processes; the
// counter keeps them unique and ordered within one.
func (s *Store) nextConfirmation(now time.Time) string {
	return fmt.Sprintf("C%s-%06d",
		now.UTC().Format("20060102T150405"), s.confirmSeq.Add(1))
}

// appendAudit inserts one audit event within the caller's transaction.
func appendAudit(ctx context.Context, q querier, ev selection.AuditEvent) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	var _, err = q.ExecContext(ctx,
		`INSERT INTO audit_events (ts, user_id, action, resource, details)
		 VALUES (?, ?, ?, ?, ?)`,
		ev.Timestamp, ev.UserID, string(ev.Action), ev.Resource, ev.Details)
	if err != nil {
		return fmt.Errorf("appending audit event: %w", err)
	}
	return nil
}

// AppendAudit records one audit event outside any business transaction.
// It serves callers whose mutation failed (surfaced errors) and the
// notification dispatcher's per-attempt records.
func (s *Store) AppendAudit(ctx context.Context, ev selection.AuditEvent) error {
	return appendAudit(ctx, s.db, ev)
}

// AuditQuery filters an audit scan.
type AuditQuery struct {
	UserID string // Empty matches all users.
	Limit  int    // Zero means no limit.
}

// AuditEvents returns audit events most recent first, optionally
// filtered by initiating user.
func (s *Store) AuditEvents(ctx context.Context, query AuditQuery) ([]selection.AuditEvent, error) {
	var sqlText = `SELECT id, ts, user_id, action, resource, details FROM audit_events`
	var args []interface{}
	if query.UserID != "" {
		sqlText += ` WHERE user_id = ?`
		args = append(args, query.UserID)
	}
	sqlText += ` ORDER BY id DESC`
	if query.Limit > 0 {
		sqlText += ` LIMIT ?`
		args = append(args, query.Limit)
	}

	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit events: %w", err)
	}
	defer rows.Close()

	var out []selection.AuditEvent
	for rows.Next() {
		var ev selection.AuditEvent
		var action string
		if err = rows.Scan(&ev.ID, &ev.Timestamp, &ev.UserID, &action, &ev.Resource, &ev.Details); err != nil {
			return nil, fmt.Errorf("scanning audit event: %w", err)
		}
		ev.Action = selection.AuditAction(action)
		out = append(out, ev)
	}
	return out, rows.Err()
}
