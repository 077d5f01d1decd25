// Package journal keeps a local log of writes made from the console. It is informational only,
// a failure to record never affects the write itself.
package journal

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure Go SQLite driver

	"github.com/umputun/newsdesk/pkg/remote"
)

//go:embed schema.sql
var schema string

// Op is a console action
type Op string

const (
	OpUpdateField    Op = "update_field"
	OpDelete         Op = "delete"
	OpClear          Op = "clear"
	OpPublish        Op = "publish"
	OpCreateSchedule Op = "create_schedule"
	OpToggleSchedule Op = "toggle_schedule"
	OpDeleteSchedule Op = "delete_schedule"
	OpRunSchedule    Op = "run_schedule"
	OpGenerate       Op = "generate"
)

// Outcome of an action
type Outcome string

const (
	OutcomeOK     Outcome = "ok"
	OutcomeFailed Outcome = "failed"
)

// Entry is a recorded action
type Entry struct {
	ID        int64     `db:"id" json:"id"`
	Op        Op        `db:"op" json:"op"`
	Target    string    `db:"target" json:"target"`
	Outcome   Outcome   `db:"outcome" json:"outcome"`
	ErrorKind string    `db:"error_kind" json:"error_kind,omitempty"`
	Message   string    `db:"message" json:"message,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Failed reports whether the action failed
func (e Entry) Failed() bool {
	return e.Outcome == OutcomeFailed
}

// EntryFor makes an entry for an action result, err may be nil
func EntryFor(op Op, target string, err error) Entry {
	res := Entry{Op: op, Target: target, Outcome: OutcomeOK}
	if err == nil {
		return res
	}
	res.Outcome = OutcomeFailed
	res.Message = err.Error()
	res.ErrorKind = "local"
	if kind, ok := remote.KindOf(err); ok {
		res.ErrorKind = kind.String()
	}
	var rerr *remote.Error
	if errors.As(err, &rerr) {
		res.Message = rerr.Message()
	}
	return res
}

// Config represents journal database configuration
type Config struct {
	DSN          string
	MaxOpenConns int
	Keep         int // entries kept by Prune, 0 keeps everything
}

// Journal stores entries in sqlite
type Journal struct {
	db   *sqlx.DB
	keep int
}

// New opens the database and makes sure the schema exists
func New(ctx context.Context, cfg Config) (*Journal, error) {
	if cfg.DSN == "" {
		cfg.DSN = "file:newsdesk.db?cache=shared&mode=rwc&_txlock=immediate"
	}

	db, err := sqlx.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	log.Printf("[DEBUG] activity journal opened, keep %d entries", cfg.Keep)
	return &Journal{db: db, keep: cfg.Keep}, nil
}

// Close closes the database connection
func (j *Journal) Close() error {
	return j.db.Close()
}

// Ping verifies the database connection
func (j *Journal) Ping(ctx context.Context) error {
	return j.db.PingContext(ctx)
}

// Record stores an entry, retrying while the database is locked
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))
	return retrier.Do(ctx, func() error {
		_, err := j.db.NamedExecContext(ctx, `
			INSERT INTO activity (op, target, outcome, error_kind, message, created_at)
			VALUES (:op, :target, :outcome, :error_kind, :message, :created_at)`, e)
		if err != nil {
			if isLockError(err) {
				return err // retry
			}
			return &criticalError{err: fmt.Errorf("record %s: %w", e.Op, err)}
		}
		return nil
	}, errCritical)
}

// Recent returns the latest entries, newest first
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	var res []Entry
	err := j.db.SelectContext(ctx, &res, `
		SELECT id, op, target, outcome, error_kind, message, created_at
		FROM activity ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select recent activity: %w", err)
	}
	return res, nil
}

// Prune removes everything but the newest keep entries, returns number of removed entries.
// keep <= 0 uses the configured value, nothing is removed if that is 0 as well.
func (j *Journal) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		keep = j.keep
	}
	if keep <= 0 {
		return 0, nil
	}
	res, err := j.db.ExecContext(ctx, `
		DELETE FROM activity WHERE id NOT IN (
			SELECT id FROM activity ORDER BY created_at DESC, id DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune activity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get pruned count: %w", err)
	}
	return n, nil
}

// errCritical stops the retrier, any criticalError matches it
var errCritical = errors.New("critical database error")

// criticalError wraps an error that is not worth retrying
type criticalError struct {
	err error
}

func (e *criticalError) Error() string {
	return e.err.Error()
}

func (e *criticalError) Unwrap() error {
	return e.err
}

func (e *criticalError) Is(target error) bool {
	return target == errCritical
}

// isLockError checks if an error is a SQLite lock/busy error
func isLockError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "SQLITE_BUSY") ||
		strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "database table is locked")
}
