/*
Package sqlite exports finished-batch account snapshots to SQLite.

PURPOSE:
  Writes the final account projection of a payments run to a database
  file so other tooling can query it. This is a write-only report
  artifact: the engine never reads it back to resume processing.

KEY TABLE:
  accounts: one row per client with available/held/total/locked.
  Amounts are stored as TEXT to keep decimal precision exact.

WAL MODE:
  The database is opened with WAL journaling and foreign keys on,
  matching how the rest of our tooling opens SQLite files.

USAGE:
  st, err := sqlite.New("./run.db")
  if err != nil { ... }
  defer st.Close()
  err = st.ExportSnapshots(ctx, snaps)

SEE ALSO:
  - ledger/snapshot.go: The projection being exported
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/payments-engine/ledger"
)

// Store writes account snapshots to a SQLite database.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		client    INTEGER PRIMARY KEY,
		available TEXT NOT NULL,
		held      TEXT NOT NULL,
		total     TEXT NOT NULL,
		locked    INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ExportSnapshots writes all snapshots in one transaction, replacing
// any previous export for the same clients.
func (s *Store) ExportSnapshots(ctx context.Context, snaps []ledger.AccountSnapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO accounts (client, available, held, total, locked)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, snap := range snaps {
		locked := 0
		if snap.Locked {
			locked = 1
		}
		_, err := stmt.ExecContext(ctx,
			int64(snap.ClientID),
			snap.Available.String(),
			snap.Held.String(),
			snap.Total.String(),
			locked,
		)
		if err != nil {
			return fmt.Errorf("failed to export client %d: %w", snap.ClientID, err)
		}
	}

	return tx.Commit()
}

// Snapshots reads the exported accounts back, ordered by client id.
// Used by tests and the report server.
func (s *Store) Snapshots(ctx context.Context) ([]ledger.AccountSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT client, available, held, total, locked
		FROM accounts ORDER BY client`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []ledger.AccountSnapshot
	for rows.Next() {
		var (
			client                 int64
			available, held, total string
			locked                 int
		)
		if err := rows.Scan(&client, &available, &held, &total, &locked); err != nil {
			return nil, err
		}

		snap := ledger.AccountSnapshot{
			ClientID: ledger.ClientID(client),
			Locked:   locked != 0,
		}
		if snap.Available, err = decimal.NewFromString(available); err != nil {
			return nil, fmt.Errorf("client %d: bad available amount: %w", client, err)
		}
		if snap.Held, err = decimal.NewFromString(held); err != nil {
			return nil, fmt.Errorf("client %d: bad held amount: %w", client, err)
		}
		if snap.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("client %d: bad total amount: %w", client, err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}
