/*
Package sqlite is the owning application's store for travel records and
settings.

PURPOSE:
  The absence engine itself is pure and stateless: it computes over an
  immutable snapshot passed in by the caller. This package is that caller's
  canonical state. Handlers load a consistent snapshot here, run the engine,
  and return records; the engine never reads or writes storage directly.

KEY TABLES:
  trips:    travel log and planned trips in one table, split by the
            planned flag
  settings: single-row profile (name, visa type, qualifying years,
            residence start date)

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers do not block
  the writer and crash recovery is cheap.

CONCURRENCY:
  A sync.RWMutex serializes writers. Reads take the shared lock, which also
  guarantees handlers see a consistent snapshot rather than a half-applied
  import.

USAGE:
  store, err := sqlite.New("./data/residence.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - absence/types.go: the Trip record persisted here
  - api/handlers.go: snapshot load and engine invocation
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/compass/residence-engine/absence"
)

// Sentinel errors. Use with errors.Is().
var (
	// ErrTripNotFound is returned when a referenced trip does not exist.
	ErrTripNotFound = errors.New("trip not found")

	// ErrNotPlanned is returned when promoting a trip that is not a
	// planned trip.
	ErrNotPlanned = errors.New("trip is not a planned trip")
)

// Settings is the single-row profile record.
type Settings struct {
	Name            string
	VisaType        string
	QualifyingYears int
	ResidenceStart  *absence.Day
}

// DefaultSettings are used until the user saves a profile.
func DefaultSettings() Settings {
	return Settings{Name: "Traveller", VisaType: "skilled", QualifyingYears: 5}
}

// Store persists trips and settings using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a store at the given database path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS trips (
		id TEXT PRIMARY KEY,
		exit_date TEXT NOT NULL,
		return_date TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		planned INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	);
	CREATE INDEX IF NOT EXISTS idx_trips_planned_exit ON trips(planned, exit_date);

	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		name TEXT NOT NULL,
		visa_type TEXT NOT NULL,
		qualifying_years INTEGER NOT NULL,
		residence_start TEXT
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRIPS
// =============================================================================

// ListTrips returns the travel log (planned=false) or the planned trips
// (planned=true), ordered by exit date.
func (s *Store) ListTrips(ctx context.Context, planned bool) ([]absence.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, exit_date, return_date, note FROM trips WHERE planned = ? ORDER BY exit_date, id`,
		boolToInt(planned))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []absence.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// GetTrip returns a trip by ID along with whether it is a planned trip.
func (s *Store) GetTrip(ctx context.Context, id string) (absence.Trip, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, exit_date, return_date, note, planned FROM trips WHERE id = ?`, id)

	var (
		trip               absence.Trip
		exitRaw, returnRaw string
		planned            int
	)
	err := row.Scan(&trip.ID, &exitRaw, &returnRaw, &trip.Note, &planned)
	if errors.Is(err, sql.ErrNoRows) {
		return absence.Trip{}, false, ErrTripNotFound
	}
	if err != nil {
		return absence.Trip{}, false, err
	}
	if trip.Exit, err = absence.ParseDay(exitRaw); err != nil {
		return absence.Trip{}, false, err
	}
	if trip.Return, err = absence.ParseDay(returnRaw); err != nil {
		return absence.Trip{}, false, err
	}
	return trip, planned == 1, nil
}

// AddTrip inserts a trip into the travel log or the planned list.
func (s *Store) AddTrip(ctx context.Context, t absence.Trip, planned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trips (id, exit_date, return_date, note, planned) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Exit.String(), t.Return.String(), t.Note, boolToInt(planned))
	return err
}

// UpdateTrip rewrites the dates and note of an existing trip.
func (s *Store) UpdateTrip(ctx context.Context, t absence.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE trips SET exit_date = ?, return_date = ?, note = ? WHERE id = ?`,
		t.Exit.String(), t.Return.String(), t.Note, t.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTripNotFound
	}
	return nil
}

// DeleteTrip removes a trip by ID.
func (s *Store) DeleteTrip(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM trips WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTripNotFound
	}
	return nil
}

// Promote atomically removes a planned trip and records the actual travel
// in the log. Nothing changes if the planned trip does not exist.
func (s *Store) Promote(ctx context.Context, plannedID string, actual absence.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var planned int
	err = tx.QueryRowContext(ctx, `SELECT planned FROM trips WHERE id = ?`, plannedID).Scan(&planned)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTripNotFound
	}
	if err != nil {
		return err
	}
	if planned != 1 {
		return ErrNotPlanned
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM trips WHERE id = ?`, plannedID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO trips (id, exit_date, return_date, note, planned) VALUES (?, ?, ?, ?, 0)`,
		actual.ID, actual.Exit.String(), actual.Return.String(), actual.Note); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceAll atomically swaps the entire trip store for the given past and
// future sets. Used by imports in replace mode.
func (s *Store) ReplaceAll(ctx context.Context, past, future []absence.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM trips`); err != nil {
		return err
	}
	for _, t := range past {
		if err := insertTrip(ctx, tx, t, false); err != nil {
			return err
		}
	}
	for _, t := range future {
		if err := insertTrip(ctx, tx, t, true); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// AddAll inserts a batch of trips. Used by imports in merge mode, after the
// handler has filtered out duplicates.
func (s *Store) AddAll(ctx context.Context, past, future []absence.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, t := range past {
		if err := insertTrip(ctx, tx, t, false); err != nil {
			return err
		}
	}
	for _, t := range future {
		if err := insertTrip(ctx, tx, t, true); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertTrip(ctx context.Context, tx *sql.Tx, t absence.Trip, planned bool) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO trips (id, exit_date, return_date, note, planned) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Exit.String(), t.Return.String(), t.Note, boolToInt(planned))
	return err
}

// =============================================================================
// SETTINGS
// =============================================================================

// Settings returns the stored profile, or defaults if none has been saved.
func (s *Store) Settings(ctx context.Context) (Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT name, visa_type, qualifying_years, residence_start FROM settings WHERE id = 1`)

	var (
		settings Settings
		startRaw sql.NullString
	)
	err := row.Scan(&settings.Name, &settings.VisaType, &settings.QualifyingYears, &startRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, err
	}
	if startRaw.Valid && startRaw.String != "" {
		d, err := absence.ParseDay(startRaw.String)
		if err != nil {
			return Settings{}, err
		}
		settings.ResidenceStart = &d
	}
	return settings, nil
}

// SaveSettings upserts the single settings row.
func (s *Store) SaveSettings(ctx context.Context, settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var startRaw interface{}
	if settings.ResidenceStart != nil {
		startRaw = settings.ResidenceStart.String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (id, name, visa_type, qualifying_years, residence_start)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			visa_type = excluded.visa_type,
			qualifying_years = excluded.qualifying_years,
			residence_start = excluded.residence_start`,
		settings.Name, settings.VisaType, settings.QualifyingYears, startRaw)
	return err
}

// Reset clears all trips and settings. Used by demo scenario loading.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM trips`); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM settings`)
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrip(row rowScanner) (absence.Trip, error) {
	var (
		t                  absence.Trip
		exitRaw, returnRaw string
	)
	if err := row.Scan(&t.ID, &exitRaw, &returnRaw, &t.Note); err != nil {
		return absence.Trip{}, err
	}
	var err error
	if t.Exit, err = absence.ParseDay(exitRaw); err != nil {
		return absence.Trip{}, err
	}
	if t.Return, err = absence.ParseDay(returnRaw); err != nil {
		return absence.Trip{}, err
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
