/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements stay.BookingStore and shift.Store using SQLite. In production
  the same patterns apply to PostgreSQL - only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  stay.BookingStore: Rooms and reservations
  shift.Store:       Weekly staff assignments + week versions

KEY TABLES:
  resources:          Rooms (render order = position)
  bookings:           One row per (reservation, room); group_id ties the
                      rows of a multi-room stay together
  shift_assignments:  At most one row per (staff_id, date)
  shift_weeks:        Optimistic-concurrency version per week

DATES AND MONEY:
  Dates are stored as TEXT "YYYY-MM-DD" so range predicates compare
  lexically. Money is an INTEGER of minor units plus a currency column.

ATOMIC MULTI-ROOM BOOKINGS:
  CreateBookings writes every row of a multi-room allocation inside one
  SQL transaction. Either all rooms are booked or none are.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

USAGE:
  store, err := sqlite.New("./data/stay.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - stay/types.go: BookingStore interface
  - shift/publish.go: Store interface
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/stay-engine/generic"
	"github.com/warp/stay-engine/shift"
	"github.com/warp/stay-engine/stay"
)

const dateLayout = "2006-01-02"

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ stay.BookingStore = (*Store)(nil)
	_ shift.Store       = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
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

// PingContext checks the connection. Used by /healthz.
func (s *Store) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS resources (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL,
		floor INTEGER DEFAULT 0,
		kind TEXT,
		position INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS bookings (
		id TEXT PRIMARY KEY,
		resource_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		state TEXT NOT NULL,
		payment_status TEXT NOT NULL,
		kind TEXT NOT NULL,
		total_minor INTEGER NOT NULL,
		deposit_minor INTEGER NOT NULL,
		currency TEXT,
		guest_name TEXT,
		group_id TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		CHECK (end_date > start_date)
	);

	-- Overlap queries: start < :to AND end > :from
	CREATE INDEX IF NOT EXISTS idx_bookings_dates
		ON bookings(start_date, end_date);
	CREATE INDEX IF NOT EXISTS idx_bookings_resource
		ON bookings(resource_id);
	CREATE INDEX IF NOT EXISTS idx_bookings_group
		ON bookings(group_id) WHERE group_id IS NOT NULL;

	CREATE TABLE IF NOT EXISTS shift_assignments (
		id TEXT PRIMARY KEY,
		staff_id TEXT NOT NULL,
		date TEXT NOT NULL,
		shift_type TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- One shift per staff member per day
	CREATE UNIQUE INDEX IF NOT EXISTS idx_shift_cell
		ON shift_assignments(staff_id, date);

	CREATE TABLE IF NOT EXISTS shift_weeks (
		week_start TEXT PRIMARY KEY,
		version INTEGER NOT NULL DEFAULT 0,
		published_at TEXT
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RESOURCES
// =============================================================================

// SaveResource inserts or updates a room, keeping its render position.
func (s *Store) SaveResource(ctx context.Context, r stay.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO resources (id, label, floor, kind, position, created_at)
		VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM resources), ?)
		ON CONFLICT(id) DO UPDATE SET
			label = excluded.label,
			floor = excluded.floor,
			kind = excluded.kind
	`
	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.Label, r.Floor, nullString(r.Kind),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save resource: %w", err)
	}
	return nil
}

// ListResources returns rooms in render order.
func (s *Store) ListResources(ctx context.Context) ([]stay.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, label, floor, kind FROM resources ORDER BY position",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query resources: %w", err)
	}
	defer rows.Close()

	var resources []stay.Resource
	for rows.Next() {
		var r stay.Resource
		var kind sql.NullString
		if err := rows.Scan(&r.ID, &r.Label, &r.Floor, &kind); err != nil {
			return nil, err
		}
		r.Kind = kind.String
		resources = append(resources, r)
	}
	return resources, rows.Err()
}

// =============================================================================
// BOOKINGS
// =============================================================================

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CreateBookings inserts all bookings in one transaction.
func (s *Store) CreateBookings(ctx context.Context, bookings []stay.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for _, b := range bookings {
		if err := b.Interval.Validate(); err != nil {
			return fmt.Errorf("booking %s: %w", b.ID, err)
		}
		if err := s.insertBooking(ctx, sqlTx, b); err != nil {
			return err
		}
	}

	return sqlTx.Commit()
}

func (s *Store) insertBooking(ctx context.Context, db execer, b stay.Booking) error {
	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		INSERT INTO bookings
		(id, resource_id, start_date, end_date, state, payment_status, kind,
		 total_minor, deposit_minor, currency, guest_name, group_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.ExecContext(ctx, query,
		b.ID, b.ResourceID,
		b.Interval.Start.String(), b.Interval.End.String(),
		b.State, b.PaymentStatus, b.Kind,
		b.TotalAmount.Minor, b.DepositPaid.Minor, nullString(b.TotalAmount.Currency),
		nullString(b.GuestName), nullString(b.GroupID),
		now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking %s: %w", b.ID, err)
	}
	return nil
}

// GetBooking retrieves a booking by ID.
func (s *Store) GetBooking(ctx context.Context, id generic.BookingID) (*stay.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bookings, err := s.queryBookings(ctx, bookingColumns+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, fmt.Errorf("booking %s: %w", id, generic.ErrNotFound)
	}
	return &bookings[0], nil
}

// UpdateBooking rewrites the mutable columns of a booking.
func (s *Store) UpdateBooking(ctx context.Context, b stay.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE bookings SET
			resource_id = ?, start_date = ?, end_date = ?, state = ?, payment_status = ?,
			total_minor = ?, deposit_minor = ?, guest_name = ?, updated_at = ?
		WHERE id = ?`,
		b.ResourceID, b.Interval.Start.String(), b.Interval.End.String(), b.State, b.PaymentStatus,
		b.TotalAmount.Minor, b.DepositPaid.Minor, nullString(b.GuestName),
		time.Now().UTC().Format(time.RFC3339), b.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking %s: %w", b.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("booking %s: %w", b.ID, generic.ErrNotFound)
	}
	return nil
}

// ListBookings returns bookings overlapping the window, cancelled included.
func (s *Store) ListBookings(ctx context.Context, window generic.StayInterval) ([]stay.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryBookings(ctx,
		bookingColumns+" WHERE start_date < ? AND end_date > ? ORDER BY start_date, created_at, id",
		window.End.String(), window.Start.String(),
	)
}

// ListGroup returns the bookings created from one multi-room allocation.
func (s *Store) ListGroup(ctx context.Context, groupID string) ([]stay.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryBookings(ctx, bookingColumns+" WHERE group_id = ? ORDER BY created_at, id", groupID)
}

const bookingColumns = `
	SELECT id, resource_id, start_date, end_date, state, payment_status, kind,
	       total_minor, deposit_minor, currency, guest_name, group_id
	FROM bookings`

func (s *Store) queryBookings(ctx context.Context, query string, args ...any) ([]stay.Booking, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []stay.Booking
	for rows.Next() {
		var (
			b                  stay.Booking
			start, end         string
			currency           sql.NullString
			guestName, groupID sql.NullString
		)
		err := rows.Scan(
			&b.ID, &b.ResourceID, &start, &end, &b.State, &b.PaymentStatus, &b.Kind,
			&b.TotalAmount.Minor, &b.DepositPaid.Minor, &currency, &guestName, &groupID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		if b.Interval.Start, err = generic.ParseDate(start); err != nil {
			return nil, fmt.Errorf("booking %s start: %w", b.ID, err)
		}
		if b.Interval.End, err = generic.ParseDate(end); err != nil {
			return nil, fmt.Errorf("booking %s end: %w", b.ID, err)
		}
		b.TotalAmount.Currency = currency.String
		b.DepositPaid.Currency = currency.String
		b.GuestName = guestName.String
		b.GroupID = groupID.String
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// =============================================================================
// SHIFT STORE (shift.Store interface)
// =============================================================================

// LoadWeek returns the week's assignments and version.
func (s *Store) LoadWeek(ctx context.Context, week generic.Week) ([]shift.Assignment, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	iv := week.Interval()
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, staff_id, date, shift_type, start_time, end_time
		FROM shift_assignments
		WHERE date >= ? AND date < ?
		ORDER BY date, staff_id`,
		iv.Start.String(), iv.End.String(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var assignments []shift.Assignment
	for rows.Next() {
		var a shift.Assignment
		var date string
		if err := rows.Scan(&a.ID, &a.StaffID, &date, &a.Type, &a.StartTime, &a.EndTime); err != nil {
			return nil, 0, fmt.Errorf("failed to scan shift: %w", err)
		}
		if a.Date, err = generic.ParseDate(date); err != nil {
			return nil, 0, err
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var version int64
	err = s.db.QueryRowContext(ctx,
		"SELECT version FROM shift_weeks WHERE week_start = ?", week.Start.String(),
	).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, 0, err
	}
	return assignments, version, nil
}

// ClaimWeekVersion is a compare-and-swap on shift_weeks.version.
func (s *Store) ClaimWeekVersion(ctx context.Context, week generic.Week, expected int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO shift_weeks (week_start, version) VALUES (?, 0) ON CONFLICT(week_start) DO NOTHING",
		week.Start.String(),
	)
	if err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE shift_weeks SET version = version + 1, published_at = ? WHERE week_start = ? AND version = ?",
		now, week.Start.String(), expected,
	)
	if err != nil {
		return 0, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, fmt.Errorf("%s: expected version %d: %w", week, expected, generic.ErrConcurrentModification)
	}
	return expected + 1, nil
}

// DeleteAssignment removes one assignment.
func (s *Store) DeleteAssignment(ctx context.Context, id generic.AssignmentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM shift_assignments WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("assignment %s: %w", id, generic.ErrNotFound)
	}
	return nil
}

// UpsertAssignment updates by ID or inserts with a fresh ID.
func (s *Store) UpsertAssignment(ctx context.Context, a shift.Assignment) (shift.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	if a.ID == "" {
		a.ID = generic.AssignmentID(uuid.NewString())
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO shift_assignments (id, staff_id, date, shift_type, start_time, end_time, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.StaffID, a.Date.String(), a.Type, a.StartTime, a.EndTime, now,
		)
		if isUniqueConstraintError(err) {
			return shift.Assignment{}, fmt.Errorf("%s on %s: %w", a.StaffID, a.Date, generic.ErrDuplicateShift)
		}
		if err != nil {
			return shift.Assignment{}, fmt.Errorf("failed to insert shift: %w", err)
		}
		return a, nil
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE shift_assignments
		SET staff_id = ?, date = ?, shift_type = ?, start_time = ?, end_time = ?, updated_at = ?
		WHERE id = ?`,
		a.StaffID, a.Date.String(), a.Type, a.StartTime, a.EndTime, now, a.ID,
	)
	if err != nil {
		return shift.Assignment{}, fmt.Errorf("failed to update shift: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return shift.Assignment{}, fmt.Errorf("assignment %s: %w", a.ID, generic.ErrNotFound)
	}
	return a, nil
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset clears all data (dev only).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"bookings", "resources", "shift_assignments", "shift_weeks"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
