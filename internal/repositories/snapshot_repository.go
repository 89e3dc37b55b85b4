package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"occupancy_backend/internal/models"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SnapshotRepository persists daily year-to-date snapshots.
type SnapshotRepository interface {
	UpsertSnapshots(ctx context.Context, snapshots []models.DailySnapshot) error
	ListByDate(ctx context.Context, date string) ([]models.DailySnapshot, error)
	Close() error
}

type snapshotRepository struct {
	db *sql.DB
}

// OpenSnapshotRepository opens (creating if needed) the SQLite snapshot store at path.
func OpenSnapshotRepository(path string) (SnapshotRepository, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := ensureSnapshotSchema(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &snapshotRepository{db: db}, nil
}

func ensureSnapshotSchema(ctx context.Context, exec SQLExecutor) error {
	createTable := `
CREATE TABLE IF NOT EXISTS daily_snapshots (
  snapshot_date TEXT NOT NULL,
  property_name TEXT NOT NULL,
  booked_nights INTEGER NOT NULL,
  available_room_nights INTEGER NOT NULL,
  occ_rate REAL NOT NULL,
  room_revenue REAL NOT NULL,
  adr REAL NOT NULL,
  revpar REAL NOT NULL,
  PRIMARY KEY (snapshot_date, property_name)
);`

	if _, err := exec.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("create daily_snapshots table: %w", err)
	}
	return nil
}

// UpsertSnapshots writes all rows in one transaction; an existing (date, property) row is replaced.
func (r *snapshotRepository) UpsertSnapshots(ctx context.Context, snapshots []models.DailySnapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin snapshot tx: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO daily_snapshots (
  snapshot_date, property_name, booked_nights, available_room_nights,
  occ_rate, room_revenue, adr, revpar
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(snapshot_date, property_name) DO UPDATE SET
  booked_nights = excluded.booked_nights,
  available_room_nights = excluded.available_room_nights,
  occ_rate = excluded.occ_rate,
  room_revenue = excluded.room_revenue,
  adr = excluded.adr,
  revpar = excluded.revpar;`)
	if err != nil {
		return fmt.Errorf("%w: prepare snapshot upsert: %v", ErrDatabaseError, err)
	}
	defer stmt.Close()

	for _, s := range snapshots {
		if _, err := stmt.ExecContext(ctx,
			s.SnapshotDate, s.PropertyName, s.BookedNights, s.AvailableRoomNights,
			s.OccRate, s.RoomRevenue, s.ADR, s.RevPAR,
		); err != nil {
			return fmt.Errorf("%w: upsert snapshot %s/%s: %v", ErrDatabaseError, s.SnapshotDate, s.PropertyName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit snapshots: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *snapshotRepository) ListByDate(ctx context.Context, date string) ([]models.DailySnapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT snapshot_date, property_name, booked_nights, available_room_nights,
       occ_rate, room_revenue, adr, revpar
FROM daily_snapshots
WHERE snapshot_date = ?
ORDER BY property_name ASC;`, date)
	if err != nil {
		return nil, fmt.Errorf("%w: listing snapshots for %s: %v", ErrDatabaseError, date, err)
	}
	defer rows.Close()

	snapshots := []models.DailySnapshot{}
	for rows.Next() {
		var s models.DailySnapshot
		if err := rows.Scan(
			&s.SnapshotDate, &s.PropertyName, &s.BookedNights, &s.AvailableRoomNights,
			&s.OccRate, &s.RoomRevenue, &s.ADR, &s.RevPAR,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning snapshot: %v", ErrDatabaseError, err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating snapshots: %v", ErrDatabaseError, err)
	}
	return snapshots, nil
}

func (r *snapshotRepository) Close() error {
	return r.db.Close()
}
