package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/giannis84/tunelib/internal/models"
	"github.com/lib/pq"
)

// PostgresRepository implements LibraryRepository, UserRepository and TokenRepository using PostgreSQL.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgresRepository backed by the given *sql.DB.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const libraryColumns = `id, user_id, track_ref, title, artist_name, audio_url, image_url, duration_seconds, created_at`

func (r *PostgresRepository) ListLibraryFromDB(ctx context.Context, ownerID string) ([]*models.LibraryEntry, error) {
	query := `
		SELECT ` + libraryColumns + `
		FROM library
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying library: %w", err)
	}
	defer rows.Close()

	entries := []*models.LibraryEntry{}
	for rows.Next() {
		entry, err := scanLibraryEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning library row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating library: %w", err)
	}
	return entries, nil
}

func (r *PostgresRepository) GetLibraryEntryFromDB(ctx context.Context, ownerID, trackRef string) (*models.LibraryEntry, error) {
	query := `
		SELECT ` + libraryColumns + `
		FROM library
		WHERE user_id = $1 AND track_ref = $2`

	entry, err := scanLibraryEntry(r.db.QueryRowContext(ctx, query, ownerID, trackRef))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning library entry: %w", err)
	}
	return entry, nil
}

func (r *PostgresRepository) LibraryEntryExistsInDB(ctx context.Context, ownerID, trackRef string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM library WHERE user_id = $1 AND track_ref = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, ownerID, trackRef).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking library entry: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) AddLibraryEntryInDB(ctx context.Context, entry *models.LibraryEntry) error {
	const query = `
		INSERT INTO library (user_id, track_ref, title, artist_name, audio_url, image_url, duration_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		entry.OwnerID, entry.TrackRef, entry.Title, entry.ArtistName,
		entry.AudioURL, entry.ImageURL, entry.DurationSeconds,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		// The unique constraint is the source of truth for concurrent adds.
		if isUniqueViolation(err, constraintLibraryUserTrack) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("inserting library entry: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteLibraryEntryFromDB(ctx context.Context, ownerID, trackRef string) error {
	const query = `DELETE FROM library WHERE user_id = $1 AND track_ref = $2`

	result, err := r.db.ExecContext(ctx, query, ownerID, trackRef)
	if err != nil {
		return fmt.Errorf("deleting library entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanLibraryEntry(row rowScanner) (*models.LibraryEntry, error) {
	var entry models.LibraryEntry
	err := row.Scan(
		&entry.ID, &entry.OwnerID, &entry.TrackRef,
		&entry.Title, &entry.ArtistName,
		&entry.AudioURL, &entry.ImageURL, &entry.DurationSeconds,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// isUniqueViolation reports whether err is a unique violation (23505) of the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pge *pq.Error
	return errors.As(err, &pge) && pge.Code == "23505" && pge.Constraint == constraint
}
