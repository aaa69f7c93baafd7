package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/giannis84/tunelib/internal/models"
)

const profileColumns = `id, email, username, password_hash, name, last_name, birth_date, bio, created_at, updated_at`

func (r *PostgresRepository) CreateUserInDB(ctx context.Context, profile *models.Profile) error {
	const query = `
		INSERT INTO profiles (id, email, username, password_hash, name, last_name, birth_date, bio)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		profile.ID, profile.Email, profile.Username, profile.PasswordHash,
		profile.Name, profile.LastName, profile.BirthDate, profile.Bio,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err, constraintProfilesEmail):
			return ErrEmailTaken
		case isUniqueViolation(err, constraintProfilesUsername):
			return ErrUsernameTaken
		}
		return fmt.Errorf("inserting profile: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetUserByIDFromDB(ctx context.Context, userID string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return r.getUser(ctx, query, userID)
}

func (r *PostgresRepository) GetUserByEmailFromDB(ctx context.Context, email string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1`
	return r.getUser(ctx, query, email)
}

func (r *PostgresRepository) getUser(ctx context.Context, query string, arg string) (*models.Profile, error) {
	var p models.Profile
	var bio sql.NullString

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&p.ID, &p.Email, &p.Username, &p.PasswordHash,
		&p.Name, &p.LastName, &p.BirthDate, &bio,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning profile: %w", err)
	}
	if bio.Valid {
		p.Bio = &bio.String
	}
	return &p, nil
}

func (r *PostgresRepository) UpdatePasswordInDB(ctx context.Context, userID, passwordHash string) error {
	const query = `UPDATE profiles SET password_hash = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	return requireAffected(result, ErrUserNotFound)
}

// DeleteUserFromDB removes the profile; tokens and library entries go with it (ON DELETE CASCADE).
func (r *PostgresRepository) DeleteUserFromDB(ctx context.Context, userID string) error {
	const query = `DELETE FROM profiles WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}
	return requireAffected(result, ErrUserNotFound)
}

func (r *PostgresRepository) CreateTokenInDB(ctx context.Context, token *models.AccessToken) error {
	const query = `
		INSERT INTO access_tokens (id, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)`

	if _, err := r.db.ExecContext(ctx, query, token.ID, token.UserID, token.CreatedAt, token.ExpiresAt); err != nil {
		return fmt.Errorf("inserting access token: %w", err)
	}
	return nil
}

func (r *PostgresRepository) TokenActiveInDB(ctx context.Context, tokenID, userID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM access_tokens
			WHERE id = $1 AND user_id = $2 AND expires_at > NOW()
		)`

	var active bool
	if err := r.db.QueryRowContext(ctx, query, tokenID, userID).Scan(&active); err != nil {
		return false, fmt.Errorf("checking access token: %w", err)
	}
	return active, nil
}

func (r *PostgresRepository) DeleteTokenFromDB(ctx context.Context, tokenID string) error {
	const query = `DELETE FROM access_tokens WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, tokenID); err != nil {
		return fmt.Errorf("deleting access token: %w", err)
	}
	return nil
}

func requireAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
