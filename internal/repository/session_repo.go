// Package repository provides data access for session records.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sculpture-guide/backend/internal/model"
)

// SessionRepository persists per-session metadata.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session record.
func (r *SessionRepository) Create(ctx context.Context, rec *model.SessionRecord) error {
	query := `
		INSERT INTO sessions (id, model, voice, status, frames_in, frames_out, audio_bytes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.Model,
		rec.Voice,
		rec.Status,
		rec.FramesIn,
		rec.FramesOut,
		rec.AudioBytes,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session record: %w", err)
	}

	return nil
}

// GetByID retrieves a session record by its ID.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*model.SessionRecord, error) {
	query := `
		SELECT id, model, voice, status, frames_in, frames_out, audio_bytes, created_at, updated_at
		FROM sessions
		WHERE id = ?
	`

	rec := &model.SessionRecord{}
	var voice sql.NullString

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID,
		&rec.Model,
		&voice,
		&rec.Status,
		&rec.FramesIn,
		&rec.FramesOut,
		&rec.AudioBytes,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, model.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session record: %w", err)
	}

	if voice.Valid {
		rec.Voice = voice.String
	}

	return rec, nil
}

// List retrieves the most recent session records, newest first.
func (r *SessionRepository) List(ctx context.Context, limit int) ([]*model.SessionRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, model, voice, status, frames_in, frames_out, audio_bytes, created_at, updated_at
		FROM sessions
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list session records: %w", err)
	}
	defer rows.Close()

	var records []*model.SessionRecord
	for rows.Next() {
		rec := &model.SessionRecord{}
		var voice sql.NullString

		err := rows.Scan(
			&rec.ID,
			&rec.Model,
			&voice,
			&rec.Status,
			&rec.FramesIn,
			&rec.FramesOut,
			&rec.AudioBytes,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session record: %w", err)
		}

		if voice.Valid {
			rec.Voice = voice.String
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session records: %w", err)
	}

	return records, nil
}

// Finish marks a session record closed or failed and stores the final
// frame counters.
func (r *SessionRepository) Finish(ctx context.Context, id string, status model.SessionStatus, framesIn, framesOut, audioBytes int64) error {
	query := `
		UPDATE sessions
		SET status = ?, frames_in = ?, frames_out = ?, audio_bytes = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, status, framesIn, framesOut, audioBytes, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to finish session record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return model.ErrSessionNotFound
	}

	return nil
}

// Delete removes a session record.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM sessions WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete session record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return model.ErrSessionNotFound
	}

	return nil
}

// CountActive returns the number of active sessions.
func (r *SessionRepository) CountActive(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM sessions WHERE status = ?`

	var count int
	err := r.db.QueryRowContext(ctx, query, model.SessionStatusActive).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active sessions: %w", err)
	}

	return count, nil
}
