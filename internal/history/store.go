// internal/history/store.go
// Package history persists generated papers and the profile-completeness flag
// the generation flow gates on. The core pipeline only needs this surface;
// the backing schema is nobody else's business.
package history

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	apperrors "paperforge/internal/common/errors"
	"paperforge/internal/common/logger"
)

type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{db: db, logger: log.With(map[string]interface{}{"component": "history"})}
}

// SavePaper appends a finished paper to the user's history. The ID is
// assigned here when the caller leaves it empty.
func (s *Store) SavePaper(ctx context.Context, p *Paper) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	const q = `
		INSERT INTO papers (id, user_id, title, prompt, content, item_count, count_matches, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if _, err := s.db.ExecContext(ctx, q,
		p.ID, p.UserID, p.Title, p.Prompt, p.Content, p.ItemCount, p.CountMatches, p.CreatedAt,
	); err != nil {
		return apperrors.NewHistoryInsertFailedError(err)
	}

	return nil
}

// GetPaper fetches one paper by ID.
func (s *Store) GetPaper(ctx context.Context, id string) (*Paper, error) {
	const q = `
		SELECT id, user_id, title, prompt, content, item_count, count_matches, created_at
		FROM papers
		WHERE id = $1`

	var p Paper
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&p.ID, &p.UserID, &p.Title, &p.Prompt, &p.Content, &p.ItemCount, &p.CountMatches, &p.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewHistoryQueryFailedError(err)
	}
	return &p, nil
}

// ListPapers returns the user's most recent papers, newest first.
func (s *Store) ListPapers(ctx context.Context, userID string, limit int) ([]Paper, error) {
	if limit <= 0 {
		limit = 20
	}

	const q = `
		SELECT id, user_id, title, prompt, content, item_count, count_matches, created_at
		FROM papers
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, apperrors.NewHistoryQueryFailedError(err)
	}
	defer rows.Close()

	var papers []Paper
	for rows.Next() {
		var p Paper
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.Prompt, &p.Content, &p.ItemCount, &p.CountMatches, &p.CreatedAt); err != nil {
			return nil, apperrors.NewHistoryQueryFailedError(err)
		}
		papers = append(papers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewHistoryQueryFailedError(err)
	}

	return papers, nil
}

// IsProfileComplete reports whether the user finished profile setup. Unknown
// users count as incomplete, not as an error.
func (s *Store) IsProfileComplete(ctx context.Context, userID string) (bool, error) {
	const q = `SELECT profile_complete FROM profiles WHERE user_id = $1`

	var complete bool
	err := s.db.QueryRowContext(ctx, q, userID).Scan(&complete)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, apperrors.NewHistoryQueryFailedError(err)
	}
	return complete, nil
}
