package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"stagebook/internal/models"
)

var (
	// ErrNoticeNotFound indicates the requested notice does not exist.
	ErrNoticeNotFound = errors.New("notice not found")
	// ErrInvalidNotice indicates validation failed for the supplied notice.
	ErrInvalidNotice = errors.New("invalid notice")
)

// CreateNotice persists a new announcement.
func (s *Store) CreateNotice(ctx context.Context, title, content string) (models.Notice, error) {
	if !s.Available() {
		return models.Notice{}, ErrStoreUnavailable
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return models.Notice{}, fmt.Errorf("%w: title is required", ErrInvalidNotice)
	}

	var notice models.Notice
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO notices (title, content)
		VALUES ($1, $2)
		RETURNING id, title, content, created_at
	`, title, content).Scan(&notice.ID, &notice.Title, &notice.Content, &notice.CreatedAt)
	if err != nil {
		return models.Notice{}, fmt.Errorf("insert notice: %w", err)
	}
	return notice, nil
}

// ListNotices returns all notices, newest first.
func (s *Store) ListNotices(ctx context.Context) ([]models.Notice, error) {
	if !s.Available() {
		return []models.Notice{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, content, created_at
		FROM notices
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list notices: %w", err)
	}
	defer rows.Close()

	notices := []models.Notice{}
	for rows.Next() {
		var notice models.Notice
		if err := rows.Scan(&notice.ID, &notice.Title, &notice.Content, &notice.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notice: %w", err)
		}
		notices = append(notices, notice)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notices: %w", err)
	}
	return notices, nil
}

// LatestNotice returns the most recently created notice, or nil when there is none.
func (s *Store) LatestNotice(ctx context.Context) (*models.Notice, error) {
	if !s.Available() {
		return nil, nil
	}

	var notice models.Notice
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, content, created_at
		FROM notices
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`).Scan(&notice.ID, &notice.Title, &notice.Content, &notice.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest notice: %w", err)
	}
	return &notice, nil
}

// UpdateNotice applies a partial update and returns the stored row.
func (s *Store) UpdateNotice(ctx context.Context, id int64, update models.NoticeUpdate) (models.Notice, error) {
	if !s.Available() {
		return models.Notice{}, ErrStoreUnavailable
	}

	var title any
	if update.Title != nil {
		trimmed := strings.TrimSpace(*update.Title)
		if trimmed == "" {
			return models.Notice{}, fmt.Errorf("%w: title is required", ErrInvalidNotice)
		}
		title = trimmed
	}
	var content any
	if update.Content != nil {
		content = *update.Content
	}

	var notice models.Notice
	err := s.db.QueryRowContext(ctx, `
		UPDATE notices
		SET title = COALESCE($1, title),
		    content = COALESCE($2, content)
		WHERE id = $3
		RETURNING id, title, content, created_at
	`, title, content, id).Scan(&notice.ID, &notice.Title, &notice.Content, &notice.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Notice{}, ErrNoticeNotFound
		}
		return models.Notice{}, fmt.Errorf("update notice: %w", err)
	}
	return notice, nil
}

// DeleteNotice removes a notice by id.
func (s *Store) DeleteNotice(ctx context.Context, id int64) error {
	if !s.Available() {
		return ErrStoreUnavailable
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM notices
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete notice: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete notice rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNoticeNotFound
	}
	return nil
}
