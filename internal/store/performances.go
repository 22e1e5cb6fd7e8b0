package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"stagebook/internal/models"
)

var (
	// ErrPerformanceNotFound indicates the requested performance does not exist.
	ErrPerformanceNotFound = errors.New("performance not found")
	// ErrInvalidPerformance indicates validation failed for the supplied performance.
	ErrInvalidPerformance = errors.New("invalid performance")
)

const performanceColumns = `id, artist_id, title, performance_date, status, notes, created_at, updated_at`

const joinedPerformanceSelect = `
		SELECT
			p.id, p.artist_id, p.title, p.performance_date, p.status, p.notes,
			p.created_at, p.updated_at,
			a.name, a.genres, a.grade, a.instruments, a.member_count
		FROM performances p
		LEFT JOIN artists a ON a.id = p.artist_id`

// CreatePerformance validates and persists a booking.
func (s *Store) CreatePerformance(ctx context.Context, performance models.Performance) (models.Performance, error) {
	if !s.Available() {
		return models.Performance{}, ErrStoreUnavailable
	}

	performance.Title = strings.TrimSpace(performance.Title)
	if performance.Status == "" {
		performance.Status = models.StatusScheduled
	}
	if err := validatePerformance(performance); err != nil {
		return models.Performance{}, err
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO performances (artist_id, title, performance_date, status, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+performanceColumns,
		performance.ArtistID,
		performance.Title,
		performance.PerformanceDate,
		string(performance.Status),
		nullIfEmpty(performance.Notes),
	)

	created, err := scanPerformance(row)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Performance{}, constraintError(err)
		}
		return models.Performance{}, fmt.Errorf("insert performance: %w", err)
	}
	return created, nil
}

// GetPerformance fetches a performance together with its artist display fields.
func (s *Store) GetPerformance(ctx context.Context, id int64) (models.PerformanceWithArtist, error) {
	if !s.Available() {
		return models.PerformanceWithArtist{}, ErrPerformanceNotFound
	}

	row := s.db.QueryRowContext(ctx, joinedPerformanceSelect+`
		WHERE p.id = $1
	`, id)

	performance, err := scanPerformanceWithArtist(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PerformanceWithArtist{}, ErrPerformanceNotFound
		}
		return models.PerformanceWithArtist{}, fmt.Errorf("get performance: %w", err)
	}
	return performance, nil
}

// ListPerformances returns performances joined with artist fields, ordered by date.
// The range is half-open: From is inclusive, To is exclusive. Zero bounds are ignored.
func (s *Store) ListPerformances(ctx context.Context, window models.PerformanceRange) ([]models.PerformanceWithArtist, error) {
	if !s.Available() {
		return []models.PerformanceWithArtist{}, nil
	}

	var (
		clauses []string
		args    []any
	)
	if !window.From.IsZero() {
		args = append(args, window.From)
		clauses = append(clauses, fmt.Sprintf("p.performance_date >= $%d", len(args)))
	}
	if !window.To.IsZero() {
		args = append(args, window.To)
		clauses = append(clauses, fmt.Sprintf("p.performance_date < $%d", len(args)))
	}

	query := joinedPerformanceSelect
	if len(clauses) > 0 {
		query += "\n\t\tWHERE " + strings.Join(clauses, " AND ")
	}
	query += "\n\t\tORDER BY p.performance_date ASC, p.id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list performances: %w", err)
	}
	defer rows.Close()

	performances := []models.PerformanceWithArtist{}
	for rows.Next() {
		performance, err := scanPerformanceWithArtist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan performance: %w", err)
		}
		performances = append(performances, performance)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate performances: %w", err)
	}
	return performances, nil
}

// UpdatePerformance applies a partial update and returns the stored row.
func (s *Store) UpdatePerformance(ctx context.Context, id int64, update models.PerformanceUpdate) (models.Performance, error) {
	if !s.Available() {
		return models.Performance{}, ErrStoreUnavailable
	}
	if update.IsEmpty() {
		current, err := s.GetPerformance(ctx, id)
		if err != nil {
			return models.Performance{}, err
		}
		return current.Performance, nil
	}

	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.ArtistID != nil {
		if *update.ArtistID <= 0 {
			return models.Performance{}, fmt.Errorf("%w: artistId is required", ErrInvalidPerformance)
		}
		set("artist_id", *update.ArtistID)
	}
	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return models.Performance{}, fmt.Errorf("%w: title is required", ErrInvalidPerformance)
		}
		set("title", title)
	}
	if update.PerformanceDate != nil {
		if update.PerformanceDate.IsZero() {
			return models.Performance{}, fmt.Errorf("%w: performanceDate is required", ErrInvalidPerformance)
		}
		set("performance_date", *update.PerformanceDate)
	}
	if update.Status != nil {
		if !update.Status.Valid() {
			return models.Performance{}, fmt.Errorf("%w: unknown status %q", ErrInvalidPerformance, *update.Status)
		}
		set("status", string(*update.Status))
	}
	if update.Notes != nil {
		set("notes", nullIfEmpty(*update.Notes))
	}

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE performances
		SET %s, updated_at = NOW()
		WHERE id = $%d
		RETURNING `+performanceColumns, strings.Join(sets, ", "), len(args))

	performance, err := scanPerformance(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Performance{}, ErrPerformanceNotFound
		}
		if isForeignKeyViolation(err) {
			return models.Performance{}, constraintError(err)
		}
		return models.Performance{}, fmt.Errorf("update performance: %w", err)
	}
	return performance, nil
}

// ConfirmPerformance marks a single performance as confirmed.
// Other requests for the same artist and date are left as they are.
func (s *Store) ConfirmPerformance(ctx context.Context, id int64) error {
	if !s.Available() {
		return ErrStoreUnavailable
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE performances
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, string(models.StatusConfirmed), id)
	if err != nil {
		return fmt.Errorf("confirm performance: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("confirm performance rows affected: %w", err)
	}
	if affected == 0 {
		return ErrPerformanceNotFound
	}
	return nil
}

// DeletePerformance removes a performance by id.
func (s *Store) DeletePerformance(ctx context.Context, id int64) error {
	if !s.Available() {
		return ErrStoreUnavailable
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM performances
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete performance: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete performance rows affected: %w", err)
	}
	if affected == 0 {
		return ErrPerformanceNotFound
	}
	return nil
}

func validatePerformance(performance models.Performance) error {
	if performance.ArtistID <= 0 {
		return fmt.Errorf("%w: artistId is required", ErrInvalidPerformance)
	}
	if performance.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidPerformance)
	}
	if performance.PerformanceDate.IsZero() {
		return fmt.Errorf("%w: performanceDate is required", ErrInvalidPerformance)
	}
	if !performance.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidPerformance, performance.Status)
	}
	return nil
}

func scanPerformance(row rowScanner) (models.Performance, error) {
	var (
		performance models.Performance
		notes       sql.NullString
	)
	if err := row.Scan(
		&performance.ID, &performance.ArtistID, &performance.Title, &performance.PerformanceDate,
		&performance.Status, &notes, &performance.CreatedAt, &performance.UpdatedAt,
	); err != nil {
		return models.Performance{}, err
	}
	performance.Notes = notes.String
	return performance, nil
}

func scanPerformanceWithArtist(row rowScanner) (models.PerformanceWithArtist, error) {
	var (
		performance              models.PerformanceWithArtist
		notes                    sql.NullString
		name, grade, instruments sql.NullString
		genres                   pq.StringArray
		memberCount              sql.NullInt64
	)
	if err := row.Scan(
		&performance.ID, &performance.ArtistID, &performance.Title, &performance.PerformanceDate,
		&performance.Status, &notes, &performance.CreatedAt, &performance.UpdatedAt,
		&name, &genres, &grade, &instruments, &memberCount,
	); err != nil {
		return models.PerformanceWithArtist{}, err
	}

	performance.Notes = notes.String
	performance.ArtistName = name.String
	performance.ArtistGrade = grade.String
	performance.ArtistInstruments = instruments.String
	performance.ArtistMemberCount = int(memberCount.Int64)
	if len(genres) > 0 {
		performance.ArtistGenres = []string(genres)
	}
	return performance, nil
}
