package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"stagebook/internal/models"
)

var (
	// ErrArtistNotFound indicates the requested artist does not exist.
	ErrArtistNotFound = errors.New("artist not found")
	// ErrInvalidArtist indicates validation failed for the supplied artist.
	ErrInvalidArtist = errors.New("invalid artist")
)

// PublicSearchLimit caps the rows returned to unauthenticated artist searches.
const PublicSearchLimit = 10

var weekdays = map[string]struct{}{
	"mon": {}, "tue": {}, "wed": {}, "thu": {}, "fri": {}, "sat": {}, "sun": {},
}

const artistColumns = `id, name, genres, phone, instagram, grade, available_time, preferred_days,
		       instruments, member_count, notes, is_favorite, created_at, updated_at`

// CreateArtist validates and persists a new artist profile.
func (s *Store) CreateArtist(ctx context.Context, artist models.Artist) (models.Artist, error) {
	if !s.Available() {
		return models.Artist{}, ErrStoreUnavailable
	}

	artist = normalizeArtist(artist)
	if err := validateArtist(artist); err != nil {
		return models.Artist{}, err
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO artists (name, genres, phone, instagram, grade, available_time, preferred_days,
		                     instruments, member_count, notes, is_favorite)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+artistColumns,
		artist.Name,
		pq.Array(artist.Genres),
		nullIfEmpty(artist.Phone),
		nullIfEmpty(artist.Instagram),
		nullIfEmpty(artist.Grade),
		nullIfEmpty(artist.AvailableTime),
		pq.Array(artist.PreferredDays),
		nullIfEmpty(artist.Instruments),
		artist.MemberCount,
		nullIfEmpty(artist.Notes),
		artist.IsFavorite,
	)

	created, err := scanArtist(row)
	if err != nil {
		return models.Artist{}, fmt.Errorf("insert artist: %w", err)
	}
	return created, nil
}

// ListArtists returns artists ordered by name, optionally filtered by name substring and genre.
func (s *Store) ListArtists(ctx context.Context, filter models.ArtistFilter) ([]models.Artist, error) {
	if !s.Available() {
		return []models.Artist{}, nil
	}

	var (
		clauses []string
		args    []any
	)

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		clauses = append(clauses, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if genre := strings.TrimSpace(filter.Genre); genre != "" {
		args = append(args, genre)
		clauses = append(clauses, fmt.Sprintf("$%d = ANY(genres)", len(args)))
	}

	query := `
		SELECT ` + artistColumns + `
		FROM artists`
	if len(clauses) > 0 {
		query += "\n\t\tWHERE " + strings.Join(clauses, " AND ")
	}
	query += "\n\t\tORDER BY name ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list artists: %w", err)
	}
	defer rows.Close()

	artists := []models.Artist{}
	for rows.Next() {
		artist, err := scanArtist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan artist: %w", err)
		}
		artists = append(artists, artist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artists: %w", err)
	}
	return artists, nil
}

// ListArtistsWithPhone returns artists that have a phone number on file.
func (s *Store) ListArtistsWithPhone(ctx context.Context) ([]models.Artist, error) {
	if !s.Available() {
		return []models.Artist{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+artistColumns+`
		FROM artists
		WHERE phone IS NOT NULL AND btrim(phone) <> ''
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list artists with phone: %w", err)
	}
	defer rows.Close()

	artists := []models.Artist{}
	for rows.Next() {
		artist, err := scanArtist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan artist: %w", err)
		}
		artists = append(artists, artist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artists: %w", err)
	}
	return artists, nil
}

// SearchPublicArtists matches names case-insensitively and returns the reduced public view.
func (s *Store) SearchPublicArtists(ctx context.Context, name string) ([]models.PublicArtist, error) {
	name = strings.TrimSpace(name)
	if !s.Available() || name == "" {
		return []models.PublicArtist{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, instruments
		FROM artists
		WHERE name ILIKE $1
		ORDER BY name ASC, id ASC
		LIMIT $2
	`, "%"+escapeLike(name)+"%", PublicSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search artists: %w", err)
	}
	defer rows.Close()

	results := []models.PublicArtist{}
	for rows.Next() {
		var (
			artist      models.PublicArtist
			instruments sql.NullString
		)
		if err := rows.Scan(&artist.ID, &artist.Name, &instruments); err != nil {
			return nil, fmt.Errorf("scan artist: %w", err)
		}
		artist.Instruments = instruments.String
		results = append(results, artist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artists: %w", err)
	}
	return results, nil
}

// GetArtist fetches a single artist by id.
func (s *Store) GetArtist(ctx context.Context, id int64) (models.Artist, error) {
	if !s.Available() {
		return models.Artist{}, ErrArtistNotFound
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+artistColumns+`
		FROM artists
		WHERE id = $1
	`, id)

	artist, err := scanArtist(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Artist{}, ErrArtistNotFound
		}
		return models.Artist{}, fmt.Errorf("get artist: %w", err)
	}
	return artist, nil
}

// UpdateArtist applies a partial update and returns the stored row.
func (s *Store) UpdateArtist(ctx context.Context, id int64, update models.ArtistUpdate) (models.Artist, error) {
	if !s.Available() {
		return models.Artist{}, ErrStoreUnavailable
	}
	if update.IsEmpty() {
		return s.GetArtist(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return models.Artist{}, fmt.Errorf("%w: name is required", ErrInvalidArtist)
		}
		set("name", name)
	}
	if update.Genres != nil {
		genres := normalizeList(*update.Genres)
		if err := validateGenres(genres); err != nil {
			return models.Artist{}, err
		}
		set("genres", pq.Array(genres))
	}
	if update.Phone != nil {
		set("phone", nullIfEmpty(*update.Phone))
	}
	if update.Instagram != nil {
		set("instagram", nullIfEmpty(*update.Instagram))
	}
	if update.Grade != nil {
		grade := strings.ToUpper(strings.TrimSpace(*update.Grade))
		if err := validateGrade(grade); err != nil {
			return models.Artist{}, err
		}
		set("grade", nullIfEmpty(grade))
	}
	if update.AvailableTime != nil {
		set("available_time", nullIfEmpty(*update.AvailableTime))
	}
	if update.PreferredDays != nil {
		days := normalizeDays(*update.PreferredDays)
		if err := validateDays(days); err != nil {
			return models.Artist{}, err
		}
		set("preferred_days", pq.Array(days))
	}
	if update.Instruments != nil {
		set("instruments", nullIfEmpty(*update.Instruments))
	}
	if update.MemberCount != nil {
		if *update.MemberCount < 1 {
			return models.Artist{}, fmt.Errorf("%w: memberCount must be at least 1", ErrInvalidArtist)
		}
		set("member_count", *update.MemberCount)
	}
	if update.Notes != nil {
		set("notes", nullIfEmpty(*update.Notes))
	}
	if update.IsFavorite != nil {
		set("is_favorite", *update.IsFavorite)
	}

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE artists
		SET %s, updated_at = NOW()
		WHERE id = $%d
		RETURNING `+artistColumns, strings.Join(sets, ", "), len(args))

	artist, err := scanArtist(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Artist{}, ErrArtistNotFound
		}
		return models.Artist{}, fmt.Errorf("update artist: %w", err)
	}
	return artist, nil
}

// ToggleArtistFavorite flips the favorite flag and returns its new value.
func (s *Store) ToggleArtistFavorite(ctx context.Context, id int64) (bool, error) {
	if !s.Available() {
		return false, ErrStoreUnavailable
	}

	var favorite bool
	err := s.db.QueryRowContext(ctx, `
		UPDATE artists
		SET is_favorite = NOT is_favorite, updated_at = NOW()
		WHERE id = $1
		RETURNING is_favorite
	`, id).Scan(&favorite)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrArtistNotFound
		}
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	return favorite, nil
}

// DeleteArtist removes an artist. Performances go with it through the foreign key.
func (s *Store) DeleteArtist(ctx context.Context, id int64) error {
	if !s.Available() {
		return ErrStoreUnavailable
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM artists
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete artist: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete artist rows affected: %w", err)
	}
	if affected == 0 {
		return ErrArtistNotFound
	}
	return nil
}

// ArtistStats counts an artist's total, completed and upcoming performances as of now.
// A missing artist yields ErrArtistNotFound.
func (s *Store) ArtistStats(ctx context.Context, artistID int64, now time.Time) (models.ArtistStats, error) {
	if !s.Available() {
		return models.ArtistStats{}, nil
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM artists WHERE id = $1)
	`, artistID).Scan(&exists); err != nil {
		return models.ArtistStats{}, fmt.Errorf("artist stats lookup: %w", err)
	}
	if !exists {
		return models.ArtistStats{}, ErrArtistNotFound
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT performance_date, status
		FROM performances
		WHERE artist_id = $1
	`, artistID)
	if err != nil {
		return models.ArtistStats{}, fmt.Errorf("artist stats: %w", err)
	}
	defer rows.Close()

	var stats models.ArtistStats
	for rows.Next() {
		var (
			date   time.Time
			status models.PerformanceStatus
		)
		if err := rows.Scan(&date, &status); err != nil {
			return models.ArtistStats{}, fmt.Errorf("scan artist stats: %w", err)
		}
		stats.TotalPerformances++
		if status == models.StatusCompleted {
			stats.CompletedPerformances++
		}
		if date.After(now) && status != models.StatusCancelled {
			stats.UpcomingPerformances++
		}
	}
	if err := rows.Err(); err != nil {
		return models.ArtistStats{}, fmt.Errorf("iterate artist stats: %w", err)
	}
	return stats, nil
}

func scanArtist(row rowScanner) (models.Artist, error) {
	var (
		artist                             models.Artist
		genres, days                       pq.StringArray
		phone, instagram, grade, available sql.NullString
		instruments, notes                 sql.NullString
	)
	if err := row.Scan(
		&artist.ID, &artist.Name, &genres, &phone, &instagram, &grade, &available, &days,
		&instruments, &artist.MemberCount, &notes, &artist.IsFavorite, &artist.CreatedAt, &artist.UpdatedAt,
	); err != nil {
		return models.Artist{}, err
	}

	artist.Genres = append([]string{}, genres...)
	artist.PreferredDays = append([]string{}, days...)
	artist.Phone = phone.String
	artist.Instagram = instagram.String
	artist.Grade = grade.String
	artist.AvailableTime = available.String
	artist.Instruments = instruments.String
	artist.Notes = notes.String
	return artist, nil
}

func normalizeArtist(artist models.Artist) models.Artist {
	artist.Name = strings.TrimSpace(artist.Name)
	artist.Genres = normalizeList(artist.Genres)
	artist.PreferredDays = normalizeDays(artist.PreferredDays)
	artist.Grade = strings.ToUpper(strings.TrimSpace(artist.Grade))
	artist.Phone = strings.TrimSpace(artist.Phone)
	artist.Instagram = strings.TrimSpace(artist.Instagram)
	if artist.MemberCount == 0 {
		artist.MemberCount = 1
	}
	return artist
}

func normalizeDays(days []string) []string {
	lowered := make([]string, len(days))
	for i, day := range days {
		lowered[i] = strings.ToLower(day)
	}
	return normalizeList(lowered)
}

func validateArtist(artist models.Artist) error {
	if artist.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidArtist)
	}
	if err := validateGenres(artist.Genres); err != nil {
		return err
	}
	if err := validateGrade(artist.Grade); err != nil {
		return err
	}
	if err := validateDays(artist.PreferredDays); err != nil {
		return err
	}
	if artist.MemberCount < 1 {
		return fmt.Errorf("%w: memberCount must be at least 1", ErrInvalidArtist)
	}
	return nil
}

func validateGenres(genres []string) error {
	if len(genres) == 0 {
		return fmt.Errorf("%w: at least one genre is required", ErrInvalidArtist)
	}
	for _, genre := range genres {
		if strings.Contains(genre, ",") {
			return fmt.Errorf("%w: genre %q must not contain commas", ErrInvalidArtist, genre)
		}
	}
	return nil
}

func validateGrade(grade string) error {
	switch grade {
	case "", models.GradeS, models.GradeA, models.GradeB, models.GradeC:
		return nil
	}
	return fmt.Errorf("%w: grade must be one of S, A, B, C", ErrInvalidArtist)
}

func validateDays(days []string) error {
	for _, day := range days {
		if _, ok := weekdays[day]; !ok {
			return fmt.Errorf("%w: unknown weekday %q", ErrInvalidArtist, day)
		}
	}
	return nil
}
