package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"stagebook/internal/models"
)

var artistRowColumns = []string{
	"id", "name", "genres", "phone", "instagram", "grade", "available_time", "preferred_days",
	"instruments", "member_count", "notes", "is_favorite", "created_at", "updated_at",
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestValidateArtist(t *testing.T) {
	tests := []struct {
		name    string
		artist  models.Artist
		wantErr bool
	}{
		{
			name:   "valid artist",
			artist: models.Artist{Name: "Test Artist", Genres: []string{"Rock"}, Grade: "A", MemberCount: 1},
		},
		{
			name:    "missing name",
			artist:  models.Artist{Genres: []string{"Rock"}, MemberCount: 1},
			wantErr: true,
		},
		{
			name:    "missing genre",
			artist:  models.Artist{Name: "Solo", MemberCount: 1},
			wantErr: true,
		},
		{
			name:    "comma in genre",
			artist:  models.Artist{Name: "Solo", Genres: []string{"Rock,Jazz"}, MemberCount: 1},
			wantErr: true,
		},
		{
			name:    "unknown grade",
			artist:  models.Artist{Name: "Solo", Genres: []string{"Rock"}, Grade: "D", MemberCount: 1},
			wantErr: true,
		},
		{
			name:    "unknown weekday",
			artist:  models.Artist{Name: "Solo", Genres: []string{"Rock"}, PreferredDays: []string{"someday"}, MemberCount: 1},
			wantErr: true,
		},
		{
			name:    "zero members",
			artist:  models.Artist{Name: "Solo", Genres: []string{"Rock"}},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := validateArtist(tc.artist)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error but got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("expected nil error but got %v", err)
			}
			if tc.wantErr && !errors.Is(err, ErrInvalidArtist) {
				t.Fatalf("expected ErrInvalidArtist, got %v", err)
			}
		})
	}
}

func TestCreateArtistSuccess(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO artists (name, genres, phone, instagram, grade, available_time, preferred_days,`)).
		WithArgs("Test Artist", pq.Array([]string{"Rock", "Jazz"}), "010-1234-5678", nil, "A", nil,
			pq.Array([]string{"fri", "sat"}), nil, 1, nil, false).
		WillReturnRows(sqlmock.NewRows(artistRowColumns).
			AddRow(int64(7), "Test Artist", "{Rock,Jazz}", "010-1234-5678", nil, "A", nil, "{fri,sat}",
				nil, 1, nil, false, now, now))

	created, err := s.CreateArtist(context.Background(), models.Artist{
		Name:          "  Test Artist ",
		Genres:        []string{"Rock", " Jazz", "rock"},
		Phone:         "010-1234-5678",
		Grade:         "a",
		PreferredDays: []string{"Fri", "sat"},
	})
	if err != nil {
		t.Fatalf("CreateArtist: %v", err)
	}

	if created.ID != 7 || created.Name != "Test Artist" {
		t.Fatalf("unexpected artist %+v", created)
	}
	if len(created.Genres) != 2 || created.Genres[0] != "Rock" || created.Genres[1] != "Jazz" {
		t.Fatalf("unexpected genres %v", created.Genres)
	}
	if created.MemberCount != 1 {
		t.Fatalf("expected default member count 1, got %d", created.MemberCount)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateArtistMissingGenreTouchesNothing(t *testing.T) {
	s, mock := newMockStore(t)

	_, err := s.CreateArtist(context.Background(), models.Artist{Name: "No Genre"})
	if !errors.Is(err, ErrInvalidArtist) {
		t.Fatalf("expected ErrInvalidArtist, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListArtistsCombinesFilters(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE name ILIKE $1 AND $2 = ANY(genres)
		ORDER BY name ASC, id ASC`)).
		WithArgs("%test%", "Rock").
		WillReturnRows(sqlmock.NewRows(artistRowColumns).
			AddRow(int64(1), "Test Artist", "{Rock}", nil, nil, nil, nil, "{}", "vocal, guitar", 2, nil, true, now, now))

	artists, err := s.ListArtists(context.Background(), models.ArtistFilter{Search: " test ", Genre: "Rock"})
	if err != nil {
		t.Fatalf("ListArtists: %v", err)
	}
	if len(artists) != 1 {
		t.Fatalf("expected 1 artist, got %d", len(artists))
	}
	if !artists[0].IsFavorite || artists[0].Instruments != "vocal, guitar" || artists[0].MemberCount != 2 {
		t.Fatalf("unexpected artist %+v", artists[0])
	}
	if artists[0].PreferredDays == nil {
		t.Fatalf("expected empty preferred days slice, got nil")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListArtistsUnfiltered(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`FROM artists\s+ORDER BY name ASC, id ASC`).
		WithArgs().
		WillReturnRows(sqlmock.NewRows(artistRowColumns))

	artists, err := s.ListArtists(context.Background(), models.ArtistFilter{})
	if err != nil {
		t.Fatalf("ListArtists: %v", err)
	}
	if artists == nil || len(artists) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", artists)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSearchPublicArtistsEscapesAndLimits(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, name, instruments
		FROM artists
		WHERE name ILIKE $1
		ORDER BY name ASC, id ASC
		LIMIT $2
	`)).
		WithArgs(`%100\%%`, PublicSearchLimit).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "instruments"}).
			AddRow(int64(3), "100% Band", "drums").
			AddRow(int64(4), "100% Duo", nil))

	results, err := s.SearchPublicArtists(context.Background(), "100%")
	if err != nil {
		t.Fatalf("SearchPublicArtists: %v", err)
	}
	if len(results) != 2 || results[0].Instruments != "drums" || results[1].Instruments != "" {
		t.Fatalf("unexpected results %+v", results)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSearchPublicArtistsBlankQuerySkipsDatabase(t *testing.T) {
	s, mock := newMockStore(t)

	results, err := s.SearchPublicArtists(context.Background(), "   ")
	if err != nil {
		t.Fatalf("SearchPublicArtists: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateArtistPartial(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	favorite := true
	members := 4
	mock.ExpectQuery(regexp.QuoteMeta(`
		UPDATE artists
		SET member_count = $1, is_favorite = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING `)).
		WithArgs(4, true, int64(9)).
		WillReturnRows(sqlmock.NewRows(artistRowColumns).
			AddRow(int64(9), "Quartet", "{Jazz}", nil, nil, "B", nil, "{}", nil, 4, nil, true, now, now))

	artist, err := s.UpdateArtist(context.Background(), 9, models.ArtistUpdate{MemberCount: &members, IsFavorite: &favorite})
	if err != nil {
		t.Fatalf("UpdateArtist: %v", err)
	}
	if artist.MemberCount != 4 || !artist.IsFavorite {
		t.Fatalf("unexpected artist %+v", artist)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateArtistRejectsEmptyGenres(t *testing.T) {
	s, mock := newMockStore(t)

	genres := []string{" ", ""}
	_, err := s.UpdateArtist(context.Background(), 1, models.ArtistUpdate{Genres: &genres})
	if !errors.Is(err, ErrInvalidArtist) {
		t.Fatalf("expected ErrInvalidArtist, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateArtistNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	name := "Renamed"
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE artists`)).
		WithArgs("Renamed", int64(404)).
		WillReturnRows(sqlmock.NewRows(artistRowColumns))

	_, err := s.UpdateArtist(context.Background(), 404, models.ArtistUpdate{Name: &name})
	if !errors.Is(err, ErrArtistNotFound) {
		t.Fatalf("expected ErrArtistNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestToggleArtistFavorite(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SET is_favorite = NOT is_favorite, updated_at = NOW()`)).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"is_favorite"}).AddRow(true))

	favorite, err := s.ToggleArtistFavorite(context.Background(), 2)
	if err != nil {
		t.Fatalf("ToggleArtistFavorite: %v", err)
	}
	if !favorite {
		t.Fatalf("expected favorite to be true")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteArtist(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM artists`)).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM artists`)).
		WithArgs(int64(6)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.DeleteArtist(context.Background(), 5); err != nil {
		t.Fatalf("DeleteArtist: %v", err)
	}
	if err := s.DeleteArtist(context.Background(), 6); !errors.Is(err, ErrArtistNotFound) {
		t.Fatalf("expected ErrArtistNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestArtistStats(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM artists WHERE id = $1)`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT performance_date, status
		FROM performances
		WHERE artist_id = $1
	`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"performance_date", "status"}).
			AddRow(now.AddDate(0, -1, 0), "completed").
			AddRow(now.AddDate(0, 0, 3), "pending").
			AddRow(now.AddDate(0, 0, 4), "cancelled").
			AddRow(now.AddDate(0, 1, 0), "confirmed").
			AddRow(now, "scheduled"))

	stats, err := s.ArtistStats(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("ArtistStats: %v", err)
	}

	want := models.ArtistStats{TotalPerformances: 5, CompletedPerformances: 1, UpcomingPerformances: 2}
	if stats != want {
		t.Fatalf("expected %+v, got %+v", want, stats)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestArtistStatsMissingArtist(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM artists WHERE id = $1)`)).
		WithArgs(int64(999)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := s.ArtistStats(context.Background(), 999, time.Now())
	if !errors.Is(err, ErrArtistNotFound) {
		t.Fatalf("expected ErrArtistNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPerformancesCascadeWithArtist(t *testing.T) {
	schema, err := os.ReadFile(filepath.Join("..", "..", "migrations", "000001_create_core_tables.up.sql"))
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}

	cascade := regexp.MustCompile(`(?is)CREATE TABLE[^;]*performances\s*\([^;]*artist_id\s+BIGINT[^,]*REFERENCES\s+artists\s*\(\s*id\s*\)\s+ON DELETE CASCADE`)
	if !cascade.Match(schema) {
		t.Fatalf("expected performances.artist_id to cascade on artist delete")
	}
}
