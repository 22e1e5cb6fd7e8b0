package artists

import (
	"context"
	"errors"
	"strings"
	"time"

	"stagebook/internal/logging"
	"stagebook/internal/models"
)

// ErrSearchTooShort indicates a public search without any characters.
var ErrSearchTooShort = errors.New("search requires at least one character")

// Store defines persistence operations for artists.
type Store interface {
	CreateArtist(ctx context.Context, artist models.Artist) (models.Artist, error)
	ListArtists(ctx context.Context, filter models.ArtistFilter) ([]models.Artist, error)
	SearchPublicArtists(ctx context.Context, name string) ([]models.PublicArtist, error)
	GetArtist(ctx context.Context, id int64) (models.Artist, error)
	UpdateArtist(ctx context.Context, id int64, update models.ArtistUpdate) (models.Artist, error)
	ToggleArtistFavorite(ctx context.Context, id int64) (bool, error)
	DeleteArtist(ctx context.Context, id int64) error
	ArtistStats(ctx context.Context, artistID int64, now time.Time) (models.ArtistStats, error)
}

// Notifier receives best-effort alerts about new registrations.
type Notifier interface {
	ArtistRegistered(ctx context.Context, artist models.Artist) error
}

// Service provides artist-centric operations.
type Service interface {
	Create(ctx context.Context, artist models.Artist) (models.Artist, error)
	List(ctx context.Context, filter models.ArtistFilter) ([]models.Artist, error)
	SearchPublic(ctx context.Context, name string) ([]models.PublicArtist, error)
	Get(ctx context.Context, id int64) (models.Artist, error)
	Update(ctx context.Context, id int64, update models.ArtistUpdate) (models.Artist, error)
	ToggleFavorite(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context, id int64) (models.ArtistStats, error)
}

type service struct {
	store    Store
	notifier Notifier // optional
	now      func() time.Time
}

// New constructs an artist Service. The notifier may be nil.
func New(store Store, notifier Notifier) Service {
	return &service{store: store, notifier: notifier, now: time.Now}
}

func (s *service) Create(ctx context.Context, artist models.Artist) (models.Artist, error) {
	if err := ctx.Err(); err != nil {
		return models.Artist{}, err
	}

	created, err := s.store.CreateArtist(ctx, artist)
	if err != nil {
		return models.Artist{}, err
	}

	if s.notifier != nil {
		if err := s.notifier.ArtistRegistered(ctx, created); err != nil {
			logging.WithContext(ctx).Warn().Err(err).Int64("artist_id", created.ID).Msg("artist registration alert failed")
		}
	}
	return created, nil
}

func (s *service) List(ctx context.Context, filter models.ArtistFilter) ([]models.Artist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListArtists(ctx, filter)
}

func (s *service) SearchPublic(ctx context.Context, name string) ([]models.PublicArtist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrSearchTooShort
	}
	return s.store.SearchPublicArtists(ctx, name)
}

func (s *service) Get(ctx context.Context, id int64) (models.Artist, error) {
	if err := ctx.Err(); err != nil {
		return models.Artist{}, err
	}
	return s.store.GetArtist(ctx, id)
}

func (s *service) Update(ctx context.Context, id int64, update models.ArtistUpdate) (models.Artist, error) {
	if err := ctx.Err(); err != nil {
		return models.Artist{}, err
	}
	return s.store.UpdateArtist(ctx, id, update)
}

func (s *service) ToggleFavorite(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.store.ToggleArtistFavorite(ctx, id)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteArtist(ctx, id)
}

func (s *service) Stats(ctx context.Context, id int64) (models.ArtistStats, error) {
	if err := ctx.Err(); err != nil {
		return models.ArtistStats{}, err
	}
	return s.store.ArtistStats(ctx, id, s.now())
}
