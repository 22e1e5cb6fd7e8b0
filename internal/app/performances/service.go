package performances

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"stagebook/internal/logging"
	"stagebook/internal/models"
)

const (
	// MaxBatchDates caps how many dates a single batch request may carry.
	MaxBatchDates = 31

	batchConcurrency = 4
	weeklyWindow     = 7 * 24 * time.Hour
	defaultBatchNote = "Submitted by the artist"
)

// ErrInvalidBatch indicates a batch request without dates or with too many of them.
var ErrInvalidBatch = errors.New("invalid batch request")

// Store defines persistence operations for performances.
type Store interface {
	CreatePerformance(ctx context.Context, performance models.Performance) (models.Performance, error)
	GetPerformance(ctx context.Context, id int64) (models.PerformanceWithArtist, error)
	ListPerformances(ctx context.Context, window models.PerformanceRange) ([]models.PerformanceWithArtist, error)
	UpdatePerformance(ctx context.Context, id int64, update models.PerformanceUpdate) (models.Performance, error)
	ConfirmPerformance(ctx context.Context, id int64) error
	DeletePerformance(ctx context.Context, id int64) error
}

// ArtistLookup resolves the artist a booking refers to.
type ArtistLookup interface {
	GetArtist(ctx context.Context, id int64) (models.Artist, error)
}

// Notifier receives best-effort alerts about public booking requests.
type Notifier interface {
	PerformanceRequested(ctx context.Context, artistName string, performance models.Performance) error
	BatchRequested(ctx context.Context, artistName string, result BatchResult) error
}

// BatchRequest asks for one pending performance per date.
type BatchRequest struct {
	ArtistID int64
	Dates    []time.Time
	Notes    string
}

// BatchItem is the outcome of a single date within a batch.
type BatchItem struct {
	Date        time.Time           `json:"date"`
	Performance *models.Performance `json:"performance,omitempty"`
	Error       string              `json:"error,omitempty"`
}

// BatchResult aggregates the independent outcomes of a batch.
type BatchResult struct {
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Results   []BatchItem `json:"results"`
}

// Service coordinates performance-related operations.
type Service interface {
	Create(ctx context.Context, performance models.Performance) (models.Performance, error)
	CreatePending(ctx context.Context, performance models.Performance) (models.Performance, error)
	ApplyBatch(ctx context.Context, req BatchRequest) (BatchResult, error)
	Get(ctx context.Context, id int64) (models.PerformanceWithArtist, error)
	List(ctx context.Context, window models.PerformanceRange) ([]models.PerformanceWithArtist, error)
	Update(ctx context.Context, id int64, update models.PerformanceUpdate) (models.Performance, error)
	Confirm(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	Weekly(ctx context.Context) ([]models.PerformanceWithArtist, error)
	Monthly(ctx context.Context, year int, month time.Month) ([]models.PerformanceWithArtist, error)
}

// Option customises the service.
type Option func(*service)

// WithNotifier sends alerts for public booking requests.
func WithNotifier(notifier Notifier) Option {
	return func(s *service) { s.notifier = notifier }
}

// WithLocation sets the time zone used to bound calendar months and days.
func WithLocation(loc *time.Location) Option {
	return func(s *service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

type service struct {
	store    Store
	artists  ArtistLookup
	notifier Notifier
	loc      *time.Location
	now      func() time.Time
}

// New constructs a performances Service.
func New(store Store, artists ArtistLookup, opts ...Option) Service {
	s := &service{
		store:   store,
		artists: artists,
		loc:     time.Local,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create books a performance; an empty status defaults to scheduled.
func (s *service) Create(ctx context.Context, performance models.Performance) (models.Performance, error) {
	if err := ctx.Err(); err != nil {
		return models.Performance{}, err
	}
	if performance.Status == "" {
		performance.Status = models.StatusScheduled
	}
	return s.store.CreatePerformance(ctx, performance)
}

// CreatePending records a public booking request. The status is always pending.
func (s *service) CreatePending(ctx context.Context, performance models.Performance) (models.Performance, error) {
	if err := ctx.Err(); err != nil {
		return models.Performance{}, err
	}

	performance.Status = models.StatusPending
	created, err := s.store.CreatePerformance(ctx, performance)
	if err != nil {
		return models.Performance{}, err
	}

	if s.notifier != nil {
		name := s.artistName(ctx, created.ArtistID)
		if err := s.notifier.PerformanceRequested(ctx, name, created); err != nil {
			logging.WithContext(ctx).Warn().Err(err).Int64("performance_id", created.ID).Msg("booking request alert failed")
		}
	}
	return created, nil
}

// ApplyBatch creates one pending performance per distinct calendar day. Each date is an
// independent attempt: failures are reported per date and never undo the successes.
func (s *service) ApplyBatch(ctx context.Context, req BatchRequest) (BatchResult, error) {
	if err := ctx.Err(); err != nil {
		return BatchResult{}, err
	}

	dates := s.distinctDays(req.Dates)
	if len(dates) == 0 {
		return BatchResult{}, fmt.Errorf("%w: at least one date is required", ErrInvalidBatch)
	}
	if len(dates) > MaxBatchDates {
		return BatchResult{}, fmt.Errorf("%w: at most %d dates per request", ErrInvalidBatch, MaxBatchDates)
	}

	artist, err := s.artists.GetArtist(ctx, req.ArtistID)
	if err != nil {
		return BatchResult{}, err
	}

	notes := req.Notes
	if notes == "" {
		notes = defaultBatchNote
	}
	title := fmt.Sprintf("%s performance request", artist.Name)

	items := make([]BatchItem, len(dates))
	var g errgroup.Group
	g.SetLimit(batchConcurrency)
	for i, date := range dates {
		items[i].Date = date
		g.Go(func() error {
			created, err := s.store.CreatePerformance(ctx, models.Performance{
				ArtistID:        artist.ID,
				Title:           title,
				PerformanceDate: date,
				Status:          models.StatusPending,
				Notes:           notes,
			})
			if err != nil {
				items[i].Error = err.Error()
				return nil
			}
			items[i].Performance = &created
			return nil
		})
	}
	_ = g.Wait()

	result := BatchResult{Results: items}
	for _, item := range items {
		if item.Performance != nil {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}

	logging.WithContext(ctx).Info().
		Int64("artist_id", artist.ID).
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Msg("batch booking request processed")

	if s.notifier != nil && result.Succeeded > 0 {
		if err := s.notifier.BatchRequested(ctx, artist.Name, result); err != nil {
			logging.WithContext(ctx).Warn().Err(err).Int64("artist_id", artist.ID).Msg("batch request alert failed")
		}
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, id int64) (models.PerformanceWithArtist, error) {
	if err := ctx.Err(); err != nil {
		return models.PerformanceWithArtist{}, err
	}
	return s.store.GetPerformance(ctx, id)
}

func (s *service) List(ctx context.Context, window models.PerformanceRange) ([]models.PerformanceWithArtist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListPerformances(ctx, window)
}

func (s *service) Update(ctx context.Context, id int64, update models.PerformanceUpdate) (models.Performance, error) {
	if err := ctx.Err(); err != nil {
		return models.Performance{}, err
	}
	return s.store.UpdatePerformance(ctx, id, update)
}

// Confirm marks one performance as confirmed. Sibling requests for the same
// artist and date are kept for the admin to handle.
func (s *service) Confirm(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.ConfirmPerformance(ctx, id)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeletePerformance(ctx, id)
}

// Weekly lists performances from now until seven days ahead.
func (s *service) Weekly(ctx context.Context) ([]models.PerformanceWithArtist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := s.now()
	return s.store.ListPerformances(ctx, models.PerformanceRange{From: now, To: now.Add(weeklyWindow)})
}

// Monthly lists every performance on any day of the given calendar month.
func (s *service) Monthly(ctx context.Context, year int, month time.Month) ([]models.PerformanceWithArtist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start, end := MonthBounds(year, month, s.loc)
	return s.store.ListPerformances(ctx, models.PerformanceRange{From: start, To: end})
}

// MonthBounds returns the first instant of the month and the first instant of the next one.
func MonthBounds(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

func (s *service) distinctDays(dates []time.Time) []time.Time {
	seen := make(map[string]struct{}, len(dates))
	out := make([]time.Time, 0, len(dates))
	for _, date := range dates {
		if date.IsZero() {
			continue
		}
		key := date.In(s.loc).Format(time.DateOnly)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, date)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func (s *service) artistName(ctx context.Context, artistID int64) string {
	artist, err := s.artists.GetArtist(ctx, artistID)
	if err != nil {
		return fmt.Sprintf("artist #%d", artistID)
	}
	return artist.Name
}
