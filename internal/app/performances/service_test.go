package performances

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"stagebook/internal/models"
)

var errArtistMissing = errors.New("artist not found")

type stubStore struct {
	mu       sync.Mutex
	created  []models.Performance
	failOn   map[string]error
	windows  []models.PerformanceRange
	confirms []int64
}

func (s *stubStore) CreatePerformance(_ context.Context, performance models.Performance) (models.Performance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failOn[performance.PerformanceDate.Format(time.DateOnly)]; err != nil {
		return models.Performance{}, err
	}
	performance.ID = int64(len(s.created) + 1)
	s.created = append(s.created, performance)
	return performance, nil
}

func (s *stubStore) GetPerformance(_ context.Context, id int64) (models.PerformanceWithArtist, error) {
	return models.PerformanceWithArtist{Performance: models.Performance{ID: id}}, nil
}

func (s *stubStore) ListPerformances(_ context.Context, window models.PerformanceRange) ([]models.PerformanceWithArtist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.windows = append(s.windows, window)
	return []models.PerformanceWithArtist{}, nil
}

func (s *stubStore) UpdatePerformance(_ context.Context, id int64, _ models.PerformanceUpdate) (models.Performance, error) {
	return models.Performance{ID: id}, nil
}

func (s *stubStore) ConfirmPerformance(_ context.Context, id int64) error {
	s.confirms = append(s.confirms, id)
	return nil
}

func (s *stubStore) DeletePerformance(context.Context, int64) error {
	return nil
}

type stubArtists map[int64]models.Artist

func (a stubArtists) GetArtist(_ context.Context, id int64) (models.Artist, error) {
	artist, ok := a[id]
	if !ok {
		return models.Artist{}, errArtistMissing
	}
	return artist, nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	singles []models.Performance
	batches []BatchResult
}

func (n *recordingNotifier) PerformanceRequested(_ context.Context, _ string, performance models.Performance) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.singles = append(n.singles, performance)
	return nil
}

func (n *recordingNotifier) BatchRequested(_ context.Context, _ string, result BatchResult) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.batches = append(n.batches, result)
	return nil
}

func day(d int) time.Time {
	return time.Date(2026, 5, d, 19, 0, 0, 0, time.UTC)
}

func TestCreateDefaultsToScheduled(t *testing.T) {
	store := &stubStore{}
	svc := New(store, stubArtists{})

	created, err := svc.Create(context.Background(), models.Performance{ArtistID: 1, Title: "Gig", PerformanceDate: day(1)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != models.StatusScheduled {
		t.Fatalf("expected scheduled, got %s", created.Status)
	}

	created, err = svc.Create(context.Background(), models.Performance{ArtistID: 1, Title: "Gig", PerformanceDate: day(2), Status: models.StatusConfirmed})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != models.StatusConfirmed {
		t.Fatalf("expected confirmed, got %s", created.Status)
	}
}

func TestCreatePendingForcesStatusAndAlerts(t *testing.T) {
	store := &stubStore{}
	notifier := &recordingNotifier{}
	svc := New(store, stubArtists{1: {ID: 1, Name: "Test Artist"}}, WithNotifier(notifier))

	created, err := svc.CreatePending(context.Background(), models.Performance{
		ArtistID: 1, Title: "Gig", PerformanceDate: day(3), Status: models.StatusConfirmed,
	})
	if err != nil {
		t.Fatalf("CreatePending: %v", err)
	}
	if created.Status != models.StatusPending {
		t.Fatalf("expected pending, got %s", created.Status)
	}
	if len(notifier.singles) != 1 {
		t.Fatalf("expected one alert, got %d", len(notifier.singles))
	}
}

func TestApplyBatchReportsPartialSuccess(t *testing.T) {
	store := &stubStore{failOn: map[string]error{
		day(4).Format(time.DateOnly): errors.New("constraint violation"),
	}}
	notifier := &recordingNotifier{}
	svc := New(store, stubArtists{7: {ID: 7, Name: "Test Artist"}}, WithNotifier(notifier), WithLocation(time.UTC))

	result, err := svc.ApplyBatch(context.Background(), BatchRequest{
		ArtistID: 7,
		Dates:    []time.Time{day(5), day(3), day(4)},
	})
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}

	if result.Succeeded != 2 || result.Failed != 1 {
		t.Fatalf("expected 2 succeeded / 1 failed, got %+v", result)
	}
	if len(store.created) != 2 {
		t.Fatalf("expected successes to persist, got %d rows", len(store.created))
	}
	for _, p := range store.created {
		if p.Status != models.StatusPending || p.Title != "Test Artist performance request" || p.Notes != defaultBatchNote {
			t.Fatalf("unexpected created performance %+v", p)
		}
	}
	if !result.Results[0].Date.Equal(day(3)) || result.Results[1].Error == "" {
		t.Fatalf("expected results ordered by date with the failure on day 4, got %+v", result.Results)
	}
	if len(notifier.batches) != 1 {
		t.Fatalf("expected one batch alert, got %d", len(notifier.batches))
	}
}

func TestApplyBatchCollapsesSameDay(t *testing.T) {
	store := &stubStore{}
	svc := New(store, stubArtists{1: {ID: 1, Name: "Duo"}}, WithLocation(time.UTC))

	morning := time.Date(2026, 5, 6, 9, 0, 0, 0, time.UTC)
	result, err := svc.ApplyBatch(context.Background(), BatchRequest{
		ArtistID: 1,
		Dates:    []time.Time{morning, day(6), day(7)},
	})
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	if result.Succeeded != 2 || len(result.Results) != 2 {
		t.Fatalf("expected two attempts, got %+v", result)
	}
}

func TestApplyBatchValidation(t *testing.T) {
	store := &stubStore{}
	svc := New(store, stubArtists{1: {ID: 1, Name: "Duo"}}, WithLocation(time.UTC))

	if _, err := svc.ApplyBatch(context.Background(), BatchRequest{ArtistID: 1}); !errors.Is(err, ErrInvalidBatch) {
		t.Fatalf("expected ErrInvalidBatch for empty dates, got %v", err)
	}

	var many []time.Time
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i <= MaxBatchDates; i++ {
		many = append(many, start.AddDate(0, 0, i))
	}
	if _, err := svc.ApplyBatch(context.Background(), BatchRequest{ArtistID: 1, Dates: many}); !errors.Is(err, ErrInvalidBatch) {
		t.Fatalf("expected ErrInvalidBatch for too many dates, got %v", err)
	}

	if _, err := svc.ApplyBatch(context.Background(), BatchRequest{ArtistID: 99, Dates: []time.Time{day(1)}}); !errors.Is(err, errArtistMissing) {
		t.Fatalf("expected artist lookup error, got %v", err)
	}
	if len(store.created) != 0 {
		t.Fatalf("expected no creation attempts, got %d", len(store.created))
	}
}

func TestMonthlyBoundsCoverWholeMonth(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)
	store := &stubStore{}
	svc := New(store, stubArtists{}, WithLocation(loc))

	if _, err := svc.Monthly(context.Background(), 2026, time.February); err != nil {
		t.Fatalf("Monthly: %v", err)
	}

	window := store.windows[0]
	lastEvening := time.Date(2026, 2, 28, 23, 59, 59, 0, loc)
	nextMonth := time.Date(2026, 3, 1, 0, 0, 0, 0, loc)
	firstMorning := time.Date(2026, 2, 1, 0, 0, 0, 0, loc)

	inWindow := func(ts time.Time) bool {
		return !ts.Before(window.From) && ts.Before(window.To)
	}
	if !inWindow(firstMorning) || !inWindow(lastEvening) {
		t.Fatalf("expected first and last day to be included, window %+v", window)
	}
	if inWindow(nextMonth) || inWindow(firstMorning.Add(-time.Second)) {
		t.Fatalf("expected neighbouring months to be excluded, window %+v", window)
	}
}

func TestWeeklyWindow(t *testing.T) {
	store := &stubStore{}
	svc := New(store, stubArtists{}).(*service)
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	if _, err := svc.Weekly(context.Background()); err != nil {
		t.Fatalf("Weekly: %v", err)
	}
	window := store.windows[0]
	if !window.From.Equal(now) || !window.To.Equal(now.AddDate(0, 0, 7)) {
		t.Fatalf("unexpected window %+v", window)
	}
}

func TestConfirmTouchesOnlyTarget(t *testing.T) {
	store := &stubStore{}
	svc := New(store, stubArtists{})

	if err := svc.Confirm(context.Background(), 12); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if len(store.confirms) != 1 || store.confirms[0] != 12 {
		t.Fatalf("unexpected confirms %v", store.confirms)
	}
}
