package outreach

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stagebook/internal/models"
)

type fakeSender struct {
	sent   map[string]string
	failTo string
}

func (f *fakeSender) Send(_ context.Context, to, body string) error {
	if to == f.failTo {
		return errors.New("carrier rejected")
	}
	if f.sent == nil {
		f.sent = map[string]string{}
	}
	f.sent[to] = body
	return nil
}

type artistList []models.Artist

func (a artistList) ListArtistsWithPhone(context.Context) ([]models.Artist, error) {
	return a, nil
}

type fixedTemplate string

func (t fixedTemplate) MessageTemplate(context.Context) (string, error) {
	return string(t), nil
}

func TestBroadcastCountsOutcomes(t *testing.T) {
	sender := &fakeSender{failTo: "+15550000002"}
	artists := artistList{
		{ID: 1, Name: "Test Artist", Phone: "+15550000001"},
		{ID: 2, Name: "Broken Phone", Phone: "+15550000002"},
		{ID: 3, Name: "Blank", Phone: "   "},
	}

	svc := New(artists, fixedTemplate("Hi {name}, book {month}!"), sender, time.UTC)
	svc.now = func() time.Time { return time.Date(2026, 12, 15, 9, 0, 0, 0, time.UTC) }

	report, err := svc.Broadcast(context.Background())
	require.NoError(t, err)
	require.Equal(t, Report{Sent: 1, Failed: 1, Skipped: 1}, report)
	require.Equal(t, "Hi Test Artist, book January 2027!", sender.sent["+15550000001"])
}

func TestBroadcastPreconditions(t *testing.T) {
	disabled := New(artistList{}, fixedTemplate("hello"), nil, time.UTC)
	_, err := disabled.Broadcast(context.Background())
	require.ErrorIs(t, err, ErrOutreachDisabled)

	blank := New(artistList{}, fixedTemplate("  "), &fakeSender{}, time.UTC)
	_, err = blank.Broadcast(context.Background())
	require.ErrorIs(t, err, ErrEmptyTemplate)
}

func TestNextMonthUsesLocation(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)
	// 2026-01-31 20:00 UTC is already February 1st in KST.
	now := time.Date(2026, 1, 31, 20, 0, 0, 0, time.UTC)

	require.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, loc), NextMonth(now, loc))
	require.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), NextMonth(now, time.UTC))
}

func TestNewSchedulerRejectsBadSpec(t *testing.T) {
	svc := New(artistList{}, fixedTemplate("hello"), &fakeSender{}, time.UTC)

	_, err := NewScheduler(svc, "not a cron line", time.UTC)
	require.Error(t, err)

	scheduler, err := NewScheduler(svc, "0 10 1 * *", time.UTC)
	require.NoError(t, err)
	scheduler.Start()
	scheduler.Stop(context.Background())
}
