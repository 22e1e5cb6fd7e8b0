package outreach

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stagebook/internal/logging"
	"stagebook/internal/models"
)

var (
	// ErrOutreachDisabled indicates that no SMS sender is configured.
	ErrOutreachDisabled = errors.New("sms outreach is not configured")
	// ErrEmptyTemplate indicates that the message template is unset or blank.
	ErrEmptyTemplate = errors.New("message template is empty")
)

// ArtistSource lists the artists that can be contacted.
type ArtistSource interface {
	ListArtistsWithPhone(ctx context.Context) ([]models.Artist, error)
}

// TemplateSource reads the stored outreach template.
type TemplateSource interface {
	MessageTemplate(ctx context.Context) (string, error)
}

// Report counts the outcome of one broadcast.
type Report struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Service renders the message template for every artist and sends it.
type Service struct {
	artists   ArtistSource
	templates TemplateSource
	sender    Sender
	loc       *time.Location
	now       func() time.Time
}

// New constructs an outreach Service. A nil sender leaves outreach disabled.
func New(artists ArtistSource, templates TemplateSource, sender Sender, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		artists:   artists,
		templates: templates,
		sender:    sender,
		loc:       loc,
		now:       time.Now,
	}
}

// Enabled reports whether a sender is configured.
func (s *Service) Enabled() bool {
	return s != nil && s.sender != nil
}

// Broadcast sends the template to every artist with a phone number. Individual
// delivery failures are counted and logged; they do not stop the broadcast.
func (s *Service) Broadcast(ctx context.Context) (Report, error) {
	if !s.Enabled() {
		return Report{}, ErrOutreachDisabled
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	template, err := s.templates.MessageTemplate(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("load template: %w", err)
	}
	if strings.TrimSpace(template) == "" {
		return Report{}, ErrEmptyTemplate
	}

	artists, err := s.artists.ListArtistsWithPhone(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list artists: %w", err)
	}

	month := NextMonth(s.now(), s.loc)
	logger := logging.WithContext(ctx)

	var report Report
	for _, artist := range artists {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		phone := strings.TrimSpace(artist.Phone)
		if phone == "" {
			report.Skipped++
			continue
		}
		if err := s.sender.Send(ctx, phone, Render(template, artist.Name, month)); err != nil {
			report.Failed++
			logger.Warn().Err(err).Int64("artist_id", artist.ID).Msg("outreach message failed")
			continue
		}
		report.Sent++
	}

	logger.Info().
		Int("sent", report.Sent).
		Int("failed", report.Failed).
		Int("skipped", report.Skipped).
		Msg("outreach broadcast finished")
	return report, nil
}

// Render substitutes the {name} and {month} placeholders.
func Render(template, name string, month time.Time) string {
	return strings.NewReplacer(
		"{name}", name,
		"{month}", month.Format("January 2006"),
	).Replace(template)
}

// NextMonth returns the first day of the calendar month after now.
func NextMonth(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, 1, 0)
}
