package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"

	"stagebook/internal/models"
)

// ErrExportDisabled indicates that no spreadsheet is configured.
var ErrExportDisabled = errors.New("spreadsheet export is not configured")

var header = []interface{}{"Date", "Time", "Artist", "Title", "Status", "Genres", "Grade", "Members", "Notes"}

// Result describes a finished export.
type Result struct {
	SpreadsheetID string `json:"spreadsheetId"`
	Sheet         string `json:"sheet"`
	Rows          int    `json:"rows"`
}

// Exporter writes monthly calendars into a Google spreadsheet.
type Exporter struct {
	srv           *sheetsv4.Service
	spreadsheetID string
	loc           *time.Location
}

// New authenticates with a service account key file.
func New(ctx context.Context, serviceAccountJSONPath, spreadsheetID string, loc *time.Location) (*Exporter, error) {
	if _, err := os.Stat(serviceAccountJSONPath); err != nil {
		return nil, fmt.Errorf("service account json: %w", err)
	}
	srv, err := sheetsv4.NewService(ctx,
		option.WithCredentialsFile(serviceAccountJSONPath),
		option.WithScopes(sheetsv4.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	if loc == nil {
		loc = time.Local
	}
	return &Exporter{srv: srv, spreadsheetID: spreadsheetID, loc: loc}, nil
}

// ExportMonth replaces the contents of the YYYY-MM tab with the given performances.
func (e *Exporter) ExportMonth(ctx context.Context, year int, month time.Month, performances []models.PerformanceWithArtist) (Result, error) {
	if e == nil {
		return Result{}, ErrExportDisabled
	}

	sheet := SheetName(year, month)
	if err := e.ensureSheet(ctx, sheet); err != nil {
		return Result{}, err
	}

	if _, err := e.srv.Spreadsheets.Values.
		Clear(e.spreadsheetID, a1Range(sheet, "A:Z"), &sheetsv4.ClearValuesRequest{}).
		Context(ctx).
		Do(); err != nil {
		return Result{}, fmt.Errorf("clear sheet %s: %w", sheet, err)
	}

	vr := &sheetsv4.ValueRange{Values: BuildRows(performances, e.loc)}
	if _, err := e.srv.Spreadsheets.Values.
		Update(e.spreadsheetID, a1Range(sheet, "A1"), vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do(); err != nil {
		return Result{}, fmt.Errorf("write sheet %s: %w", sheet, err)
	}

	return Result{SpreadsheetID: e.spreadsheetID, Sheet: sheet, Rows: len(performances)}, nil
}

func (e *Exporter) ensureSheet(ctx context.Context, sheet string) error {
	spreadsheet, err := e.srv.Spreadsheets.Get(e.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}
	for _, existing := range spreadsheet.Sheets {
		if existing.Properties != nil && existing.Properties.Title == sheet {
			return nil
		}
	}

	req := &sheetsv4.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsv4.Request{{
			AddSheet: &sheetsv4.AddSheetRequest{
				Properties: &sheetsv4.SheetProperties{Title: sheet},
			},
		}},
	}
	if _, err := e.srv.Spreadsheets.BatchUpdate(e.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", sheet, err)
	}
	return nil
}

// SheetName names the tab for a calendar month.
func SheetName(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// a1Range builds an A1 range on a quoted tab name.
func a1Range(sheet, cells string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!" + cells
}

// BuildRows renders a header followed by one row per performance.
func BuildRows(performances []models.PerformanceWithArtist, loc *time.Location) [][]interface{} {
	rows := make([][]interface{}, 0, len(performances)+1)
	rows = append(rows, header)
	for _, p := range performances {
		date := p.PerformanceDate.In(loc)
		rows = append(rows, []interface{}{
			date.Format(time.DateOnly),
			date.Format("15:04"),
			p.ArtistName,
			p.Title,
			string(p.Status),
			strings.Join(p.ArtistGenres, ", "),
			p.ArtistGrade,
			p.ArtistMemberCount,
			p.Notes,
		})
	}
	return rows
}
