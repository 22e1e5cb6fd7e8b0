package sheets

import (
	"context"
	"errors"
	"testing"
	"time"

	"stagebook/internal/models"
)

func TestSheetName(t *testing.T) {
	if got := SheetName(2026, time.March); got != "2026-03" {
		t.Fatalf("unexpected sheet name %q", got)
	}
}

func TestA1RangeQuotesSheet(t *testing.T) {
	tests := []struct {
		sheet, cells, want string
	}{
		{"2026-03", "A:Z", "'2026-03'!A:Z"},
		{"2026-03", "A1", "'2026-03'!A1"},
		{"Artist's month", "A1", "'Artist''s month'!A1"},
	}
	for _, tc := range tests {
		if got := a1Range(tc.sheet, tc.cells); got != tc.want {
			t.Fatalf("a1Range(%q, %q) = %q, want %q", tc.sheet, tc.cells, got, tc.want)
		}
	}
}

func TestBuildRows(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)
	rows := BuildRows([]models.PerformanceWithArtist{{
		Performance: models.Performance{
			Title:           "Friday set",
			PerformanceDate: time.Date(2026, 3, 6, 10, 30, 0, 0, time.UTC),
			Status:          models.StatusConfirmed,
		},
		ArtistName:        "Test Artist",
		ArtistGenres:      []string{"Rock", "Jazz"},
		ArtistGrade:       "A",
		ArtistMemberCount: 3,
	}}, loc)

	if len(rows) != 2 {
		t.Fatalf("expected header plus one row, got %d", len(rows))
	}
	if rows[0][0] != "Date" {
		t.Fatalf("expected header first, got %v", rows[0])
	}
	row := rows[1]
	if row[0] != "2026-03-06" || row[1] != "19:30" || row[2] != "Test Artist" || row[4] != "confirmed" || row[5] != "Rock, Jazz" {
		t.Fatalf("unexpected row %v", row)
	}
}

func TestNilExporterIsDisabled(t *testing.T) {
	var exporter *Exporter
	if _, err := exporter.ExportMonth(context.Background(), 2026, time.May, nil); !errors.Is(err, ErrExportDisabled) {
		t.Fatalf("expected ErrExportDisabled, got %v", err)
	}
}
