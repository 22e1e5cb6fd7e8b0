package models

import "time"

// PerformanceStatus is the lifecycle state of a booking.
type PerformanceStatus string

const (
	StatusPending   PerformanceStatus = "pending"
	StatusScheduled PerformanceStatus = "scheduled"
	StatusConfirmed PerformanceStatus = "confirmed"
	StatusCompleted PerformanceStatus = "completed"
	StatusCancelled PerformanceStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s PerformanceStatus) Valid() bool {
	switch s {
	case StatusPending, StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Performance is a booking of one artist on one date.
type Performance struct {
	ID              int64             `json:"id"`
	ArtistID        int64             `json:"artistId"`
	Title           string            `json:"title"`
	PerformanceDate time.Time         `json:"performanceDate"`
	Status          PerformanceStatus `json:"status"`
	Notes           string            `json:"notes,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// PerformanceWithArtist carries the artist display fields joined onto a performance.
// Artist fields are empty when the artist row is missing.
type PerformanceWithArtist struct {
	Performance
	ArtistName        string   `json:"artistName,omitempty"`
	ArtistGenres      []string `json:"artistGenres,omitempty"`
	ArtistGrade       string   `json:"artistGrade,omitempty"`
	ArtistInstruments string   `json:"artistInstruments,omitempty"`
	ArtistMemberCount int      `json:"artistMemberCount,omitempty"`
}

// PerformanceUpdate is a partial update; nil fields are left untouched.
type PerformanceUpdate struct {
	ArtistID        *int64
	Title           *string
	PerformanceDate *time.Time
	Status          *PerformanceStatus
	Notes           *string
}

// IsEmpty reports whether the update would change nothing.
func (u PerformanceUpdate) IsEmpty() bool {
	return u.ArtistID == nil && u.Title == nil && u.PerformanceDate == nil && u.Status == nil && u.Notes == nil
}

// PerformanceRange bounds a listing by date. Zero values are open ends.
type PerformanceRange struct {
	From time.Time
	To   time.Time
}
