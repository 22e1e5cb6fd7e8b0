package models

import "time"

// Grade tiers used to rank performers.
const (
	GradeS = "S"
	GradeA = "A"
	GradeB = "B"
	GradeC = "C"
)

// Artist is a performer profile.
type Artist struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Genres        []string  `json:"genres"`
	Phone         string    `json:"phone,omitempty"`
	Instagram     string    `json:"instagram,omitempty"`
	Grade         string    `json:"grade,omitempty"`
	AvailableTime string    `json:"availableTime,omitempty"`
	PreferredDays []string  `json:"preferredDays"`
	Instruments   string    `json:"instruments,omitempty"`
	MemberCount   int       `json:"memberCount"`
	Notes         string    `json:"notes,omitempty"`
	IsFavorite    bool      `json:"isFavorite"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ArtistFilter narrows artist listings. Both fields are ANDed when set.
type ArtistFilter struct {
	Search string // case-insensitive substring of the name
	Genre  string // exact genre membership
}

// ArtistUpdate is a partial update; nil fields are left untouched.
type ArtistUpdate struct {
	Name          *string
	Genres        *[]string
	Phone         *string
	Instagram     *string
	Grade         *string
	AvailableTime *string
	PreferredDays *[]string
	Instruments   *string
	MemberCount   *int
	Notes         *string
	IsFavorite    *bool
}

// IsEmpty reports whether the update would change nothing.
func (u ArtistUpdate) IsEmpty() bool {
	return u.Name == nil && u.Genres == nil && u.Phone == nil && u.Instagram == nil &&
		u.Grade == nil && u.AvailableTime == nil && u.PreferredDays == nil &&
		u.Instruments == nil && u.MemberCount == nil && u.Notes == nil && u.IsFavorite == nil
}

// PublicArtist is the reduced view exposed to unauthenticated callers.
// Contact fields are intentionally absent.
type PublicArtist struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Instruments string `json:"instruments,omitempty"`
}

// ArtistStats summarises an artist's bookings.
type ArtistStats struct {
	TotalPerformances     int `json:"totalPerformances"`
	CompletedPerformances int `json:"completedPerformances"`
	UpcomingPerformances  int `json:"upcomingPerformances"`
}
