package httpapi

import (
	"context"
	"strings"

	"stagebook/internal/models"
)

type listArtistsInput struct {
	Search string `json:"search"`
	Genre  string `json:"genre"`
}

type searchPublicInput struct {
	Name string `json:"name" validate:"required,min=1"`
}

type createArtistInput struct {
	Name          string   `json:"name" validate:"required"`
	Genre         string   `json:"genre"`
	Genres        []string `json:"genres" validate:"omitempty,dive,excludesall=0x2C"`
	Phone         string   `json:"phone"`
	Instagram     string   `json:"instagram"`
	Grade         string   `json:"grade" validate:"omitempty,oneof=S A B C s a b c"`
	AvailableTime string   `json:"availableTime"`
	PreferredDays []string `json:"preferredDays" validate:"omitempty,dive,excludesall=0x2C"`
	Instruments   string   `json:"instruments"`
	MemberCount   *int     `json:"memberCount" validate:"omitempty,min=1"`
	Notes         string   `json:"notes"`
}

type updateArtistInput struct {
	ID            int64     `json:"id" validate:"required,gt=0"`
	Name          *string   `json:"name" validate:"omitempty,min=1"`
	Genre         *string   `json:"genre"`
	Genres        *[]string `json:"genres" validate:"omitempty,dive,excludesall=0x2C"`
	Phone         *string   `json:"phone"`
	Instagram     *string   `json:"instagram"`
	Grade         *string   `json:"grade" validate:"omitempty,oneof=S A B C s a b c"`
	AvailableTime *string   `json:"availableTime"`
	PreferredDays *[]string `json:"preferredDays" validate:"omitempty,dive,excludesall=0x2C"`
	Instruments   *string   `json:"instruments"`
	MemberCount   *int      `json:"memberCount" validate:"omitempty,min=1"`
	Notes         *string   `json:"notes"`
	IsFavorite    *bool     `json:"isFavorite"`
}

type favoriteResponse struct {
	IsFavorite bool `json:"isFavorite"`
}

// splitGenres turns the comma-delimited genre field into a list.
func splitGenres(genre string) []string {
	if strings.TrimSpace(genre) == "" {
		return nil
	}
	return strings.Split(genre, ",")
}

func (s *Server) listArtists(ctx context.Context, c *call) (any, error) {
	var in listArtistsInput
	if err := c.decode(&in); err != nil {
		return nil, err
	}
	return s.artists.List(ctx, models.ArtistFilter{Search: in.Search, Genre: in.Genre})
}

func (s *Server) searchPublicArtists(ctx context.Context, c *call) (any, error) {
	var in searchPublicInput
	if err := c.decode(&in); err != nil {
		return nil, err
	}
	return s.artists.SearchPublic(ctx, in.Name)
}

func (s *Server) createArtist(ctx context.Context, c *call) (any, error) {
	var in createArtistInput
	if err := c.decode(&in); err != nil {
		return nil, err
	}

	genres := append(append([]string{}, in.Genres...), splitGenres(in.Genre)...)
	memberCount := 1
	if in.MemberCount != nil {
		memberCount = *in.MemberCount
	}

	return s.artists.Create(ctx, models.Artist{
		Name:          in.Name,
		Genres:        genres,
		Phone:         in.Phone,
		Instagram:     in.Instagram,
		Grade:         in.Grade,
		AvailableTime: in.AvailableTime,
		PreferredDays: in.PreferredDays,
		Instruments:   in.Instruments,
		MemberCount:   memberCount,
		Notes:         in.Notes,
	})
}

func (s *Server) getArtist(ctx context.Context, c *call) (any, error) {
	var in idInput
	if err := c.decode(&in); err != nil {
		return nil, err
	}
	return s.artists.Get(ctx, in.ID)
}

func (s *Server) updateArtist(ctx context.Context, c *call) (any, error) {
	var in updateArtistInput
	if err := c.decode(&in); err != nil {
		return nil, err
	}

	update := models.ArtistUpdate{
		Name:          in.Name,
		Genres:        in.Genres,
		Phone:         in.Phone,
		Instagram:     in.Instagram,
		Grade:         in.Grade,
		AvailableTime: in.AvailableTime,
		PreferredDays: in.PreferredDays,
		Instruments:   in.Instruments,
		MemberCount:   in.MemberCount,
		Notes:         in.Notes,
		IsFavorite:    in.IsFavorite,
	}
	if update.Genres == nil && in.Genre != nil {
		genres := splitGenres(*in.Genre)
		update.Genres = &genres
	}
	if update.IsEmpty() {
		return nil, badRequest("no fields to update")
	}

	return s.artists.Update(ctx, in.ID, update)
}

func (s *Server) toggleFavorite(ctx context.Context, c *call) (any, error) {
	var in idInput
	if err := c.decode(&in); err != nil {
		return nil, err
	}
	favorite, err := s.artists.ToggleFavorite(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	return favoriteResponse{IsFavorite: favorite}, nil
}

func (s *Server) deleteArtist(ctx context.Context, c *call) (any, error) {
	var in idInput
	if err := c.decode(&in); err != nil {
		return nil, err
	}
	if err := s.artists.Delete(ctx, in.ID); err != nil {
		return nil, err
	}
	return successResponse{Success: true}, nil
}

func (s *Server) artistStats(ctx context.Context, c *call) (any, error) {
	var in idInput
	if err := c.decode(&in); err != nil {
		return nil, err
	}
	return s.artists.Stats(ctx, in.ID)
}
