package httpapi

import (
	"context"
	"time"

	"stagebook/internal/app/performances"
	"stagebook/internal/models"
	"stagebook/internal/sheets"
)

type createPerformanceInput struct {
	ArtistID        int64      `json:"artistId" validate:"required,gt=0"`
	Title           string     `json:"title" validate:"required"`
	PerformanceDate *dateInput `json:"performanceDate" validate:"required"`
	Status          string     `json:"status" validate:"omitempty,oneof=pending scheduled confirmed completed cancelled"`
	Notes           string     `json:"notes"`
}

type createPendingInput struct {
	ArtistID        int64      `json:"artistId" validate:"required,gt=0"`
	Title           string     `json:"title" validate:"required"`
	PerformanceDate *dateInput `json:"performanceDate" validate:"required"`
	Notes           string     `json:"notes"`
}

type applyBatchInput struct {
	ArtistID int64        `json:"artistId" validate:"required,gt=0"`
	Dates    []*dateInput `json:"dates" validate:"required,min=1,dive,required"`
	Notes    string       `json:"notes"`
}

type listPerformancesInput struct {
	StartDate *dateInput `json:"startDate"`
	EndDate   *dateInput `json:"endDate"`
}

type updatePerformanceInput struct {
	ID              int64      `json:"id" validate:"required,gt=0"`
	ArtistID        *int64     `json:"artistId" validate:"omitempty,gt=0"`
	Title           *string    `json:"title" validate:"omitempty,min=1"`
	PerformanceDate *dateInput `json:"performanceDate"`
	Status          *string    `json:"status" validate:"omitempty,oneof=pending scheduled confirmed completed cancelled"`
	Notes           *string    `json:"notes"`
}

type monthInput struct {
	Year  int `json:"year" validate:"required,gte=1970,lte=9999"`
	Month int `json:"month" validate:"required,min=1,max=12"`
}

func (s *Server) createPerformance(ctx context.Context, c *call) (any, error) {
	var in createPerformanceInput
	if err := c.decode(&in); err != nil {
		return nil, err
	}
	return s.performances.Create(ctx, models.Performance{
		ArtistID:        in.ArtistID,
		Title:           in.Title,
		PerformanceDate: in.PerformanceDate.in(s.loc),
		Status:          models.PerformanceStatus(in.Status),
		Notes:           in.Notes,
	})
}

func (s *Server) createPendingPerformance(ctx context.Context, c *call) (any, error) {
	var in createPendingInput
	if err := c.decode(&in); err != nil {
		return nil, err
	}
	return s.performances.CreatePending(ctx, models.Performance{
		ArtistID:        in.ArtistID,
		Title:           in.Title,
		PerformanceDate: in.PerformanceDate.in(s.loc),
		Notes:           in.Notes,
	})
}

func (s *Server) applyBatch(ctx context.Context, c *call) (any, error) {
	var in applyBatchInput
	if err := c.decode(&in); err != nil {
		return nil, err
	}
	dates := make([]time.Time, 0, len(in.Dates))
	for _, d := range in.Dates {
		dates = append(dates, d.in(s.loc))
	}
	return s.performances.ApplyBatch(ctx, performances.BatchRequest{
		ArtistID: in.ArtistID,
		Dates:    dates,
		Notes:    in.Notes,
	})
}

func (s *Server) getPerformance(ctx context.Context, c *call) (any, error) {
	var in idInput
	if err := c.decode(&in); err != nil {
		return nil, err
	}
	return s.performances.Get(ctx, in.ID)
}

func (s *Server) listPerformances(ctx context.Context, c *call) (any, error) {
	var in listPerformancesInput
	if err := c.decode(&in); err != nil {
		return nil, err
	}
	window := models.PerformanceRange{From: in.StartDate.in(s.loc), To: in.EndDate.in(s.loc)}
	if in.EndDate != nil && in.EndDate.dateOnly {
		// A bare end date includes the whole day.
		window.To = window.To.AddDate(0, 0, 1)
	}
	if !window.From.IsZero() && !window.To.IsZero() && window.To.Before(window.From) {
		return nil, badRequest("endDate must not be before startDate")
	}
	return s.performances.List(ctx, window)
}

func (s *Server) updatePerformance(ctx context.Context, c *call) (any, error) {
	var in updatePerformanceInput
	if err := c.decode(&in); err != nil {
		return nil, err
	}

	update := models.PerformanceUpdate{
		ArtistID: in.ArtistID,
		Title:    in.Title,
		Notes:    in.Notes,
	}
	if in.PerformanceDate != nil {
		date := in.PerformanceDate.in(s.loc)
		update.PerformanceDate = &date
	}
	if in.Status != nil {
		status := models.PerformanceStatus(*in.Status)
		update.Status = &status
	}
	if update.IsEmpty() {
		return nil, badRequest("no fields to update")
	}
	return s.performances.Update(ctx, in.ID, update)
}

func (s *Server) confirmPerformance(ctx context.Context, c *call) (any, error) {
	var in idInput
	if err := c.decode(&in); err != nil {
		return nil, err
	}
	if err := s.performances.Confirm(ctx, in.ID); err != nil {
		return nil, err
	}
	return successResponse{Success: true}, nil
}

func (s *Server) deletePerformance(ctx context.Context, c *call) (any, error) {
	var in idInput
	if err := c.decode(&in); err != nil {
		return nil, err
	}
	if err := s.performances.Delete(ctx, in.ID); err != nil {
		return nil, err
	}
	return successResponse{Success: true}, nil
}

func (s *Server) weeklyPerformances(ctx context.Context, _ *call) (any, error) {
	return s.performances.Weekly(ctx)
}

func (s *Server) monthlyPerformances(ctx context.Context, c *call) (any, error) {
	var in monthInput
	if err := c.decode(&in); err != nil {
		return nil, err
	}
	return s.performances.Monthly(ctx, in.Year, time.Month(in.Month))
}

func (s *Server) exportMonthly(ctx context.Context, c *call) (any, error) {
	var in monthInput
	if err := c.decode(&in); err != nil {
		return nil, err
	}
	if s.exporter == nil {
		return nil, sheets.ErrExportDisabled
	}

	rows, err := s.performances.Monthly(ctx, in.Year, time.Month(in.Month))
	if err != nil {
		return nil, err
	}
	return s.exporter.ExportMonth(ctx, in.Year, time.Month(in.Month), rows)
}
