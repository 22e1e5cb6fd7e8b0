package httpapi

import (
	"context"

	"stagebook/internal/models"
)

type createNoticeInput struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

type updateNoticeInput struct {
	ID      int64   `json:"id" validate:"required,gt=0"`
	Title   *string `json:"title" validate:"omitempty,min=1"`
	Content *string `json:"content" validate:"omitempty,min=1"`
}

func (s *Server) createNotice(ctx context.Context, c *call) (any, error) {
	var in createNoticeInput
	if err := c.decode(&in); err != nil {
		return nil, err
	}
	return s.notices.Create(ctx, in.Title, in.Content)
}

func (s *Server) updateNotice(ctx context.Context, c *call) (any, error) {
	var in updateNoticeInput
	if err := c.decode(&in); err != nil {
		return nil, err
	}
	if in.Title == nil && in.Content == nil {
		return nil, badRequest("no fields to update")
	}
	return s.notices.Update(ctx, in.ID, models.NoticeUpdate{Title: in.Title, Content: in.Content})
}

func (s *Server) deleteNotice(ctx context.Context, c *call) (any, error) {
	var in idInput
	if err := c.decode(&in); err != nil {
		return nil, err
	}
	if err := s.notices.Delete(ctx, in.ID); err != nil {
		return nil, err
	}
	return successResponse{Success: true}, nil
}

func (s *Server) listNotices(ctx context.Context, _ *call) (any, error) {
	return s.notices.List(ctx)
}

func (s *Server) latestNotice(ctx context.Context, _ *call) (any, error) {
	notice, err := s.notices.Latest(ctx)
	if err != nil || notice == nil {
		return nil, err
	}
	return notice, nil
}
