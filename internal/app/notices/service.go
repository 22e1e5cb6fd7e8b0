package notices

import (
	"context"

	"stagebook/internal/models"
)

// Store defines persistence operations for notices.
type Store interface {
	CreateNotice(ctx context.Context, title, content string) (models.Notice, error)
	ListNotices(ctx context.Context) ([]models.Notice, error)
	LatestNotice(ctx context.Context) (*models.Notice, error)
	UpdateNotice(ctx context.Context, id int64, update models.NoticeUpdate) (models.Notice, error)
	DeleteNotice(ctx context.Context, id int64) error
}

// Service manages site announcements.
type Service interface {
	Create(ctx context.Context, title, content string) (models.Notice, error)
	List(ctx context.Context) ([]models.Notice, error)
	Latest(ctx context.Context) (*models.Notice, error)
	Update(ctx context.Context, id int64, update models.NoticeUpdate) (models.Notice, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	store Store
}

// New constructs a notices Service.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Create(ctx context.Context, title, content string) (models.Notice, error) {
	if err := ctx.Err(); err != nil {
		return models.Notice{}, err
	}
	return s.store.CreateNotice(ctx, title, content)
}

func (s *service) List(ctx context.Context) ([]models.Notice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListNotices(ctx)
}

func (s *service) Latest(ctx context.Context) (*models.Notice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.LatestNotice(ctx)
}

func (s *service) Update(ctx context.Context, id int64, update models.NoticeUpdate) (models.Notice, error) {
	if err := ctx.Err(); err != nil {
		return models.Notice{}, err
	}
	return s.store.UpdateNotice(ctx, id, update)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteNotice(ctx, id)
}
