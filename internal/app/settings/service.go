package settings

import (
	"context"

	"stagebook/internal/models"
)

// DefaultMessageTemplate seeds the outreach template on first start.
const DefaultMessageTemplate = "Hello {name}! We are now taking performance requests for {month}. " +
	"Please pick your available dates on the booking page."

// Store defines persistence operations for key/value settings.
type Store interface {
	Setting(ctx context.Context, key string) (string, bool, error)
	UpsertSetting(ctx context.Context, key, value string) error
}

// Service reads and writes settings.
type Service interface {
	Get(ctx context.Context, key string) (*string, error)
	Update(ctx context.Context, key, value string) error
	MessageTemplate(ctx context.Context) (string, error)
}

type service struct {
	store Store
}

// New constructs a settings Service.
func New(store Store) Service {
	return &service{store: store}
}

// Get returns the value for key, or nil when the key has never been set.
func (s *service) Get(ctx context.Context, key string) (*string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	value, ok, err := s.store.Setting(ctx, key)
	if err != nil || !ok {
		return nil, err
	}
	return &value, nil
}

// Update upserts the value for key.
func (s *service) Update(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.UpsertSetting(ctx, key, value)
}

// MessageTemplate returns the stored outreach template, or "" when unset.
func (s *service) MessageTemplate(ctx context.Context) (string, error) {
	value, err := s.Get(ctx, models.MessageTemplateKey)
	if err != nil || value == nil {
		return "", err
	}
	return *value, nil
}
