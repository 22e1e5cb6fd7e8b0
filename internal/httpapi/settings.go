package httpapi

import (
	"context"

	"stagebook/internal/outreach"
)

type settingKeyInput struct {
	Key string `json:"key" validate:"required"`
}

type updateSettingInput struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value"`
}

func (s *Server) getSetting(ctx context.Context, c *call) (any, error) {
	var in settingKeyInput
	if err := c.decode(&in); err != nil {
		return nil, err
	}
	value, err := s.settings.Get(ctx, in.Key)
	if err != nil || value == nil {
		return nil, err
	}
	return *value, nil
}

func (s *Server) updateSetting(ctx context.Context, c *call) (any, error) {
	var in updateSettingInput
	if err := c.decode(&in); err != nil {
		return nil, err
	}
	if err := s.settings.Update(ctx, in.Key, in.Value); err != nil {
		return nil, err
	}
	return successResponse{Success: true}, nil
}

func (s *Server) broadcastTemplate(ctx context.Context, _ *call) (any, error) {
	if s.broadcaster == nil {
		return nil, outreach.ErrOutreachDisabled
	}
	return s.broadcaster.Broadcast(ctx)
}
