package httpapi

import (
	"context"
	"net/http"

	"stagebook/internal/auth"
)

type successResponse struct {
	Success bool `json:"success"`
}

type adminLoginInput struct {
	Passcode string `json:"passcode" validate:"required"`
}

func (s *Server) adminLogin(ctx context.Context, c *call) (any, error) {
	var in adminLoginInput
	if err := c.decode(&in); err != nil {
		return nil, err
	}

	session, err := s.users.AdminLogin(ctx, in.Passcode)
	if err != nil {
		return nil, err
	}

	http.SetCookie(c.w, auth.SessionCookie(session.Token, session.ExpiresAt, auth.IsSecureRequest(c.r)))
	return successResponse{Success: true}, nil
}

func (s *Server) me(_ context.Context, c *call) (any, error) {
	if c.user == nil {
		return nil, nil
	}
	return c.user, nil
}

func (s *Server) logout(_ context.Context, c *call) (any, error) {
	http.SetCookie(c.w, auth.ClearedCookie(auth.IsSecureRequest(c.r)))
	return successResponse{Success: true}, nil
}
