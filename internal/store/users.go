package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"stagebook/internal/models"
)

// ErrInvalidUser indicates an upsert without an open id.
var ErrInvalidUser = errors.New("invalid user")

const userColumns = `id, open_id, name, email, login_method, role, created_at, updated_at, last_signed_in`

// UpsertUser creates the user or refreshes its profile fields and last sign-in time.
// Empty fields keep the stored values; an empty role keeps the stored role.
func (s *Store) UpsertUser(ctx context.Context, user models.UserUpsert) (models.User, error) {
	if !s.Available() {
		return models.User{}, ErrStoreUnavailable
	}

	openID := strings.TrimSpace(user.OpenID)
	if openID == "" {
		return models.User{}, fmt.Errorf("%w: openId is required", ErrInvalidUser)
	}

	var role any
	if user.Role != "" {
		role = string(user.Role)
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (open_id, name, email, login_method, role, last_signed_in)
		VALUES ($1, $2, $3, $4, COALESCE($5::varchar, 'user'), NOW())
		ON CONFLICT (open_id)
		DO UPDATE SET
			name = COALESCE(EXCLUDED.name, users.name),
			email = COALESCE(EXCLUDED.email, users.email),
			login_method = COALESCE(EXCLUDED.login_method, users.login_method),
			role = COALESCE($5::varchar, users.role),
			last_signed_in = NOW(),
			updated_at = NOW()
		RETURNING `+userColumns,
		openID,
		nullIfEmpty(user.Name),
		nullIfEmpty(user.Email),
		nullIfEmpty(user.LoginMethod),
		role,
	)

	stored, err := scanUser(row)
	if err != nil {
		return models.User{}, fmt.Errorf("upsert user: %w", err)
	}
	return stored, nil
}

// UserByOpenID returns the user for an open id, or nil when none exists.
func (s *Store) UserByOpenID(ctx context.Context, openID string) (*models.User, error) {
	if !s.Available() {
		return nil, nil
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE open_id = $1
	`, openID)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

func scanUser(row rowScanner) (models.User, error) {
	var (
		user                     models.User
		name, email, loginMethod sql.NullString
	)
	if err := row.Scan(
		&user.ID, &user.OpenID, &name, &email, &loginMethod, &user.Role,
		&user.CreatedAt, &user.UpdatedAt, &user.LastSignedIn,
	); err != nil {
		return models.User{}, err
	}
	user.Name = name.String
	user.Email = email.String
	user.LoginMethod = loginMethod.String
	return user, nil
}
