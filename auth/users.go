// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielhkuo/encuestas/db"
	"github.com/danielhkuo/encuestas/models"
)

// CreateUser stores a new account. Usernames are unique.
func CreateUser(ctx context.Context, conn *sql.DB, username, password string, isStaff bool) (*models.User, error) {
	username = strings.TrimSpace(username)
	if len(username) < 2 || len(username) > 150 {
		return nil, errors.New("username must be 2-150 characters")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := models.User{
		Username:     username,
		PasswordHash: hash,
		IsStaff:      isStaff,
		CreatedAt:    time.Now().UTC(),
	}
	err = conn.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash, is_staff, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, u.Username, u.PasswordHash, u.IsStaff, u.CreatedAt).Scan(&u.ID)

	if db.IsUniqueViolation(err) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return &u, nil
}

// GetUser loads an account by id
func GetUser(ctx context.Context, conn *sql.DB, id int64) (*models.User, error) {
	return getUser(ctx, conn, "id", id)
}

// GetUserByName loads an account by username
func GetUserByName(ctx context.Context, conn *sql.DB, username string) (*models.User, error) {
	return getUser(ctx, conn, "username", username)
}

func getUser(ctx context.Context, conn *sql.DB, column string, value any) (*models.User, error) {
	var u models.User
	err := conn.QueryRowContext(ctx, `
		SELECT id, username, password_hash, is_staff, created_at
		FROM users
		WHERE `+column+` = $1
	`, value).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsStaff, &u.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}

// Authenticate checks a username and password pair
func Authenticate(ctx context.Context, conn *sql.DB, username, password string) (*models.User, error) {
	u, err := GetUserByName(ctx, conn, strings.TrimSpace(username))
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := CheckPassword(u.PasswordHash, password); err != nil {
		return nil, err
	}
	return u, nil
}
