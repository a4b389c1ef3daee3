// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/danielhkuo/encuestas/auth"
	"github.com/danielhkuo/encuestas/testutil"
)

func TestCreateUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	u, err := auth.CreateUser(ctx, db, "  alice  ", "s3cret!", true)
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if u.ID == 0 || u.Username != "alice" || !u.IsStaff || u.PasswordHash == "s3cret!" {
		t.Errorf("unexpected user: %+v", u)
	}

	got, err := auth.GetUser(ctx, db, u.ID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if got.Username != "alice" || !got.IsStaff {
		t.Errorf("GetUser() = %+v", got)
	}

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"duplicate username", "alice", "pw", auth.ErrUsernameTaken},
		{"too short", "a", "pw", nil},
		{"empty password", "bob", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.CreateUser(ctx, db, tt.username, tt.password, false)
			if err == nil {
				t.Fatal("CreateUser() should fail")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateUser() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := auth.GetUser(ctx, db, 999999); !errors.Is(err, auth.ErrUserNotFound) {
		t.Errorf("GetUser(missing) error = %v, want ErrUserNotFound", err)
	}
}

func TestAuthenticate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	testutil.CreateTestUser(t, db, "carol", "hunter2", false)

	u, err := auth.Authenticate(ctx, db, "carol", "hunter2")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if u.Username != "carol" {
		t.Errorf("Authenticate() user = %q", u.Username)
	}

	for _, tc := range []struct{ username, password string }{
		{"carol", "wrong"},
		{"nobody", "hunter2"},
		{"", ""},
	} {
		if _, err := auth.Authenticate(ctx, db, tc.username, tc.password); !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Errorf("Authenticate(%q, %q) error = %v, want ErrInvalidCredentials", tc.username, tc.password, err)
		}
	}
}
