// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth handles passwords, accounts and sessions.

# Passwords

Passwords are hashed with bcrypt at PasswordCost:

	hash, err := auth.HashPassword(pw)
	err = auth.CheckPassword(hash, pw) // ErrInvalidCredentials on mismatch

# Accounts

	u, err := auth.CreateUser(ctx, db, "alice", pw, true)
	u, err = auth.Authenticate(ctx, db, "alice", pw)

# Sessions

Sessions keep the logged in user and flash messages in a cookie signed
and encrypted with keys derived from SESSION_KEY:

	s := auth.NewSessions(cfg.SessionKey, cfg.SecureCookies)
	s.Login(w, r, u.ID, u.Username)
	id := s.CurrentUserID(r) // nil when anonymous

DeriveKey gives each use of the secret (session hashing, session
encryption, CSRF) its own key.
*/
package auth
