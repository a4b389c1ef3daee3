// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import "strconv"

// Identity is the resolved voter: an authenticated user when there is one,
// otherwise the source IP. The IP is kept either way since every vote
// records it and HasVoted checks it unconditionally.
type Identity struct {
	UserID *int64
	IP     string
}

// ResolveIdentity builds the voter identity from an optional authenticated
// user id and the source IP derived by the caller.
func ResolveIdentity(userID *int64, sourceIP string) Identity {
	if userID != nil {
		id := *userID
		return Identity{UserID: &id, IP: sourceIP}
	}
	return Identity{IP: sourceIP}
}

// IsUser reports whether the identity is keyed by a user.
func (i Identity) IsUser() bool {
	return i.UserID != nil
}

// Key is the value stored in vote.identity_key and covered by the
// per-choice uniqueness constraint.
func (i Identity) Key() string {
	if i.UserID != nil {
		return "user:" + strconv.FormatInt(*i.UserID, 10)
	}
	return "ip:" + i.IP
}

func (i Identity) String() string {
	return i.Key()
}
