// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package auth implements the identity stub server: accounts, credential
// checks and session token issuance behind /api/auth.
//
// # Architecture
//
// [Service] holds the use cases and depends only on [UserRepository],
// [sec.PasswordHasher] and [sec.TokenIssuer]. [Handler] maps them onto chi
// routes. The server is a development stand-in for the real identity API,
// so accounts live in memory and vanish on restart.
package auth

import (
	"strconv"
	"time"
)

// User is a registered account.
//
// # Rules
//   - Email is unique, compared case-insensitively.
//   - PasswordHash is produced by [sec.PasswordHasher] and never serialized.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// Subject renders the ID the way it travels in token claims.
func (user *User) Subject() string {
	return strconv.FormatInt(user.ID, 10)
}

// Profile is the public projection returned by every endpoint.
type Profile struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Profile strips credentials from the account.
func (user *User) Profile() Profile {
	return Profile{ID: user.ID, Name: user.Name, Email: user.Email}
}
