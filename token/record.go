// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package token

import (
	"strings"
	"time"
)

// A Record is an access token obtained from an authorization endpoint.
//
// Records are never modified once handed out by a Provider: a refresh
// produces a new Record.
type Record struct {
	// AccessToken is the token itself.
	AccessToken string
	// TokenType is the token type, typically "Bearer".
	TokenType string
	// RefreshToken is the optional credential used to refresh the
	// token.
	RefreshToken string
	// Issued is when the record was obtained.
	Issued time.Time
	// Expires is when the token expires. The zero value means the
	// endpoint did not say, and the token is used until cleared.
	Expires time.Time
}

// Expired returns true if the token expires at or before now plus the
// safety margin skew.
func (r *Record) Expired(now time.Time, skew time.Duration) bool {
	return !r.Expires.IsZero() && !now.Add(skew).Before(r.Expires)
}

// Authorization returns the value of the Authorization request header
// carrying the token.
func (r *Record) Authorization() string {
	t := r.TokenType
	if t == "" || strings.EqualFold(t, "bearer") {
		t = "Bearer"
	}
	return t + " " + r.AccessToken
}
