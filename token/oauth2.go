// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package token

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gogama/actionx/codec"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// maxResponse bounds the size of an accepted token response.
const maxResponse = 1 << 20

// A Doer sends HTTP requests. *http.Client is a Doer.
type Doer interface {
	Do(r *http.Request) (*http.Response, error)
}

// OAuth2 is an Endpoint using the OAuth 2.0 token endpoint of an
// authorization server (RFC 6749). Fetch uses the client credentials
// grant and Refresh the refresh token grant; both authenticate the
// client with HTTP Basic authentication.
//
// If a token response has no expires_in and the access token is a JWT,
// the token expires at its exp claim. The JWT is only read, never
// verified: it is opaque to the client.
type OAuth2 struct {
	// URL is the token endpoint URL.
	URL string
	// ClientID and ClientSecret are the client credentials.
	ClientID     string
	ClientSecret string
	// Scopes are the requested scopes. They are sent with the client
	// credentials grant only.
	Scopes []string
	// Doer sends token requests. If nil, http.DefaultClient is used.
	Doer Doer

	now func() time.Time
}

// A GrantError is an error response from the token endpoint.
type GrantError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int
	// Code is the OAuth 2.0 error code, for example "invalid_client".
	Code string
	// Description is the optional human readable description.
	Description string
}

func (err *GrantError) Error() string {
	msg := fmt.Sprintf("actionx/token: token endpoint returned HTTP %d", err.StatusCode)
	if err.Code != "" {
		msg += ": " + err.Code
	}
	if err.Description != "" {
		msg += " (" + err.Description + ")"
	}
	return msg
}

// Fetch implements Endpoint using the client credentials grant.
func (o *OAuth2) Fetch(ctx context.Context) (*Record, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	if len(o.Scopes) > 0 {
		form.Set("scope", strings.Join(o.Scopes, " "))
	}
	return o.grant(ctx, form)
}

// Refresh implements Endpoint using the refresh token grant.
func (o *OAuth2) Refresh(ctx context.Context, refreshToken string) (*Record, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	return o.grant(ctx, form)
}

type tokenResponse struct {
	AccessToken      string      `json:"access_token"`
	TokenType        string      `json:"token_type"`
	ExpiresIn        interface{} `json:"expires_in"`
	RefreshToken     string      `json:"refresh_token"`
	Error            string      `json:"error"`
	ErrorDescription string      `json:"error_description"`
}

func (o *OAuth2) grant(ctx context.Context, form url.Values) (*Record, error) {
	body, err := codec.Form.Serialize(form)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.URL, strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", codec.Form.ContentType())
	req.Header.Set("Accept", codec.JSON.ContentType())
	req.SetBasicAuth(url.QueryEscape(o.ClientID), url.QueryEscape(o.ClientSecret))

	doer := o.Doer
	if doer == nil {
		doer = http.DefaultClient
	}
	resp, err := doer.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponse))
	if err != nil {
		return nil, err
	}

	var tr tokenResponse
	derr := codec.JSON.Deserialize(b, &tr)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &GrantError{StatusCode: resp.StatusCode, Code: tr.Error, Description: tr.ErrorDescription}
	}
	if derr != nil {
		return nil, fmt.Errorf("actionx/token: malformed token response: %w", derr)
	}
	if tr.AccessToken == "" {
		return nil, errors.New("actionx/token: token response has no access_token")
	}

	now := time.Now
	if o.now != nil {
		now = o.now
	}
	issued := now()
	r := &Record{
		AccessToken:  tr.AccessToken,
		TokenType:    tr.TokenType,
		RefreshToken: tr.RefreshToken,
		Issued:       issued,
	}
	if secs, ok, err := seconds(tr.ExpiresIn); err != nil {
		return nil, err
	} else if ok {
		r.Expires = issued.Add(time.Duration(secs) * time.Second)
	} else {
		r.Expires = jwtExpiry(tr.AccessToken)
	}
	return r, nil
}

// seconds interprets expires_in, which some servers send as a string.
func seconds(v interface{}) (int64, bool, error) {
	var s string
	switch x := v.(type) {
	case nil:
		return 0, false, nil
	case string:
		s = x
	case fmt.Stringer:
		s = x.String()
	default:
		s = fmt.Sprint(x)
	}
	var n int64
	if _, err := fmt.Sscan(s, &n); err != nil || n < 0 {
		return 0, false, fmt.Errorf("actionx/token: invalid expires_in %q", s)
	}
	return n, true, nil
}

func jwtExpiry(accessToken string) time.Time {
	t, err := jwt.Parse([]byte(accessToken), jwt.WithVerify(false), jwt.WithValidate(false))
	if err != nil {
		return time.Time{}
	}
	return t.Expiration()
}
