// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package token

import (
	"context"
	"net/http"

	"github.com/gogama/actionx/pipeline"
	"github.com/gogama/actionx/request"
)

// A Source supplies tokens to Authorize. *Provider is a Source.
type Source interface {
	GetToken(ctx context.Context) (*Record, error)
	Clear()
}

// Authorize returns a filter which authorizes an operation's requests
// with tokens from s.
//
// In the request phase it sets the Authorization header from
// s.GetToken. In the response phase, if the protected API answered
// 401 Unauthorized, it clears s and requests re-authorization, so the
// dispatcher repeats the invocation once with a fresh token. Both
// sides claim the exclusive slot "authorize".
func Authorize(s Source) pipeline.Filter {
	if s == nil {
		panic("actionx/token: nil source")
	}
	return pipeline.Pair{
		Request:  &authorizeRequest{s},
		Response: &authorizeResponse{s},
	}
}

type authorizeRequest struct {
	source Source
}

func (a *authorizeRequest) Order() int {
	return pipeline.OrderAuthorize
}

func (a *authorizeRequest) Enabled(_ *request.Execution) bool {
	return true
}

func (a *authorizeRequest) Slot() string {
	return "authorize"
}

func (a *authorizeRequest) Name() string {
	return "authorize"
}

func (a *authorizeRequest) Handle(e *request.Execution, next pipeline.Handler) error {
	r, err := a.source.GetToken(e.Context())
	if err != nil {
		return err
	}
	e.Plan.Header.Set("Authorization", r.Authorization())
	return next(e)
}

type authorizeResponse struct {
	source Source
}

func (a *authorizeResponse) Order() int {
	return pipeline.OrderAuthorize
}

func (a *authorizeResponse) Enabled(e *request.Execution) bool {
	return e.StatusCode() == http.StatusUnauthorized && !e.FromCache
}

func (a *authorizeResponse) Slot() string {
	return "authorize"
}

func (a *authorizeResponse) Name() string {
	return "authorize"
}

func (a *authorizeResponse) Handle(e *request.Execution, next pipeline.Handler) error {
	a.source.Clear()
	e.RequestReauthorization()
	return next(e)
}
