// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package token provides access tokens for authorization-protected
operations.

A Provider caches one token Record per identity and obtains a new one
from its Endpoint when there is none, when the cached one is about to
expire, or after Clear. Concurrent callers are serialized by a
context-aware lock, so however many invocations need a token at the
same time, at most one request reaches the endpoint per expiry cycle
and every caller observes the same *Record.

OAuth2 is an Endpoint speaking the OAuth 2.0 client credentials and
refresh token grants. Authorize is a filter which attaches the token to
requests and, when the protected API answers 401 Unauthorized, clears
the provider and asks the dispatcher for one re-authorization cycle.
*/
package token
