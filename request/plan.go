// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	urlpkg "net/url"
	"strings"

	"golang.org/x/net/http/httpguts"
)

var (
	template, _ = http.NewRequest("GET", "", nil)
)

// A Plan contains the outgoing HTTP request being shaped for one
// invocation of an operation.
//
// The dispatcher creates a Plan from the operation's method and path
// template and hands it to the request pipeline. Request behaviors
// mutate the plan; the dispatcher converts the finished plan into an
// http.Request using ToRequest just before the send.
//
// The field structure of plan mirrors the structure of the lower-level
// http.Request with the following differences. Server-only fields are
// removed (for example Proto). Some fields are either simplified (Body)
// or removed (Trailer) because their definition in the net/http Request
// is highly general to support stream-oriented features which are
// deliberately not supported by this transaction-oriented library.
type Plan struct {
	// Method specifies the HTTP method (GET, POST, PUT, etc.).
	// An empty string means GET.
	Method string

	// URL specifies the URL to access.
	//
	// Until path parameters are resolved, URL.Path may contain
	// placeholders of the form "{name}".
	URL *urlpkg.URL

	// Header contains the request header fields to be sent by the
	// client.
	//
	// For further details, see the documentation of Request.Header in
	// the net/http package.
	Header http.Header

	// Body is the pre-buffered request body to be sent. A nil or
	// empty body indicates no request body should be sent, for example
	// on a GET or DELETE request.
	Body []byte

	// Close stipulates whether to close the connection after sending
	// the request and reading the response.
	Close bool

	// Host optionally overrides the Host header to send. If empty, the
	// value of URL.Host will be sent.
	Host string
}

// NewPlan returns a new Plan given a method, URL, and optional body.
//
// Parameter body may be nil (empty body), or it may be a string,
// []byte, io.Reader, or io.ReadCloser. If body is an io.Reader, it is
// read to the end and buffered into a []byte. If body is an
// io.ReadCloser, it is closed after buffering.
//
// The URL may be relative, for example "/users/{id}", in which case it
// is typically resolved against a base URL with ResolveReference.
func NewPlan(method, url string, body interface{}) (*Plan, error) {
	if method == "" {
		method = "GET"
	}
	if !ValidMethod(method) {
		return nil, fmt.Errorf("actionx/request: invalid method %q", method)
	}
	u, err := parseTemplate(url)
	if err != nil {
		return nil, err
	}
	u.Host = removeEmptyPort(u.Host)
	b, err := BodyBytes(body)
	if err != nil {
		return nil, err
	}
	return &Plan{
		Method: method,
		URL:    u,
		Header: make(http.Header),
		Body:   b,
		Host:   u.Host,
	}, nil
}

// ResolveReference resolves the plan's URL against base, in the manner
// of url.URL.ResolveReference, keeping any unresolved path placeholders
// intact. If base is nil the plan is unchanged.
func (p *Plan) ResolveReference(base *urlpkg.URL) {
	if base == nil {
		return
	}
	ref := *p.URL
	if ref.IsAbs() {
		return
	}
	u := *base
	u.RawPath = ""
	u.Path = strings.TrimSuffix(base.Path, "/") + "/" + strings.TrimPrefix(ref.Path, "/")
	u.RawQuery = ref.RawQuery
	u.Fragment = ref.Fragment
	p.URL = &u
	p.Host = removeEmptyPort(u.Host)
}

// SetPathParam replaces the placeholder "{name}" in the plan's URL
// path with the escaped value. An error is returned if the path does
// not contain the placeholder.
func (p *Plan) SetPathParam(name, value string) error {
	placeholder := "{" + name + "}"
	if !strings.Contains(p.URL.Path, placeholder) {
		return fmt.Errorf("actionx/request: path %q has no placeholder %s", p.URL.Path, placeholder)
	}
	u := *p.URL
	escaped := "%7B" + urlpkg.PathEscape(name) + "%7D"
	u.RawPath = strings.Replace(p.URL.EscapedPath(), escaped, urlpkg.PathEscape(value), -1)
	u.Path = strings.Replace(u.Path, placeholder, value, -1)
	p.URL = &u
	return nil
}

// AddQuery adds the key and value to the plan's URL query string. It
// appends to any existing values associated with key.
func (p *Plan) AddQuery(key, value string) {
	u := *p.URL
	q := u.Query()
	q.Add(key, value)
	u.RawQuery = q.Encode()
	p.URL = &u
}

// AddCookie adds a cookie to the request. Per RFC 6265 section 5.4,
// AddCookie does not attach more than one Cookie header field. That
// means all cookies, if any, are written into the same line,
// separated by semicolons.
func (p *Plan) AddCookie(c *http.Cookie) {
	c2 := &http.Cookie{Name: c.Name, Value: c.Value}
	s := c2.String()
	if h := p.Header.Get("Cookie"); h != "" {
		p.Header.Set("Cookie", h+"; "+s)
	} else {
		p.Header.Set("Cookie", s)
	}
}

// SetBasicAuth sets the request plan's Authorization header to use HTTP
// Basic Authentication with the provided username and password.
//
// With HTTP Basic Authentication the provided username and password
// are not encrypted.
func (p *Plan) SetBasicAuth(username, password string) {
	p.Header.Set("Authorization", "Basic "+basicAuth(username, password))
}

// Unresolved returns true if the plan's URL path still contains a
// "{name}" placeholder.
func (p *Plan) Unresolved() bool {
	i := strings.IndexByte(p.URL.Path, '{')
	return i >= 0 && strings.IndexByte(p.URL.Path[i:], '}') > 0
}

// ToRequest creates an HTTP request corresponding to the given request
// plan. The context of the new request is set to ctx, which may not be
// nil.
func (p *Plan) ToRequest(ctx context.Context) *http.Request {
	r := template.WithContext(ctx)
	r.Method = p.Method
	r.URL = p.URL
	r.Header = p.Header
	if len(p.Body) > 0 {
		r.Body = io.NopCloser(bytes.NewReader(p.Body))
		r.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(p.Body)), nil
		}
		r.ContentLength = int64(len(p.Body))
	}
	r.Close = p.Close
	r.Host = p.Host
	return r
}

// ValidMethod reports whether method is a valid HTTP method token as
// defined in RFC 7230. The empty string is valid and means GET.
func ValidMethod(method string) bool {
	return strings.IndexFunc(method, isNotToken) == -1
}

func isNotToken(r rune) bool {
	return !httpguts.IsTokenRune(r)
}

// parseTemplate parses a URL which may contain "{name}" placeholders
// in its path. Braces are not valid in url.Parse's path grammar on all
// inputs, so they are swapped out around parsing.
func parseTemplate(raw string) (*urlpkg.URL, error) {
	r := strings.NewReplacer("{", "%7B", "}", "%7D")
	u, err := urlpkg.Parse(r.Replace(raw))
	if err != nil {
		return nil, err
	}
	u.RawPath = ""
	return u, nil
}

// basicAuth is lifted verbatim from net/http/client.go.
//
// See 2 (end of page 4) https://www.ietf.org/rfc/rfc2617.txt
// "To receive authorization, the client sends the userid and password,
// separated by a single colon (":") character, within a base64
// encoded string in the credentials."
// It is not meant to be urlencoded.
func basicAuth(username, password string) string {
	auth := username + ":" + password
	return base64.StdEncoding.EncodeToString([]byte(auth))
}

// hasPort is lifted verbatim from net/http/http.go
//
// Given a string of the form "host", "host:port", or "[ipv6::address]:port",
// return true if the string includes a port.
func hasPort(s string) bool { return strings.LastIndex(s, ":") > strings.LastIndex(s, "]") }

// removeEmptyPort is lifted verbatim from net/http/http.go
//
// removeEmptyPort strips the empty port in ":port" to ""
// as mandated by RFC 3986 Section 6.2.3.
func removeEmptyPort(host string) string {
	if hasPort(host) {
		return strings.TrimSuffix(host, ":")
	}
	return host
}

// BodyBytes converts a generic body value to a byte slice for use as
// a request plan body. The body may be nil, a string, a []byte, or an
// io.Reader, which is read to the end (and closed, if it is also an
// io.Closer). Any other type is an error.
func BodyBytes(body interface{}) ([]byte, error) {
	switch x := body.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(x), nil
	case []byte:
		return x, nil
	case io.Reader:
		b, err := io.ReadAll(x)
		if c, ok := x.(io.Closer); ok {
			if cerr := c.Close(); err == nil {
				err = cerr
			}
		}
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("actionx/request: invalid body type %T (use nil, string, []byte or io.Reader)", body)
	}
}
