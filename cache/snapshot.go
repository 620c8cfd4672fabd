// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cache

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"time"
)

// A Snapshot is a captured HTTP response, complete enough to rebuild a
// response which response behaviors cannot tell from a live one.
//
// Snapshots are immutable once stored.
type Snapshot struct {
	StatusCode int         `json:"status_code"`
	Status     string      `json:"status"`
	Proto      string      `json:"proto,omitempty"`
	Header     http.Header `json:"header,omitempty"`
	Body       []byte      `json:"body,omitempty"`
	// Expires is the instant after which the snapshot reads as absent.
	// The zero value never expires.
	Expires time.Time `json:"expires"`
}

// Capture returns a snapshot of resp, whose body has already been read
// into body. The header and body are copied.
func Capture(resp *http.Response, body []byte, expires time.Time) *Snapshot {
	return &Snapshot{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Proto:      resp.Proto,
		Header:     resp.Header.Clone(),
		Body:       bytes.Clone(body),
		Expires:    expires,
	}
}

// Expired returns true if the snapshot has expired at now.
func (s *Snapshot) Expired(now time.Time) bool {
	return !s.Expires.IsZero() && !now.Before(s.Expires)
}

// Response rebuilds an HTTP response from the snapshot, as the answer
// to req. Every call returns a fresh response whose header and body
// may be changed without affecting the snapshot.
func (s *Snapshot) Response(req *http.Request) *http.Response {
	proto := s.Proto
	if proto == "" {
		proto = "HTTP/1.1"
	}
	major, minor, ok := http.ParseHTTPVersion(proto)
	if !ok {
		major, minor = 1, 1
	}
	status := s.Status
	if status == "" {
		status = strconv.Itoa(s.StatusCode) + " " + http.StatusText(s.StatusCode)
	}
	header := s.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	return &http.Response{
		Status:        status,
		StatusCode:    s.StatusCode,
		Proto:         proto,
		ProtoMajor:    major,
		ProtoMinor:    minor,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(s.Body)),
		ContentLength: int64(len(s.Body)),
		Request:       req,
	}
}
