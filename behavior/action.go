// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package behavior

import (
	"fmt"
	"strings"

	"github.com/gogama/actionx/codec"
	"github.com/gogama/actionx/pipeline"
	"github.com/gogama/actionx/request"
	"github.com/samber/lo"
	"golang.org/x/net/http/httpguts"
)

// Accept returns a request behavior which sets the Accept header to
// the content types of codecs, in order of preference. It claims the
// exclusive slot "accept".
func Accept(codecs ...codec.Codec) pipeline.Behavior {
	types := lo.Uniq(lo.Map(codecs, func(c codec.Codec, _ int) string { return c.ContentType() }))
	value := strings.Join(types, ", ")
	return acceptSlot{&header{
		label: "accept",
		slot:  "accept",
		order: pipeline.OrderAccept,
		key:   "Accept",
		value: value,
	}}
}

// SetHeader returns a request behavior which sets a header to a fixed
// value on every request. SetHeader panics if key or value is not a
// valid header field.
func SetHeader(key, value string) pipeline.Behavior {
	if !httpguts.ValidHeaderFieldName(key) {
		panic(fmt.Sprintf("actionx/behavior: invalid header name %q", key))
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		panic(fmt.Sprintf("actionx/behavior: invalid value for header %s", key))
	}
	return &header{
		label: "header:" + key,
		order: pipeline.OrderParam,
		key:   key,
		value: value,
	}
}

type header struct {
	label string
	slot  string
	order int
	key   string
	value string
}

func (h *header) Order() int {
	return h.order
}

func (h *header) Enabled(_ *request.Execution) bool {
	return h.value != ""
}

func (h *header) Name() string {
	return h.label
}

func (h *header) Handle(e *request.Execution, next pipeline.Handler) error {
	e.Plan.Header.Set(h.key, h.value)
	return next(e)
}

type acceptSlot struct {
	*header
}

func (a acceptSlot) Slot() string {
	return a.slot
}
