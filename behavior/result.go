// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package behavior

import (
	"fmt"
	"net/http"
	"reflect"

	"github.com/gogama/actionx/codec"
	"github.com/gogama/actionx/pipeline"
	"github.com/gogama/actionx/request"
)

// A StatusError is the outcome recorded by StatusCheck for a response
// whose status code is not 2xx.
type StatusError struct {
	// Code is the HTTP status code.
	Code int
	// Status is the HTTP status line, for example "404 Not Found".
	Status string
	// Header is the response header.
	Header http.Header
	// Body is the response body.
	Body []byte
}

func (err *StatusError) Error() string {
	return fmt.Sprintf("actionx/behavior: unexpected HTTP status %s", err.Status)
}

// StatusCode returns the HTTP status code. It lets retry deciders
// trigger on specific status codes.
func (err *StatusError) StatusCode() int {
	return err.Code
}

// StatusCheck returns a result behavior which records a *StatusError
// for any response whose status code is not 2xx. It runs before the
// decoding behaviors, so a failed response is never decoded. It claims
// the exclusive slot "status".
func StatusCheck() pipeline.Behavior {
	return statusCheck{}
}

type statusCheck struct{}

func (statusCheck) Order() int {
	return pipeline.OrderStatus
}

func (statusCheck) Enabled(e *request.Execution) bool {
	return e.Response != nil
}

func (statusCheck) Slot() string {
	return "status"
}

func (statusCheck) Name() string {
	return "status"
}

func (statusCheck) Handle(e *request.Execution, next pipeline.Handler) error {
	if c := e.StatusCode(); c < 200 || c > 299 {
		return &StatusError{
			Code:   c,
			Status: e.Response.Status,
			Header: e.Response.Header,
			Body:   e.Body,
		}
	}
	return next(e)
}

// Decode returns a result behavior which deserializes the response
// body with c. It is enabled while the result is pending and the
// response Content-Type matches c, or is absent.
//
// Once the operation is compiled, the body is decoded into a new value
// of the operation's result type. Without a result type, it is decoded
// into an interface{}. An empty body yields the zero value.
//
// Decode claims the exclusive slot "decode:" followed by c's content
// type, so an operation may declare at most one decoder per type.
func Decode(c codec.Codec) pipeline.Behavior {
	if c == nil {
		panic("actionx/behavior: nil codec")
	}
	return &decode{codec: c}
}

// JSON returns a result behavior decoding JSON responses.
func JSON() pipeline.Behavior { return Decode(codec.JSON) }

// XML returns a result behavior decoding XML responses.
func XML() pipeline.Behavior { return Decode(codec.XML) }

// YAML returns a result behavior decoding YAML responses.
func YAML() pipeline.Behavior { return Decode(codec.YAML) }

type decode struct {
	codec   codec.Codec
	returns reflect.Type
}

func (d *decode) BindResult(returns reflect.Type) (pipeline.Behavior, error) {
	return &decode{codec: d.codec, returns: returns}, nil
}

func (d *decode) Order() int {
	return pipeline.OrderDecode
}

func (d *decode) Enabled(e *request.Execution) bool {
	if !e.Result.Pending() || e.Response == nil {
		return false
	}
	ct := e.Header().Get("Content-Type")
	return ct == "" || codec.Matches(d.codec, ct)
}

func (d *decode) Slot() string {
	return "decode:" + d.codec.ContentType()
}

func (d *decode) Name() string {
	return "decode(" + d.codec.ContentType() + ")"
}

func (d *decode) Handle(e *request.Execution, next pipeline.Handler) error {
	t := d.returns
	if t == nil {
		t = reflect.TypeOf((*interface{})(nil)).Elem()
	}
	ptr, elem := codec.New(t)
	if len(e.Body) > 0 {
		if err := d.codec.Deserialize(e.Body, ptr); err != nil {
			return fmt.Errorf("actionx/behavior: decoding %s response: %w", d.codec.ContentType(), err)
		}
	}
	e.Result.SetValue(elem())
	return next(e)
}

var (
	bytesType    = reflect.TypeOf([]byte(nil))
	stringType   = reflect.TypeOf("")
	responseType = reflect.TypeOf((*http.Response)(nil))
)

// Raw returns the raw passthrough result behavior. It is the last
// resort: it runs after every other built-in result behavior and only
// records an outcome if none of them did.
//
// The outcome depends on the operation's result type: a []byte result
// (or no result type) gets the body, a string result gets the body as
// a string, and an *http.Response result gets the response itself. Any
// other result type is a configuration error. Raw claims the exclusive
// slot "raw".
func Raw() pipeline.Behavior {
	return &raw{returns: bytesType}
}

type raw struct {
	returns reflect.Type
}

func (r *raw) BindResult(returns reflect.Type) (pipeline.Behavior, error) {
	switch returns {
	case nil:
		return &raw{returns: bytesType}, nil
	case bytesType, stringType, responseType:
		return &raw{returns: returns}, nil
	}
	return nil, fmt.Errorf("raw passthrough cannot produce %v", returns)
}

func (r *raw) Order() int {
	return pipeline.OrderRaw
}

func (r *raw) Enabled(e *request.Execution) bool {
	return e.Result.Pending() && e.Response != nil
}

func (r *raw) Slot() string {
	return "raw"
}

func (r *raw) Name() string {
	return "raw"
}

func (r *raw) Handle(e *request.Execution, next pipeline.Handler) error {
	switch r.returns {
	case stringType:
		e.Result.SetValue(string(e.Body))
	case responseType:
		e.Result.SetValue(e.Response)
	default:
		e.Result.SetValue(e.Body)
	}
	return next(e)
}
