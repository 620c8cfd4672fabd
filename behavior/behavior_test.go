// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package behavior

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"testing"

	"github.com/gogama/actionx/action"
	"github.com/gogama/actionx/codec"
	"github.com/gogama/actionx/pipeline"
	"github.com/gogama/actionx/request"
	"github.com/gogama/actionx/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type user struct {
	ID   string `json:"id" xml:"id" yaml:"id"`
	Name string `json:"name,omitempty" xml:"name,omitempty" yaml:"name,omitempty"`
}

var strType = reflect.TypeOf("")

func compile(t *testing.T, b *action.Builder) *action.Descriptor {
	d, err := action.Compile(b.Definition())
	require.NoError(t, err)
	return d
}

func execution(t *testing.T, d *action.Descriptor, args ...interface{}) *request.Execution {
	p, err := request.NewPlan(d.Method, d.Path, nil)
	require.NoError(t, err)
	return request.NewExecution(context.Background(), "id", d.ID, args, p)
}

func respond(e *request.Execution, status int, contentType, body string) {
	h := http.Header{}
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	e.Response = &http.Response{StatusCode: status, Status: http.StatusText(status), Header: h}
	e.Body = []byte(body)
}

func TestParams(t *testing.T) {
	d := compile(t, action.Define("CreateUser").
		Post("/users/{id}").
		Param("id", strType, Path()).
		Param("q", nil, Query("search")).
		Param("tags", nil, Query()).
		Param("trace", strType, Header("X-Trace")).
		Param("session", strType, Cookie()).
		Param("body", nil, Body(codec.JSON)).
		Param("optional", nil, Query(), Header("X-Opt"), Cookie()))

	e := execution(t, d, "a b", "x", []string{"1", "2"}, "t1", "s1", user{ID: "42"}, nil)
	require.NoError(t, d.RequestPipeline()(e))

	require.True(t, e.Result.Pending())
	assert.Equal(t, "/users/a b", e.Plan.URL.Path)
	assert.Equal(t, "/users/a%20b", e.Plan.URL.EscapedPath())
	assert.Equal(t, "search=x&tags=1&tags=2", e.Plan.URL.RawQuery)
	assert.Equal(t, "t1", e.Plan.Header.Get("X-Trace"))
	assert.Equal(t, "", e.Plan.Header.Get("X-Opt"))
	assert.Equal(t, "session=s1", e.Plan.Header.Get("Cookie"))
	assert.Equal(t, "application/json", e.Plan.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"id":"42"}`, string(e.Plan.Body))
}

func TestPathMissing(t *testing.T) {
	d := compile(t, action.Define("GetUser").Get("/users/{id}").Param("id", nil, Path()))
	e := execution(t, d, nil)
	require.NoError(t, d.RequestPipeline()(e))
	assert.ErrorIs(t, e.Result.Err(), ErrMissing)
	assert.EqualError(t, e.Result.Err(), "actionx/behavior: missing argument for path:id")
}

func TestPathRenamed(t *testing.T) {
	d := compile(t, action.Define("GetUser").Get("/users/{user_id}").Param("user_id", nil).Param("id", nil, Path("user_id")))
	e := execution(t, d, nil, 7)
	require.NoError(t, d.RequestPipeline()(e))
	assert.Equal(t, "/users/7", e.Plan.URL.Path)
}

func TestHeaderValidation(t *testing.T) {
	t.Run("name", func(t *testing.T) {
		_, err := action.Compile(action.Define("X").Param("h", nil, Header("bad name")).Definition())
		var ce *action.ConfigError
		require.True(t, errors.As(err, &ce))
		assert.Contains(t, err.Error(), `invalid header name "bad name"`)
	})
	t.Run("value", func(t *testing.T) {
		d := compile(t, action.Define("X").Param("h", nil, Header("X-H")))
		e := execution(t, d, "a\nb")
		require.NoError(t, d.RequestPipeline()(e))
		assert.EqualError(t, e.Result.Err(), "actionx/behavior: invalid value for header X-H")
	})
}

func TestBody(t *testing.T) {
	t.Run("exclusive", func(t *testing.T) {
		_, err := action.Compile(action.Define("X").
			Param("a", nil, Body(codec.JSON)).
			Param("b", nil, Body(codec.XML)).
			Definition())
		var ce *action.ConfigError
		require.True(t, errors.As(err, &ce))
		assert.Contains(t, err.Error(), `request behaviors body:a and body:b both claim slot "body"`)
	})
	t.Run("serialize error", func(t *testing.T) {
		d := compile(t, action.Define("X").Post("/").Param("b", nil, Body(codec.Form)))
		e := execution(t, d, 42)
		require.NoError(t, d.RequestPipeline()(e))
		assert.ErrorIs(t, e.Result.Err(), codec.ErrUnsupportedType)
	})
	t.Run("nil codec", func(t *testing.T) {
		assert.PanicsWithValue(t, "actionx/behavior: nil codec", func() { Body(nil) })
	})
}

func TestAcceptAndSetHeader(t *testing.T) {
	d := compile(t, action.Define("X").Action(
		Accept(codec.JSON, codec.XML, codec.JSON),
		SetHeader("User-Agent", "actionx"),
	))
	e := execution(t, d)
	require.NoError(t, d.RequestPipeline()(e))
	assert.Equal(t, "application/json, application/xml", e.Plan.Header.Get("Accept"))
	assert.Equal(t, "actionx", e.Plan.Header.Get("User-Agent"))

	_, err := action.Compile(action.Define("Y").Action(Accept(codec.JSON), Accept(codec.XML)).Definition())
	assert.Error(t, err)

	assert.Panics(t, func() { SetHeader("bad name", "x") })
	assert.Panics(t, func() { SetHeader("X", "a\r\nb") })
}

func TestStatusCheck(t *testing.T) {
	d := compile(t, action.Define("GetUser").
		Returns(reflect.TypeOf(user{})).
		Result(JSON(), StatusCheck()))

	t.Run("ok", func(t *testing.T) {
		e := execution(t, d)
		respond(e, 200, "application/json", `{"id":"42","name":"Ada"}`)
		require.NoError(t, d.ResponsePipeline()(e))
		assert.Equal(t, user{ID: "42", Name: "Ada"}, e.Result.Value())
	})
	t.Run("not found", func(t *testing.T) {
		e := execution(t, d)
		respond(e, 404, "application/json", `{"message":"nope"}`)
		require.NoError(t, d.ResponsePipeline()(e))
		var se *StatusError
		require.True(t, errors.As(e.Result.Err(), &se))
		assert.Equal(t, 404, se.StatusCode())
		assert.Equal(t, `{"message":"nope"}`, string(se.Body))
		assert.EqualError(t, se, "actionx/behavior: unexpected HTTP status Not Found")
	})
	t.Run("retry decider", func(t *testing.T) {
		e := execution(t, d)
		respond(e, 503, "", "")
		require.NoError(t, d.ResponsePipeline()(e))
		assert.True(t, retry.DefaultDecider.Decide(&retry.Outcome{Err: e.Result.Err()}))
	})
}

func TestDecode(t *testing.T) {
	t.Run("untyped", func(t *testing.T) {
		d := compile(t, action.Define("X").Result(JSON()))
		e := execution(t, d)
		respond(e, 200, "application/json; charset=utf-8", `{"n":1}`)
		require.NoError(t, d.ResponsePipeline()(e))
		assert.Equal(t, map[string]interface{}{"n": json.Number("1")}, e.Result.Value())
	})
	t.Run("content type selects decoder", func(t *testing.T) {
		d := compile(t, action.Define("X").Returns(reflect.TypeOf(user{})).Result(JSON(), XML(), YAML()))
		e := execution(t, d)
		respond(e, 200, "application/xml", `<user><id>7</id></user>`)
		require.NoError(t, d.ResponsePipeline()(e))
		assert.Equal(t, user{ID: "7"}, e.Result.Value())

		e = execution(t, d)
		respond(e, 200, "application/yaml", "id: \"8\"\n")
		require.NoError(t, d.ResponsePipeline()(e))
		assert.Equal(t, user{ID: "8"}, e.Result.Value())
	})
	t.Run("first wins", func(t *testing.T) {
		d := compile(t, action.Define("X").Returns(reflect.TypeOf(user{})).Result(JSON(), XML()))
		e := execution(t, d)
		respond(e, 200, "", `{"id":"9"}`)
		require.NoError(t, d.ResponsePipeline()(e))
		assert.Equal(t, user{ID: "9"}, e.Result.Value())
	})
	t.Run("no match", func(t *testing.T) {
		d := compile(t, action.Define("X").Result(JSON()))
		e := execution(t, d)
		respond(e, 200, "text/plain", `hello`)
		require.NoError(t, d.ResponsePipeline()(e))
		assert.True(t, e.Result.Pending())
	})
	t.Run("empty body", func(t *testing.T) {
		d := compile(t, action.Define("X").Returns(reflect.TypeOf(user{})).Result(JSON()))
		e := execution(t, d)
		respond(e, 204, "", "")
		require.NoError(t, d.ResponsePipeline()(e))
		assert.Equal(t, user{}, e.Result.Value())
	})
	t.Run("error", func(t *testing.T) {
		d := compile(t, action.Define("X").Returns(reflect.TypeOf(user{})).Result(JSON()))
		e := execution(t, d)
		respond(e, 200, "application/json", `{"id":`)
		require.NoError(t, d.ResponsePipeline()(e))
		assert.ErrorContains(t, e.Result.Err(), "actionx/behavior: decoding application/json response")
	})
	t.Run("duplicate", func(t *testing.T) {
		_, err := action.Compile(action.Define("X").Result(JSON(), Decode(codec.JSON)).Definition())
		assert.ErrorContains(t, err, `both claim slot "decode:application/json"`)
	})
}

func TestRaw(t *testing.T) {
	t.Run("bytes", func(t *testing.T) {
		d := compile(t, action.Define("X").Result(Raw(), JSON()))
		e := execution(t, d)
		respond(e, 200, "text/plain", "hello")
		require.NoError(t, d.ResponsePipeline()(e))
		assert.Equal(t, []byte("hello"), e.Result.Value())

		e = execution(t, d)
		respond(e, 200, "application/json", `"hi"`)
		require.NoError(t, d.ResponsePipeline()(e))
		assert.Equal(t, "hi", e.Result.Value(), "raw runs last")
	})
	t.Run("string", func(t *testing.T) {
		d := compile(t, action.Define("X").Returns(strType).Result(Raw()))
		e := execution(t, d)
		respond(e, 200, "text/plain", "hello")
		require.NoError(t, d.ResponsePipeline()(e))
		assert.Equal(t, "hello", e.Result.Value())
	})
	t.Run("response", func(t *testing.T) {
		d := compile(t, action.Define("X").Returns(reflect.TypeOf((*http.Response)(nil))).Result(Raw()))
		e := execution(t, d)
		respond(e, 200, "", "")
		require.NoError(t, d.ResponsePipeline()(e))
		assert.Same(t, e.Response, e.Result.Value())
	})
	t.Run("unsupported type", func(t *testing.T) {
		_, err := action.Compile(action.Define("X").Returns(reflect.TypeOf(0)).Result(Raw()).Definition())
		assert.ErrorContains(t, err, "raw passthrough cannot produce int")
	})
	t.Run("order", func(t *testing.T) {
		assert.Greater(t, Raw().Order(), JSON().Order())
		assert.Less(t, StatusCheck().Order(), JSON().Order())
		assert.Equal(t, "raw", pipeline.NameOf(Raw()))
	})
}
