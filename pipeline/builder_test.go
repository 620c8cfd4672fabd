// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/gogama/actionx/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	t.Run("ascending order", testBuildAscendingOrder)
	t.Run("ties keep declaration order", testBuildTies)
	t.Run("wrapping", testBuildWrapping)
	t.Run("short circuit", testBuildShortCircuit)
	t.Run("disabled", testBuildDisabled)
	t.Run("request mode error", testBuildRequestModeError)
	t.Run("response mode error", testBuildResponseModeError)
	t.Run("terminal error", testBuildTerminalError)
	t.Run("nil terminal", testBuildNilTerminal)
}

func testBuildAscendingOrder(t *testing.T) {
	const n = 20
	var trace []string
	behaviors := make([]Behavior, n)
	for i := 0; i < n; i++ {
		behaviors[i] = tracer(&trace, fmt.Sprintf("b%02d", i), i*10)
	}
	r := rand.New(rand.NewSource(1))
	r.Shuffle(n, func(i, j int) { behaviors[i], behaviors[j] = behaviors[j], behaviors[i] })
	h := Build(Request, behaviors, nil)
	require.NoError(t, h(&request.Execution{}))
	require.Len(t, trace, n)
	for i := 0; i < n; i++ {
		assert.Equal(t, fmt.Sprintf("b%02d", i), trace[i])
	}
}

func testBuildTies(t *testing.T) {
	var trace []string
	behaviors := []Behavior{
		tracer(&trace, "c", 1),
		tracer(&trace, "a", 0),
		tracer(&trace, "d", 1),
		tracer(&trace, "b", 0),
	}
	h := Build(Request, behaviors, nil)
	require.NoError(t, h(&request.Execution{}))
	assert.Equal(t, []string{"a", "b", "c", "d"}, trace)
	assert.Equal(t, "c", NameOf(behaviors[0]), "input slice must not be reordered")
}

func testBuildWrapping(t *testing.T) {
	var trace []string
	wrap := func(name string, order int) Behavior {
		return &Func{Label: name, Index: order, Fn: func(e *request.Execution, next Handler) error {
			trace = append(trace, name+" in")
			err := next(e)
			trace = append(trace, name+" out")
			return err
		}}
	}
	terminal := func(e *request.Execution) error {
		trace = append(trace, "terminal")
		return nil
	}
	h := Build(Request, []Behavior{wrap("inner", 2), wrap("outer", 1)}, terminal)
	require.NoError(t, h(&request.Execution{}))
	assert.Equal(t, []string{"outer in", "inner in", "terminal", "inner out", "outer out"}, trace)
}

func testBuildShortCircuit(t *testing.T) {
	var trace []string
	hit := &Func{Label: "hit", Index: 1, Fn: func(e *request.Execution, next Handler) error {
		trace = append(trace, "hit")
		e.Result.SetValue("cached")
		return nil
	}}
	h := Build(Request, []Behavior{tracer(&trace, "before", 0), hit, tracer(&trace, "after", 2)}, nil)
	e := &request.Execution{}
	require.NoError(t, h(e))
	assert.Equal(t, []string{"before", "hit"}, trace)
	assert.Equal(t, "cached", e.Result.Value())
}

func testBuildDisabled(t *testing.T) {
	var trace []string
	off := &Func{Label: "off", Index: 0, When: func(e *request.Execution) bool { return e.Attempt > 0 },
		Fn: func(e *request.Execution, next Handler) error {
			trace = append(trace, "off")
			return nil
		}}
	h := Build(Request, []Behavior{off, tracer(&trace, "on", 1)}, nil)
	require.NoError(t, h(&request.Execution{}))
	assert.Equal(t, []string{"on"}, trace)
	trace = nil
	require.NoError(t, h(&request.Execution{Attempt: 1}))
	assert.Equal(t, []string{"off"}, trace)
}

func testBuildRequestModeError(t *testing.T) {
	var trace []string
	boom := errors.New("boom")
	h := Build(Request, []Behavior{
		Before("fail", 0, func(e *request.Execution) error { return boom }),
		tracer(&trace, "later", 1),
	}, nil)
	e := &request.Execution{}
	require.NoError(t, h(e))
	assert.Empty(t, trace)
	assert.Same(t, boom, e.Result.Err())
}

func testBuildResponseModeError(t *testing.T) {
	var trace []string
	boom := errors.New("boom")
	h := Build(Response, []Behavior{
		Before("fail", 0, func(e *request.Execution) error { return boom }),
		tracer(&trace, "observer", 1),
	}, nil)
	e := &request.Execution{}
	require.NoError(t, h(e))
	assert.Equal(t, []string{"observer"}, trace, "later response behaviors still run")
	assert.Same(t, boom, e.Result.Err())
}

func testBuildTerminalError(t *testing.T) {
	boom := errors.New("terminal")
	h := Build(Request, nil, func(e *request.Execution) error { return boom })
	e := &request.Execution{}
	require.NoError(t, h(e))
	assert.Same(t, boom, e.Result.Err())
}

func testBuildNilTerminal(t *testing.T) {
	e := &request.Execution{}
	require.NoError(t, Build(Response, nil, nil)(e))
	assert.True(t, e.Result.Pending())
}

func TestResultMutualExclusion(t *testing.T) {
	boom := errors.New("later failure")
	decoded := map[string]string{"id": "42"}
	t.Run("value stands", func(t *testing.T) {
		var trace []string
		h := Build(Response, []Behavior{
			Before("decode", 0, func(e *request.Execution) error {
				e.Result.SetValue(decoded)
				return nil
			}),
			Before("reject", 1, func(e *request.Execution) error { return boom }),
			tracer(&trace, "observer", 2),
		}, nil)
		e := &request.Execution{}
		require.NoError(t, h(e))
		v, err := e.Result.Outcome()
		assert.Equal(t, decoded, v)
		assert.NoError(t, err)
		assert.Equal(t, request.HasValue, e.Result.State())
		assert.Equal(t, []string{"observer"}, trace)
	})
	t.Run("first error stands", func(t *testing.T) {
		first := errors.New("first failure")
		h := Build(Response, []Behavior{
			Before("status", 0, func(e *request.Execution) error { return first }),
			Before("reject", 1, func(e *request.Execution) error { return boom }),
		}, nil)
		e := &request.Execution{}
		require.NoError(t, h(e))
		assert.Same(t, first, e.Result.Err())
	})
	t.Run("request mode overwrites", func(t *testing.T) {
		h := Build(Request, []Behavior{
			After("reject", 0, func(e *request.Execution) error { return boom }),
			Before("stub", 1, func(e *request.Execution) error {
				e.Result.SetValue(decoded)
				return nil
			}),
		}, nil)
		e := &request.Execution{}
		require.NoError(t, h(e))
		assert.Same(t, boom, e.Result.Err())
		assert.Nil(t, e.Result.Value())
	})
}

func TestAfter(t *testing.T) {
	var trace []string
	h := Build(Request, []Behavior{
		After("after", 0, func(e *request.Execution) error {
			trace = append(trace, "after")
			return nil
		}),
		tracer(&trace, "inner", 1),
	}, nil)
	require.NoError(t, h(&request.Execution{}))
	assert.Equal(t, []string{"inner", "after"}, trace)
}

func TestNameOf(t *testing.T) {
	assert.Equal(t, "x", NameOf(&Func{Label: "x"}))
	assert.Equal(t, "github.com/gogama/actionx/pipeline.anon", NameOf(anon{}))
}

type anon struct{}

func (anon) Order() int                                      { return 0 }
func (anon) Enabled(_ *request.Execution) bool               { return true }
func (anon) Handle(e *request.Execution, next Handler) error { return next(e) }

func tracer(trace *[]string, name string, order int) Behavior {
	return Before(name, order, func(_ *request.Execution) error {
		*trace = append(*trace, name)
		return nil
	})
}
