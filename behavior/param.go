// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package behavior

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/gogama/actionx/action"
	"github.com/gogama/actionx/codec"
	"github.com/gogama/actionx/pipeline"
	"github.com/gogama/actionx/request"
	"golang.org/x/net/http/httpguts"
)

// ErrMissing is returned by a Path behavior whose argument is nil.
var ErrMissing = errors.New("actionx/behavior: missing argument")

// A paramFunc applies one argument to the plan. It is only called for
// non-nil arguments.
type paramFunc func(e *request.Execution, name string, v interface{}) error

// param is a parameter behavior before binding.
type param struct {
	kind     string
	name     string
	slot     string
	required bool
	check    func(name string) error
	apply    paramFunc
}

func (p *param) Bind(ap *action.Parameter) (pipeline.Behavior, error) {
	name := p.name
	if name == "" {
		name = ap.Name
	}
	if p.check != nil {
		if err := p.check(name); err != nil {
			return nil, err
		}
	}
	return &bound{param: p, ap: ap, name: name}, nil
}

type bound struct {
	*param
	ap   *action.Parameter
	name string
}

func (b *bound) Order() int {
	return pipeline.OrderParam
}

func (b *bound) Enabled(_ *request.Execution) bool {
	return true
}

func (b *bound) Name() string {
	return b.kind + ":" + b.name
}

func (b *bound) Handle(e *request.Execution, next pipeline.Handler) error {
	v := b.ap.Arg(e)
	if v == nil {
		if b.required {
			return fmt.Errorf("%w for %s", ErrMissing, b.Name())
		}
		return next(e)
	}
	if err := b.apply(e, b.name, v); err != nil {
		return err
	}
	return next(e)
}

// boundSlot is a bound parameter behavior claiming an exclusive slot.
type boundSlot struct {
	*bound
}

func (b boundSlot) Slot() string {
	return b.slot
}

func bindSlot(p *param) action.ParamBehavior {
	return slotBinder{p}
}

type slotBinder struct {
	*param
}

func (s slotBinder) Bind(ap *action.Parameter) (pipeline.Behavior, error) {
	b, err := s.param.Bind(ap)
	if err != nil {
		return nil, err
	}
	return boundSlot{b.(*bound)}, nil
}

func nameOf(names []string) string {
	if len(names) > 0 {
		return names[0]
	}
	return ""
}

// Path returns a parameter behavior which substitutes the argument for
// the placeholder "{name}" in the path template. The name defaults to
// the parameter name. A nil argument is an error.
func Path(name ...string) action.ParamBehavior {
	return &param{
		kind:     "path",
		name:     nameOf(name),
		required: true,
		apply: func(e *request.Execution, name string, v interface{}) error {
			return e.Plan.SetPathParam(name, format(v))
		},
	}
}

// Query returns a parameter behavior which adds the argument to the
// query string. A slice argument adds one value per element. A nil
// argument adds nothing.
func Query(name ...string) action.ParamBehavior {
	return &param{
		kind: "query",
		name: nameOf(name),
		apply: func(e *request.Execution, name string, v interface{}) error {
			for _, s := range formatAll(v) {
				e.Plan.AddQuery(name, s)
			}
			return nil
		},
	}
}

// Header returns a parameter behavior which adds the argument as a
// request header. A slice argument adds one value per element. A nil
// argument adds nothing.
func Header(name ...string) action.ParamBehavior {
	return &param{
		kind:  "header",
		name:  nameOf(name),
		check: checkHeaderName,
		apply: func(e *request.Execution, name string, v interface{}) error {
			for _, s := range formatAll(v) {
				if !httpguts.ValidHeaderFieldValue(s) {
					return fmt.Errorf("actionx/behavior: invalid value for header %s", name)
				}
				e.Plan.Header.Add(name, s)
			}
			return nil
		},
	}
}

// Cookie returns a parameter behavior which sends the argument as a
// cookie. A nil argument sends nothing.
func Cookie(name ...string) action.ParamBehavior {
	return &param{
		kind: "cookie",
		name: nameOf(name),
		apply: func(e *request.Execution, name string, v interface{}) error {
			e.Plan.AddCookie(&http.Cookie{Name: name, Value: format(v)})
			return nil
		},
	}
}

// Body returns a parameter behavior which serializes the argument with
// c into the request body and sets the Content-Type header. The
// behavior claims the exclusive slot "body". A nil argument sends no
// body.
func Body(c codec.Codec) action.ParamBehavior {
	if c == nil {
		panic("actionx/behavior: nil codec")
	}
	return bindSlot(&param{
		kind: "body",
		slot: "body",
		apply: func(e *request.Execution, _ string, v interface{}) error {
			b, err := c.Serialize(v)
			if err != nil {
				return fmt.Errorf("actionx/behavior: serializing body: %w", err)
			}
			e.Plan.Body = b
			e.Plan.Header.Set("Content-Type", c.ContentType())
			return nil
		},
	})
}

func checkHeaderName(name string) error {
	if !httpguts.ValidHeaderFieldName(name) {
		return fmt.Errorf("invalid header name %q", name)
	}
	return nil
}

func format(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

func formatAll(v interface{}) []string {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8 {
		s := make([]string, rv.Len())
		for i := range s {
			s[i] = format(rv.Index(i).Interface())
		}
		return s
	}
	return []string{format(v)}
}
