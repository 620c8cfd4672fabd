// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package action

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/gogama/actionx/pipeline"
	"github.com/gogama/actionx/request"
	"github.com/gogama/actionx/retry"
	"github.com/samber/lo"
)

// A Definition is the raw metadata of an operation, as produced by a
// Source. It is compiled into a Descriptor by Compile.
type Definition struct {
	// ID is the operation identity. It may not be empty.
	ID string
	// Name is a human readable name. If empty, ID is used.
	Name string
	// Method is the HTTP method. If empty, GET is used.
	Method string
	// Path is the path template, for example "/users/{id}". It may be
	// absolute or relative to the client's base URL.
	Path string
	// Params lists the parameters in argument order.
	Params []ParamDefinition
	// Returns is the type of a successful result, or nil if the
	// operation has no typed result.
	Returns reflect.Type
	// Actions are request behaviors declared on the operation.
	Actions []pipeline.Behavior
	// Results are response behaviors declared on the operation.
	Results []pipeline.Behavior
	// Filters take part in both phases.
	Filters []pipeline.Filter
	// Retry, if not nil, declares that invocations are retried.
	Retry *retry.Config

	errs []error
}

// A ParamDefinition is the raw metadata of one parameter.
type ParamDefinition struct {
	Name      string
	Type      reflect.Type
	Behaviors []ParamBehavior
	Rules     []Rule
}

// A ParamBehavior is a parameter behavior before it is bound to its
// parameter. Bind is called once, when the descriptor is compiled.
type ParamBehavior interface {
	Bind(p *Parameter) (pipeline.Behavior, error)
}

// A ResultBinder is a result behavior which needs the operation's
// result type. When the descriptor is compiled, the behavior is
// replaced by the return value of BindResult.
type ResultBinder interface {
	BindResult(returns reflect.Type) (pipeline.Behavior, error)
}

// A Parameter describes one parameter of an operation. Parameters are
// immutable; argument values live in each execution.
type Parameter struct {
	// Index is the position of the parameter's argument.
	Index int
	// Name is the parameter name.
	Name string
	// Type is the declared argument type, or nil for any type.
	Type reflect.Type
	// Behaviors are the bound parameter behaviors.
	Behaviors []pipeline.Behavior
	// Rules are the validation rules.
	Rules []Rule
}

// Arg returns the argument of parameter p in execution e, or nil if
// the argument is missing.
func (p *Parameter) Arg(e *request.Execution) interface{} {
	if p.Index < len(e.Args) {
		return e.Args[p.Index]
	}
	return nil
}

// A Descriptor is the compiled, immutable metadata of an operation.
// Obtain descriptors from a Registry so that each operation is
// compiled once.
type Descriptor struct {
	ID      string
	Name    string
	Method  string
	Path    string
	Params  []*Parameter
	Returns reflect.Type
	Actions []pipeline.Behavior
	Results []pipeline.Behavior
	Filters []pipeline.Filter
	Retry   *retry.Config

	request  pipeline.Handler
	response pipeline.Handler
}

// RequestPipeline returns the compiled request pipeline.
func (d *Descriptor) RequestPipeline() pipeline.Handler {
	return d.request
}

// ResponsePipeline returns the compiled response pipeline.
func (d *Descriptor) ResponsePipeline() pipeline.Handler {
	return d.response
}

// Param returns the parameter named name, or nil.
func (d *Descriptor) Param(name string) *Parameter {
	p, _ := lo.Find(d.Params, func(p *Parameter) bool { return p.Name == name })
	return p
}

// Validate checks args against the descriptor's parameters. It returns
// a *ValidationError for the first violation found.
func (d *Descriptor) Validate(args []interface{}) error {
	if len(args) != len(d.Params) {
		return &ValidationError{
			Operation: d.ID,
			Index:     -1,
			Err:       fmt.Errorf("expected %d arguments, got %d", len(d.Params), len(args)),
		}
	}
	for _, p := range d.Params {
		v := args[p.Index]
		if v != nil && p.Type != nil && !reflect.TypeOf(v).AssignableTo(p.Type) {
			return &ValidationError{
				Operation: d.ID,
				Param:     p.Name,
				Index:     p.Index,
				Value:     v,
				Err:       fmt.Errorf("%T is not assignable to %v", v, p.Type),
			}
		}
		for _, r := range p.Rules {
			if err := r.Check(v); err != nil {
				return &ValidationError{Operation: d.ID, Param: p.Name, Index: p.Index, Value: v, Err: err}
			}
		}
	}
	return nil
}

var placeholder = regexp.MustCompile(`\{([^{}/]+)\}`)

// Compile checks def and compiles it into a descriptor. All problems
// found are reported together in one *ConfigError.
//
// Compile is free of side effects, so racing compilations of the same
// definition are harmless.
func Compile(def *Definition) (*Descriptor, error) {
	if def == nil {
		return nil, &ConfigError{Err: errors.New("nil definition")}
	}
	problems := slices.Clone(def.errs)
	problem := func(format string, a ...interface{}) {
		problems = append(problems, fmt.Errorf(format, a...))
	}

	if def.ID == "" {
		problem("empty operation id")
	}
	method := strings.ToUpper(def.Method)
	if method == "" {
		method = "GET"
	}
	if !request.ValidMethod(method) {
		problem("invalid method %q", def.Method)
	}

	names := lo.Map(def.Params, func(p ParamDefinition, _ int) string { return p.Name })
	if lo.Contains(names, "") {
		problem("parameter with empty name")
	}
	for _, dup := range lo.FindDuplicates(names) {
		problem("duplicate parameter %q", dup)
	}
	for _, m := range placeholder.FindAllStringSubmatch(def.Path, -1) {
		if !lo.Contains(names, m[1]) {
			problem("path placeholder {%s} has no parameter", m[1])
		}
	}

	d := &Descriptor{
		ID:      def.ID,
		Name:    lo.Ternary(def.Name != "", def.Name, def.ID),
		Method:  method,
		Path:    def.Path,
		Returns: def.Returns,
		Filters: def.Filters,
		Retry:   def.Retry,
	}

	var req []pipeline.Behavior
	for i, pd := range def.Params {
		p := &Parameter{Index: i, Name: pd.Name, Type: pd.Type, Rules: pd.Rules}
		if lo.Contains(pd.Rules, nil) {
			problem("parameter %q has a nil rule", pd.Name)
		}
		for _, pb := range pd.Behaviors {
			if pb == nil {
				problem("parameter %q has a nil behavior", pd.Name)
				continue
			}
			b, err := pb.Bind(p)
			if err != nil {
				problem("parameter %q: %w", pd.Name, err)
				continue
			}
			p.Behaviors = append(p.Behaviors, b)
		}
		d.Params = append(d.Params, p)
		req = append(req, p.Behaviors...)
	}

	for _, b := range def.Actions {
		if b == nil {
			problem("nil action behavior")
			continue
		}
		d.Actions = append(d.Actions, b)
	}
	for _, b := range def.Results {
		if b == nil {
			problem("nil result behavior")
			continue
		}
		if rb, ok := b.(ResultBinder); ok {
			bound, err := rb.BindResult(def.Returns)
			if err != nil {
				problem("result behavior %s: %w", pipeline.NameOf(b), err)
				continue
			}
			b = bound
		}
		d.Results = append(d.Results, b)
	}
	req = append(req, d.Actions...)
	resp := slices.Clone(d.Results)
	for _, f := range def.Filters {
		if f == nil {
			problem("nil filter")
			continue
		}
		if b := f.RequestBehavior(); b != nil {
			req = append(req, b)
		}
		if b := f.ResponseBehavior(); b != nil {
			resp = append(resp, b)
		}
	}

	problems = append(problems, checkSlots("request", req)...)
	problems = append(problems, checkSlots("response", resp)...)
	if len(problems) > 0 {
		return nil, &ConfigError{Operation: def.ID, Err: errors.Join(problems...)}
	}

	d.request = pipeline.Build(pipeline.Request, req, nil)
	d.response = pipeline.Build(pipeline.Response, resp, nil)
	return d, nil
}

func checkSlots(phase string, behaviors []pipeline.Behavior) []error {
	var problems []error
	claimed := make(map[string]string)
	for _, b := range behaviors {
		x, ok := b.(pipeline.Exclusive)
		if !ok {
			continue
		}
		name := pipeline.NameOf(b)
		if prev, dup := claimed[x.Slot()]; dup {
			problems = append(problems, fmt.Errorf("%s behaviors %s and %s both claim slot %q", phase, prev, name, x.Slot()))
			continue
		}
		claimed[x.Slot()] = name
	}
	return problems
}
