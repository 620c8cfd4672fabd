// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package action

import (
	"fmt"
	"reflect"

	"github.com/gogama/actionx/pipeline"
	"github.com/gogama/actionx/retry"
)

// A Builder defines an operation fluently. Obtain one with Define.
//
// Builder methods never fail: mistakes are remembered and reported as a
// *ConfigError when the definition is compiled.
type Builder struct {
	def Definition
}

// Define starts the definition of operation id.
func Define(id string) *Builder {
	return &Builder{def: Definition{ID: id}}
}

// Named sets the human readable name of the operation.
func (b *Builder) Named(name string) *Builder {
	b.def.Name = name
	return b
}

// Method sets the HTTP method and path template.
func (b *Builder) Method(method, path string) *Builder {
	b.def.Method = method
	b.def.Path = path
	return b
}

// Get is shorthand for Method("GET", path).
func (b *Builder) Get(path string) *Builder { return b.Method("GET", path) }

// Post is shorthand for Method("POST", path).
func (b *Builder) Post(path string) *Builder { return b.Method("POST", path) }

// Put is shorthand for Method("PUT", path).
func (b *Builder) Put(path string) *Builder { return b.Method("PUT", path) }

// Patch is shorthand for Method("PATCH", path).
func (b *Builder) Patch(path string) *Builder { return b.Method("PATCH", path) }

// Delete is shorthand for Method("DELETE", path).
func (b *Builder) Delete(path string) *Builder { return b.Method("DELETE", path) }

// Param appends a parameter. Each item must be a ParamBehavior or a
// Rule; anything else is a configuration error.
func (b *Builder) Param(name string, typ reflect.Type, items ...interface{}) *Builder {
	pd := ParamDefinition{Name: name, Type: typ}
	for _, item := range items {
		switch x := item.(type) {
		case ParamBehavior:
			pd.Behaviors = append(pd.Behaviors, x)
		case Rule:
			pd.Rules = append(pd.Rules, x)
		default:
			b.def.errs = append(b.def.errs, fmt.Errorf("parameter %q: %T is neither a behavior nor a rule", name, item))
		}
	}
	b.def.Params = append(b.def.Params, pd)
	return b
}

// Returns sets the result type.
func (b *Builder) Returns(t reflect.Type) *Builder {
	b.def.Returns = t
	return b
}

// Action appends request behaviors.
func (b *Builder) Action(behaviors ...pipeline.Behavior) *Builder {
	b.def.Actions = append(b.def.Actions, behaviors...)
	return b
}

// Result appends response behaviors.
func (b *Builder) Result(behaviors ...pipeline.Behavior) *Builder {
	b.def.Results = append(b.def.Results, behaviors...)
	return b
}

// Filter appends filters.
func (b *Builder) Filter(filters ...pipeline.Filter) *Builder {
	b.def.Filters = append(b.def.Filters, filters...)
	return b
}

// Retry declares the retry behavior of the operation.
func (b *Builder) Retry(c *retry.Config) *Builder {
	b.def.Retry = c
	return b
}

// Definition returns a copy of the definition built so far.
func (b *Builder) Definition() *Definition {
	def := b.def
	def.Params = append([]ParamDefinition(nil), b.def.Params...)
	def.Actions = append([]pipeline.Behavior(nil), b.def.Actions...)
	def.Results = append([]pipeline.Behavior(nil), b.def.Results...)
	def.Filters = append([]pipeline.Filter(nil), b.def.Filters...)
	def.errs = append([]error(nil), b.def.errs...)
	return &def
}
