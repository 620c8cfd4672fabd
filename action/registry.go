// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package action

import "sync"

// A Registry compiles and caches descriptors of the operations of a
// Source. The table is owned by the registry, so two registries never
// share descriptors.
//
// A Registry is safe for concurrent use by multiple goroutines.
type Registry struct {
	source      Source
	descriptors sync.Map
}

// NewRegistry returns a registry over source.
func NewRegistry(source Source) *Registry {
	if source == nil {
		panic("actionx/action: nil source")
	}
	return &Registry{source: source}
}

// GetDescriptor returns the descriptor of operation id.
//
// The first successful call compiles the operation's definition and
// stores the descriptor; every later call returns the same pointer.
// If concurrent first calls race, each compiles, one result is kept and
// the others are discarded. Failures are not cached: each call for a
// malformed operation reports the *ConfigError again.
func (r *Registry) GetDescriptor(id string) (*Descriptor, error) {
	if d, ok := r.descriptors.Load(id); ok {
		return d.(*Descriptor), nil
	}
	def, err := r.source.DescribeOperation(id)
	if err != nil {
		return nil, err
	}
	d, err := Compile(def)
	if err != nil {
		return nil, err
	}
	actual, _ := r.descriptors.LoadOrStore(id, d)
	return actual.(*Descriptor), nil
}
