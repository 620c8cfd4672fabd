// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package action

import (
	"fmt"
	"sync"
)

// A Source discovers operation metadata. DescribeOperation returns the
// definition of operation id, or an error wrapping ErrUnknownOperation
// if there is none.
//
// Implementations of Source must be safe for concurrent use by
// multiple goroutines.
type Source interface {
	DescribeOperation(id string) (*Definition, error)
}

// A Catalog is a Source holding definitions registered in code.
//
// The zero value is an empty catalog ready to use.
type Catalog struct {
	mu   sync.RWMutex
	defs map[string]*Definition
}

// NewCatalog returns a catalog containing the given definitions.
func NewCatalog(builders ...*Builder) *Catalog {
	c := &Catalog{}
	c.Add(builders...)
	return c
}

// Add registers the definitions built by builders. A later definition
// with the same ID replaces an earlier one, but only for registries
// which have not yet compiled the operation.
func (c *Catalog) Add(builders ...*Builder) {
	for _, b := range builders {
		c.Register(b.Definition())
	}
}

// Register registers def.
func (c *Catalog) Register(def *Definition) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.defs == nil {
		c.defs = make(map[string]*Definition)
	}
	c.defs[def.ID] = def
}

// DescribeOperation returns the definition registered for id.
func (c *Catalog) DescribeOperation(id string) (*Definition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.defs[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownOperation, id)
	}
	return def, nil
}
