// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package action describes remote operations.

An operation is defined once with the fluent builder:

	def := action.Define("GetUser").
		Get("/users/{id}").
		Param("id", reflect.TypeOf(""), behavior.Path(), action.Required()).
		Returns(reflect.TypeOf(User{})).
		Result(behavior.StatusCheck(), behavior.JSON())

Definitions are collected in a Catalog, or any other Source, and
compiled into immutable Descriptors by a Registry. A Registry compiles
each operation at most once and returns the same *Descriptor on every
later lookup, so a descriptor's compiled request and response pipelines
are reused by every invocation.

Malformed definitions fail at the first GetDescriptor call with a
*ConfigError. Arguments which violate a parameter's rules fail
Descriptor.Validate with a *ValidationError, before any request work
is done.
*/
package action
