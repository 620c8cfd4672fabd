// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package codec provides the serialization strategies used by request
// body behaviors and response decoding behaviors. The dispatcher never
// calls a codec directly.
//
// A Codec serializes values to bytes and deserializes bytes into
// values for one media type. JSON, XML, Form and YAML are built in;
// other formats plug in by implementing Codec.
package codec
