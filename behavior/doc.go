// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package behavior provides the built-in behaviors which shape an
// operation's request from its arguments and turn its response into a
// result.
//
// Parameter behaviors (Path, Query, Header, Cookie, Body) are declared
// on a parameter and read its argument. Action behaviors (Accept,
// SetHeader) are declared on the operation's request side. Result
// behaviors (StatusCheck, Decode, JSON, XML, YAML, Raw) are declared on
// its response side and record the terminal outcome of the execution.
//
// Decoding result behaviors are first-wins: each is enabled only while
// the execution's result is still pending.
package behavior
