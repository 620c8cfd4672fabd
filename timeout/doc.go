// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timeout defines flexible policies for setting per-attempt
// timeouts on operation invocations, including on retries. A generic
// interface for timeout policies is provided, Policy, along with
// several useful policy generating functions and built-in policies.
//
// A policy takes effect when it is declared on an operation with For.
// The resulting behavior adds a cancellation signal to each execution,
// which the dispatcher merges with the caller's context when sending.
package timeout
