// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies errors produced while invoking an
// operation as transient or non-transient. Retry deciders use it to
// decide whether an error is worth another attempt, and the metrics
// package uses it to label failed invocations.
//
// Package transient depends only on the standard library.
package transient
