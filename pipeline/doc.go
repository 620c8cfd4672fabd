// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package pipeline composes ordered behaviors into a single handler.

A Behavior is a unit of request or response logic with an order index
and a per-invocation enable check. Build sorts behaviors by ascending
order index (ties keep declaration order) and folds them right to left
around a terminal handler, so that each behavior closes over the rest
of the chain:

	h := pipeline.Build(pipeline.Request, behaviors, pipeline.Terminal)
	h(e)

Each behavior receives the continuation as its next argument. It may
run code before and after calling next (wrapping), or not call next at
all (short-circuiting). The first behavior in order runs first going in
and last coming out.

An error returned by a behavior is recorded on the execution's Result.
It is never silently dropped. In the Response mode, a behavior that
fails before calling next does not stop the rest of the chain, so that
behaviors observing the response (for example one which discards a
rejected credential) still run.
*/
package pipeline
