// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package cache provides response caching for operation invocations.
//
// An operation opts in by declaring the request behavior returned by
// For. After the rest of the request pipeline has shaped the request,
// the behavior derives a cache key and declares it on the execution.
// The dispatcher then consults a Store: on a hit it adopts the stored
// Snapshot instead of sending, and on a miss it stores the snapshot of
// any successful response before handing the response to anyone else.
//
// Two stores are provided. Memory keeps snapshots in process using
// ttlcache, and Redis shares them through a Redis server. Stores are
// not guarded by any lock of their own: concurrent misses on one key
// both send and both store, and the last write wins.
package cache
