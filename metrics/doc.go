// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package metrics exports Prometheus metrics about operation invocations.

Create a Collector, register it, and install it in the client's handler
group:

	c := metrics.New("myapp")
	prometheus.MustRegister(c)
	handlers := &actionx.HandlerGroup{}
	c.Install(handlers)
	client.Handlers = handlers

All metrics carry an "operation" label holding the operation id.
*/
package metrics
