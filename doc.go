// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package actionx dispatches declared HTTP operations. An operation is
declared once, as data, and invoked many times with arguments.

Declare operations with package action and the behaviors in packages
behavior, cache, timeout, and token:

	catalog := action.NewCatalog(
		action.Define("GetUser").
			Get("/users/{id}").
			Param("id", reflect.TypeOf(""), behavior.Path(), action.Required()).
			Returns(reflect.TypeOf(User{})).
			Action(behavior.Accept(codec.JSON), cache.For(5*time.Second)).
			Result(behavior.StatusCheck(), behavior.JSON()),
	)

Create a Client to invoke them. The zero value is usable, but most
programs configure the client with a base URL and a cache store, or
build one from a configuration file with NewClient:

	cfg, err := config.Load("actionx.yaml", "ACTIONX_")
	...
	client, tokens, err := actionx.NewClient(cfg, actionx.WithSource(catalog))
	...
	op, err := client.Operation("GetUser")
	...
	user, err := actionx.Call[User](ctx, op, "42")

Each invocation validates its arguments, then runs the operation's
request pipeline, answers from the cache or sends the request, and runs
the response pipeline to produce the outcome. Operations which declare
a retry configuration are retried with package retry.

To hook into the details of the client's dispatch logic, install a
handler into the appropriate handler chain:

	handlers := &actionx.HandlerGroup{}
	handlers.PushBack(actionx.BeforeSend, actionx.HandlerFunc(
		func(_ actionx.Event, e *request.Execution) {
			log.Printf("Attempt %d to %s", e.Attempt, e.Request.URL)
		}),
	)
	client.Handlers = handlers

Package metrics provides a ready-made set of handlers which export
Prometheus metrics.
*/
package actionx
