// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package actionx

import "fmt"

// An UnsupportedResponseError is the outcome of an attempt whose
// response no result behavior of the operation was able to turn into a
// value or an error.
type UnsupportedResponseError struct {
	// Operation is the identifier of the invoked operation.
	Operation string
	// StatusCode is the HTTP status code of the response.
	StatusCode int
	// ContentType is the response Content-Type, possibly empty.
	ContentType string
}

func (err *UnsupportedResponseError) Error() string {
	return fmt.Sprintf("actionx: no result behavior of %q handled the response (status %d, content type %q)",
		err.Operation, err.StatusCode, err.ContentType)
}
