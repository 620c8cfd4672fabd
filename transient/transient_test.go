// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorize(t *testing.T) {
	testCases := []struct {
		err  error
		want Category
	}{
		{nil, Not},
		{errors.New("foo"), Not},
		{wrapper{errors.New("bar")}, Not},
		{syscall.ETIMEDOUT, Timeout},
		{context.DeadlineExceeded, Timeout},
		{&url.Error{Op: "Get", URL: "x", Err: context.DeadlineExceeded}, Timeout},
		{wrapper{wrapper{timeout{}}}, Timeout},
		{timeoutWrapper{true, syscall.ECONNRESET}, Timeout},
		{context.Canceled, Canceled},
		{&url.Error{Op: "Get", URL: "x", Err: context.Canceled}, Canceled},
		{syscall.ECONNRESET, ConnReset},
		{timeoutWrapper{false, syscall.ECONNRESET}, ConnReset},
		{wrapper{syscall.ECONNREFUSED}, ConnRefused},
		{fmt.Errorf("reading body: %w", io.ErrUnexpectedEOF), Truncated},
	}
	for i, testCase := range testCases {
		t.Run(fmt.Sprintf("testCases[%d]=%v", i, testCase.err), func(t *testing.T) {
			assert.Equal(t, testCase.want, Categorize(testCase.err))
		})
	}
}

func TestIs(t *testing.T) {
	assert.False(t, Is(nil))
	assert.False(t, Is(context.Canceled))
	assert.False(t, Is(errors.New("permanent")))
	assert.True(t, Is(context.DeadlineExceeded))
	assert.True(t, Is(syscall.ECONNREFUSED))
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "Truncated", Truncated.String())
	assert.Equal(t, "Not", Not.String())
}

type timeout struct{}

func (err timeout) Error() string {
	return "timeout"
}

func (_ timeout) Timeout() bool {
	return true
}

type wrapper struct {
	wrappedError error
}

func (err wrapper) Error() string {
	return fmt.Sprintf("wrapper - wraps %v", err.wrappedError)
}

func (err wrapper) Unwrap() error {
	return err.wrappedError
}

type timeoutWrapper struct {
	timeout      bool
	wrappedError error
}

func (err timeoutWrapper) Error() string {
	return fmt.Sprintf("timeoutWrapper - timeout %t, wraps %v", err.timeout, err.wrappedError)
}

func (err timeoutWrapper) Timeout() bool {
	return err.timeout
}

func (err timeoutWrapper) Unwrap() error {
	return err.wrappedError
}
