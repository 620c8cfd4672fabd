// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultWaiter(t *testing.T) {
	max := []time.Duration{
		50 * time.Millisecond,
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		1 * time.Second,
		1 * time.Second,
	}
	for i := 0; i < len(max); i++ {
		wait := DefaultWaiter.Wait(i)
		assert.GreaterOrEqual(t, wait, time.Duration(0))
		assert.LessOrEqual(t, wait, max[i])
	}
}

func TestNewFixedWaiter(t *testing.T) {
	w := NewFixedWaiter(3 * time.Second)
	assert.Equal(t, 3*time.Second, w.Wait(0))
	assert.Equal(t, 3*time.Second, w.Wait(100))
}

func TestNewLinearWaiter(t *testing.T) {
	w := NewLinearWaiter(100*time.Millisecond, 350*time.Millisecond)
	assert.Equal(t, 100*time.Millisecond, w.Wait(0))
	assert.Equal(t, 200*time.Millisecond, w.Wait(1))
	assert.Equal(t, 300*time.Millisecond, w.Wait(2))
	assert.Equal(t, 350*time.Millisecond, w.Wait(3))
	assert.Equal(t, 350*time.Millisecond, w.Wait(math.MaxInt64))
	assert.Equal(t, time.Duration(0), NewLinearWaiter(0, 0).Wait(5))
	assert.Panics(t, func() { NewLinearWaiter(-1, time.Second) })
	assert.Panics(t, func() { NewLinearWaiter(time.Second, time.Millisecond) })
}

func TestWaiterFunc(t *testing.T) {
	w := WaiterFunc(func(attempt int) time.Duration { return time.Duration(attempt) * time.Second })
	assert.Equal(t, 2*time.Second, w.Wait(2))
}

func TestNewExpWaiter(t *testing.T) {
	base, max := 1*time.Millisecond, 1*time.Hour
	t.Run("invalid base", func(t *testing.T) {
		assert.Panics(t, func() { NewExpWaiter(time.Duration(-1), max, nil) }, "negative base")
		assert.Panics(t, func() { NewExpWaiter(time.Duration(0), max, nil) }, "zero base")
	})
	t.Run("invalid max", func(t *testing.T) {
		assert.Panics(t, func() { NewExpWaiter(time.Duration(2), time.Duration(1), nil) })
	})
	t.Run("invalid jitter", func(t *testing.T) {
		assert.Panics(t, func() { NewExpWaiter(base, max, float64(1)) }, "float64")
		var nilRand *rand.Rand
		assert.Panics(t, func() { NewExpWaiter(base, max, nilRand) }, "nil *rand.Rand")
	})
	t.Run("no jitter", func(t *testing.T) {
		j := NewExpWaiter(base, max, nil).(*jitterExpWaiter)
		assert.Nil(t, j.rand)
		for i := 0; i < 10; i++ {
			assert.Equal(t, time.Duration(1<<i)*time.Millisecond, j.Wait(i))
		}
		assert.Equal(t, max, j.Wait(25))
		assert.Equal(t, max, j.Wait(62))
		assert.Equal(t, max, j.Wait(1000))
		assert.Equal(t, max, j.Wait(math.MaxInt64))
	})
	t.Run("with jitter", func(t *testing.T) {
		jitters := []struct {
			name  string
			value interface{}
		}{
			{"zero time.Time", time.Time{}},
			{"time.Now()", time.Now()},
			{"int", 1},
			{"int64", int64(1)},
			{"rand.Source", rand.NewSource(0)},
			{"*rand.Rand", rand.New(rand.NewSource(0))},
		}
		for i, jitter := range jitters {
			t.Run(fmt.Sprintf("jitters[%d]=%s", i, jitter.name), func(t *testing.T) {
				w := NewExpWaiter(base, max, jitter.value)
				for j := 0; j < 100; j++ {
					d := w.Wait(j)
					assert.GreaterOrEqual(t, d, time.Duration(0))
					assert.LessOrEqual(t, d, max)
				}
			})
		}
	})
	t.Run("concurrent rand.Source usage", func(t *testing.T) {
		w := NewExpWaiter(base, max, 0)
		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 22; j++ {
					d := w.Wait(j)
					assert.GreaterOrEqual(t, d, time.Duration(0))
					assert.LessOrEqual(t, d, time.Duration(1<<j)*time.Millisecond)
				}
			}()
		}
		wg.Wait()
	})
}
