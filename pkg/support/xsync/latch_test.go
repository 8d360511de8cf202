// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package xsync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLatch(t *testing.T) {
	l := NewLatch()
	assert.False(t, l.Test())

	done := make(chan struct{})
	go func() {
		l.Wait()
		close(done)
	}()
	l.Trigger()
	l.Trigger() // Second trigger is a no-op.
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait() did not return after Trigger()")
	}
	assert.True(t, l.Test())
	_, open := <-l.WaitChan()
	assert.False(t, open)
}
