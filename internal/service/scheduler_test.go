package service

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerFires(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	done := make(chan struct{})
	s.Schedule("order:1", 10*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback did not fire")
	}
}

func TestSchedulerCancel(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	var fired atomic.Bool
	s.Schedule("order:1", 20*time.Millisecond, func() { fired.Store(true) })
	assert.True(t, s.Cancel("order:1"))
	assert.False(t, s.Cancel("order:1"))

	time.Sleep(60 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestSchedulerReplacesSameKey(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	var first, second atomic.Bool
	s.Schedule("promo:5", 20*time.Millisecond, func() { first.Store(true) })
	s.Schedule("promo:5", 20*time.Millisecond, func() { second.Store(true) })

	assert.Eventually(t, second.Load, time.Second, 5*time.Millisecond)
	assert.False(t, first.Load())
}

func TestSchedulerStopDropsPending(t *testing.T) {
	s := NewScheduler()

	var fired atomic.Bool
	s.Schedule("order:1", 20*time.Millisecond, func() { fired.Store(true) })
	s.Stop()
	s.Schedule("order:2", time.Millisecond, func() { fired.Store(true) })

	time.Sleep(60 * time.Millisecond)
	assert.False(t, fired.Load())
}
