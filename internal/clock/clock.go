// Package clock abstracts timers so the fishing session can run against the
// wall clock in the game and against a virtual clock in tests.
package clock

import (
	"sync"
	"sync/atomic"
	"time"
)

type Timer interface {
	Stop()
}

type Scheduler interface {
	Now() time.Time
	// AfterFunc runs fn once after d.
	AfterFunc(d time.Duration, fn func()) Timer
	// Every runs fn every d until stopped.
	Every(d time.Duration, fn func()) Timer
}

// Real fires on wall-clock timers but never runs callbacks itself: each one
// is handed to post, which must deliver it on the owner's single event loop.
// A callback whose timer was stopped before it reached the loop is dropped.
type Real struct {
	post func(func())
}

func NewReal(post func(func())) *Real {
	return &Real{post: post}
}

func (r *Real) Now() time.Time {
	return time.Now()
}

type realTimer struct {
	stopped atomic.Bool
	timer   *time.Timer
	done    chan struct{}
	once    sync.Once
}

func (t *realTimer) Stop() {
	t.stopped.Store(true)
	if t.timer != nil {
		t.timer.Stop()
	}
	if t.done != nil {
		t.once.Do(func() { close(t.done) })
	}
}

func (t *realTimer) guard(fn func()) func() {
	return func() {
		if t.stopped.Load() {
			return
		}
		fn()
	}
}

func (r *Real) AfterFunc(d time.Duration, fn func()) Timer {
	t := &realTimer{}
	guarded := t.guard(fn)
	t.timer = time.AfterFunc(d, func() {
		if t.stopped.Load() {
			return
		}
		r.post(guarded)
	})
	return t
}

func (r *Real) Every(d time.Duration, fn func()) Timer {
	t := &realTimer{done: make(chan struct{})}
	guarded := t.guard(fn)
	ticker := time.NewTicker(d)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-t.done:
				return
			case <-ticker.C:
				if t.stopped.Load() {
					return
				}
				r.post(guarded)
			}
		}
	}()
	return t
}
