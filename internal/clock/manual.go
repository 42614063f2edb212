package clock

import (
	"sort"
	"sync"
	"time"
)

// Manual is a virtual clock. Nothing fires until Advance or FireNext is called,
// and callbacks run on the caller's goroutine.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*ManualTimer
	all    []*ManualTimer
}

type ManualTimer struct {
	id      int
	at      time.Time
	every   time.Duration
	fn      func()
	stopped bool
	m       *Manual
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	return m.schedule(d, 0, fn)
}

func (m *Manual) Every(d time.Duration, fn func()) Timer {
	return m.schedule(d, d, fn)
}

func (m *Manual) schedule(d, every time.Duration, fn func()) *ManualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &ManualTimer{id: m.seq, at: m.now.Add(d), every: every, fn: fn, m: m}
	m.timers = append(m.timers, t)
	m.all = append(m.all, t)
	return t
}

func (t *ManualTimer) Stop() {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	t.stopped = true
	t.m.removeLocked(t)
}

// Invoke runs the callback even if the timer was stopped, simulating a stale
// callback that was already queued when its timer got cancelled.
func (t *ManualTimer) Invoke() {
	t.fn()
}

func (t *ManualTimer) Stopped() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	return t.stopped
}

func (t *ManualTimer) Repeating() bool {
	return t.every > 0
}

func (m *Manual) removeLocked(t *ManualTimer) {
	for i, x := range m.timers {
		if x == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return
		}
	}
}

// Pending returns the number of armed timers.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// Scheduled returns every timer ever created, oldest first.
func (m *Manual) Scheduled() []*ManualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*ManualTimer, len(m.all))
	copy(out, m.all)
	return out
}

func (m *Manual) nextLocked(limit time.Time, bounded bool) *ManualTimer {
	if len(m.timers) == 0 {
		return nil
	}
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].at.Equal(m.timers[j].at) {
			return m.timers[i].id < m.timers[j].id
		}
		return m.timers[i].at.Before(m.timers[j].at)
	})
	next := m.timers[0]
	if bounded && next.at.After(limit) {
		return nil
	}
	return next
}

// fireLocked advances to t, re-arms or removes it and returns its callback.
// The caller must release the lock before running the callback.
func (m *Manual) fireLocked(t *ManualTimer) func() {
	if t.at.After(m.now) {
		m.now = t.at
	}
	if t.every > 0 {
		t.at = t.at.Add(t.every)
	} else {
		m.removeLocked(t)
	}
	return t.fn
}

// Advance moves the clock forward by d, firing due timers in time order.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	for {
		next := m.nextLocked(target, true)
		if next == nil {
			break
		}
		fn := m.fireLocked(next)
		m.mu.Unlock()
		fn()
		m.mu.Lock()
	}
	if target.After(m.now) {
		m.now = target
	}
	m.mu.Unlock()
}

// FireNext jumps straight to the earliest armed timer and fires it.
func (m *Manual) FireNext() bool {
	m.mu.Lock()
	next := m.nextLocked(time.Time{}, false)
	if next == nil {
		m.mu.Unlock()
		return false
	}
	fn := m.fireLocked(next)
	m.mu.Unlock()
	fn()
	return true
}
