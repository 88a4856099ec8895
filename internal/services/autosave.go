package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"jard/internal/core"
)

// SaveFunc persists a draft. Errors are logged by the AutoSaver.
type SaveFunc func(ctx context.Context, in SaveInput) (core.DailyInventoryRecord, error)

type draft struct {
	timer *time.Timer
	gen   uint64
	input SaveInput
}

// AutoSaver debounces edits: a draft is saved once no further edit for the
// same date arrived within the delay. Scheduling a new draft cancels the
// previous timer, so rapid edits produce a single write.
type AutoSaver struct {
	delay time.Duration
	save  SaveFunc
	base  context.Context

	mu          sync.Mutex
	drafts      map[string]*draft
	gen         uint64
	disabled    bool
	enableTimer *time.Timer
	closed      bool
}

// NewAutoSaver returns an enabled AutoSaver. base is the context saves run
// under once their timer fires.
func NewAutoSaver(base context.Context, delay time.Duration, save SaveFunc) *AutoSaver {
	return &AutoSaver{
		delay:  delay,
		save:   save,
		base:   base,
		drafts: make(map[string]*draft),
	}
}

// Schedule queues in for saving after the quiet period. It returns false
// when autosave is disabled and nothing was scheduled.
func (a *AutoSaver) Schedule(in SaveInput) bool {
	key := in.Date.String()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.disabled || a.closed {
		return false
	}
	if d, ok := a.drafts[key]; ok {
		d.timer.Stop()
	}
	a.gen++
	gen := a.gen
	d := &draft{gen: gen, input: in}
	d.timer = time.AfterFunc(a.delay, func() { a.fire(key, gen) })
	a.drafts[key] = d
	return true
}

func (a *AutoSaver) fire(key string, gen uint64) {
	a.mu.Lock()
	d, ok := a.drafts[key]
	// A stopped timer may still fire; only the latest generation saves.
	if !ok || d.gen != gen || a.disabled {
		a.mu.Unlock()
		return
	}
	delete(a.drafts, key)
	a.mu.Unlock()

	a.run(d.input)
}

func (a *AutoSaver) run(in SaveInput) {
	if _, err := a.save(a.base, in); err != nil {
		slog.ErrorContext(a.base, "Autosave failed", "component", "inventory",
			"inventory_date", in.Date.String(), "error", err)
	}
}

// Flush saves the pending draft for date immediately, if there is one.
func (a *AutoSaver) Flush(date core.Date) bool {
	a.mu.Lock()
	d, ok := a.drafts[date.String()]
	if ok {
		d.timer.Stop()
		delete(a.drafts, date.String())
	}
	a.mu.Unlock()
	if ok {
		a.run(d.input)
	}
	return ok
}

// Cancel drops the pending draft for date without saving it.
func (a *AutoSaver) Cancel(date core.Date) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if d, ok := a.drafts[date.String()]; ok {
		d.timer.Stop()
		delete(a.drafts, date.String())
	}
}

// Disable stops scheduling and drops every pending draft. Callers disable
// autosave before repopulating a form programmatically.
func (a *AutoSaver) Disable() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.disabled = true
	if a.enableTimer != nil {
		a.enableTimer.Stop()
		a.enableTimer = nil
	}
	for key, d := range a.drafts {
		d.timer.Stop()
		delete(a.drafts, key)
	}
}

// EnableAfter re-enables autosave once grace has elapsed. A zero grace
// enables immediately.
func (a *AutoSaver) EnableAfter(grace time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.enableTimer != nil {
		a.enableTimer.Stop()
		a.enableTimer = nil
	}
	if grace <= 0 {
		a.disabled = false
		return
	}
	var t *time.Timer
	t = time.AfterFunc(grace, func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if a.enableTimer == t {
			a.disabled = false
			a.enableTimer = nil
		}
	})
	a.enableTimer = t
}

func (a *AutoSaver) Enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.disabled
}

// Pending returns the number of drafts waiting for their timer.
func (a *AutoSaver) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.drafts)
}

// Close flushes every pending draft and refuses new ones.
func (a *AutoSaver) Close() {
	a.mu.Lock()
	a.closed = true
	if a.enableTimer != nil {
		a.enableTimer.Stop()
	}
	var inputs []SaveInput
	for key, d := range a.drafts {
		d.timer.Stop()
		inputs = append(inputs, d.input)
		delete(a.drafts, key)
	}
	a.mu.Unlock()

	for _, in := range inputs {
		a.run(in)
	}
}
