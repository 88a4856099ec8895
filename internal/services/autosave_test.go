package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"jard/internal/core"
)

type saveRecorder struct {
	mu     sync.Mutex
	inputs []SaveInput
}

func (r *saveRecorder) save(_ context.Context, in SaveInput) (core.DailyInventoryRecord, error) {
	r.mu.Lock()
	r.inputs = append(r.inputs, in)
	r.mu.Unlock()
	return core.DailyInventoryRecord{Date: in.Date}, nil
}

func (r *saveRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inputs)
}

func (r *saveRecorder) last() SaveInput {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inputs[len(r.inputs)-1]
}

func TestAutoSaver_DebouncesRapidEdits(t *testing.T) {
	rec := &saveRecorder{}
	a := NewAutoSaver(context.Background(), 30*time.Millisecond, rec.save)
	date := core.NewDate(2024, 3, 1)

	for _, sales := range []string{"1", "12", "123"} {
		if !a.Schedule(SaveInput{Date: date, Sales: dec(sales)}) {
			t.Fatal("schedule should succeed while enabled")
		}
	}

	waitFor(t, func() bool { return rec.count() >= 1 })
	time.Sleep(60 * time.Millisecond)

	if n := rec.count(); n != 1 {
		t.Fatalf("expected exactly one save, got %d", n)
	}
	if !rec.last().Sales.Equal(dec("123")) {
		t.Errorf("expected latest draft saved, got %s", rec.last().Sales)
	}
	if a.Pending() != 0 {
		t.Errorf("expected no pending drafts, got %d", a.Pending())
	}
}

func TestAutoSaver_DatesAreIndependent(t *testing.T) {
	rec := &saveRecorder{}
	a := NewAutoSaver(context.Background(), 20*time.Millisecond, rec.save)

	a.Schedule(SaveInput{Date: core.NewDate(2024, 3, 1)})
	a.Schedule(SaveInput{Date: core.NewDate(2024, 3, 2)})
	if a.Pending() != 2 {
		t.Errorf("expected 2 pending drafts, got %d", a.Pending())
	}

	waitFor(t, func() bool { return rec.count() == 2 })
}

func TestAutoSaver_DisableDropsDrafts(t *testing.T) {
	rec := &saveRecorder{}
	a := NewAutoSaver(context.Background(), 20*time.Millisecond, rec.save)
	date := core.NewDate(2024, 3, 1)

	a.Schedule(SaveInput{Date: date})
	a.Disable()

	if a.Enabled() {
		t.Error("expected disabled")
	}
	if a.Schedule(SaveInput{Date: date}) {
		t.Error("schedule must be refused while disabled")
	}
	time.Sleep(50 * time.Millisecond)
	if rec.count() != 0 {
		t.Errorf("dropped draft was saved %d times", rec.count())
	}
}

func TestAutoSaver_EnableAfterGrace(t *testing.T) {
	a := NewAutoSaver(context.Background(), time.Hour, (&saveRecorder{}).save)
	a.Disable()

	a.EnableAfter(20 * time.Millisecond)
	if a.Enabled() {
		t.Error("must stay disabled during the grace period")
	}
	waitFor(t, a.Enabled)

	a.Disable()
	a.EnableAfter(0)
	if !a.Enabled() {
		t.Error("zero grace enables immediately")
	}
}

func TestAutoSaver_DisableCancelsPendingEnable(t *testing.T) {
	a := NewAutoSaver(context.Background(), time.Hour, (&saveRecorder{}).save)
	a.Disable()
	a.EnableAfter(10 * time.Millisecond)
	a.Disable()

	time.Sleep(40 * time.Millisecond)
	if a.Enabled() {
		t.Error("a later Disable must cancel the pending enable")
	}
}

func TestAutoSaver_FlushAndCancel(t *testing.T) {
	rec := &saveRecorder{}
	a := NewAutoSaver(context.Background(), time.Hour, rec.save)
	d1, d2 := core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 2)

	a.Schedule(SaveInput{Date: d1})
	a.Schedule(SaveInput{Date: d2})

	if !a.Flush(d1) {
		t.Error("expected flush of pending draft")
	}
	if rec.count() != 1 {
		t.Errorf("expected one save after flush, got %d", rec.count())
	}
	if a.Flush(d1) {
		t.Error("second flush has nothing to save")
	}

	a.Cancel(d2)
	if a.Pending() != 0 {
		t.Errorf("expected no pending drafts, got %d", a.Pending())
	}
	if rec.count() != 1 {
		t.Errorf("cancelled draft must not be saved, got %d saves", rec.count())
	}
}

func TestAutoSaver_CloseFlushes(t *testing.T) {
	rec := &saveRecorder{}
	a := NewAutoSaver(context.Background(), time.Hour, rec.save)
	a.Schedule(SaveInput{Date: core.NewDate(2024, 3, 1)})
	a.Schedule(SaveInput{Date: core.NewDate(2024, 3, 2)})

	a.Close()

	if rec.count() != 2 {
		t.Errorf("expected 2 saves on close, got %d", rec.count())
	}
	if a.Schedule(SaveInput{Date: core.NewDate(2024, 3, 3)}) {
		t.Error("schedule must be refused after close")
	}
}

func TestAutoSaver_WithInventoryService(t *testing.T) {
	env := newTestEnv(t, false)
	a := NewAutoSaver(context.Background(), 10*time.Millisecond, env.svc.Save)
	date := core.NewDate(2024, 3, 5)

	a.Schedule(sampleInput(date))
	waitFor(t, func() bool {
		_, err := env.local.Get(context.Background(), date)
		return err == nil
	})
}
