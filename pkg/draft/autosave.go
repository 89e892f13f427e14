package draft

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/goliatone/go-contactform/pkg/model"
)

// DefaultDebounce is the quiet period after the last keystroke before a
// snapshot is written.
const DefaultDebounce = time.Second

// AutosaverOption configures an Autosaver.
type AutosaverOption func(*Autosaver)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) AutosaverOption {
	return func(a *Autosaver) {
		if d > 0 {
			a.debounce = d
		}
	}
}

// WithClock swaps the wall clock, for tests.
func WithClock(c clock.Clock) AutosaverOption {
	return func(a *Autosaver) {
		if c != nil {
			a.clock = c
		}
	}
}

// WithSaveHook registers fn to run after every debounced save attempt.
func WithSaveHook(fn func(Snapshot, error)) AutosaverOption {
	return func(a *Autosaver) {
		a.onSave = fn
	}
}

// WithAutosaveLogger attaches a logger for failed writes.
func WithAutosaveLogger(logger *zap.Logger) AutosaverOption {
	return func(a *Autosaver) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// Autosaver debounces input events into snapshot writes. All tracked fields
// share one timer: every Touch restarts the quiet period and the write that
// eventually fires carries the latest value of every field.
type Autosaver struct {
	store    *Store
	debounce time.Duration
	clock    clock.Clock
	logger   *zap.Logger
	onSave   func(Snapshot, error)

	// writeMu serialises snapshot writes with Reset.
	writeMu sync.Mutex

	mu      sync.Mutex
	values  model.Values
	timer   *clock.Timer
	pending bool
	gen     uint64
}

// NewAutosaver creates an Autosaver writing through store.
func NewAutosaver(store *Store, options ...AutosaverOption) *Autosaver {
	a := &Autosaver{
		store:    store,
		debounce: DefaultDebounce,
		clock:    clock.New(),
		logger:   zap.NewNop(),
		values:   make(model.Values),
	}
	for _, opt := range options {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Seed records values without scheduling a write, e.g. after a restore.
func (a *Autosaver) Seed(values model.Values) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, name := range a.store.form.TrackedNames() {
		if value, ok := values[name]; ok {
			a.values[name] = value
		}
	}
}

// Touch records the latest value of a tracked field and restarts the quiet
// period. Untracked names are ignored and do not delay a pending write.
func (a *Autosaver) Touch(name, value string) bool {
	if !a.store.form.IsTracked(name) {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.values[name] = value
	if a.timer != nil {
		a.timer.Stop()
	}
	a.pending = true
	a.gen++
	gen := a.gen
	a.timer = a.clock.AfterFunc(a.debounce, func() { a.fire(gen) })
	return true
}

// Pending reports whether a write is scheduled.
func (a *Autosaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending
}

func (a *Autosaver) fire(gen uint64) {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	a.mu.Lock()
	if !a.pending || gen != a.gen {
		a.mu.Unlock()
		return
	}
	a.pending = false
	a.timer = nil
	values := a.values.Clone()
	a.mu.Unlock()

	a.save(context.Background(), values)
}

// Flush writes pending values immediately.
func (a *Autosaver) Flush(ctx context.Context) (Snapshot, error) {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.pending = false
	values := a.values.Clone()
	a.mu.Unlock()

	return a.save(ctx, values)
}

func (a *Autosaver) save(ctx context.Context, values model.Values) (Snapshot, error) {
	snapshot, err := a.store.Save(ctx, values)
	if err != nil {
		a.logger.Warn("autosave failed", zap.String("key", a.store.Key()), zap.Error(err))
	}
	if a.onSave != nil {
		a.onSave(snapshot, err)
	}
	return snapshot, err
}

// Cancel drops a scheduled write without touching recorded values.
func (a *Autosaver) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.pending = false
}

// Reset cancels any scheduled write and forgets recorded values. It waits for
// a write already in progress, so a draft cleared after Reset stays cleared.
func (a *Autosaver) Reset() {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.pending = false
	a.gen++
	a.values = make(model.Values)
}
