// Package persist keeps the timer in sync with a local store and an optional
// remote key/value server. Local writes are synchronous; remote writes are
// debounced. Load order is local first, then remote, and the remote copy wins
// when it has one.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sadopc/kidclock/internal/observability"
	"github.com/sadopc/kidclock/internal/store"
	"github.com/sadopc/kidclock/internal/timer"
)

const (
	DefaultDebounce = time.Second
	defaultMaxWait  = 10 * time.Second
	defaultTimeout  = 10 * time.Second
)

// Local is a synchronous document store. *store.Store satisfies it; a
// missing document is reported as store.ErrNotFound.
type Local interface {
	Get(namespace string) ([]byte, error)
	Put(namespace string, body []byte) error
}

// Remote is the key/value server. *remote.Client satisfies it; a missing
// document is reported as an empty JSON object.
type Remote interface {
	Get(ctx context.Context, namespace string) ([]byte, error)
	Put(ctx context.Context, namespace string, data []byte) error
}

type Reconciler struct {
	local   Local
	remote  Remote
	clock   clockwork.Clock
	logger  *slog.Logger
	timeout time.Duration

	window  time.Duration
	maxWait time.Duration

	mu         sync.Mutex
	debouncers map[string]*debouncer
}

type Option func(*Reconciler)

// WithRemote enables the remote store.
func WithRemote(r Remote) Option { return func(rc *Reconciler) { rc.remote = r } }

func WithClock(c clockwork.Clock) Option { return func(rc *Reconciler) { rc.clock = c } }

func WithLogger(l *slog.Logger) Option { return func(rc *Reconciler) { rc.logger = l } }

// WithDebounce sets the quiet period before a remote write.
func WithDebounce(d time.Duration) Option { return func(rc *Reconciler) { rc.window = d } }

// WithMaxWait bounds how long a remote write can be deferred by a steady
// stream of changes. Zero disables the bound.
func WithMaxWait(d time.Duration) Option { return func(rc *Reconciler) { rc.maxWait = d } }

func New(local Local, opts ...Option) *Reconciler {
	rc := &Reconciler{
		local:      local,
		clock:      clockwork.NewRealClock(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		timeout:    defaultTimeout,
		window:     DefaultDebounce,
		maxWait:    defaultMaxWait,
		debouncers: make(map[string]*debouncer),
	}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

// Reconcile charges an unpaused state for the wall-clock time since its last
// write, clamped at zero. Paused states and states never written are returned
// unchanged. A lastTick in the future counts as no time elapsed.
func Reconcile(s timer.State, now time.Time) timer.State {
	s = s.Clone()
	last, ok := timer.FromMillis(s.LastTick)
	if s.IsPaused || !ok {
		return s
	}
	elapsed := int(max(0, now.Sub(last)) / time.Second)
	s.RemainingSeconds = max(0, s.RemainingSeconds-elapsed)
	return s
}

// LoadLocal returns the persisted state and settings decoded over the
// defaults, with the state reconciled against the clock. Missing or corrupt
// documents yield the defaults.
func (rc *Reconciler) LoadLocal() (timer.State, timer.Settings) {
	state := timer.DefaultState()
	settings := timer.DefaultSettings()

	if body, ok := rc.readLocal(store.NamespaceState); ok {
		if err := decodeOver(body, &state); err != nil {
			rc.corrupt(store.NamespaceState, err)
		}
	}
	if body, ok := rc.readLocal(store.NamespaceSettings); ok {
		if err := decodeOver(body, &settings); err != nil {
			rc.corrupt(store.NamespaceSettings, err)
		}
	}
	return Reconcile(state, rc.clock.Now()), settings
}

func (rc *Reconciler) readLocal(ns string) ([]byte, bool) {
	body, err := rc.local.Get(ns)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false
	}
	observability.RecordStoreOp("local", "get", err)
	if err != nil {
		rc.logger.Error("read local store", "namespace", ns, "error", err)
		return nil, false
	}
	return body, true
}

// decodeOver unmarshals body over a copy of *dst so fields absent from body
// keep their current values. dst is untouched on error.
func decodeOver[T interface{ Clone() T }](body []byte, dst *T) error {
	next := (*dst).Clone()
	// Unmarshal reuses slice elements in place, which would leak default
	// fields into the stored schedule. Decode into a fresh slice instead.
	s, isState := any(&next).(*timer.State)
	var defaults []timer.ScheduleItem
	if isState {
		defaults, s.Schedule = s.Schedule, nil
	}
	if err := json.Unmarshal(body, &next); err != nil {
		return err
	}
	if isState && s.Schedule == nil {
		s.Schedule = defaults
	}
	*dst = next
	return nil
}

func (rc *Reconciler) corrupt(ns string, err error) {
	rc.logger.Warn("discarding corrupt document", "namespace", ns, "error", err)
}

// Attach persists every change published by m. State writes are stamped
// with the current time as lastTick.
func (rc *Reconciler) Attach(m *timer.Machine) {
	m.OnState(func(s timer.State) {
		s.LastTick = timer.UnixMillis(rc.clock.Now())
		rc.save(store.NamespaceState, s)
	})
	m.OnSettings(func(s timer.Settings) {
		rc.save(store.NamespaceSettings, s)
	})
}

func (rc *Reconciler) save(ns string, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		rc.logger.Error("encode document", "namespace", ns, "error", err)
		return
	}
	err = rc.local.Put(ns, body)
	observability.RecordStoreOp("local", "put", err)
	if err != nil {
		rc.logger.Error("write local store", "namespace", ns, "error", err)
	}
	if rc.remote != nil {
		rc.debouncer(ns).push(body)
	}
}

func (rc *Reconciler) debouncer(ns string) *debouncer {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	d, ok := rc.debouncers[ns]
	if !ok {
		d = &debouncer{
			clock:   rc.clock,
			window:  rc.window,
			maxWait: rc.maxWait,
			timeout: rc.timeout,
			send: func(ctx context.Context, body []byte) {
				rc.pushRemote(ctx, ns, body)
			},
		}
		rc.debouncers[ns] = d
	}
	return d
}

func (rc *Reconciler) pushRemote(ctx context.Context, ns string, body []byte) {
	err := rc.remote.Put(ctx, ns, body)
	observability.RecordStoreOp("remote", "put", err)
	if err != nil {
		rc.logger.Warn("write remote store", "namespace", ns, "error", err)
		return
	}
	rc.logger.Debug("remote store updated", "namespace", ns, "bytes", len(body))
}

// LoadRemote fetches both documents from the remote store in the background
// and installs any non-empty one into m, replacing what was loaded locally.
// Failures keep the local data. The returned channel is closed when done.
func (rc *Reconciler) LoadRemote(ctx context.Context, m *timer.Machine) <-chan struct{} {
	done := make(chan struct{})
	if rc.remote == nil {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		if body, ok := rc.readRemote(ctx, store.NamespaceState); ok {
			state := timer.DefaultState()
			if err := decodeOver(body, &state); err != nil {
				rc.corrupt(store.NamespaceState, err)
			} else {
				m.Replace(Reconcile(state, rc.clock.Now()))
			}
		}
		if body, ok := rc.readRemote(ctx, store.NamespaceSettings); ok {
			settings := timer.DefaultSettings()
			if err := decodeOver(body, &settings); err != nil {
				rc.corrupt(store.NamespaceSettings, err)
			} else {
				m.ReplaceSettings(settings)
			}
		}
	}()
	return done
}

func (rc *Reconciler) readRemote(ctx context.Context, ns string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, rc.timeout)
	defer cancel()

	body, err := rc.remote.Get(ctx, ns)
	observability.RecordStoreOp("remote", "get", err)
	if err != nil {
		rc.logger.Warn("read remote store, keeping local copy", "namespace", ns, "error", err)
		return nil, false
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		rc.logger.Warn("discarding corrupt remote document", "namespace", ns, "error", err)
		return nil, false
	}
	if len(probe) == 0 {
		return nil, false
	}
	return body, true
}

// Close sends any pending remote writes.
func (rc *Reconciler) Close(ctx context.Context) {
	rc.mu.Lock()
	ds := make([]*debouncer, 0, len(rc.debouncers))
	for _, d := range rc.debouncers {
		ds = append(ds, d)
	}
	rc.mu.Unlock()

	for _, d := range ds {
		d.flush(ctx)
	}
}
