package persist

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// debouncer delays a send until pushes have been quiet for window. Each push
// replaces the pending value and re-arms the timer, but a value is never held
// longer than maxWait. A running countdown writes state every second, so a
// timer that only reset would never fire and the remote would see nothing
// until the clock was paused.
type debouncer struct {
	clock   clockwork.Clock
	window  time.Duration
	maxWait time.Duration
	timeout time.Duration
	send    func(ctx context.Context, body []byte)

	mu      sync.Mutex
	timer   clockwork.Timer
	pending []byte
	since   time.Time // when pending was first set

	sendMu sync.Mutex // serializes sends so an older value never lands last
}

func (d *debouncer) push(body []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clock.Now()
	if d.pending == nil {
		d.since = now
	}
	d.pending = body

	delay := d.window
	if d.maxWait > 0 {
		if left := d.since.Add(d.maxWait).Sub(now); left < delay {
			delay = max(0, left)
		}
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	// Fake clocks run the callback while advancing; hop off that goroutine.
	d.timer = d.clock.AfterFunc(delay, func() { go d.fire() })
}

// take removes and returns the pending value, if any.
func (d *debouncer) take() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	body := d.pending
	d.pending = nil
	return body
}

func (d *debouncer) fire() {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	d.flush(ctx)
}

// flush sends the pending value now.
func (d *debouncer) flush(ctx context.Context) {
	d.sendMu.Lock()
	defer d.sendMu.Unlock()
	if body := d.take(); body != nil {
		d.send(ctx, body)
	}
}
