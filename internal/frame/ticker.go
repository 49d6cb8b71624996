package frame

import (
	"sync"
	"time"
)

// Ticker is a Scheduler that refreshes at a fixed interval on its own
// goroutine. The headless driver uses it for wall-clock runs.
type Ticker struct {
	queue
	interval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	origin  time.Time
	frames  int
}

func NewTicker(interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &Ticker{interval: interval}
}

// FromFPS returns the refresh interval for a frame rate.
func FromFPS(fps int) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Second / time.Duration(fps)
}

func (t *Ticker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	t.running = true
	t.stopCh = make(chan struct{})
	t.doneCh = make(chan struct{})
	t.origin = time.Now()
	go t.run(t.stopCh, t.doneCh)
}

// Stop halts the refresh goroutine and waits for it to exit. No callback
// runs after Stop returns.
func (t *Ticker) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	stopCh, doneCh := t.stopCh, t.doneCh
	t.mu.Unlock()

	close(stopCh)
	<-doneCh
}

// Frames returns how many refreshes have fired at least one callback.
func (t *Ticker) Frames() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frames
}

func (t *Ticker) run(stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	tick := time.NewTicker(t.interval)
	defer tick.Stop()

	for {
		select {
		case <-stopCh:
			return
		case now := <-tick.C:
			select {
			case <-stopCh:
				return
			default:
			}
			if t.flush(now.Sub(t.origin)) > 0 {
				t.mu.Lock()
				t.frames++
				t.mu.Unlock()
			}
		}
	}
}
