package frame

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestManualFiresInRequestOrder(t *testing.T) {
	m := NewManual()
	var order []int
	m.Request(func(time.Duration) { order = append(order, 1) })
	m.Request(func(time.Duration) { order = append(order, 2) })

	assert.Equal(t, 2, m.Advance(16*time.Millisecond))
	assert.Equal(t, []int{1, 2}, order)
	assert.Zero(t, m.Pending())
}

func TestManualDefersRequestsMadeDuringRefresh(t *testing.T) {
	m := NewManual()
	var stamps []time.Duration
	var loop Callback
	loop = func(ts time.Duration) {
		stamps = append(stamps, ts)
		m.Request(loop)
	}
	m.Request(loop)

	m.Advance(10 * time.Millisecond)
	m.Advance(10 * time.Millisecond)
	m.Advance(10 * time.Millisecond)

	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond}, stamps)
	assert.Equal(t, 1, m.Pending())
}

func TestManualCancel(t *testing.T) {
	m := NewManual()
	fired := false
	h := m.Request(func(time.Duration) { fired = true })
	require.NotZero(t, h)

	m.Cancel(h)
	m.Cancel(h)
	m.Cancel(Handle(999))

	assert.Zero(t, m.Advance(time.Second))
	assert.False(t, fired)
}

func TestManualCancelFromEarlierCallback(t *testing.T) {
	m := NewManual()
	fired := false
	var second Handle
	m.Request(func(time.Duration) { m.Cancel(second) })
	second = m.Request(func(time.Duration) { fired = true })

	assert.Equal(t, 1, m.Advance(time.Millisecond))
	assert.False(t, fired)
}

func TestTickerRunsAndStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	tk := NewTicker(time.Millisecond)
	var count atomic.Int32
	var loop Callback
	loop = func(time.Duration) {
		count.Add(1)
		tk.Request(loop)
	}
	tk.Request(loop)
	tk.Start()
	tk.Start()

	require.Eventually(t, func() bool { return count.Load() >= 3 }, time.Second, time.Millisecond)
	tk.Stop()
	tk.Stop()

	after := count.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, after, count.Load())
	assert.GreaterOrEqual(t, tk.Frames(), 3)
}

func TestTickerCancelledRequestNeverFires(t *testing.T) {
	defer goleak.VerifyNone(t)

	tk := NewTicker(time.Millisecond)
	var fired atomic.Bool
	h := tk.Request(func(time.Duration) { fired.Store(true) })
	tk.Cancel(h)

	tk.Start()
	time.Sleep(10 * time.Millisecond)
	tk.Stop()
	assert.False(t, fired.Load())
}

func TestFromFPS(t *testing.T) {
	assert.Equal(t, time.Second/30, FromFPS(30))
	assert.Equal(t, time.Second/60, FromFPS(0))
}
