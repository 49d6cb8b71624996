package hero

import "sync"

// Host is the environment a renderer is mounted into.
type Host interface {
	DevicePixelRatio() float64
	// Bounds is the container's logical (CSS pixel) size.
	Bounds() (width, height float64)
	// AddResizeListener registers fn and returns a function removing it.
	AddResizeListener(fn func()) (remove func())
}

// StaticHost is a Host whose geometry is set explicitly.
type StaticHost struct {
	mu        sync.Mutex
	width     float64
	height    float64
	dpr       float64
	nextID    int
	listeners map[int]func()
}

func NewStaticHost(width, height, dpr float64) *StaticHost {
	return &StaticHost{
		width:     width,
		height:    height,
		dpr:       dpr,
		listeners: make(map[int]func()),
	}
}

func (h *StaticHost) DevicePixelRatio() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dpr
}

func (h *StaticHost) Bounds() (float64, float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.width, h.height
}

func (h *StaticHost) AddResizeListener(fn func()) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	h.listeners[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.listeners, id)
	}
}

// Listeners returns the number of registered resize listeners.
func (h *StaticHost) Listeners() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}

// SetBounds updates the geometry and notifies resize listeners.
func (h *StaticHost) SetBounds(width, height float64) {
	h.mu.Lock()
	h.width, h.height = width, height
	h.mu.Unlock()
	h.notify()
}

func (h *StaticHost) SetDevicePixelRatio(dpr float64) {
	h.mu.Lock()
	h.dpr = dpr
	h.mu.Unlock()
	h.notify()
}

func (h *StaticHost) notify() {
	h.mu.Lock()
	fns := make([]func(), 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	h.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
