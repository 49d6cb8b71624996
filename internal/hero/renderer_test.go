package hero

import (
	"image"
	"math/rand"
	"time"

	"github.com/fogleman/gg"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/gridhero/internal/config"
	"github.com/san-kum/gridhero/internal/frame"
	"github.com/san-kum/gridhero/internal/linefield"
	"github.com/san-kum/gridhero/internal/render"
)

var _ = Describe("Renderer", func() {
	var (
		cfg   *config.Config
		sched *frame.Manual
		host  *StaticHost
		r     *Renderer
	)

	newRenderer := func(opts ...Option) *Renderer {
		opts = append([]Option{WithRand(rand.New(rand.NewSource(7)))}, opts...)
		rr, err := New(cfg, sched, opts...)
		Expect(err).NotTo(HaveOccurred())
		return rr
	}

	BeforeEach(func() {
		r = nil
		cfg = config.DefaultConfig()
		sched = frame.NewManual()
		host = NewStaticHost(600, 600, 1)
	})

	AfterEach(func() {
		if r != nil {
			r.Unmount()
		}
	})

	Context("when mounted", func() {
		BeforeEach(func() {
			r = newRenderer()
			r.Mount(host)
		})

		It("should seed three lines on distinct columns", func() {
			snap := r.Snapshot()
			Expect(snap.Lines).To(HaveLen(linefield.WorkingSetSize))

			seen := map[int]bool{}
			for _, l := range snap.Lines {
				Expect(l.Column).To(BeNumerically(">=", 0))
				Expect(l.Column).To(BeNumerically("<", 10))
				Expect(seen[l.Column]).To(BeFalse())
				seen[l.Column] = true
				Expect(l.Delay).To(BeNumerically("<", linefield.DefaultMaxDelay))
			}
		})

		It("should register a resize listener and request a frame", func() {
			Expect(r.Mounted()).To(BeTrue())
			Expect(host.Listeners()).To(Equal(1))
			Expect(sched.Pending()).To(Equal(1))
		})

		It("should ignore a second mount", func() {
			r.Mount(host)
			Expect(host.Listeners()).To(Equal(1))
			Expect(sched.Pending()).To(Equal(1))
		})

		It("should use the fallback interval on the first frame", func() {
			var frames []Frame
			r.observers = append(r.observers, ObserverFunc(func(f Frame, _ image.Image) {
				frames = append(frames, f)
			}))

			sched.Refresh(5 * time.Second)
			sched.Advance(20 * time.Millisecond)

			Expect(frames).To(HaveLen(2))
			Expect(frames[0].DtMs).To(BeNumerically("~", linefield.FallbackFrameMs, 1e-9))
			Expect(frames[1].DtMs).To(BeNumerically("~", 20, 1e-9))
		})

		It("should count down delayed lines without advancing them", func() {
			sched.Refresh(0)
			r.SetLine(0, linefield.Line{Column: 2, Speed: linefield.DefaultSpeed, Delay: 500})

			sched.Advance(100 * time.Millisecond)
			l := r.Snapshot().Lines[0]
			Expect(l.Delay).To(BeNumerically("~", 400, 1e-9))
			Expect(l.Progress).To(BeZero())
		})

		It("should keep exactly three lines across frames and resizes", func() {
			widths := []float64{600, 120, 0, 1920, 61}
			for i := 0; i < 500; i++ {
				if i%50 == 0 {
					host.SetBounds(widths[(i/50)%len(widths)], 400)
				}
				sched.Advance(16 * time.Millisecond)
				Expect(r.Snapshot().Lines).To(HaveLen(linefield.WorkingSetSize))
			}
			Expect(r.Frames()).To(Equal(500))
		})

		It("should yield an identical transform for repeated identical resizes", func() {
			host.SetDevicePixelRatio(2)
			host.SetBounds(800, 500)
			w1, h1, t1 := r.SurfaceInfo()
			host.SetBounds(800, 500)
			w2, h2, t2 := r.SurfaceInfo()

			Expect(t2).To(Equal(t1))
			Expect(t2).To(Equal(render.Transform{ScaleX: 2, ScaleY: 2}))
			Expect(w2).To(Equal(w1))
			Expect(h2).To(Equal(h1))
			Expect(r.Image().Bounds().Dx()).To(Equal(1600))
		})

		It("should replace lines whose column vanished after a resize", func() {
			sched.Refresh(0)
			r.SetLine(0, linefield.Line{Column: 5, Speed: linefield.DefaultSpeed})
			r.SetLine(1, linefield.Line{Column: 1, Speed: linefield.DefaultSpeed})
			r.SetLine(2, linefield.Line{Column: 9, Speed: linefield.DefaultSpeed})

			host.SetBounds(120, 600)
			sched.Advance(16 * time.Millisecond)

			for _, l := range r.Snapshot().Lines {
				Expect(l.Column).To(BeElementOf(0, 1))
			}
			Expect(r.Snapshot().Lines[1].Progress).To(BeNumerically(">", 0))
		})

		It("should stop all frame work after unmount", func() {
			sched.Advance(16 * time.Millisecond)
			before := r.Frames()

			r.Unmount()
			Expect(host.Listeners()).To(BeZero())
			Expect(sched.Pending()).To(BeZero())

			for i := 0; i < 10; i++ {
				sched.Advance(16 * time.Millisecond)
			}
			Expect(r.Frames()).To(Equal(before))
			Expect(r.Mounted()).To(BeFalse())
		})
	})

	Context("with no activation delay", func() {
		BeforeEach(func() {
			cfg.MaxDelay = 0
			r = newRenderer()
			r.Mount(host)
			sched.Refresh(0)
			r.SetLine(0, linefield.Line{Column: 3, Speed: linefield.DefaultSpeed})
		})

		It("should advance progress by speed times elapsed seconds", func() {
			var drawn []int
			r.observers = append(r.observers, ObserverFunc(func(f Frame, _ image.Image) {
				drawn = f.Drawn
			}))

			sched.Advance(time.Second)
			Expect(r.Snapshot().Lines[0].Progress).To(BeNumerically("~", 0.3, 1e-9))
			Expect(drawn).To(ContainElement(0))
		})

		It("should recycle a line once progress passes the reset threshold", func() {
			sched.Advance(time.Second)

			recycled := false
			for i := 0; i < 31 && !recycled; i++ {
				sched.Advance(100 * time.Millisecond)
				l := r.Snapshot().Lines[0]
				Expect(l.Progress).To(BeNumerically("<=", linefield.ResetProgress))
				recycled = l.Progress == 0
			}
			Expect(recycled).To(BeTrue())
		})
	})

	Context("without a drawing context", func() {
		BeforeEach(func() {
			r = newRenderer(WithContextFunc(func(int, int) *gg.Context { return nil }))
			r.Mount(host)
		})

		It("should stay inert", func() {
			Expect(r.Mounted()).To(BeFalse())
			Expect(host.Listeners()).To(BeZero())
			Expect(sched.Pending()).To(BeZero())
			Expect(r.Snapshot().Lines).To(BeEmpty())
			Expect(r.Image()).To(BeNil())
			Expect(func() { r.Resize(); r.Unmount() }).NotTo(Panic())
		})
	})

	Context("with a zero-sized container", func() {
		BeforeEach(func() {
			host = NewStaticHost(0, 0, 0)
			r = newRenderer()
			r.Mount(host)
		})

		It("should keep animating on a single column", func() {
			for i := 0; i < 20; i++ {
				sched.Advance(16 * time.Millisecond)
			}
			for _, l := range r.Snapshot().Lines {
				Expect(l.Column).To(BeZero())
			}
			Expect(r.Frames()).To(Equal(20))
		})
	})

	Context("when an observer unmounts during a frame", func() {
		BeforeEach(func() {
			r = newRenderer()
			r.observers = append(r.observers, ObserverFunc(func(Frame, image.Image) {
				r.Unmount()
			}))
			r.Mount(host)
		})

		It("should not schedule another frame", func() {
			sched.Advance(16 * time.Millisecond)
			Expect(sched.Pending()).To(BeZero())
			sched.Advance(16 * time.Millisecond)
			Expect(r.Frames()).To(Equal(1))
		})
	})

	Context("with two instances", func() {
		It("should keep state and timers independent", func() {
			a := newRenderer()
			b := newRenderer()
			a.Mount(host)
			b.Mount(host)
			defer b.Unmount()

			Expect(a.ID()).NotTo(Equal(b.ID()))
			sched.Advance(16 * time.Millisecond)
			a.Unmount()
			sched.Advance(16 * time.Millisecond)

			Expect(a.Frames()).To(Equal(1))
			Expect(b.Frames()).To(Equal(2))
			Expect(host.Listeners()).To(Equal(1))
		})
	})

	It("should reject an invalid configuration", func() {
		cfg.CellSize = 0
		_, err := New(cfg, sched)
		Expect(err).To(MatchError(config.ErrCellSize))
	})

	It("should paint with a palette passed as an option", func() {
		ember, ok := render.GetTheme("ember")
		Expect(ok).To(BeTrue())
		r = newRenderer(WithPalette(ember))
		Expect(r.Palette().Name).To(Equal("ember"))
	})
})
