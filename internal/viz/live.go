package viz

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/gridhero/internal/config"
	"github.com/san-kum/gridhero/internal/export"
	"github.com/san-kum/gridhero/internal/frame"
	"github.com/san-kum/gridhero/internal/hero"
	"github.com/san-kum/gridhero/internal/linefield"
	"github.com/san-kum/gridhero/internal/render"
	"go.uber.org/zap"
)

const (
	defaultCols = 80
	defaultRows = 23

	recordEvery = 3
	recordLimit = 600
)

type TickMsg time.Time

// ConfigMsg carries a reloaded configuration into the program.
type ConfigMsg struct {
	Config *config.Config
}

// recorder forwards frames to a GIF recorder while recording is on.
type recorder struct {
	on  bool
	gif *export.GIFRecorder
}

func (r *recorder) OnFrame(f hero.Frame, img image.Image) {
	if r.on {
		r.gif.OnFrame(f, img)
	}
}

type Options struct {
	Log       *zap.Logger
	OutputDir string
	// ContextFunc overrides the backing store factory; tests use it to
	// simulate a missing context.
	ContextFunc render.ContextFunc
	// Reload rebuilds the configuration after the watched file changes. It
	// should re-apply every layer used at startup; nil reads the file alone.
	Reload func() (*config.Config, error)
}

// Model contains the renderer, its host and the terminal view state.
type Model struct {
	cfg      *config.Config
	log      *zap.Logger
	opts     Options
	sched    *frame.Manual
	host     *hero.StaticHost
	renderer *hero.Renderer
	rec      *recorder
	canvas   *Canvas
	keys     keyMap
	help     help.Model

	width, height int
	clock         time.Duration
	lastTick      time.Time
	paused        bool
	showHelp      bool
	ticks         int
	status        string
	err           error
}

// NewModel builds and mounts a renderer sized to a default terminal until
// the first window size message arrives.
func NewModel(cfg *config.Config, opts Options) (Model, error) {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}

	m := Model{
		cfg:    cfg.Clone(),
		log:    opts.Log,
		opts:   opts,
		sched:  frame.NewManual(),
		rec:    &recorder{gif: export.NewGIFRecorder(recordEvery, recordLimit)},
		canvas: NewCanvas(defaultCols, defaultRows),
		keys:   defaultKeyMap(),
		help:   help.New(),
		width:  defaultCols,
		height: defaultRows + 1,
	}
	m.host = hero.NewStaticHost(defaultCols*CellPixelWidth, defaultRows*CellPixelHeight, m.cfg.DevicePixelRatio)
	if err := m.mount(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m *Model) mount() error {
	r, err := m.newRenderer(m.cfg)
	if err != nil {
		return err
	}
	r.Mount(m.host)
	m.renderer = r
	return nil
}

func (m *Model) newRenderer(cfg *config.Config) (*hero.Renderer, error) {
	opts := []hero.Option{hero.WithLogger(m.log), hero.WithObserver(m.rec)}
	if m.opts.ContextFunc != nil {
		opts = append(opts, hero.WithContextFunc(m.opts.ContextFunc))
	}
	return hero.New(cfg, m.sched, opts...)
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(frame.FromFPS(m.cfg.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and drives the frame scheduler.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quit()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
		case key.Matches(msg, m.keys.Theme):
			p := render.NextTheme(m.renderer.Palette().Name)
			m.renderer.SetPalette(p)
			m.status = "theme " + p.Name
		case key.Matches(msg, m.keys.Record):
			m.toggleRecording()
		case key.Matches(msg, m.keys.Snapshot):
			m.snapshot()
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		cols, rows := max(1, msg.Width), max(1, msg.Height-1)
		m.canvas = NewCanvas(cols, rows)
		m.host.SetBounds(float64(cols*CellPixelWidth), float64(rows*CellPixelHeight))

	case ConfigMsg:
		m.applyConfig(msg.Config)

	case TickMsg:
		t := time.Time(msg)
		if !m.lastTick.IsZero() && !m.paused {
			m.clock += t.Sub(m.lastTick)
		}
		m.lastTick = t
		m.ticks++
		if !m.paused {
			m.sched.Refresh(m.clock)
			m.canvas.Sample(m.renderer.Image())
		}
		return m, m.tick()
	}
	return m, nil
}

// applyConfig swaps the palette in place and remounts only when the line
// field itself changed.
func (m *Model) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	p, err := cfg.ResolvePalette()
	if err != nil {
		m.err = err
		return
	}
	next := cfg.Clone()

	if fieldChanged(m.cfg, next) {
		// the running renderer stays mounted until its replacement exists
		r, err := m.newRenderer(next)
		if err != nil {
			m.err = err
			m.log.Warn("config reload rejected, keeping current renderer", zap.Error(err))
			return
		}
		m.renderer.Unmount()
		r.Mount(m.host)
		m.renderer = r
	}
	m.cfg = next
	m.err = nil
	m.status = "config reloaded"
	m.host.SetDevicePixelRatio(m.cfg.DevicePixelRatio)
	m.renderer.SetPalette(p)
}

func fieldChanged(a, b *config.Config) bool {
	return a.CellSize != b.CellSize ||
		a.StreakLength != b.StreakLength ||
		a.Speed != b.Speed ||
		a.MaxDelay != b.MaxDelay ||
		a.Seed != b.Seed
}

func (m *Model) toggleRecording() {
	if !m.rec.on {
		m.rec.gif.Reset()
		m.rec.on = true
		m.status = "recording"
		return
	}
	m.rec.on = false
	m.saveRecording()
}

func (m *Model) saveRecording() {
	path := filepath.Join(m.opts.OutputDir, fmt.Sprintf("gridhero-%d.gif", time.Now().Unix()))
	delay := max(1, 100*recordEvery/max(1, m.cfg.FPS))
	if err := m.rec.gif.Save(path, delay); err != nil {
		m.err = err
		m.log.Warn("gif save failed", zap.Error(err))
		return
	}
	m.status = "saved " + path
	m.log.Info("gif saved", zap.String("path", path), zap.Int("frames", m.rec.gif.Len()))
}

func (m *Model) snapshot() {
	path := filepath.Join(m.opts.OutputDir, fmt.Sprintf("gridhero-%d.png", time.Now().UnixNano()))
	if err := export.WritePNG(path, m.renderer.Image()); err != nil {
		m.err = err
		return
	}
	m.status = "saved " + path
	m.log.Info("png saved", zap.String("path", path))
}

func (m *Model) quit() {
	if m.rec.on {
		m.rec.on = false
		m.saveRecording()
	}
	m.renderer.Unmount()
}

// Renderer exposes the mounted renderer to hosts embedding the model.
func (m Model) Renderer() *hero.Renderer { return m.renderer }

func (m Model) overlayLines() []string {
	if !m.showHelp {
		return []string{m.cfg.Overlay.Title, "", m.cfg.Overlay.Subtitle}
	}
	var lines []string
	for _, group := range m.keys.FullHelp() {
		for _, b := range group {
			h := b.Help()
			lines = append(lines, fmt.Sprintf("%-6s %-12s", h.Key, h.Desc))
		}
	}
	return lines
}

// View renders the canvas with its overlay and a status bar.
func (m Model) View() string {
	p := m.renderer.Palette()
	canvas := m.canvas.WithOverlay(m.overlayLines(), p.Text)

	var s strings.Builder
	switch {
	case m.rec.on:
		s.WriteString(StatusRecording.Render(AnimatedSpinner(m.ticks) + " REC " + fmt.Sprint(m.rec.gif.Len())))
	case m.paused:
		s.WriteString(StatusPaused.Render("PAUSED"))
	default:
		s.WriteString(StatusRunning.Render("RUNNING"))
	}
	s.WriteString("  ")
	s.WriteString(MetricLabel.Render("theme "))
	s.WriteString(GradientText(p.Name, p.Accent, p.BackgroundBottom))
	s.WriteString("  ")
	s.WriteString(MetricLabel.Render("frame "))
	s.WriteString(MetricValue.Render(fmt.Sprint(m.renderer.Frames())))

	for _, l := range m.renderer.Snapshot().Lines {
		s.WriteString("  ")
		if !l.Active() {
			s.WriteString(MetricLabel.Render(fmt.Sprintf("c%d wait", l.Column)))
			continue
		}
		s.WriteString(MetricLabel.Render(fmt.Sprintf("c%d ", l.Column)))
		s.WriteString(ProgressBar(l.Progress/linefield.ResetProgress, 6))
	}

	if m.err != nil {
		s.WriteString("  ")
		s.WriteString(StatusRecording.Render(m.err.Error()))
	} else if m.status != "" {
		s.WriteString("  ")
		s.WriteString(KeyHint.Render(m.status))
	}

	left := s.String()
	right := m.help.View(m.keys)
	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	bar := StatusBar.MaxWidth(max(1, m.width)).Render(left + strings.Repeat(" ", gap) + right)

	return lipgloss.JoinVertical(lipgloss.Left, canvas.String(), bar)
}

// RunLive runs the terminal host until the user quits. When configPath is
// set the file is watched and changes are applied without restarting.
func RunLive(cfg *config.Config, configPath string, opts Options) error {
	m, err := NewModel(cfg, opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())

	if configPath != "" {
		w, err := config.NewWatcher(configPath, func(c *config.Config) {
			p.Send(ConfigMsg{Config: c})
		}, m.log)
		if err != nil {
			return fmt.Errorf("watch %s: %w", configPath, err)
		}
		w.SetResolver(opts.Reload)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		w.Start(ctx)
		defer w.Stop()
	}

	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.renderer.Unmount()
	}
	return err
}
