package store

import (
	"encoding/json"
	"image"
	"io"
	"os"
	"sync"

	"github.com/san-kum/gridhero/internal/hero"
	"github.com/san-kum/gridhero/internal/linefield"
)

type FrameRecord struct {
	Index int              `json:"index"`
	TSMs  float64          `json:"ts_ms"`
	DtMs  float64          `json:"dt_ms"`
	Drawn []int            `json:"drawn"`
	Lines []linefield.Line `json:"lines"`
}

type ExportData struct {
	Width        float64       `json:"width"`
	Height       float64       `json:"height"`
	CellSize     float64       `json:"cell_size"`
	StreakLength float64       `json:"streak_length"`
	Frames       []FrameRecord `json:"frames"`
}

// TraceRecorder keeps per-frame line records of a renderer.
type TraceRecorder struct {
	mu           sync.Mutex
	cellSize     float64
	streakLength float64
	width        float64
	height       float64
	frames       []FrameRecord
}

func NewTraceRecorder(cellSize, streakLength float64) *TraceRecorder {
	return &TraceRecorder{cellSize: cellSize, streakLength: streakLength}
}

func (t *TraceRecorder) OnFrame(f hero.Frame, _ image.Image) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.width, t.height = f.Snapshot.Width, f.Snapshot.Height
	drawn := make([]int, len(f.Drawn))
	copy(drawn, f.Drawn)
	t.frames = append(t.frames, FrameRecord{
		Index: f.Index,
		TSMs:  float64(f.TS.Microseconds()) / 1000,
		DtMs:  f.DtMs,
		Drawn: drawn,
		Lines: f.Snapshot.Lines,
	})
}

func (t *TraceRecorder) Frames() []FrameRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]FrameRecord, len(t.frames))
	copy(out, t.frames)
	return out
}

// ProgressSeries returns, per working-set slot, the progress of that slot
// at every recorded frame.
func (t *TraceRecorder) ProgressSeries() [][]float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	series := make([][]float64, linefield.WorkingSetSize)
	for i := range series {
		series[i] = make([]float64, 0, len(t.frames))
	}
	for _, f := range t.frames {
		for i, l := range f.Lines {
			if i < len(series) {
				series[i] = append(series[i], l.Progress)
			}
		}
	}
	return series
}

func (t *TraceRecorder) data() ExportData {
	t.mu.Lock()
	defer t.mu.Unlock()
	return ExportData{
		Width:        t.width,
		Height:       t.height,
		CellSize:     t.cellSize,
		StreakLength: t.streakLength,
		Frames:       t.frames,
	}
}

func (t *TraceRecorder) Encode(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(t.data())
}

func (t *TraceRecorder) ExportJSON(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return t.Encode(file)
}

func (t *TraceRecorder) ExportJSONStdout() error {
	return t.Encode(os.Stdout)
}

// LoadJSON reads a trace written by ExportJSON.
func LoadJSON(path string) (*ExportData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	var data ExportData
	if err := json.NewDecoder(file).Decode(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
