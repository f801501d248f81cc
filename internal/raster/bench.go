package raster

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/erinpentecost/parallaxmap/internal/logger"
	"github.com/erinpentecost/parallaxmap/internal/shading"
)

// FrameStats summarises frame times.
type FrameStats struct {
	Frames int
	Min    time.Duration
	Max    time.Duration
	Total  time.Duration
}

func (s *FrameStats) Add(d time.Duration) {
	if s.Frames == 0 || d < s.Min {
		s.Min = d
	}
	if d > s.Max {
		s.Max = d
	}
	s.Frames++
	s.Total += d
}

func (s FrameStats) Avg() time.Duration {
	if s.Frames == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Frames)
}

// Report is FrameStats in the JSON form written next to benchmark output.
type Report struct {
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Frames  int     `json:"frames"`
	MinMS   float64 `json:"min_ms"`
	AvgMS   float64 `json:"avg_ms"`
	MaxMS   float64 `json:"max_ms"`
	FPS     float64 `json:"fps"`
	Workers int     `json:"workers"`
}

func (s FrameStats) Report(opts Options) Report {
	ms := func(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
	r := Report{
		Width:   opts.Width,
		Height:  opts.Height,
		Frames:  s.Frames,
		MinMS:   ms(s.Min),
		AvgMS:   ms(s.Avg()),
		MaxMS:   ms(s.Max),
		Workers: opts.Workers,
	}
	if avg := s.Avg(); avg > 0 {
		r.FPS = float64(time.Second) / float64(avg)
	}
	return r
}

func WriteReport(path string, r Report) error {
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal frame report: %w", err)
	}
	return os.WriteFile(path, raw, 0666)
}

// Benchmark renders frames back to back, turning the camera by rotateStep
// degrees after each, and returns the last frame.
func (r *Renderer) Benchmark(ctx context.Context, scene Scene, left, right shading.Shader, frames int, rotateStep float32) (*image.RGBA, FrameStats, error) {
	var stats FrameStats
	var last *image.RGBA
	for i := range frames {
		start := time.Now()
		img, err := r.Render(ctx, scene, left, right)
		if err != nil {
			return nil, stats, fmt.Errorf("frame %d: %w", i, err)
		}
		stats.Add(time.Since(start))
		last = img
		scene.Camera = scene.Camera.AdvanceRotation(rotateStep)

		if (i+1)%60 == 0 {
			logger.Info("benchmark progress",
				zap.Int("frame", i+1),
				zap.Duration("avg", stats.Avg()),
				zap.Duration("max", stats.Max))
		}
	}
	return last, stats, nil
}
