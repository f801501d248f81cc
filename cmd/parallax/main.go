package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/erinpentecost/parallaxmap/internal/config"
	"github.com/erinpentecost/parallaxmap/internal/logger"
	"github.com/erinpentecost/parallaxmap/internal/raster"
	"github.com/erinpentecost/parallaxmap/internal/shading"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:])
	stop()
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		logger.Error("render failed", zap.Error(err))
		logger.Sync()
		fmt.Fprintf(os.Stderr, "FAILED: %v\n", err)
		os.Exit(33)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	if cfg.SavePath != "" {
		if err := cfg.SaveTo(cfg.SavePath); err != nil {
			return fmt.Errorf("save config %q: %w", cfg.SavePath, err)
		}
		logger.Info("saved config", zap.String("path", cfg.SavePath))
	}

	params := shadingParams(cfg)
	start := time.Now()
	maps, err := loadMaps(ctx, cfg.Textures)
	if err != nil {
		return fmt.Errorf("load textures: %w", err)
	}
	logger.Info("textures ready", zap.Duration("elapsed", time.Since(start)))

	basic, err := shading.NewBasic(maps, params)
	if err != nil {
		return fmt.Errorf("basic shader: %w", err)
	}
	steep, err := shading.NewSteep(maps, params)
	if err != nil {
		return fmt.Errorf("steep shader: %w", err)
	}

	renderer, err := raster.NewRenderer(raster.Options{
		Width:       cfg.Render.Width,
		Height:      cfg.Render.Height,
		Workers:     cfg.Render.Workers,
		Supersample: cfg.Render.Supersample,
		TileRows:    cfg.Render.TileRows,
	})
	if err != nil {
		return err
	}
	scene := sceneFromConfig(cfg)

	logger.Info("rendering",
		zap.Int("width", cfg.Render.Width),
		zap.Int("height", cfg.Render.Height),
		zap.Int("frames", cfg.Render.Frames),
		zap.Float32("bump_scale", params.BumpScale),
		zap.Bool("parallax", params.Parallax),
		zap.Bool("self_shadow", params.SelfShadow),
		zap.Bool("high_quality", cfg.Shading.HighQuality))

	var step float32
	if cfg.Render.AutoRotate {
		step = cfg.Render.RotateStep
	}
	img, stats, err := renderer.Benchmark(ctx, scene, basic, steep, cfg.Render.Frames, step)
	if err != nil {
		return err
	}
	logger.Info("frames done",
		zap.Int("frames", stats.Frames),
		zap.Duration("min", stats.Min),
		zap.Duration("avg", stats.Avg()),
		zap.Duration("max", stats.Max))

	if err := raster.Encode(cfg.Render.Output, img); err != nil {
		return err
	}
	logger.Info("wrote frame", zap.String("path", cfg.Render.Output))

	if cfg.Render.Report != "" {
		if err := raster.WriteReport(cfg.Render.Report, stats.Report(renderer.Options())); err != nil {
			return fmt.Errorf("write report %q: %w", cfg.Render.Report, err)
		}
		logger.Info("wrote report", zap.String("path", cfg.Render.Report))
	}
	return nil
}

func shadingParams(cfg *config.Config) shading.Params {
	s := cfg.Shading
	p := shading.DefaultParams()
	p.BumpScale = s.EffectiveBumpScale()
	p.Parallax = s.Parallax
	p.SelfShadow = s.SelfShadow
	p.Diffuse = s.Diffuse
	p.SpecularBase = s.Specular
	p.Ambient = s.Ambient
	p.AOMin = s.AOMin
	p.ShadowMin = s.ShadowMin
	p.LightColor = mgl32.Vec3(cfg.Light.Color)
	p.LightIntensity = cfg.Light.Intensity

	if s.HighQuality {
		p.Tunables = p.Tunables.HighQuality()
	}
	t := &p.Tunables
	o := s.Tunables
	setIf(&t.MinSteps, o.MinSteps)
	setIf(&t.MaxSteps, o.MaxSteps)
	setIf(&t.ShadowMinSteps, o.ShadowMinSteps)
	setIf(&t.ShadowMaxSteps, o.ShadowMaxSteps)
	setIf(&t.AOSamples, o.AOSamples)
	setIf(&t.AORadius, o.AORadius)
	setIf(&t.ShadowKernel, o.ShadowKernel)
	setIf(&t.NormalBlend, o.NormalBlend)
	return p
}

// setIf overwrites dst unless v is the zero value.
func setIf[T int | float32](dst *T, v T) {
	if v != 0 {
		*dst = v
	}
}

func sceneFromConfig(cfg *config.Config) raster.Scene {
	scene := raster.DefaultScene()
	scene.Camera.Rotate = cfg.Camera.Rotate
	scene.Camera.Elevate = cfg.Camera.Elevate
	scene.Light = raster.Light{
		Position:  mgl32.Vec3(cfg.Light.Position),
		Color:     mgl32.Vec3(cfg.Light.Color),
		Intensity: cfg.Light.Intensity,
	}
	scene.Marker = cfg.Render.Marker
	return scene
}
