// Package config loads render settings with priority defaults < YAML file < flags.
package config

import (
	"errors"
	"fmt"

	"github.com/erinpentecost/parallaxmap/internal/logger"
)

// Config holds everything a render run needs.
type Config struct {
	Render   RenderConfig   `yaml:"render"`
	Textures TexturesConfig `yaml:"textures"`
	Shading  ShadingConfig  `yaml:"shading"`
	Camera   CameraConfig   `yaml:"camera"`
	Light    LightConfig    `yaml:"light"`
	Logging  LoggingConfig  `yaml:"logging"`

	// SavePath comes from --save-config only.
	SavePath string `yaml:"-"`
}

type RenderConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// Workers bounds concurrent tiles. 0 means one per CPU.
	Workers int `yaml:"workers"`
	// Supersample renders at this multiple and scales down.
	Supersample int `yaml:"supersample"`
	TileRows    int `yaml:"tile_rows"`
	// Frames above 1 runs the benchmark.
	Frames     int     `yaml:"frames"`
	AutoRotate bool    `yaml:"auto_rotate"`
	RotateStep float32 `yaml:"rotate_step"`
	Marker     bool    `yaml:"marker"`
	Output     string  `yaml:"output"`
	// Report, when set, receives frame timings as JSON.
	Report string `yaml:"report"`
}

// TexturesConfig names the input maps. Empty paths fall back to procedural
// textures of ProceduralSize.
type TexturesConfig struct {
	Albedo string `yaml:"albedo"`
	Height string `yaml:"height"`
	Normal string `yaml:"normal"`
	// NormalHeight is a packed map, RGB normal and A height. It replaces
	// Height and Normal.
	NormalHeight   string  `yaml:"normal_height"`
	ProceduralSize int     `yaml:"procedural_size"`
	NormalStrength float32 `yaml:"normal_strength"`
}

type ShadingConfig struct {
	BumpScale float32 `yaml:"bump_scale"`
	// Bumpy switches to the deep relief preset.
	Bumpy       bool    `yaml:"bumpy"`
	Parallax    bool    `yaml:"parallax"`
	SelfShadow  bool    `yaml:"self_shadow"`
	HighQuality bool    `yaml:"high_quality"`
	Diffuse     float32 `yaml:"diffuse"`
	Specular    float32 `yaml:"specular"`
	Ambient     float32 `yaml:"ambient"`
	AOMin       float32 `yaml:"ao_min"`
	ShadowMin   float32 `yaml:"shadow_min"`

	Tunables TunablesConfig `yaml:"tunables"`
}

// TunablesConfig overrides loop constants. Zero keeps the built-in value.
type TunablesConfig struct {
	MinSteps       float32 `yaml:"min_steps"`
	MaxSteps       float32 `yaml:"max_steps"`
	ShadowMinSteps float32 `yaml:"shadow_min_steps"`
	ShadowMaxSteps float32 `yaml:"shadow_max_steps"`
	AOSamples      int     `yaml:"ao_samples"`
	AORadius       float32 `yaml:"ao_radius"`
	ShadowKernel   int     `yaml:"shadow_kernel"`
	NormalBlend    float32 `yaml:"normal_blend"`
}

// CameraConfig angles are in degrees.
type CameraConfig struct {
	Rotate  float32 `yaml:"rotate"`
	Elevate float32 `yaml:"elevate"`
}

type LightConfig struct {
	Position  [3]float32 `yaml:"position"`
	Color     [3]float32 `yaml:"color"`
	Intensity float32    `yaml:"intensity"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

const bumpyScale = 0.125

func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Width:       1400,
			Height:      700,
			Supersample: 1,
			TileRows:    16,
			Frames:      1,
			RotateStep:  0.5,
			Marker:      true,
			Output:      "parallax.png",
		},
		Textures: TexturesConfig{
			ProceduralSize: 256,
			NormalStrength: 0.05,
		},
		Shading: ShadingConfig{
			BumpScale:  0.05,
			Parallax:   true,
			SelfShadow: true,
			Diffuse:    0.9,
			Specular:   0.35,
			Ambient:    0.15,
			AOMin:      0.35,
			ShadowMin:  0.35,
		},
		Camera: CameraConfig{
			Elevate: -20,
		},
		Light: LightConfig{
			Position:  [3]float32{0, 0, 8},
			Color:     [3]float32{1, 1, 0.65},
			Intensity: 1,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// EffectiveBumpScale applies the bumpy preset.
func (s ShadingConfig) EffectiveBumpScale() float32 {
	if s.Bumpy {
		return bumpyScale
	}
	return s.BumpScale
}

// Validate reports every out-of-range setting at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	r := c.Render
	check(r.Width >= 2 && r.Height >= 1, "render size %dx%d is too small", r.Width, r.Height)
	check(r.Workers >= 0, "render.workers %d is negative", r.Workers)
	check(r.Supersample >= 1 && r.Supersample <= 4, "render.supersample %d is outside [1,4]", r.Supersample)
	check(r.TileRows >= 1, "render.tile_rows %d must be positive", r.TileRows)
	check(r.Frames >= 1, "render.frames %d must be positive", r.Frames)
	check(r.Output != "", "render.output is empty")

	tx := c.Textures
	check(tx.ProceduralSize >= 4, "textures.procedural_size %d is too small", tx.ProceduralSize)

	s := c.Shading
	check(s.BumpScale >= 0 && s.BumpScale <= 1, "shading.bump_scale %g is outside [0,1]", s.BumpScale)
	check(unit(s.AOMin), "shading.ao_min %g is outside [0,1]", s.AOMin)
	check(unit(s.ShadowMin), "shading.shadow_min %g is outside [0,1]", s.ShadowMin)
	check(s.Diffuse >= 0 && s.Specular >= 0 && s.Ambient >= 0, "shading coefficients must not be negative")
	t := s.Tunables
	check(t.MinSteps >= 0 && t.MaxSteps >= 0, "shading.tunables step counts must not be negative")
	check(t.MaxSteps == 0 || t.MinSteps <= t.MaxSteps, "shading.tunables.min_steps %g exceeds max_steps %g", t.MinSteps, t.MaxSteps)
	check(t.ShadowMaxSteps == 0 || t.ShadowMinSteps <= t.ShadowMaxSteps,
		"shading.tunables.shadow_min_steps %g exceeds shadow_max_steps %g", t.ShadowMinSteps, t.ShadowMaxSteps)
	check(t.AOSamples == 0 || t.AOSamples >= 8, "shading.tunables.ao_samples %d is below 8", t.AOSamples)
	check(t.ShadowKernel >= 0 && t.ShadowKernel <= 8, "shading.tunables.shadow_kernel %d is outside [0,8]", t.ShadowKernel)
	check(unit(t.NormalBlend), "shading.tunables.normal_blend %g is outside [0,1]", t.NormalBlend)

	for i, v := range c.Light.Color {
		check(v >= 0, "light.color[%d] %g is negative", i, v)
	}
	check(c.Light.Intensity >= 0, "light.intensity %g is negative", c.Light.Intensity)

	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	return errors.Join(errs...)
}

func unit(v float32) bool { return v >= 0 && v <= 1 }
