package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// flags binds every command-line option to a scratch Config. Only options
// the user actually set are copied onto the loaded config, so file values
// survive unless overridden.
type flags struct {
	fs         *pflag.FlagSet
	v          *Config
	configPath string
	savePath   string
	debug      bool
	lightPos   []float32
	lightColor []float32
	copies     map[string]func(dst *Config)
}

func newFlags(v *Config) *flags {
	f := &flags{
		fs:         pflag.NewFlagSet("parallax", pflag.ContinueOnError),
		v:          v,
		lightPos:   v.Light.Position[:],
		lightColor: v.Light.Color[:],
		copies:     map[string]func(dst *Config){},
	}
	fs := f.fs
	fs.SortFlags = false

	fs.StringVar(&f.configPath, "config", "", "path to a YAML config file")
	fs.StringVar(&f.savePath, "save-config", "", "write the effective config to this path")
	fs.BoolVar(&f.debug, "debug", false, "shorthand for --log-level debug")

	f.intVar(&v.Render.Width, "width", "output width in pixels", func(d *Config) { d.Render.Width = v.Render.Width })
	f.intVar(&v.Render.Height, "height", "output height in pixels", func(d *Config) { d.Render.Height = v.Render.Height })
	f.intVar(&v.Render.Workers, "workers", "concurrent tiles, 0 for one per CPU", func(d *Config) { d.Render.Workers = v.Render.Workers })
	f.intVar(&v.Render.Supersample, "supersample", "render at this multiple and scale down", func(d *Config) { d.Render.Supersample = v.Render.Supersample })
	f.intVar(&v.Render.TileRows, "tile-rows", "rows per work item", func(d *Config) { d.Render.TileRows = v.Render.TileRows })
	f.intVar(&v.Render.Frames, "frames", "frames to render; more than one runs the benchmark", func(d *Config) { d.Render.Frames = v.Render.Frames })
	f.boolVar(&v.Render.AutoRotate, "auto-rotate", "advance the rotation every frame", func(d *Config) { d.Render.AutoRotate = v.Render.AutoRotate })
	f.boolVar(&v.Render.Marker, "marker", "draw the light marker", func(d *Config) { d.Render.Marker = v.Render.Marker })
	f.stringVar(&v.Render.Output, "output", "output image (.png, .bmp or .dds)", func(d *Config) { d.Render.Output = v.Render.Output })
	f.stringVar(&v.Render.Report, "report", "write frame timings as JSON to this path", func(d *Config) { d.Render.Report = v.Render.Report })

	f.stringVar(&v.Textures.Albedo, "albedo", "albedo texture", func(d *Config) { d.Textures.Albedo = v.Textures.Albedo })
	f.stringVar(&v.Textures.Height, "height-map", "height texture", func(d *Config) { d.Textures.Height = v.Textures.Height })
	f.stringVar(&v.Textures.Normal, "normal-map", "normal texture", func(d *Config) { d.Textures.Normal = v.Textures.Normal })
	f.stringVar(&v.Textures.NormalHeight, "normal-height", "packed normal (RGB) and height (A) texture", func(d *Config) { d.Textures.NormalHeight = v.Textures.NormalHeight })
	f.intVar(&v.Textures.ProceduralSize, "texture-size", "size of generated textures", func(d *Config) { d.Textures.ProceduralSize = v.Textures.ProceduralSize })

	f.float32Var(&v.Shading.BumpScale, "bump-scale", "relief depth in UV units", func(d *Config) { d.Shading.BumpScale = v.Shading.BumpScale })
	f.boolVar(&v.Shading.Bumpy, "bumpy", "use the deep relief preset", func(d *Config) { d.Shading.Bumpy = v.Shading.Bumpy })
	f.boolVar(&v.Shading.Parallax, "parallax", "displace texture lookups", func(d *Config) { d.Shading.Parallax = v.Shading.Parallax })
	f.boolVar(&v.Shading.SelfShadow, "self-shadow", "trace soft self-shadows", func(d *Config) { d.Shading.SelfShadow = v.Shading.SelfShadow })
	f.boolVar(&v.Shading.HighQuality, "high-quality", "use 16-128 trace steps", func(d *Config) { d.Shading.HighQuality = v.Shading.HighQuality })

	f.float32Var(&v.Camera.Rotate, "rotate", "rotation about Y in degrees", func(d *Config) { d.Camera.Rotate = v.Camera.Rotate })
	f.float32Var(&v.Camera.Elevate, "elevate", "rotation about X in degrees", func(d *Config) { d.Camera.Elevate = v.Camera.Elevate })

	fs.Float32SliceVar(&f.lightPos, "light-pos", f.lightPos, "light position x,y,z")
	fs.Float32SliceVar(&f.lightColor, "light-color", f.lightColor, "light colour r,g,b")
	f.float32Var(&v.Light.Intensity, "light-intensity", "light intensity", func(d *Config) { d.Light.Intensity = v.Light.Intensity })

	f.stringVar(&v.Logging.Level, "log-level", "debug, info, warn or error", func(d *Config) { d.Logging.Level = v.Logging.Level })
	f.stringVar(&v.Logging.File, "log-file", "also log to this rotating file", func(d *Config) { d.Logging.File = v.Logging.File })
	return f
}

func (f *flags) intVar(p *int, name, usage string, set func(*Config)) {
	f.fs.IntVar(p, name, *p, usage)
	f.copies[name] = set
}

func (f *flags) boolVar(p *bool, name, usage string, set func(*Config)) {
	f.fs.BoolVar(p, name, *p, usage)
	f.copies[name] = set
}

func (f *flags) stringVar(p *string, name, usage string, set func(*Config)) {
	f.fs.StringVar(p, name, *p, usage)
	f.copies[name] = set
}

func (f *flags) float32Var(p *float32, name, usage string, set func(*Config)) {
	f.fs.Float32Var(p, name, *p, usage)
	f.copies[name] = set
}

// apply copies the flags that were set onto cfg.
func (f *flags) apply(cfg *Config) error {
	var err error
	f.fs.Visit(func(fl *pflag.Flag) {
		if set, ok := f.copies[fl.Name]; ok {
			set(cfg)
		}
	})
	if f.fs.Changed("light-pos") {
		if cfg.Light.Position, err = vec3("light-pos", f.lightPos); err != nil {
			return err
		}
	}
	if f.fs.Changed("light-color") {
		if cfg.Light.Color, err = vec3("light-color", f.lightColor); err != nil {
			return err
		}
	}
	if f.debug {
		cfg.Logging.Level = "debug"
	}
	cfg.SavePath = f.savePath
	return nil
}

func vec3(name string, v []float32) ([3]float32, error) {
	if len(v) != 3 {
		return [3]float32{}, fmt.Errorf("--%s needs 3 values, got %d", name, len(v))
	}
	return [3]float32{v[0], v[1], v[2]}, nil
}
