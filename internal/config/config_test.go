package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func noFile() string { return "" }

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "parallax.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 1400, cfg.Render.Width)
	require.Equal(t, 700, cfg.Render.Height)
	require.Equal(t, float32(-20), cfg.Camera.Elevate)
	require.Equal(t, [3]float32{0, 0, 8}, cfg.Light.Position)
	require.Equal(t, [3]float32{1, 1, 0.65}, cfg.Light.Color)
}

func TestLoadWithoutArgs(t *testing.T) {
	cfg, err := load(nil, noFile)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestFileOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
render:
  width: 320
  output: out.bmp
shading:
  self_shadow: false
  tunables:
    shadow_kernel: 1
light:
  position: [1, 2, 3]
`)
	cfg, err := load([]string{"--config", path}, noFile)
	require.NoError(t, err)
	require.Equal(t, 320, cfg.Render.Width)
	require.Equal(t, 700, cfg.Render.Height)
	require.Equal(t, "out.bmp", cfg.Render.Output)
	require.False(t, cfg.Shading.SelfShadow)
	require.True(t, cfg.Shading.Parallax)
	require.Equal(t, 1, cfg.Shading.Tunables.ShadowKernel)
	require.Equal(t, [3]float32{1, 2, 3}, cfg.Light.Position)
}

func TestFlagsOverrideFile(t *testing.T) {
	path := writeFile(t, "render:\n  width: 320\n  height: 200\n")
	cfg, err := load([]string{
		"--config", path,
		"--width", "640",
		"--self-shadow=false",
		"--light-pos", "4,5,6",
		"--debug",
	}, noFile)
	require.NoError(t, err)
	require.Equal(t, 640, cfg.Render.Width)
	// Unset flags keep the file's value, not the flag default.
	require.Equal(t, 200, cfg.Render.Height)
	require.False(t, cfg.Shading.SelfShadow)
	require.Equal(t, [3]float32{4, 5, 6}, cfg.Light.Position)
	require.Equal(t, "debug", cfg.Logging.Level)
}

func TestSearchedFile(t *testing.T) {
	path := writeFile(t, "camera:\n  rotate: 45\n")
	cfg, err := load(nil, func() string { return path })
	require.NoError(t, err)
	require.Equal(t, float32(45), cfg.Camera.Rotate)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		file string
	}{
		{name: "unknown flag", args: []string{"--nope"}},
		{name: "bad light", args: []string{"--light-pos", "1,2"}},
		{name: "missing file", args: []string{"--config", "/does/not/exist.yaml"}},
		{name: "bad yaml", file: "render: [1, 2"},
		{name: "invalid value", args: []string{"--supersample", "9"}},
		{name: "bad level", args: []string{"--log-level", "chatty"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := tt.args
			if tt.file != "" {
				args = append(args, "--config", writeFile(t, tt.file))
			}
			_, err := load(args, noFile)
			require.Error(t, err)
		})
	}
}

func TestHelp(t *testing.T) {
	_, err := load([]string{"--help"}, noFile)
	require.ErrorIs(t, err, pflag.ErrHelp)
}

func TestValidateCollectsAll(t *testing.T) {
	cfg := Default()
	cfg.Render.Width = 0
	cfg.Shading.AOMin = 2
	cfg.Light.Color[1] = -1
	err := cfg.Validate()
	require.Error(t, err)
	require.ErrorContains(t, err, "render size")
	require.ErrorContains(t, err, "ao_min")
	require.ErrorContains(t, err, "light.color[1]")
}

func TestEffectiveBumpScale(t *testing.T) {
	s := Default().Shading
	require.Equal(t, float32(0.05), s.EffectiveBumpScale())
	s.Bumpy = true
	require.Equal(t, float32(0.125), s.EffectiveBumpScale())
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Render.Frames = 30
	cfg.Textures.NormalHeight = "rock_nh.dds"
	path := filepath.Join(t.TempDir(), "nested", "parallax.yaml")
	require.NoError(t, cfg.SaveTo(path))

	got, err := load([]string{"--config", path}, noFile)
	require.NoError(t, err)
	require.Equal(t, cfg, got)
}
