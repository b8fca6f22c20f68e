package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/graphpane/graphpane/physics"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graphpane.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, time.Second/30, cfg.Panel.FrameInterval())

	_, err := cfg.Layout.Build()
	assert.NoError(t, err)
}

func TestLoadFromPathPartialOverride(t *testing.T) {
	path := writeConfig(t, `
panel:
  width: 1024
  fps: 60
layout:
  strategy: noise-drift
server:
  read_timeout: 5s
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, 1024.0, cfg.Panel.Width)
	assert.Equal(t, 600.0, cfg.Panel.Height) // untouched default
	assert.Equal(t, 60, cfg.Panel.FPS)
	assert.Equal(t, "noise-drift", cfg.Layout.Strategy)
	assert.Equal(t, physics.DefaultRepulsion, cfg.Layout.Repulsion)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout.Duration())
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout.Duration())
}

func TestLoadFromPathEmptyFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadFromPath(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromPathRejectsUnknownKeys(t *testing.T) {
	_, err := LoadFromPath(writeConfig(t, "panle:\n  width: 3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestLoadFromPathRejectsInvalidValues(t *testing.T) {
	cases := map[string]struct {
		yaml string
		want string
	}{
		"fps out of range":  {"panel:\n  fps: 900\n", "FPS"},
		"negative width":    {"panel:\n  width: -5\n", "Width"},
		"unknown strategy":  {"layout:\n  strategy: warp\n", "Strategy"},
		"malformed address": {"server:\n  addr: nonsense\n", "Addr"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFromPath(writeConfig(t, tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadFromPathMissingFile(t *testing.T) {
	_, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read")
}

func TestLayoutBuildMatchesStrategyNames(t *testing.T) {
	layout := Default().Layout

	layout.Strategy = "spring"
	s, err := layout.Build()
	require.NoError(t, err)
	assert.Equal(t, "spring", s.Name())

	layout.Strategy = "spring-gravity"
	s, err = layout.Build()
	require.NoError(t, err)
	assert.Equal(t, "spring-gravity", s.Name())

	layout.Strategy = "noise-drift"
	s, err = layout.Build()
	require.NoError(t, err)
	assert.Contains(t, s.Name(), "noise-drift")

	layout.Strategy = "warp"
	_, err = layout.Build()
	assert.ErrorIs(t, err, physics.ErrUnknownStrategy)

	layout.Strategy = "spring"
	layout.Repulsion = -1
	_, err = layout.Build()
	assert.ErrorIs(t, err, physics.ErrBadConstant)
}

func TestRenderOptions(t *testing.T) {
	opts := Default().Render.Options()
	assert.True(t, opts.ShowLabels)
	assert.False(t, opts.ShowEdgeLabels)
	assert.Equal(t, "#f8f8f8", opts.Palette.Background)

	off := false
	section := RenderConfig{
		Format:     "svg",
		Theme:      "midnight",
		Background: "#123456",
		Labels:     &off,
		EdgeLabels: true,
	}
	opts = section.Options()
	assert.False(t, opts.ShowLabels)
	assert.True(t, opts.ShowEdgeLabels)
	assert.Equal(t, "#123456", opts.Background)
	assert.Equal(t, "#212121", opts.Palette.Background)
}

func TestDurationYAML(t *testing.T) {
	var holder struct {
		D Duration `yaml:"d"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("d: 250ms"), &holder))
	assert.Equal(t, 250*time.Millisecond, holder.D.Duration())

	assert.Error(t, yaml.Unmarshal([]byte("d: fast"), &holder))

	out, err := yaml.Marshal(struct {
		D Duration `yaml:"d"`
	}{Duration(10 * time.Second)})
	require.NoError(t, err)
	assert.Equal(t, "d: 10s\n", string(out))
}

func TestLoadHonorsEnvPath(t *testing.T) {
	scratch := t.TempDir()
	path := writeConfig(t, "panel:\n  fps: 12\n")
	t.Setenv(EnvConfigPath, path)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(scratch, "xdg"))
	t.Setenv("HOME", filepath.Join(scratch, "home"))

	cfg, from, err := Load()
	require.NoError(t, err)
	assert.Equal(t, path, from)
	assert.Equal(t, 12, cfg.Panel.FPS)
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	scratch := t.TempDir()
	t.Setenv(EnvConfigPath, filepath.Join(scratch, "missing.yaml"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(scratch, "xdg"))
	t.Setenv("HOME", filepath.Join(scratch, "home"))

	cfg, from, err := Load()
	require.NoError(t, err)
	assert.Empty(t, from)
	assert.Equal(t, Default(), cfg)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Panel.FPS = 48
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 48, loaded.Panel.FPS)
	assert.Equal(t, cfg, loaded)
}
