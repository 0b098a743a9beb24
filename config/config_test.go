package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, float32(480), cfg.Width)
	assert.Equal(t, float32(800), cfg.Height)
	assert.Equal(t, 8, cfg.StencilBits)
}

func TestParseTOML(t *testing.T) {
	data := []byte(`
width = 1024
height = 768
stencil_bits = 4
debug = true
log_level = "debug"
`)
	cfg, err := Parse(data, TOML)
	require.NoError(t, err)
	assert.Equal(t, float32(1024), cfg.Width)
	assert.Equal(t, float32(768), cfg.Height)
	assert.Equal(t, 4, cfg.StencilBits)
	assert.True(t, cfg.Debug)
	assert.Equal(t, Default().DamageTileSize, cfg.DamageTileSize, "missing keys keep defaults")

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestParseYAML(t *testing.T) {
	data := []byte("width: 320\nheight: 240\npartial_update: false\nmax_damage_rects: 3\n")
	cfg, err := Parse(data, YAML)
	require.NoError(t, err)
	assert.Equal(t, float32(320), cfg.Width)
	assert.False(t, cfg.PartialUpdate)
	assert.Equal(t, 3, cfg.MaxDamageRects)
}

func TestParseEmptyYAML(t *testing.T) {
	cfg, err := Parse(nil, YAML)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseUnknownKey(t *testing.T) {
	_, err := Parse([]byte("widht = 10\n"), TOML)
	assert.Error(t, err)
	_, err = Parse([]byte("widht: 10\n"), YAML)
	assert.Error(t, err)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"zero width", "width = 0"},
		{"negative stencil", "stencil_bits = -1"},
		{"too many stencil bits", "stencil_bits = 33"},
		{"negative tile", "damage_tile_size = -4.0"},
		{"no damage rects", "max_damage_rects = 0"},
		{"negative tps", "tps = -1"},
		{"bad level", `log_level = "loud"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), TOML)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLevelDefault(t *testing.T) {
	lvl, err := Scene{}.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yml")
	require.NoError(t, os.WriteFile(path, []byte("width: 640\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, float32(640), cfg.Width)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(dir, "scene.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "unknown file extension")
}

func TestMarshalRoundtrip(t *testing.T) {
	cfg := Default()
	cfg.Width = 333
	for _, f := range []Format{TOML, YAML} {
		data, err := cfg.Marshal(f)
		require.NoError(t, err)
		got, err := Parse(data, f)
		require.NoError(t, err)
		assert.Equal(t, cfg, got, "format %s", f)
	}
}
