package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "tienda", cfg.Media.Folder)
	assert.Equal(t, "1.62", cfg.Media.AspectRatio)
	assert.Equal(t, 600, cfg.Media.Width)
	assert.Equal(t, "fill", cfg.Media.Crop)
	assert.Equal(t, "center", cfg.Media.Gravity)
	assert.Equal(t, 500, cfg.Media.MaxResults)
	assert.Equal(t, 10*time.Minute, cfg.Cache.PageTTL)
	assert.Equal(t, "page:", cfg.Cache.KeyPrefix)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
app:
  port: "9090"
media:
  folder: catalogo
  width: 800
cloudinary:
  cloud_name: from-file
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv("CLOUDINARY_CLOUD_NAME", "from-env")
	t.Setenv("KAFKA_BROKERS", "localhost:9092")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "catalogo", cfg.Media.Folder)
	assert.Equal(t, 800, cfg.Media.Width)
	assert.Equal(t, "from-env", cfg.Cloudinary.CloudName)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
}
