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
	t.Setenv("DATABASE_DRIVER", "memory")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "5500", cfg.Port)
	assert.Equal(t, "any", cfg.FavoritePolicy)
	assert.Equal(t, "r2", cfg.StorageDriver)
	assert.Equal(t, 10*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, 10*time.Minute, cfg.Redis.StateTTL)
	assert.Contains(t, cfg.AllowedMimeTypes, "image/png")
}

func TestLoadConfig_Prefixes(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/albums")
	t.Setenv("R2_BUCKET", "photos")
	t.Setenv("CLOUDFLARE_IMAGES_HASH", "abc")
	t.Setenv("JWT_EXPIRY", "1h")
	t.Setenv("FAVORITE_POLICY", "owner")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/albums", cfg.Database.URL)
	assert.Equal(t, "photos", cfg.R2.Bucket)
	assert.Equal(t, "abc", cfg.CloudflareImages.Hash)
	assert.Equal(t, time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, "owner", cfg.FavoritePolicy)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DATABASE_DRIVER=memory\nPORT=9000\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("DATABASE_DRIVER")
		os.Unsetenv("PORT")
	})

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("STORAGE_DRIVER", "ftp")
	t.Setenv("FAVORITE_POLICY", "everyone")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "STORAGE_DRIVER")
	assert.Contains(t, err.Error(), "FAVORITE_POLICY")
}
