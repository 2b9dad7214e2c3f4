package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storekit/pkg/config"
)

type successConfig struct {
	Name    string   `env:"STOREKIT_TEST_NAME" envDefault:"default"`
	Count   int      `env:"STOREKIT_TEST_COUNT" envDefault:"42"`
	Domains []string `env:"STOREKIT_TEST_DOMAINS" envSeparator:","`
}

type defaultsConfig struct {
	Name  string `env:"STOREKIT_TEST_DEFAULT_NAME" envDefault:"default"`
	Count int    `env:"STOREKIT_TEST_DEFAULT_COUNT" envDefault:"42"`
}

type cachedConfig struct {
	Value string `env:"STOREKIT_TEST_CACHED"`
}

type requiredConfig struct {
	Value string `env:"STOREKIT_TEST_REQUIRED,required"`
}

type fileConfig struct {
	Value string `env:"STOREKIT_TEST_FROM_FILE"`
}

func TestLoad(t *testing.T) {
	t.Setenv("STOREKIT_TEST_NAME", "shop")
	t.Setenv("STOREKIT_TEST_COUNT", "7")
	t.Setenv("STOREKIT_TEST_DOMAINS", "a.example,b.example")

	var cfg successConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "shop", cfg.Name)
	assert.Equal(t, 7, cfg.Count)
	assert.Equal(t, []string{"a.example", "b.example"}, cfg.Domains)
}

func TestLoad_Defaults(t *testing.T) {
	var cfg defaultsConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "default", cfg.Name)
	assert.Equal(t, 42, cfg.Count)
}

func TestLoad_CachedPerType(t *testing.T) {
	t.Setenv("STOREKIT_TEST_CACHED", "first")

	var a cachedConfig
	require.NoError(t, config.Load(&a))

	t.Setenv("STOREKIT_TEST_CACHED", "second")
	var b cachedConfig
	require.NoError(t, config.Load(&b))

	assert.Equal(t, "first", b.Value)
}

func TestLoad_Required(t *testing.T) {
	var cfg requiredConfig
	err := config.Load(&cfg)
	assert.ErrorIs(t, err, config.ErrParsingConfig)
	assert.Panics(t, func() { config.MustLoad(&cfg) })
}

func TestLoad_NilPointer(t *testing.T) {
	assert.ErrorIs(t, config.Load[requiredConfig](nil), config.ErrNilPointer)
}

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("STOREKIT_TEST_FROM_FILE=from-file\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("STOREKIT_TEST_FROM_FILE") })

	require.NoError(t, config.LoadEnv(path, filepath.Join(t.TempDir(), "missing.env")))

	var cfg fileConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "from-file", cfg.Value)
}
