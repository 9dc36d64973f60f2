package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelayRandom(t *testing.T) {
	d := Delay{Min: 50 * time.Millisecond, Max: 200 * time.Millisecond}
	for i := 0; i < 100; i++ {
		got := d.Random()
		assert.GreaterOrEqual(t, got, d.Min)
		assert.Less(t, got, d.Max)
	}
	assert.Equal(t, time.Second, Delay{Min: time.Second}.Random())
}

func TestReadFileMergesLocalOverride(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "crawler.json5")
	require.NoError(t, os.WriteFile(base, []byte(`{
		// shared settings
		search_term: "oled tv",
		domains: ["amazon.com", "amazon.co.uk"],
		max_products: 3,
		wait_timeout: "20s",
	}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "crawler.local.json5"), []byte(`{
		email: "me@example.com",
		max_products: 8,
	}`), 0o644))

	f, err := ReadFile(base)
	require.NoError(t, err)
	assert.Equal(t, "oled tv", f.SearchTerm)
	assert.Equal(t, 8, f.MaxProducts)
	assert.Equal(t, "me@example.com", f.Email)

	cfg := Default()
	require.NoError(t, f.apply(&cfg))
	assert.Equal(t, "oled tv", cfg.SearchTerm)
	assert.Equal(t, []string{"amazon.com", "amazon.co.uk"}, cfg.Domains)
	assert.Equal(t, 20*time.Second, cfg.WaitTimeout)
	assert.Equal(t, 15*time.Second, cfg.LoginTimeout, "unset durations keep defaults")
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json5"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestApplyRejectsBadDuration(t *testing.T) {
	cfg := Default()
	err := File{PageTimeout: "soon"}.apply(&cfg)
	assert.Error(t, err)
}

func TestLoadReadsCredentialsFromEnv(t *testing.T) {
	t.Setenv("AMAZON_EMAIL", "shopper@example.com")
	t.Setenv("AMAZON_PASSWORD", "hunter2")
	t.Setenv("AMAZON_DOMAINS", "amazon.de, amazon.com")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json5"))
	require.NoError(t, err)
	assert.True(t, cfg.HasCredentials())
	assert.Equal(t, "amazon.de", cfg.PrimaryDomain())
	assert.Equal(t, []string{"amazon.de", "amazon.com"}, cfg.Domains)
}

func TestDefaultHasNoCredentials(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.HasCredentials())
	assert.Equal(t, 3, cfg.SearchRetries)
	assert.Equal(t, "amazon.com", cfg.PrimaryDomain())
}
