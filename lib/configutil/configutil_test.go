package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Url      string `json:"url"`
	Attempts int    `json:"attempts"`
	Headed   bool   `json:"headed"`
}

func TestReadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "robotorder.json5")

	require.NoError(t, os.WriteFile(name, []byte(`{
		// comments are allowed
		url: "https://example.com",
		attempts: 3,
	}`), 0600))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "robotorder.local.json5"),
		[]byte(`{attempts: 7}`),
		0600,
	))

	cfg, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, "https://example.com", cfg.Url)
	require.Equal(t, 7, cfg.Attempts)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "nothing.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadConfigOnlyLocal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "robotorder.local.json5"),
		[]byte(`{headed: true}`),
		0600,
	))

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "robotorder.json5"))
	require.NoError(t, err)
	require.True(t, cfg.Headed)
}

func TestLocalName(t *testing.T) {
	require.Equal(t, filepath.Join("a", "b.local.json5"), LocalName(filepath.Join("a", "b.json5")))
	require.Equal(t, "b.local", LocalName("b"))
}

func TestWithDefaults(t *testing.T) {
	cfg, err := WithDefaults(
		testConfig{Attempts: 2},
		testConfig{Url: "https://default", Attempts: 10},
	)
	require.NoError(t, err)
	require.Equal(t, testConfig{Url: "https://default", Attempts: 2}, cfg)
}
