package nasc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toutaio/toutago-nasc-registry/store"
)

func writeConfigFile(t *testing.T, content string) string {
	fn := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(fn, []byte(content), 0640))
	return fn
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, LookupFirst, cfg.DefaultLookup)
	assert.Equal(t, DefaultLoggerName, cfg.LoggerName)
	assert.Equal(t, DefaultInjectTag, cfg.InjectTag)
	assert.False(t, cfg.StickyFailures)
	assert.Equal(t, store.MatchFirst, cfg.match())
}

func TestConfig_Apply(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Apply(nil)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg.Apply(&Config{DefaultLookup: LookupExact, StickyFailures: true})
	assert.Equal(t, LookupExact, cfg.DefaultLookup)
	assert.True(t, cfg.StickyFailures)
	assert.Equal(t, DefaultLoggerName, cfg.LoggerName)
	assert.Equal(t, store.MatchExact, cfg.match())

	// zero values do not override
	cfg.Apply(&Config{InjectTag: "di"})
	assert.Equal(t, LookupExact, cfg.DefaultLookup)
	assert.True(t, cfg.StickyFailures)
	assert.Equal(t, "di", cfg.InjectTag)
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultLookup = "closest"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.LoggerName = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.InjectTag = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.InjectTag = "my tag"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.DefaultLookup = "closest"
	cfg.LoggerName = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DefaultLookup must be one of: first exact, got closest")
	assert.Contains(t, err.Error(), "LoggerName must be non-empty")
}

func TestDecodeConfig(t *testing.T) {
	cfg, err := DecodeConfig(map[string]interface{}{
		"defaultLookup":  "exact",
		"stickyFailures": "true",
		"loggerName":     "app.di",
	})
	require.NoError(t, err)
	assert.Equal(t, LookupExact, cfg.DefaultLookup)
	assert.True(t, cfg.StickyFailures)
	assert.Equal(t, "app.di", cfg.LoggerName)
	assert.Equal(t, DefaultInjectTag, cfg.InjectTag)
}

func TestDecodeConfig_Errors(t *testing.T) {
	_, err := DecodeConfig(map[string]interface{}{"lookup": "exact"})
	assert.Error(t, err, "unknown keys are reported")

	_, err = DecodeConfig(map[string]interface{}{"defaultLookup": "closest"})
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	fn := writeConfigFile(t, `
server:
  port: 8080
container:
  defaultLookup: exact
  injectTag: di
`)

	cfg, err := LoadConfig(fn, "container")
	require.NoError(t, err)
	assert.Equal(t, LookupExact, cfg.DefaultLookup)
	assert.Equal(t, "di", cfg.InjectTag)

	cfg, err = LoadConfig(fn, "registry")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = LoadConfig(fn, "")
	assert.Error(t, err, "the whole document has unknown keys")
}

func TestLoadConfig_WholeDocument(t *testing.T) {
	fn := writeConfigFile(t, "stickyFailures: true\n")

	cfg, err := LoadConfig(fn, "")
	require.NoError(t, err)
	assert.True(t, cfg.StickyFailures)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), "")
	assert.Error(t, err)

	_, err = LoadConfig(writeConfigFile(t, "container: [1, 2]\n"), "container")
	assert.Error(t, err)

	_, err = LoadConfig(writeConfigFile(t, "container: {\n"), "container")
	assert.Error(t, err)
}

func TestNew_WithLoadedConfig(t *testing.T) {
	fn := writeConfigFile(t, "container:\n  defaultLookup: exact\n")
	cfg, err := LoadConfig(fn, "container")
	require.NoError(t, err)

	n := New(WithConfig(cfg))
	declareBasics(t, n)
	require.NoError(t, Add[Database](n, &MockDB{name: "primary"}, "primary"))

	_, err = Get[Database](n)
	require.NoError(t, err)
	assert.Equal(t, []string{"primary", ""}, n.Qualifiers(TypeOf[Database]()))
}
