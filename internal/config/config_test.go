package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/loom/internal/errors"
)

func errCode(t *testing.T, err error) string {
	t.Helper()
	var le *errors.LoomError
	require.True(t, stderrors.As(err, &le), "error %v is not a LoomError", err)
	return le.Code
}

func TestNew(t *testing.T) {
	cfg := New()

	assert.Equal(t, DefaultEpsilon, cfg.Scheduler.Epsilon)
	assert.Equal(t, DefaultSliceBudget, cfg.Scheduler.SliceBudget)
	assert.Equal(t, DefaultAddr, cfg.Server.Addr)
	assert.Equal(t, BackendNone, cfg.Snapshot.Backend)
	assert.NoError(t, cfg.Validate())
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		ext  string
		data string
	}{
		{".json", `{
  "name": "demo",
  "scheduler": {"epsilon": "2ms", "units_per_slice": 3},
  "server": {"addr": ":8080"},
  "metrics": {"enabled": true},
  "snapshot": {"backend": "redis", "redis_addr": "localhost:6379", "ttl": "10m"}
}`},
		{".yaml", `
name: demo
scheduler:
  epsilon: 2ms
  units_per_slice: 3
server:
  addr: ":8080"
metrics:
  enabled: true
snapshot:
  backend: redis
  redis_addr: localhost:6379
  ttl: 10m
`},
		{".toml", `
name = "demo"

[scheduler]
epsilon = "2ms"
units_per_slice = 3

[server]
addr = ":8080"

[metrics]
enabled = true

[snapshot]
backend = "redis"
redis_addr = "localhost:6379"
ttl = "10m"
`},
	}
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.data), tt.ext)
			require.NoError(t, err)

			assert.Equal(t, "demo", cfg.Name)
			assert.Equal(t, 2*time.Millisecond, cfg.Scheduler.Epsilon)
			assert.Equal(t, 3, cfg.Scheduler.UnitsPerSlice)
			assert.Equal(t, DefaultSliceBudget, cfg.Scheduler.SliceBudget, "unset keys keep defaults")
			assert.Equal(t, ":8080", cfg.Server.Addr)
			assert.Equal(t, int64(DefaultReadLimit), cfg.Server.ReadLimit)
			assert.True(t, cfg.Metrics.Enabled)
			assert.Equal(t, DefaultNamespace, cfg.Metrics.Namespace)
			assert.Equal(t, BackendRedis, cfg.Snapshot.Backend)
			assert.Equal(t, 10*time.Minute, cfg.Snapshot.TTL)
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		data string
		code string
	}{
		{"bad json", ".json", `{"name": `, "E202"},
		{"bad yaml", ".yaml", "name: [", "E202"},
		{"bad toml", ".toml", "name = ", "E202"},
		{"unknown key", ".yaml", "schedular:\n  epsilon: 1ms\n", "E203"},
		{"bad duration", ".yaml", "scheduler:\n  epsilon: soon\n", "E203"},
		{"unsupported", ".ini", "name=x", "E204"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.ext)
			require.Error(t, err)
			assert.Equal(t, tt.code, errCode(t, err))
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir)
	require.Error(t, err)
	assert.Equal(t, "E201", errCode(t, err))
	assert.False(t, Exists(dir))

	path := filepath.Join(dir, "loom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, dir, cfg.Dir())
	assert.True(t, Exists(dir))
}

func TestLoadPrefersJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "loom.json"), []byte(`{"name":"json"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "loom.toml"), []byte(`name = "toml"`), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Name)
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "loom.toml"), []byte(`name = "x"`), 0o644))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	got, err := FindProjectRoot(nested)
	require.NoError(t, err)
	want, err := filepath.Abs(root)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveUsesEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\naddr = \":9000\"\n"), 0o644))
	t.Setenv(EnvConfig, path)

	cfg, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)

	_, err = Resolve(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Equal(t, "E201", errCode(t, err))
}

func TestSnapshotDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "loom.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"snapshot":{"backend":"file","dir":"snaps"}}`), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "snaps"), cfg.SnapshotDir())

	cfg.Snapshot.Dir = "/abs/snaps"
	assert.Equal(t, "/abs/snaps", cfg.SnapshotDir())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"negative epsilon", func(c *Config) { c.Scheduler.Epsilon = -1 }},
		{"negative units", func(c *Config) { c.Scheduler.UnitsPerSlice = -1 }},
		{"budget below epsilon", func(c *Config) { c.Scheduler.SliceBudget = c.Scheduler.Epsilon }},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"zero read limit", func(c *Config) { c.Server.ReadLimit = 0 }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
		{"metrics without namespace", func(c *Config) { c.Metrics = MetricsConfig{Enabled: true} }},
		{"file without dir", func(c *Config) { c.Snapshot.Backend, c.Snapshot.Dir = BackendFile, "" }},
		{"redis without addr", func(c *Config) { c.Snapshot.Backend = BackendRedis }},
		{"s3 without bucket", func(c *Config) { c.Snapshot.Backend = BackendS3 }},
		{"unknown backend", func(c *Config) { c.Snapshot.Backend = "ftp" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, "E203", errCode(t, err))
		})
	}
}

func TestValidateUnitBudgetIgnoresSliceBudget(t *testing.T) {
	cfg := New()
	cfg.Scheduler.UnitsPerSlice = 10
	cfg.Scheduler.SliceBudget = 0
	assert.NoError(t, cfg.Validate())
}
