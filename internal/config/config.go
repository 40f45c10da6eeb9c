package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/loom/internal/errors"
)

// EnvConfig names the environment variable holding an explicit config path.
const EnvConfig = "LOOM_CONFIG"

// ConfigFileNames are the file names searched for, in order.
var ConfigFileNames = []string{"loom.json", "loom.yaml", "loom.yml", "loom.toml"}

const (
	// DefaultEpsilon is the slice budget left unused.
	DefaultEpsilon = time.Millisecond

	// DefaultSliceBudget is the time given to one slice.
	DefaultSliceBudget = 5 * time.Millisecond

	// DefaultAddr is the live server listen address.
	DefaultAddr = "localhost:3000"

	// DefaultReadLimit caps a single websocket message.
	DefaultReadLimit = 64 * 1024

	// DefaultNamespace prefixes prometheus metric names.
	DefaultNamespace = "loom"

	// DefaultSnapshotTTL is how long redis keeps a snapshot.
	DefaultSnapshotTTL = time.Hour
)

// Snapshot backends.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendS3    = "s3"
)

// Config is the complete loom configuration.
type Config struct {
	// Name is the project name, used as the page title.
	Name string `mapstructure:"name"`

	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Snapshot  SnapshotConfig  `mapstructure:"snapshot"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// SchedulerConfig controls how reconciliation work is sliced.
type SchedulerConfig struct {
	// Epsilon is the budget threshold below which a slice yields.
	Epsilon time.Duration `mapstructure:"epsilon"`

	// UnitsPerSlice, when positive, replaces the time budget with a fixed
	// number of work units per slice.
	UnitsPerSlice int `mapstructure:"units_per_slice"`

	// SliceBudget is the wall-clock time of one slice.
	SliceBudget time.Duration `mapstructure:"slice_budget"`
}

// ServerConfig configures the live server.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`

	// ReadLimit is the largest websocket message accepted, in bytes.
	ReadLimit int64 `mapstructure:"read_limit"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`

	// Format is text or json.
	Format string `mapstructure:"format"`
}

// MetricsConfig configures the prometheus observer.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// TracingConfig configures the OpenTelemetry observer.
type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// SnapshotConfig selects where committed trees are stored.
type SnapshotConfig struct {
	// Backend is none, file, redis or s3.
	Backend string `mapstructure:"backend"`

	// Dir is the file backend directory.
	Dir string `mapstructure:"dir"`

	RedisAddr string        `mapstructure:"redis_addr"`
	TTL       time.Duration `mapstructure:"ttl"`

	S3Bucket string `mapstructure:"s3_bucket"`
	S3Prefix string `mapstructure:"s3_prefix"`

	// S3Region overrides the region from the AWS environment.
	S3Region string `mapstructure:"s3_region"`
}

// New returns a configuration with every default filled in.
func New() *Config {
	return &Config{
		Name: "loom",
		Scheduler: SchedulerConfig{
			Epsilon:     DefaultEpsilon,
			SliceBudget: DefaultSliceBudget,
		},
		Server: ServerConfig{
			Addr:      DefaultAddr,
			ReadLimit: DefaultReadLimit,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Namespace: DefaultNamespace,
		},
		Snapshot: SnapshotConfig{
			Backend: BackendNone,
			Dir:     ".loom/snapshots",
			TTL:     DefaultSnapshotTTL,
		},
	}
}

// Load reads the first config file found in dir.
func Load(dir string) (*Config, error) {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E201").
		WithDetail("No loom config found in " + dir)
}

// LoadFile reads configuration from path. The format follows the file
// extension; all formats share one schema.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E201").WithDetail(path + " does not exist")
		}
		return nil, errors.New("E202").Wrap(err)
	}

	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	cfg.configPath = path
	return cfg, nil
}

// Parse decodes data in the format named by ext (".json", ".yaml", ".yml"
// or ".toml") on top of the defaults.
func Parse(data []byte, ext string) (*Config, error) {
	raw := map[string]any{}
	var err error
	switch strings.ToLower(ext) {
	case ".json":
		err = json.Unmarshal(data, &raw)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	case ".toml":
		err = toml.Unmarshal(data, &raw)
	default:
		return nil, errors.New("E204").WithDetailf("extension %q", ext)
	}
	if err != nil {
		return nil, errors.New("E202").
			WithDetail("Failed to parse config: " + err.Error()).
			Wrap(err)
	}

	cfg := New()
	if err := decode(raw, cfg); err != nil {
		return nil, errors.New("E203").WithDetail(err.Error()).Wrap(err)
	}
	return cfg, nil
}

// decode maps the generic document onto cfg. Durations may be written as
// strings ("2ms") and unknown keys are rejected.
func decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// Resolve finds the configuration to use: path if non-empty, then
// $LOOM_CONFIG, then a config file in the working directory or a parent.
// With none of them present it returns the defaults.
func Resolve(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		return LoadFile(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := FindProjectRoot(wd)
	if err != nil {
		return New(), nil
	}
	return Load(root)
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// SnapshotDir returns the file backend directory, relative paths being
// taken from the config file's directory.
func (c *Config) SnapshotDir() string {
	if filepath.IsAbs(c.Snapshot.Dir) {
		return c.Snapshot.Dir
	}
	return filepath.Join(c.Dir(), c.Snapshot.Dir)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New("E203").WithDetailf(format, args...)
	}

	s := c.Scheduler
	if s.Epsilon < 0 {
		return invalid("scheduler.epsilon must not be negative")
	}
	if s.UnitsPerSlice < 0 {
		return invalid("scheduler.units_per_slice must not be negative")
	}
	if s.UnitsPerSlice == 0 && s.SliceBudget <= s.Epsilon {
		return invalid("scheduler.slice_budget (%s) must exceed scheduler.epsilon (%s)", s.SliceBudget, s.Epsilon)
	}

	if c.Server.Addr == "" {
		return invalid("server.addr is required")
	}
	if c.Server.ReadLimit <= 0 {
		return invalid("server.read_limit must be positive")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return invalid("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return invalid("log.format %q is not text or json", c.Log.Format)
	}

	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return invalid("metrics.namespace is required when metrics are enabled")
	}

	switch c.Snapshot.Backend {
	case "", BackendNone:
	case BackendFile:
		if c.Snapshot.Dir == "" {
			return invalid("snapshot.dir is required for the file backend")
		}
	case BackendRedis:
		if c.Snapshot.RedisAddr == "" {
			return invalid("snapshot.redis_addr is required for the redis backend")
		}
	case BackendS3:
		if c.Snapshot.S3Bucket == "" {
			return invalid("snapshot.s3_bucket is required for the s3 backend")
		}
	default:
		return invalid("snapshot.backend %q is not none, file, redis or s3", c.Snapshot.Backend)
	}
	return nil
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range ConfigFileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing a loom config, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E201").
				WithDetail("No loom config found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}
