package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/redisvec/internal/domain/schema"
)

// Config holds the redisvec service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Redis     RedisConfig     `yaml:"redis"`
	Index     IndexConfig     `yaml:"index"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// RedisConfig holds engine connection settings.
type RedisConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IndexConfig declares the index a service instance is bound to.
type IndexConfig struct {
	Name         string          `yaml:"name"`
	ContentField string          `yaml:"content_field"`
	Vector       VectorConfig    `yaml:"vector"`
	Metadata     []MetadataEntry `yaml:"metadata"`
}

// VectorConfig is the vector field skeleton. Dims 0 means "read from the existing index".
type VectorConfig struct {
	Name      string      `yaml:"name"`
	Algorithm string      `yaml:"algorithm"`
	Metric    string      `yaml:"distance_metric"`
	Datatype  string      `yaml:"datatype"`
	Dims      int         `yaml:"dims"`
	HNSW      *HNSWConfig `yaml:"hnsw"`
	Flat      FlatConfig  `yaml:"flat"`
}

// HNSWConfig holds HNSW parameters. When the block is present M and EF_CONSTRUCTION are required.
type HNSWConfig struct {
	M              int     `yaml:"m"`
	EFConstruction int     `yaml:"ef_construction"`
	EFRuntime      int     `yaml:"ef_runtime"`
	Epsilon        float64 `yaml:"epsilon"`
}

// FlatConfig holds FLAT parameters.
type FlatConfig struct {
	BlockSize  int `yaml:"block_size"`
	InitialCap int `yaml:"initial_cap"`
}

// MetadataEntry declares one metadata field.
type MetadataEntry struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"` // text, tag, numeric
}

// IngestConfig holds ingestion settings.
type IngestConfig struct {
	BatchSize int `yaml:"batch_size"`
}

// EmbeddingConfig holds the OpenAI-compatible embedding provider settings.
// An empty Model disables server-side embedding; callers must then send vectors.
type EmbeddingConfig struct {
	Provider     string `yaml:"provider"`
	APIKey       string `yaml:"api_key"`
	BaseURL      string `yaml:"base_url"`
	Model        string `yaml:"model"`
	Dimensions   int    `yaml:"dimensions"`
	User         string `yaml:"user"`
	MaxBatchSize int    `yaml:"max_batch_size"`
}

// Enabled reports whether an embedding model is configured.
func (e EmbeddingConfig) Enabled() bool { return e.Model != "" }

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse expands ${VAR} references, decodes YAML, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Redis.ReadinessTimeout <= 0 {
		c.Redis.ReadinessTimeout = 10
	}
	if c.Index.ContentField == "" {
		c.Index.ContentField = schema.DefaultContentField
	}
	v := &c.Index.Vector
	if v.Name == "" {
		v.Name = schema.DefaultVectorFieldName
	}
	if v.Algorithm == "" {
		v.Algorithm = string(schema.DefaultAlgorithm)
	}
	if v.Metric == "" {
		v.Metric = string(schema.DefaultMetric)
	}
	if v.Datatype == "" {
		v.Datatype = string(schema.DefaultDatatype)
	}
	if c.Ingest.BatchSize <= 0 {
		c.Ingest.BatchSize = 1000
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.MaxBatchSize <= 0 {
		c.Embedding.MaxBatchSize = 256
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Redis.Addrs) == 0 {
		return errors.New("redis.addrs is required")
	}
	if c.Index.Name == "" {
		return errors.New("index.name is required")
	}
	if !schema.IsValidName(c.Index.Name) {
		return fmt.Errorf("index.name %q contains invalid characters", c.Index.Name)
	}
	if c.Index.Vector.Dims < 0 {
		return fmt.Errorf("index.vector.dims must not be negative, got %d", c.Index.Vector.Dims)
	}
	if _, err := c.Index.VectorField(); err != nil {
		return fmt.Errorf("index.vector: %w", err)
	}
	if _, err := c.Index.MetadataSchema(); err != nil {
		return fmt.Errorf("index.metadata: %w", err)
	}
	if c.Embedding.Enabled() && c.Embedding.Dimensions < 0 {
		return fmt.Errorf("embedding.dimensions must not be negative, got %d", c.Embedding.Dimensions)
	}
	return nil
}

// VectorField converts the vector block into a schema skeleton. A missing hnsw block
// selects the default HNSW parameters; a present one must name M and EF_CONSTRUCTION.
func (ic IndexConfig) VectorField() (schema.VectorField, error) {
	v := ic.Vector
	algo, err := schema.ParseAlgorithm(v.Algorithm)
	if err != nil {
		return schema.VectorField{}, err
	}
	metric, err := schema.ParseMetric(v.Metric)
	if err != nil {
		return schema.VectorField{}, err
	}
	dtype, err := schema.ParseDatatype(v.Datatype)
	if err != nil {
		return schema.VectorField{}, err
	}

	vf := schema.NewVectorField()
	vf.Name = v.Name
	vf.Algorithm = algo
	vf.Metric = metric
	vf.Datatype = dtype
	vf.Flat = schema.FlatParams{BlockSize: v.Flat.BlockSize, InitialCap: v.Flat.InitialCap}
	if v.HNSW != nil {
		vf.HNSW = schema.HNSWParams{
			M:              v.HNSW.M,
			EFConstruction: v.HNSW.EFConstruction,
			EFRuntime:      v.HNSW.EFRuntime,
			Epsilon:        v.HNSW.Epsilon,
		}
	}

	// Probe the HNSW requirements without knowing the real dimension.
	if _, err := vf.Finalize(1); err != nil {
		return schema.VectorField{}, err
	}
	return vf, nil
}

// MetadataSchema converts the metadata list into a validated schema.
func (ic IndexConfig) MetadataSchema() (schema.MetadataSchema, error) {
	fields := make([]schema.MetadataField, len(ic.Metadata))
	for i, m := range ic.Metadata {
		kind, err := schema.ParseKind(m.Type)
		if err != nil {
			return schema.MetadataSchema{}, fmt.Errorf("field %q: %w", m.Name, err)
		}
		fields[i] = schema.MetadataField{Name: m.Name, Kind: kind}
	}
	return schema.NewMetadata(fields...)
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
