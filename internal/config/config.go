package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete pipeline configuration
type Config struct {
	Sources  SourcesConfig  `yaml:"sources" envconfig:"SOURCES"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
}

// SourcesConfig contains the upstream dataset endpoints and credentials.
// The AQS credentials are the only secret and normally come from .env.
type SourcesConfig struct {
	AQSBaseURL  string `yaml:"aqs_base_url" envconfig:"AQS_BASE_URL" default:"https://aqs.epa.gov/data/api/annualData/byState" validate:"required,url"`
	AQSEmail    string `yaml:"aqs_email" envconfig:"AQS_EMAIL"`
	AQSKey      string `yaml:"aqs_key" envconfig:"AQS_KEY"`
	ChronicURL  string `yaml:"chronic_url" envconfig:"CHRONIC_URL" default:"https://data.cdc.gov/api/views/hksd-2xuw/rows.json?accessType=DOWNLOAD" validate:"required,url"`
	WHOShareURL string `yaml:"who_share_url" envconfig:"WHO_SHARE_URL" default:"https://drive.google.com/file/d/1Biiamr8qiEv3IZi0o8E7O1ylMBfcuBJh/view?usp=share_link" validate:"required,url"`
}

// PipelineConfig contains batch execution tuning
type PipelineConfig struct {
	FetchTimeout     time.Duration `yaml:"fetch_timeout" envconfig:"FETCH_TIMEOUT" default:"2m"`
	FetchConcurrency int           `yaml:"fetch_concurrency" envconfig:"FETCH_CONCURRENCY" default:"4" validate:"min=1,max=16"`
	RequestsPerSec   float64       `yaml:"requests_per_sec" envconfig:"REQUESTS_PER_SEC" default:"2" validate:"gt=0"`
	UseCache         bool          `yaml:"use_cache" envconfig:"USE_CACHE" default:"true"`
	StartYear        int           `yaml:"start_year" envconfig:"START_YEAR" default:"2015" validate:"min=1990"`
	EndYear          int           `yaml:"end_year" envconfig:"END_YEAR" default:"2019" validate:"gtefield=StartYear"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/pipeline.log"`
}

// ServerConfig contains the report server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	BaseDir    string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	ResultsDir string `yaml:"results_dir" envconfig:"RESULTS_DIR" default:"results"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// Load loads configuration from .env, environment variables and an optional
// config file. Environment variables take precedence over the file.
func Load() (*Config, error) {
	// .env carries the AQS credentials; absence is fine outside dev
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("EPI", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := getConfigFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence)
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Sources.AQSEmail == "" {
		envConfig.Sources.AQSEmail = fileConfig.Sources.AQSEmail
	}
	if envConfig.Sources.AQSKey == "" {
		envConfig.Sources.AQSKey = fileConfig.Sources.AQSKey
	}
	if fileConfig.Pipeline.StartYear != 0 {
		envConfig.Pipeline.StartYear = fileConfig.Pipeline.StartYear
	}
	if fileConfig.Pipeline.EndYear != 0 {
		envConfig.Pipeline.EndYear = fileConfig.Pipeline.EndYear
	}
	if fileConfig.Paths.BaseDir != "" && envConfig.Paths.BaseDir == "" {
		envConfig.Paths.BaseDir = fileConfig.Paths.BaseDir
	}
	if fileConfig.Server.Port != 0 && envConfig.Server.Port == 8080 {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	return envConfig
}

// Validate runs struct-level validation over the loaded configuration
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// getConfigFilePath returns the config file path, honoring EPI_CONFIG_FILE
func getConfigFilePath() string {
	if path := os.Getenv("EPI_CONFIG_FILE"); path != "" {
		return path
	}
	return filepath.Join(".", "config.yaml")
}
