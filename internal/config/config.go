package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Inputs InputsConfig `yaml:"inputs" mapstructure:"inputs"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	RunLog RunLogConfig `yaml:"runlog" mapstructure:"runlog"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// InputsConfig points at the raw IPEDS extracts.
type InputsConfig struct {
	WideCSV      string `yaml:"wide_csv" mapstructure:"wide_csv"`
	MetadataFile string `yaml:"metadata_file" mapstructure:"metadata_file"`
}

// OutputConfig configures the processed output directory, owned
// exclusively by this pipeline.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// RunLogConfig configures the run-history backend.
type RunLogConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // sqlite | postgres
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("IPEDS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("inputs.wide_csv", "data/raw/ipeds/grad_rates_2004_2023.csv")
	v.SetDefault("inputs.metadata_file", "data/raw/ipeds/institutions.csv")
	v.SetDefault("output.dir", "data/processed/canonical")
	v.SetDefault("runlog.driver", "sqlite")
	v.SetDefault("runlog.dsn", "data/pipeline_runs.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
