package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension; viper probes
// registered extensions (.toml, .yaml, .yml) in the search paths below.
const configName = ".styler"

// envPrefix is the environment variable prefix for styler settings.
const envPrefix = "STYLER"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path
// (its extension selects the decoder: .toml or .yaml/.yml). Otherwise the
// config file is searched in CWD and $HOME as .styler.toml / .styler.yaml.
// A missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	if err := ValidateSchema(viperCfg.AllSettings()); err != nil {
		return nil, err
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("rules.enabled", []string{})
	viperCfg.SetDefault("rules.disabled", []string{})

	viperCfg.SetDefault("line_length.max_line_length", DefaultMaxLineLength)
	viperCfg.SetDefault("line_length.continuation_indent", DefaultContinuationIndent)

	viperCfg.SetDefault("brace_style.style", DefaultBraceStyle)

	viperCfg.SetDefault("indentation.type", DefaultIndentationType)
	viperCfg.SetDefault("indentation.indent_size", DefaultIndentSize)
	viperCfg.SetDefault("indentation.continuation_multiplier", DefaultContinuationMultiplier)
	viperCfg.SetDefault("indentation.tab_width", DefaultTabWidth)

	viperCfg.SetDefault("whitespace.around_operators", DefaultAroundOperators)
	viperCfg.SetDefault("whitespace.after_comma", DefaultAfterComma)

	viperCfg.SetDefault("imports.expand_wildcards", DefaultExpandWildcards)

	viperCfg.SetDefault("pipeline.workers", DefaultPipelineWorkers)

	viperCfg.SetDefault("changed.against", DefaultChangedAgainst)
	viperCfg.SetDefault("changed.include_untracked", DefaultIncludeUntracked)

	viperCfg.SetDefault("checkpoint.enabled", DefaultCheckpointEnabled)
	viperCfg.SetDefault("checkpoint.dir", DefaultCheckpointDir)
	viperCfg.SetDefault("checkpoint.resume", DefaultCheckpointResume)
	viperCfg.SetDefault("checkpoint.clear_prev", DefaultCheckpointClearPrev)
}

// Default values applied when a key is absent from both the config file and
// the environment.
const (
	DefaultMaxLineLength          = 120
	DefaultContinuationIndent     = 8
	DefaultBraceStyle             = "same-line"
	DefaultIndentationType        = "spaces"
	DefaultIndentSize             = 4
	DefaultContinuationMultiplier = 2
	DefaultTabWidth               = 4
	DefaultAroundOperators        = true
	DefaultAfterComma             = true
	DefaultExpandWildcards        = false
	DefaultPipelineWorkers        = 0
	DefaultChangedAgainst         = "HEAD"
	DefaultIncludeUntracked       = false
	DefaultCheckpointEnabled      = false
	DefaultCheckpointDir          = ".styler-checkpoint"
	DefaultCheckpointResume       = true
	DefaultCheckpointClearPrev    = false
)
