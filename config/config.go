// Package config loads the churnguard YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Http struct {
		Port           int           `yaml:"port" validate:"gte=1,lte=65535"`
		Timeout        time.Duration `yaml:"timeout" validate:"gt=0"`
		MaxBodyBytes   int64         `yaml:"max_body_bytes" validate:"gt=0"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
	} `yaml:"http"`
	Log struct {
		Level      string `yaml:"level" validate:"oneof=debug info warn error"`
		Format     string `yaml:"format" validate:"oneof=json text"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb" validate:"gte=0"`
		MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
		MaxAgeDays int    `yaml:"max_age_days" validate:"gte=0"`
	} `yaml:"log"`
	Model struct {
		Source             string `yaml:"source" validate:"oneof=file sqlite"`
		ClassifierPath     string `yaml:"classifier_path" validate:"required_if=Source file"`
		FeatureColumnsPath string `yaml:"feature_columns_path" validate:"required_if=Source file"`
		RegistryPath       string `yaml:"registry_path" validate:"required_if=Source sqlite"`
		RegistryName       string `yaml:"registry_name" validate:"required_if=Source sqlite"`
		StrictColumns      *bool  `yaml:"strict_columns"`
		CacheSize          int    `yaml:"cache_size" validate:"gte=0"`
	} `yaml:"model"`
}

// Strict reports whether feature spec contract violations abort startup. Defaults to true.
func (c *Config) Strict() bool {
	return c.Model.StrictColumns == nil || *c.Model.StrictColumns
}

// Load reads path, fills defaults and validates the result.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	applyDefaults(&config)

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &config, nil
}

func applyDefaults(c *Config) {
	if c.Http.Port == 0 {
		c.Http.Port = 8501
	}
	if c.Http.Timeout == 0 {
		c.Http.Timeout = 30 * time.Second
	}
	if c.Http.MaxBodyBytes == 0 {
		c.Http.MaxBodyBytes = 1 << 16
	}
	if len(c.Http.AllowedOrigins) == 0 {
		c.Http.AllowedOrigins = []string{"*"}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 100
	}
	if c.Model.Source == "" {
		c.Model.Source = "file"
	}
	if c.Model.Source == "file" {
		if c.Model.ClassifierPath == "" {
			c.Model.ClassifierPath = "models/svm_model.json"
		}
		if c.Model.FeatureColumnsPath == "" {
			c.Model.FeatureColumnsPath = "models/feature_columns.json"
		}
	}
}
