package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Http struct {
		Port           int           `yaml:"port"`
		Timeout        time.Duration `yaml:"timeout"`
		MaxRequestSize int64         `yaml:"max_request_size"`
	} `yaml:"http"`
	Log struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"log"`
	ML struct {
		ModelType string `yaml:"model_type"`
		ModelPath string `yaml:"model_path"`
		CacheSize int    `yaml:"cache_size"`
		Watch     bool   `yaml:"watch"`
	} `yaml:"ml"`
}

func Default() *Config {
	var c Config
	c.Http.Port = 8501
	c.Http.Timeout = 30 * time.Second
	c.Http.MaxRequestSize = 64 << 10
	c.Log.Level = "info"
	c.Log.MaxSizeMB = 50
	c.Log.MaxBackups = 3
	c.Log.MaxAgeDays = 28
	c.ML.ModelType = "xgboost"
	c.ML.ModelPath = "xgb_model.json"
	c.ML.CacheSize = 1024
	c.ML.Watch = true
	return &c
}

// Locate finds config.yaml in the working directory, or one level up when run from cmd/.
func Locate() string {
	configPath := "config.yaml"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		parent := filepath.Join("..", "config.yaml")
		if _, err := os.Stat(parent); err == nil {
			return parent
		}
	}
	return configPath
}

// Load reads path over the defaults. A missing file yields the defaults. Relative model and log
// paths are resolved against the config file's directory.
func Load(path string) (*Config, error) {
	config := Default()
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open config %s", path)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return nil, errors.Wrapf(err, "decode config %s", path)
	}

	dir := filepath.Dir(path)
	config.ML.ModelPath = resolve(dir, config.ML.ModelPath)
	config.Log.File = resolve(dir, config.Log.File)
	return config, nil
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
