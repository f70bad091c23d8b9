// Package config loads the engine configuration with Viper: defaults,
// an optional YAML file, and LIBRARY_-prefixed environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	DataDir string      `mapstructure:"data_dir"`
	Files   FilesConfig `mapstructure:"files"`
	Log     LogConfig   `mapstructure:"log"`
}

// FilesConfig names the per-collection JSON documents inside DataDir.
type FilesConfig struct {
	Books   string `mapstructure:"books"`
	Users   string `mapstructure:"users"`
	Records string `mapstructure:"records"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads the configuration. path may be empty, in which case only
// defaults and environment variables apply; a named file that is
// missing is an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("data_dir", "data")
	v.SetDefault("files.books", "books.json")
	v.SetDefault("files.users", "users.json")
	v.SetDefault("files.records", "borrowing_records.json")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix("LIBRARY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// BooksPath returns the path of the book collection document.
func (c *Config) BooksPath() string { return filepath.Join(c.DataDir, c.Files.Books) }

// UsersPath returns the path of the user collection document.
func (c *Config) UsersPath() string { return filepath.Join(c.DataDir, c.Files.Users) }

// RecordsPath returns the path of the borrowing-record document.
func (c *Config) RecordsPath() string { return filepath.Join(c.DataDir, c.Files.Records) }
