package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultFileName   = "omnibust.yaml"
	alternateFileName = ".omnibust.yaml"
)

// SyncConfig holds the optional S3 upload settings for the sync command.
type SyncConfig struct {
	Bucket       string `yaml:"bucket"`
	Prefix       string `yaml:"prefix"`
	Region       string `yaml:"region"`
	Profile      string `yaml:"profile"`
	CacheControl string `yaml:"cache_control"`
}

// Config holds project settings loaded from omnibust.yaml, merged over the
// defaults.
type Config struct {
	StaticDirs      []string            `yaml:"static_dirs"`
	CodeDirs        []string            `yaml:"code_dirs"`
	StaticFiletypes []string            `yaml:"static_filetypes"`
	CodeFiletypes   []string            `yaml:"code_filetypes"`
	IgnoreDirs      []string            `yaml:"ignore_dirs"`
	FileEncoding    string              `yaml:"file_encoding"`
	HashFunction    string              `yaml:"hash_function"`
	HashLength      int                 `yaml:"hash_length"`
	Multibust       map[string][]string `yaml:"multibust"`
	Target          string              `yaml:"target"`
	Sync            SyncConfig          `yaml:"sync"`
}

// Default returns the built-in settings: a cheap checksum, 8-character
// tokens, querystring busting, and the conventional static/code filetype
// lists.
func Default() Config {
	return Config{
		StaticDirs: []string{"."},
		CodeDirs:   []string{"."},
		StaticFiletypes: []string{
			"*.png", "*.gif", "*.jpg", "*.jpeg", "*.ico", "*.webp", "*.svg",
			"*.js", "*.css", "*.swf",
			"*.mov", "*.avi", "*.mp4", "*.webm", "*.ogg", "*.ogv",
			"*.wav", "*.mp3", "*.opus",
		},
		CodeFiletypes: []string{
			"*.htm", "*.html", "*.jade", "*.erb", "*.haml", "*.txt", "*.md",
			"*.css", "*.sass", "*.less", "*.scss",
			"*.xml", "*.json", "*.yaml", "*.cfg", "*.ini",
			"*.js", "*.coffee", "*.dart", "*.ts",
			"*.py", "*.rb", "*.php", "*.java", "*.pl", "*.cs", "*.lua",
		},
		IgnoreDirs:   []string{".git", ".hg", ".svn", "lib", "lib64", "node_modules"},
		FileEncoding: "utf-8",
		HashFunction: "crc32",
		HashLength:   8,
		Target:       "querystring",
	}
}

// Validate reports structural configuration faults. These abort the run
// before any scan begins; softer problems (an unknown hash name) are handled
// by fallback at the use site instead.
func (c *Config) Validate() error {
	if c.HashLength <= 0 {
		return fmt.Errorf("hash_length must be positive, got %d", c.HashLength)
	}
	switch strings.ToLower(c.FileEncoding) {
	case "", "utf-8", "utf8":
	default:
		return fmt.Errorf("unsupported file_encoding %q: only utf-8 is supported", c.FileEncoding)
	}
	switch c.Target {
	case "", "filename", "querystring":
	default:
		return fmt.Errorf("unknown target %q: use filename or querystring", c.Target)
	}
	return nil
}

// Load searches for a config file in the given directory and the user's home
// directory, merging it over Default. Returns Default if no file is found.
func Load(dir string) (Config, error) {
	for _, p := range searchPaths(dir) {
		cfg, found, err := loadPath(p)
		if err != nil {
			return Config{}, err
		}
		if found {
			return cfg, nil
		}
	}
	return Default(), nil
}

// LoadFile reads a config file at an explicit path.
func LoadFile(path string) (Config, error) {
	cfg, found, err := loadPath(path)
	if err != nil {
		return Config{}, err
	}
	if !found {
		return Config{}, fmt.Errorf("no such config file: %s", path)
	}
	return cfg, nil
}

func searchPaths(dir string) []string {
	var paths []string
	if dir != "" {
		paths = append(paths, filepath.Join(dir, defaultFileName))
		paths = append(paths, filepath.Join(dir, alternateFileName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, alternateFileName))
	}
	return paths
}

func loadPath(path string) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, false, nil
		}
		return Config{}, false, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, false, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, true, nil
}
