package main

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"
)

// DefaultConfigSearchPaths are checked in order; the first existing file wins.
var DefaultConfigSearchPaths = []string{
	filepath.Join(os.Getenv("HOME"), ".citation.toml"),
	filepath.Join(os.Getenv("HOME"), ".config", "citation.toml"),
}

// Config is the TOML configuration struct.  When a ~/.citation.toml or
// ~/.config/citation.toml file exists, the values contained therein will
// override the compiled-in defaults.  Command-line flags still take
// precedence.
type Config struct {
	File string `toml:"-"`

	Driver        string `toml:"driver"`
	DB            string `toml:"db"`
	Quiet         bool   `toml:"quiet"`
	Verbose       bool   `toml:"verbose"`
	PapersDir     string `toml:"papers_dir"`
	ActiveAuthors string `toml:"active_authors"`
	Strategy      string `toml:"strategy"`
	PruneInterval int    `toml:"prune_interval"`
}

func NewConfig() *Config {
	return &Config{}
}

// Do locates, parses and applies the configuration file, if any.
func (config *Config) Do() error {
	file, err := findConfigFile()
	if err != nil {
		return err
	}

	if len(file) == 0 {
		// No configuration file found.
		return nil
	}

	if _, err := toml.DecodeFile(file, config); err != nil {
		return err
	}
	config.File = file
	log.WithField("file", file).Debug("Loaded configuration")

	config.Apply()
	return nil
}

func (config *Config) Apply() {
	if len(config.Driver) > 0 {
		DBDriver = config.Driver
	}
	if len(config.DB) > 0 {
		DBFile = config.DB
	}
	if config.Quiet {
		Quiet = true
	}
	if config.Verbose {
		Verbose = true
	}
	if len(config.PapersDir) > 0 {
		PapersDir = config.PapersDir
	}
	if len(config.ActiveAuthors) > 0 {
		ActiveAuthorsFile = config.ActiveAuthors
	}
	if len(config.Strategy) > 0 {
		Strategy = config.Strategy
	}
	if config.PruneInterval > 0 {
		PruneInterval = config.PruneInterval
	}
}

// findConfigFile searches DefaultConfigSearchPaths.
//
// If no config file is found, ("", nil) is returned.
func findConfigFile() (string, error) {
	for _, path := range DefaultConfigSearchPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if os.IsNotExist(err) {
			continue
		} else if err != nil {
			return "", err
		}
	}
	return "", nil
}
