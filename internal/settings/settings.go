// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package settings loads user defaults for new projects from an optional
// configuration file and the environment.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/config"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables overriding settings, SCAFGEN_AUTHOR sets author
const EnvPrefix = "SCAFGEN"

// FileFormat runs a formatter over generated files whose base name matches Glob
type FileFormat struct {
	Glob    string `mapstructure:"glob"`
	Command string `mapstructure:"command"`
}

// Settings are user defaults, command line flags take precedence over all of them
type Settings struct {
	Author          string            `mapstructure:"author"`
	License         string            `mapstructure:"license"`
	Host            string            `mapstructure:"host"`
	ModulePrefix    string            `mapstructure:"module_prefix"`
	Language        string            `mapstructure:"language"`
	Engine          string            `mapstructure:"engine"`
	EnablePrecommit bool              `mapstructure:"enable_precommit"`
	Versions        map[string]string `mapstructure:"versions"`
	Format          []FileFormat      `mapstructure:"format"`

	// File is the configuration file that was read, empty when none was found
	File string `mapstructure:"-"`
}

var envKeys = []string{"license", "host", "module_prefix", "language", "engine", "enable_precommit"}

// DefaultFile is the configuration file used when none is given, it is found in
// XDG_CONFIG_HOME or ~/.config and is empty when neither is known
func DefaultFile() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "scafgen", "config.yaml")
	}

	home, err := homedir.Dir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "scafgen", "config.yaml")
}

// Load reads settings from file, or from DefaultFile when file is empty.
//
// An explicitly given file has to exist while the default file is optional.
// When no author is configured GIT_AUTHOR_NAME and the git global user.name
// are consulted in that order.
func Load(file string) (*Settings, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, k := range envKeys {
		err := v.BindEnv(k)
		if err != nil {
			return nil, err
		}
	}

	err := v.BindEnv("author", EnvPrefix+"_AUTHOR", "GIT_AUTHOR_NAME")
	if err != nil {
		return nil, err
	}

	if file == "" {
		file = DefaultFile()
		if file != "" {
			if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
				file = ""
			}
		}
	}

	if file != "" {
		v.SetConfigFile(file)
		err = v.ReadInConfig()
		if err != nil {
			return nil, fmt.Errorf("could not read configuration %s: %w", file, err)
		}
	}

	s := &Settings{}
	err = v.Unmarshal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", file, err)
	}
	s.File = file

	if s.Author == "" {
		s.Author = gitUserName()
	}

	for i, f := range s.Format {
		if f.Glob == "" || strings.TrimSpace(f.Command) == "" {
			return nil, fmt.Errorf("invalid configuration %s: format %d requires glob and command", file, i)
		}
	}

	return s, nil
}

// LanguageVersion is the configured version for lang, empty when not set
func (s *Settings) LanguageVersion(lang string) string {
	return s.Versions[strings.ToLower(lang)]
}

func gitUserName() string {
	cfg, err := config.LoadConfig(config.GlobalScope)
	if err != nil {
		return ""
	}

	return cfg.User.Name
}
