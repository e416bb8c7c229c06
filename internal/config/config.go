package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

const (
	EditorBuiltin  = "builtin"
	EditorReadline = "readline"

	DefaultPrompt       = "%u at %h in %c\n$ "
	DefaultQuickCommand = "asciiquarium"
)

type Config struct {
	HistoryFile  string   `yaml:"history_file"`
	HomeDir      string   `yaml:"home_dir"`
	LogFile      string   `yaml:"log_file"`
	Debug        bool     `yaml:"debug"`
	Editor       string   `yaml:"editor"`
	Prompt       string   `yaml:"prompt"`
	QuickCommand string   `yaml:"quick_command"`
	Plugins      []string `yaml:"plugins"`
}

// Load reads file and fills in defaults. A missing file is not an error.
func Load(file string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(file)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.setDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) setDefaults() error {
	if c.HomeDir == "" {
		c.HomeDir = os.Getenv("HOME")
	}
	if c.HomeDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		c.HomeDir = home
	}

	if c.HistoryFile == "" {
		c.HistoryFile = filepath.Join(c.HomeDir, ".myshell_history")
	}
	if c.Editor == "" {
		c.Editor = EditorBuiltin
	}
	if c.Prompt == "" {
		c.Prompt = DefaultPrompt
	}
	if c.QuickCommand == "" {
		c.QuickCommand = DefaultQuickCommand
	}
	return nil
}
