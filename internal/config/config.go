package config

import (
	"errors"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const DefaultConfigFileName = "config.toml"

// Keymap holds the key bindings for the terminal front end.
type Keymap struct {
	Quit            string `toml:"quit"`
	Add             string `toml:"add"`
	Up              string `toml:"up"`
	Down            string `toml:"down"`
	Toggle          string `toml:"toggle"`
	Delete          string `toml:"delete"`
	Search          string `toml:"search"`
	CycleTag        string `toml:"cycle_tag"`
	CycleCategory   string `toml:"cycle_category"`
	ToggleCompleted string `toml:"toggle_completed"`
	Confirm         string `toml:"confirm"`
	Cancel          string `toml:"cancel"`
}

// Config is the on-disk application configuration.
type Config struct {
	DBPath        string `toml:"db_path"`
	ShowCompleted bool   `toml:"show_completed"`
	Keys          Keymap `toml:"keys"`
}

// ResolvePath returns the config file location under the XDG config
// directory, falling back to ~/.config.
func ResolvePath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return DefaultConfigFileName
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "taskdeck", DefaultConfigFileName)
}

// LoadOrCreate reads the config at path, writing the defaults there first
// if no file exists yet.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		DBPath:        "", // empty means the store's default location
		ShowCompleted: false,
		Keys: Keymap{
			Quit:            "q",
			Add:             "a",
			Up:              "k",
			Down:            "j",
			Toggle:          " ",
			Delete:          "d",
			Search:          "/",
			CycleTag:        "t",
			CycleCategory:   "c",
			ToggleCompleted: "x",
			Confirm:         "enter",
			Cancel:          "esc",
		},
	}
}
