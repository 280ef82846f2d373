package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

// FileName is the optional config file that lives next to the launcher.
const FileName = "launch.toml"

const (
	ModeReplace = "replace"
	ModeSpawn   = "spawn"
)

// Config captures the settings stored in launch.toml.
type Config struct {
	EntryPoint   string    `toml:"entry_point" validate:"required"`
	Interpreters []string  `toml:"interpreters" validate:"min=1,dive,required"`
	Env          EnvBlock  `toml:"env"`
	Exec         ExecBlock `toml:"exec"`
	Log          LogBlock  `toml:"log"`
}

// EnvBlock describes how the isolated environment is found and seeded.
type EnvBlock struct {
	Dirs  []string `toml:"dirs" validate:"dive,required"`
	Files []string `toml:"files" validate:"dive,required"`
}

// ExecBlock governs how the target replaces the launcher.
type ExecBlock struct {
	Mode string `toml:"mode" validate:"oneof=replace spawn"`
}

// LogBlock configures the launcher's own diagnostics.
type LogBlock struct {
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
	Format string `toml:"format" validate:"oneof=console json"`
}

var (
	// ErrMissingEntryPoint indicates entry_point was set to an empty string.
	ErrMissingEntryPoint = errors.New("config.entry_point must be set")
	// ErrNoInterpreters indicates the interpreter candidate list is empty.
	ErrNoInterpreters = errors.New("config.interpreters must name at least one interpreter")
	// ErrInvalidExecMode indicates exec.mode is not recognized.
	ErrInvalidExecMode = errors.New("config.exec.mode must be replace or spawn")
	// ErrInvalidLog indicates the log block holds an unknown level or format.
	ErrInvalidLog = errors.New("config.log.level must be debug, info, warn, or error and config.log.format console or json")
	// ErrInvalidEntry indicates an empty element in one of the list settings.
	ErrInvalidEntry = errors.New("config lists must not contain empty entries")
)

// Default returns the baseline configuration: main.py run by python from
// venv/ or .venv/ when present.
func Default() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.EntryPoint == "" {
		c.EntryPoint = "main.py"
	}
	if c.Interpreters == nil {
		c.Interpreters = []string{"python", "python3"}
	}
	if c.Env.Dirs == nil {
		c.Env.Dirs = []string{"venv", ".venv"}
	}
	if c.Exec.Mode == "" {
		c.Exec.Mode = ModeReplace
	} else {
		c.Exec.Mode = strings.ToLower(c.Exec.Mode)
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	} else {
		c.Log.Level = strings.ToLower(c.Log.Level)
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
	})
	return v
}

// Validate ensures the configuration can guide the launcher.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	first := verrs[0]
	switch {
	case first.Namespace() == "Config.entry_point":
		return ErrMissingEntryPoint
	case first.Namespace() == "Config.interpreters" && first.Tag() == "min":
		return ErrNoInterpreters
	case first.Namespace() == "Config.exec.mode":
		return ErrInvalidExecMode
	case strings.HasPrefix(first.Namespace(), "Config.log."):
		return ErrInvalidLog
	default:
		return fmt.Errorf("%w: %s", ErrInvalidEntry, strings.TrimPrefix(first.Namespace(), "Config."))
	}
}

// Load reads configuration from fsys. Missing files return a default config.
func Load(fsys afero.Fs, path string) (Config, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, err
	}
	return Parse(path, data)
}

// Parse decodes launch.toml contents; path is only used in error messages.
func Parse(path string, data []byte) (Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes configuration to disk, creating parent directories as needed.
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
