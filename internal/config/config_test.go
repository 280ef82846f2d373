package config

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/afero"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(afero.NewOsFs(), filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("Load = %#v, want defaults %#v", cfg, Default())
	}
	if cfg.EntryPoint != "main.py" {
		t.Fatalf("EntryPoint = %q, want main.py", cfg.EntryPoint)
	}
	if cfg.Exec.Mode != ModeReplace {
		t.Fatalf("Exec.Mode = %q, want %q", cfg.Exec.Mode, ModeReplace)
	}
}

func TestLoadReadsFromFilesystem(t *testing.T) {
	fsys := afero.NewMemMapFs()
	path := filepath.Join("/app", FileName)
	if err := afero.WriteFile(fsys, path, []byte("entry_point = \"bot.py\"\n[env]\nfiles = [\".env\"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(fsys, path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.EntryPoint != "bot.py" {
		t.Fatalf("EntryPoint = %q, want bot.py", cfg.EntryPoint)
	}
	if want := []string{".env"}; !reflect.DeepEqual(cfg.Env.Files, want) {
		t.Fatalf("Env.Files = %#v, want %#v", cfg.Env.Files, want)
	}

	if err := afero.WriteFile(fsys, path, []byte("[exec]\nmode = \"fork\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(fsys, path); !errors.Is(err, ErrInvalidExecMode) {
		t.Fatalf("Load error = %v, want ErrInvalidExecMode", err)
	}
}

func TestParseAppliesDefaultsToPartialConfig(t *testing.T) {
	cfg, err := Parse("launch.toml", []byte(`
entry_point = "app.py"

[exec]
mode = "SPAWN"
`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if cfg.EntryPoint != "app.py" {
		t.Fatalf("EntryPoint = %q", cfg.EntryPoint)
	}
	if cfg.Exec.Mode != ModeSpawn {
		t.Fatalf("Exec.Mode = %q, want spawn", cfg.Exec.Mode)
	}
	if want := []string{"python", "python3"}; !reflect.DeepEqual(cfg.Interpreters, want) {
		t.Fatalf("Interpreters = %#v, want %#v", cfg.Interpreters, want)
	}
	if want := []string{"venv", ".venv"}; !reflect.DeepEqual(cfg.Env.Dirs, want) {
		t.Fatalf("Env.Dirs = %#v, want %#v", cfg.Env.Dirs, want)
	}
}

func TestParseRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		data string
		want error
	}{
		{name: "exec mode", data: "[exec]\nmode = \"fork\"\n", want: ErrInvalidExecMode},
		{name: "log level", data: "[log]\nlevel = \"chatty\"\n", want: ErrInvalidLog},
		{name: "empty env dir", data: "[env]\ndirs = [\"\"]\n", want: ErrInvalidEntry},
		{name: "empty interpreter", data: "interpreters = [\"python\", \"\"]\n", want: ErrInvalidEntry},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse("launch.toml", []byte(tc.data))
			if !errors.Is(err, tc.want) {
				t.Fatalf("Parse error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestParseReportsSyntaxErrors(t *testing.T) {
	if _, err := Parse("launch.toml", []byte("entry_point = ")); err == nil {
		t.Fatalf("expected syntax error")
	}
}

func TestValidateSentinels(t *testing.T) {
	cfg := Default()
	cfg.EntryPoint = ""
	if err := cfg.Validate(); !errors.Is(err, ErrMissingEntryPoint) {
		t.Fatalf("Validate = %v, want ErrMissingEntryPoint", err)
	}

	cfg = Default()
	cfg.Interpreters = []string{}
	if err := cfg.Validate(); !errors.Is(err, ErrNoInterpreters) {
		t.Fatalf("Validate = %v, want ErrNoInterpreters", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	cfg := Default()
	cfg.EntryPoint = "bot.py"
	cfg.Env.Files = []string{".env"}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	got, err := Load(afero.NewOsFs(), path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Fatalf("Load = %#v, want %#v", got, cfg)
	}
}
