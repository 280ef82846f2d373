//go:build !windows

package layout

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/brandonbloom/launch/internal/venv"
	"github.com/spf13/afero"
)

func mustWrite(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0o755); err != nil {
		t.Fatal(err)
	}
}

func realTempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestResolveFollowsSymlinkChain(t *testing.T) {
	base := realTempDir(t)
	app := filepath.Join(base, "app")
	mustWrite(t, filepath.Join(app, "launch"), "")

	links := filepath.Join(base, "links")
	if err := os.MkdirAll(links, 0o755); err != nil {
		t.Fatal(err)
	}
	first := filepath.Join(links, "first")
	second := filepath.Join(base, "second")
	if err := os.Symlink(filepath.Join(app, "launch"), first); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(first, second); err != nil {
		t.Fatal(err)
	}

	got, err := Resolve(second)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got != app {
		t.Fatalf("Resolve = %q, want %q", got, app)
	}
}

func TestResolveRelativePath(t *testing.T) {
	base := realTempDir(t)
	mustWrite(t, filepath.Join(base, "bin", "launch"), "")
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(base); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldwd) })
	t.Setenv("PWD", base)

	got, err := Resolve(filepath.Join("bin", "launch"))
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if want := filepath.Join(base, "bin"); got != want {
		t.Fatalf("Resolve = %q, want %q", got, want)
	}
}

func TestDiscoverRootHonorsOverride(t *testing.T) {
	base := realTempDir(t)
	t.Setenv(RootEnv, base)
	got, err := DiscoverRoot()
	if err != nil {
		t.Fatalf("DiscoverRoot returned error: %v", err)
	}
	if got != base {
		t.Fatalf("DiscoverRoot = %q, want %q", got, base)
	}
}

func TestLoadWithoutEnvironment(t *testing.T) {
	root := realTempDir(t)
	mustWrite(t, filepath.Join(root, "main.py"), "print('hi')\n")

	fsys := afero.NewOsFs()
	l, err := Load(fsys, root)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if l.Env != nil {
		t.Fatalf("expected no environment, got %#v", l.Env)
	}
	if l.EntryPoint != filepath.Join(root, "main.py") {
		t.Fatalf("EntryPoint = %q", l.EntryPoint)
	}
	if err := l.CheckEntryPoint(fsys); err != nil {
		t.Fatalf("CheckEntryPoint returned error: %v", err)
	}
}

func TestLoadUsesConfigAndEnvironment(t *testing.T) {
	root := realTempDir(t)
	mustWrite(t, filepath.Join(root, "launch.toml"), "entry_point = \"bot.py\"\n[env]\ndirs = [\"env\"]\n")
	mustWrite(t, filepath.Join(root, "env", "bin", "activate"), "")

	fsys := afero.NewOsFs()
	l, err := Load(fsys, root)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if l.Env == nil || l.Env.Dir != filepath.Join(root, "env") {
		t.Fatalf("Env = %#v", l.Env)
	}
	if err := l.CheckEntryPoint(fsys); !errors.Is(err, ErrEntryPointMissing) {
		t.Fatalf("CheckEntryPoint = %v, want ErrEntryPointMissing", err)
	}
}

func TestLoadMalformedEnvironment(t *testing.T) {
	root := realTempDir(t)
	if err := os.MkdirAll(filepath.Join(root, "venv"), 0o755); err != nil {
		t.Fatal(err)
	}
	_, err := Load(afero.NewOsFs(), root)
	if !errors.Is(err, venv.ErrMalformed) {
		t.Fatalf("Load = %v, want ErrMalformed", err)
	}
}

func TestLoadStagedInMemory(t *testing.T) {
	fsys := afero.NewMemMapFs()
	files := map[string]string{
		"/app/launch.toml":       "entry_point = \"bot.py\"\n[env]\ndirs = [\".venv\"]\n",
		"/app/bot.py":            "",
		"/app/.venv/pyvenv.cfg":  "version = 3.11.4\n",
		"/app/.venv/bin/python3": "",
	}
	for path, data := range files {
		if err := afero.WriteFile(fsys, path, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	l, err := Load(fsys, "/app")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if l.EntryPoint != "/app/bot.py" {
		t.Fatalf("EntryPoint = %q, want /app/bot.py", l.EntryPoint)
	}
	if l.Env == nil || l.Env.Dir != "/app/.venv" || l.Env.Version != "3.11.4" {
		t.Fatalf("Env = %#v", l.Env)
	}
	if err := l.CheckEntryPoint(fsys); err != nil {
		t.Fatalf("CheckEntryPoint returned error: %v", err)
	}
}
