// Package envutil manipulates KEY=VALUE environment slices.
package envutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// foldKeys matches keys case-insensitively, as Windows does.
var foldKeys = runtime.GOOS == "windows"

// keyIn returns the spelling under which key is stored in m, or key itself.
func keyIn(m map[string]string, key string) string {
	if _, ok := m[key]; ok || !foldKeys {
		return key
	}
	for k := range m {
		if strings.EqualFold(k, key) {
			return k
		}
	}
	return key
}

// Map converts an environment slice into a map. Entries without '=' are dropped;
// later duplicates win, matching how exec resolves them.
func Map(env []string) map[string]string {
	out := make(map[string]string, len(env))
	for _, entry := range env {
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		out[keyIn(out, key)] = value
	}
	return out
}

// Slice converts a map back into a KEY=VALUE slice sorted by key.
func Slice(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// With returns env with key set to value.
func With(env []string, key, value string) []string {
	m := Map(env)
	m[keyIn(m, key)] = value
	return Slice(m)
}

// Without returns env with key removed.
func Without(env []string, key string) []string {
	m := Map(env)
	delete(m, keyIn(m, key))
	return Slice(m)
}

// Get looks up key in env.
func Get(env []string, key string) (string, bool) {
	m := Map(env)
	v, ok := m[keyIn(m, key)]
	return v, ok
}

// PrependPath puts dir at the front of env's PATH, keeping the existing
// spelling of the key.
func PrependPath(env []string, dir string) []string {
	old, ok := Get(env, "PATH")
	if !ok || old == "" {
		return With(env, "PATH", dir)
	}
	return With(env, "PATH", dir+string(os.PathListSeparator)+old)
}

// LoadFiles merges dotenv files into env. Relative paths resolve against root.
// Keys already present in env, or set by an earlier file, are left alone.
func LoadFiles(env []string, root string, files []string) ([]string, error) {
	if len(files) == 0 {
		return env, nil
	}
	m := Map(env)
	for _, file := range files {
		path := file
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		vars, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("env file %s: %w", path, err)
		}
		for k, v := range vars {
			if _, exists := m[keyIn(m, k)]; exists {
				continue
			}
			m[k] = v
		}
	}
	return Slice(m), nil
}

// Change describes a single variable that differs between two environments.
type Change struct {
	Key   string
	Value string
	Unset bool
}

// Diff lists the changes that turn before into after, ordered by key.
func Diff(before, after []string) []Change {
	b := Map(before)
	a := Map(after)
	var changes []Change
	for k, v := range a {
		if old, ok := b[keyIn(b, k)]; !ok || old != v {
			changes = append(changes, Change{Key: k, Value: v})
		}
	}
	for k := range b {
		if _, ok := a[keyIn(a, k)]; !ok {
			changes = append(changes, Change{Key: k, Unset: true})
		}
	}
	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Key < changes[j].Key
	})
	return changes
}

// Apply writes changes into the current process environment.
func Apply(changes []Change) error {
	for _, c := range changes {
		if c.Unset {
			if err := os.Unsetenv(c.Key); err != nil {
				return err
			}
			continue
		}
		if err := os.Setenv(c.Key, c.Value); err != nil {
			return err
		}
	}
	return nil
}
