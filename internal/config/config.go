// Package config reads the optional YAML config file and feeds its values to
// kong as flag defaults.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/ilsang/internal/constants"
)

// File is the documented shape of config.yaml. Keys match long flag names;
// a section named after a command scopes its keys to that command's flags.
type File struct {
	Config string `yaml:"config,omitempty"`
	Debug  bool   `yaml:"debug,omitempty"`
	Remind struct {
		DryRun bool `yaml:"dry-run,omitempty"`
	} `yaml:"remind,omitempty"`
}

// Loader is a kong.ConfigurationLoader for YAML files.
//
// A flag is looked up first as a top-level key (hyphens or underscores), then
// under a section for each enclosing command, innermost first, so
//
//	routine:
//	  agenda:
//	    days: 14
//
// sets --days for "routine agenda" only.
func Loader(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && err != io.EOF {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	var f kong.ResolverFunc = func(kctx *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
		for _, scope := range scopes(parent) {
			section := lookupSection(values, scope)
			if section == nil {
				continue
			}
			if raw, ok := lookupKey(section, flag.Name); ok {
				return normalize(raw), nil
			}
		}
		return nil, nil
	}
	return f, nil
}

// scopes lists command paths from the innermost command out to the root.
func scopes(parent *kong.Path) [][]string {
	var names []string
	if parent != nil {
		for n := parent.Node(); n != nil; n = n.Parent {
			if n.Type == kong.CommandNode {
				names = append([]string{n.Name}, names...)
			}
		}
	}
	out := make([][]string, 0, len(names)+1)
	for i := len(names); i >= 0; i-- {
		out = append(out, names[:i])
	}
	return out
}

func lookupSection(values map[string]any, path []string) map[string]any {
	section := values
	for _, part := range path {
		next, ok := section[part].(map[string]any)
		if !ok {
			return nil
		}
		section = next
	}
	return section
}

func lookupKey(section map[string]any, name string) (any, bool) {
	for _, key := range []string{name, strings.ReplaceAll(name, "-", "_")} {
		if raw, ok := section[key]; ok {
			if _, isSection := raw.(map[string]any); isSection {
				continue
			}
			return raw, true
		}
	}
	return nil, false
}

// normalize turns YAML scalars and lists into the string forms kong's
// mappers accept for any flag type.
func normalize(raw any) any {
	switch v := raw.(type) {
	case nil:
		return nil
	case string, bool:
		return v
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}

// Paths returns the config files kong should try, in order. ILSANG_CONFIG_FILE
// takes precedence over the default location.
func Paths() []string {
	paths := []string{}
	if p := strings.TrimSpace(os.Getenv(constants.EnvConfigFile)); p != "" {
		paths = append(paths, p)
	}
	return append(paths, constants.DefaultConfigFile)
}

// WriteDefault writes f as a starter config at path unless a
// file already exists there. It reports whether a file was written.
func WriteDefault(path string, f File) (bool, error) {
	path = kong.ExpandPath(path)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return false, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return false, fmt.Errorf("failed to write config: %w", err)
	}
	return true, nil
}

// Keys returns the sorted top-level keys of a YAML document. Used by doctor
// to report which settings a config file overrides.
func Keys(r io.Reader) ([]string, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && err != io.EOF {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
