package i18n

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// WithYAMLDir loads every {lang}/{namespace}.yaml (or .yml) file of fsys.
func WithYAMLDir(fsys fs.FS) Option {
	return withDir(fsys, yaml.Unmarshal, ".yaml", ".yml")
}

// WithJSONDir loads every {lang}/{namespace}.json file of fsys.
func WithJSONDir(fsys fs.FS) Option {
	return withDir(fsys, json.Unmarshal, ".json")
}

func withDir(fsys fs.FS, unmarshal func([]byte, any) error, exts ...string) Option {
	return func(i *I18n) error {
		return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			ext := strings.ToLower(path.Ext(p))
			if !contains(exts, ext) {
				return nil
			}
			dir := path.Dir(p)
			if dir == "." {
				return fmt.Errorf("%w: %q is not inside a language directory", ErrInvalidFile, p)
			}
			data, err := fs.ReadFile(fsys, p)
			if err != nil {
				return fmt.Errorf("i18n: read %q: %w", p, err)
			}
			var messages map[string]any
			if err := unmarshal(data, &messages); err != nil {
				return fmt.Errorf("%w: %q: %v", ErrInvalidFile, p, err)
			}
			i.add(path.Base(dir), strings.TrimSuffix(path.Base(p), path.Ext(p)), messages)
			return nil
		})
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
