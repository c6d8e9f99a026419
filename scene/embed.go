package scene

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed samples/*.yaml
var SamplesFS embed.FS

// Load reads a scene from disk, falling back to the embedded samples.
func Load(name string) (*Spec, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		data, err = SamplesFS.ReadFile(samplePath(name))
		if err != nil {
			return nil, fmt.Errorf("scene: load %s: %w", name, err)
		}
	}
	return Parse(data, name)
}

// Parse decodes scene YAML. name is used in errors and as the default scene
// name.
func Parse(data []byte, name string) (*Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("scene: unmarshal %s: %w", name, err)
	}
	if spec.Name == "" {
		spec.Name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	return &spec, nil
}

// Samples lists the embedded scene names.
func Samples() []string {
	entries, err := fs.ReadDir(SamplesFS, "samples")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	return out
}

func samplePath(name string) string {
	s := filepath.ToSlash(name)
	s = strings.TrimPrefix(s, "samples/")
	if filepath.Ext(s) == "" {
		s += ".yaml"
	}
	return "samples/" + s
}
