// Package config loads pathfinder settings. Values come from the embedded
// default.yaml, then an optional YAML file, then GRIDPATH_* environment
// variables.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/gridpath/coord"
	"github.com/milk9111/gridpath/flags"
	"github.com/milk9111/gridpath/pathfinder"
	"github.com/milk9111/gridpath/space"
)

// EnvPrefix prefixes every environment override, e.g. GRIDPATH_SEARCH_MAX_NODES.
const EnvPrefix = "gridpath"

const (
	ModeOverlap = "overlap"
	ModeMatrix  = "matrix"
	ModeScript  = "script"
)

var ErrInvalid = errors.New("config: invalid settings")

//go:embed default.yaml
var defaultYAML []byte

type Settings struct {
	Grid   GridSettings   `yaml:"grid"`
	Space  SpaceSettings  `yaml:"space"`
	Raster RasterSettings `yaml:"raster"`
	Search SearchSettings `yaml:"search"`
	Flags  FlagSettings   `yaml:"flags"`

	scriptPath string
}

type GridSettings struct {
	// Capacity is the initial flag map size as a power of two.
	Capacity   int     `yaml:"capacity"`
	LoadFactor float64 `yaml:"load_factor" split_words:"true"`
}

type SpaceSettings struct {
	BucketSize float64 `yaml:"bucket_size" split_words:"true"`
}

type RasterSettings struct {
	Inset float64 `yaml:"inset"`
}

type SearchSettings struct {
	Longest        float64 `yaml:"longest"`
	MaxNodes       int     `yaml:"max_nodes" split_words:"true"`
	Diagonal       bool    `yaml:"diagonal"`
	Partial        bool    `yaml:"partial"`
	Shortcut       bool    `yaml:"shortcut"`
	ConsiderActors bool    `yaml:"consider_actors" split_words:"true"`
	Debug          bool    `yaml:"debug"`
}

type FlagSettings struct {
	Mode       string           `yaml:"mode"`
	Script     string           `yaml:"script"`
	ScriptFile string           `yaml:"script_file" split_words:"true"`
	Categories []flags.Category `yaml:"categories" ignored:"true"`
}

// Default returns the embedded settings.
func Default() (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(defaultYAML, &s); err != nil {
		return nil, fmt.Errorf("config: unmarshal default.yaml: %w", err)
	}
	return &s, nil
}

// Load reads settings. path may be empty to use the defaults plus environment.
func Load(path string) (*Settings, error) {
	s, err := Default()
	if err != nil {
		return nil, err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
		}
	}
	if err := envconfig.Process(EnvPrefix, s); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}

	if s.Flags.ScriptFile != "" {
		file := s.Flags.ScriptFile
		if !filepath.IsAbs(file) && path != "" {
			file = filepath.Join(filepath.Dir(path), file)
		}
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("config: load script %s: %w", file, err)
		}
		s.Flags.Script = string(src)
		s.scriptPath = file
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ScriptPath is the script file Load read, or "" when the script is inline.
func (s *Settings) ScriptPath() string { return s.scriptPath }

func (s *Settings) Validate() error {
	switch {
	case s.Grid.Capacity < 0 || s.Grid.Capacity > coord.MaxCapacity:
		return fmt.Errorf("%w: grid.capacity %d", ErrInvalid, s.Grid.Capacity)
	case !(s.Grid.LoadFactor > 0) || math.IsInf(s.Grid.LoadFactor, 0):
		return fmt.Errorf("%w: grid.load_factor %v", ErrInvalid, s.Grid.LoadFactor)
	case !(s.Space.BucketSize > 0) || math.IsInf(s.Space.BucketSize, 0):
		return fmt.Errorf("%w: space.bucket_size %v", ErrInvalid, s.Space.BucketSize)
	case !(s.Raster.Inset >= 0 && s.Raster.Inset < 0.5):
		return fmt.Errorf("%w: raster.inset %v", ErrInvalid, s.Raster.Inset)
	case s.Search.Longest < 0 || math.IsNaN(s.Search.Longest):
		return fmt.Errorf("%w: search.longest %v", ErrInvalid, s.Search.Longest)
	case s.Search.MaxNodes < 0:
		return fmt.Errorf("%w: search.max_nodes %d", ErrInvalid, s.Search.MaxNodes)
	}

	switch s.Flags.Mode {
	case ModeOverlap:
	case ModeMatrix:
		if len(s.Flags.Categories) == 0 {
			return fmt.Errorf("%w: flags.mode matrix needs categories", ErrInvalid)
		}
	case ModeScript:
		if s.Flags.Script == "" {
			return fmt.Errorf("%w: flags.mode script needs script or script_file", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: flags.mode %q", ErrInvalid, s.Flags.Mode)
	}
	return nil
}

// Predicate builds the collision predicate for the configured mode.
func (s *Settings) Predicate() (flags.Predicate, error) {
	switch s.Flags.Mode {
	case ModeMatrix:
		m, err := flags.NewMatrix(s.Flags.Categories)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		return m, nil
	case ModeScript:
		sc, err := flags.NewScript(s.Flags.Script)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		return sc, nil
	case ModeOverlap, "":
		return flags.Overlap, nil
	}
	return nil, fmt.Errorf("%w: flags.mode %q", ErrInvalid, s.Flags.Mode)
}

// Matrix returns the category table, or nil unless the mode is matrix.
func (s *Settings) Matrix() (*flags.Matrix, error) {
	if s.Flags.Mode != ModeMatrix {
		return nil, nil
	}
	return flags.NewMatrix(s.Flags.Categories)
}

func (s *Settings) PathfinderOptions() pathfinder.Options {
	return pathfinder.Options{
		Capacity:   s.Grid.Capacity,
		LoadFactor: s.Grid.LoadFactor,
		Inset:      s.Raster.Inset,
		MaxNodes:   s.Search.MaxNodes,
		Diagonal:   s.Search.Diagonal,
		Debug:      s.Search.Debug,
	}
}

func (s *Settings) SpaceOptions() space.Options {
	return space.Options{
		BucketSize: s.Space.BucketSize,
		Capacity:   s.Grid.Capacity,
		LoadFactor: s.Grid.LoadFactor,
	}
}
