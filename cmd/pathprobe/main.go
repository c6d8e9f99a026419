// Command pathprobe loads a scene and prints the paths the pathfinder finds
// through it.
//
//	pathprobe -scene corridor
//	pathprobe -scene gap -radius 0.9 -from 0,0 -to 7,2 -png gap.png
//	pathprobe -config gridpath.yaml -scene my_scene.yaml -watch
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/gridpath/config"
	"github.com/milk9111/gridpath/pathfinder"
	"github.com/milk9111/gridpath/scene"
)

type options struct {
	config   string
	scene    string
	agent    string
	radius   float64
	mask     int
	from     string
	to       string
	longest  float64
	partial  bool
	shortcut bool
	actors   bool
	png      string
	watch    bool

	// set holds the flags given on the command line; those override config.
	set map[string]bool
}

func main() {
	var opts options
	flag.StringVar(&opts.config, "config", "", "settings YAML (defaults are embedded)")
	flag.StringVar(&opts.scene, "scene", "corridor", "scene file or embedded sample ("+strings.Join(scene.Samples(), ", ")+")")
	flag.StringVar(&opts.agent, "agent", "", "actor to plan for")
	flag.Float64Var(&opts.radius, "radius", 0.4, "agent circle radius when no -agent is given")
	flag.IntVar(&opts.mask, "flags", 1, "agent flags when no -agent is given")
	flag.StringVar(&opts.from, "from", "", "start as x,y (defaults to the scene probes)")
	flag.StringVar(&opts.to, "to", "", "goal as x,y")
	flag.Float64Var(&opts.longest, "longest", 0, "maximum grid path length, 0 for unbounded")
	flag.BoolVar(&opts.partial, "partial", false, "return a partial path to unreachable goals")
	flag.BoolVar(&opts.shortcut, "shortcut", true, "drop waypoints that can be skipped")
	flag.BoolVar(&opts.actors, "actors", true, "treat actors as obstacles")
	flag.StringVar(&opts.png, "png", "", "write an image of each probe to this file (suffixed per probe)")
	flag.BoolVar(&opts.watch, "watch", false, "rerun when the config or scene file changes")
	flag.Parse()
	opts.set = make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	if err := run(opts); err != nil {
		log.Fatal(err)
	}
	if !opts.watch {
		return
	}

	w, err := config.NewWatcher(watchFiles(opts)...)
	if err != nil {
		log.Fatal(err)
	}
	defer w.Close()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	log.Printf("pathprobe: watching for changes, ^C to stop")
	for {
		select {
		case name, ok := <-w.Events:
			if !ok {
				return
			}
			log.Printf("pathprobe: %s changed", name)
			if err := run(opts); err != nil {
				log.Printf("pathprobe: %v", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Printf("pathprobe: watch: %v", err)
		case <-interrupt:
			return
		}
	}
}

func run(opts options) error {
	settings, err := config.Load(opts.config)
	if err != nil {
		return err
	}
	pred, err := settings.Predicate()
	if err != nil {
		return err
	}
	matrix, err := settings.Matrix()
	if err != nil {
		return err
	}

	spec, err := scene.Load(opts.scene)
	if err != nil {
		return err
	}
	world, err := scene.Build(spec, settings.SpaceOptions(), matrix, nil)
	if err != nil {
		return err
	}

	pf, err := pathfinder.New(world.Entries, world.Actors, world.Base, pred, settings.PathfinderOptions())
	if err != nil {
		return err
	}

	probes, err := probesFor(opts, world)
	if err != nil {
		return err
	}
	if len(probes) == 0 {
		return errors.New("pathprobe: scene has no probes, pass -from and -to")
	}

	search := searchSettings(opts, settings.Search)
	for i, p := range probes {
		agent, err := world.ProbeAgent(p)
		if err != nil {
			return fmt.Errorf("pathprobe: probe %q: %w", p.Name, err)
		}
		from, to := p.From.Vector(), p.To.Vector()
		path, err := pf.FindPath(pathfinder.Query{
			Agent:          agent,
			Start:          from,
			Goal:           to,
			Longest:        search.Longest,
			Partial:        search.Partial,
			Shortcut:       search.Shortcut,
			ConsiderActors: search.ConsiderActors,
		})
		if err != nil {
			return fmt.Errorf("pathprobe: probe %q: %w", p.Name, err)
		}

		fmt.Printf("== %s/%s: %v -> %v\n", world.Name, p.Name, from, to)
		if path == nil {
			fmt.Println("no path")
		} else {
			fmt.Printf("%d waypoints: %s\n", len(path), formatPath(path))
		}
		f := newFrame(pf, path, from, to)
		if err := writeASCII(os.Stdout, pf, f, path, from, to); err != nil {
			return err
		}
		if opts.png != "" {
			name := opts.png
			if len(probes) > 1 {
				ext := filepath.Ext(name)
				name = fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), i, ext)
			}
			if err := writePNG(name, pf, f, path, from, to); err != nil {
				return err
			}
			log.Printf("pathprobe: wrote %s", name)
		}
	}
	return nil
}

// searchSettings applies the search flags given on the command line over the
// configured ones.
func searchSettings(opts options, s config.SearchSettings) config.SearchSettings {
	if opts.set["longest"] {
		s.Longest = opts.longest
	}
	if opts.set["partial"] {
		s.Partial = opts.partial
	}
	if opts.set["shortcut"] {
		s.Shortcut = opts.shortcut
	}
	if opts.set["actors"] {
		s.ConsiderActors = opts.actors
	}
	return s
}

// watchFiles lists the files -watch reloads on: the settings, the scene and
// the predicate script the settings name.
func watchFiles(opts options) []string {
	files := []string{opts.config, opts.scene}
	if settings, err := config.Load(opts.config); err == nil && settings.ScriptPath() != "" {
		files = append(files, settings.ScriptPath())
	}
	return files
}

func probesFor(opts options, world *scene.World) ([]scene.ProbeSpec, error) {
	if opts.from == "" && opts.to == "" {
		return world.Probes, nil
	}
	to, err := parseVec(opts.to)
	if err != nil {
		return nil, fmt.Errorf("pathprobe: -to: %w", err)
	}
	p := scene.ProbeSpec{
		Name:   "cli",
		Agent:  opts.agent,
		Radius: opts.radius,
		Flags:  opts.mask,
		To:     scene.Vec(to),
	}
	switch {
	case opts.from != "":
		from, err := parseVec(opts.from)
		if err != nil {
			return nil, fmt.Errorf("pathprobe: -from: %w", err)
		}
		p.From = scene.Vec(from)
	case opts.agent != "":
		_, pos, err := world.Agent(opts.agent)
		if err != nil {
			return nil, err
		}
		p.From = scene.Vec(pos)
	default:
		return nil, errors.New("pathprobe: -from or -agent is required with -to")
	}
	return []scene.ProbeSpec{p}, nil
}

func parseVec(s string) (cp.Vector, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return cp.Vector{}, fmt.Errorf("want x,y, got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return cp.Vector{}, err
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return cp.Vector{}, err
	}
	return cp.Vector{X: x, Y: y}, nil
}

func formatPath(path []cp.Vector) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y)
	}
	return strings.Join(parts, " ")
}
