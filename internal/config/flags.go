package config

import (
	"flag"
)

// RegisterFlags binds the command-line overrides accepted by every binary
// onto s. Flag names match the keys Merge honours.
func RegisterFlags(fs *flag.FlagSet, s *Settings) {
	fs.Int64Var(&s.World.Seed, "seed", s.World.Seed, "world seed")
	fs.StringVar(&s.World.Generator, "generator", s.World.Generator, "terrain generator: noise or flat")
	fs.IntVar(&s.Streaming.RenderDistance, "render-distance", s.Streaming.RenderDistance, "render distance in chunks")
	fs.IntVar(&s.Streaming.Workers, "workers", s.Streaming.Workers, "mesh build workers (0 = one per CPU)")
	fs.StringVar(&s.Catalog, "catalog", s.Catalog, "YAML block catalog (empty = built-in)")
	fs.StringVar(&s.LogLevel, "log-level", s.LogLevel, "debug, info, warn or error")
}

// Explicit returns the names of the flags that were set on the command line.
func Explicit(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// Resolve finishes flag handling after fs.Parse: when path is set, the file
// is loaded and merged under the explicit flags. The result is validated.
func Resolve(fs *flag.FlagSet, s *Settings, path string) error {
	if path != "" {
		fromFile, err := Load(path)
		if err != nil {
			return err
		}
		Merge(s, fromFile, Explicit(fs))
	}
	return s.Validate()
}
