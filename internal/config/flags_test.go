package config

import (
	"errors"
	"flag"
	"io"
	"testing"
)

func newFlagSet(s *Settings) *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	RegisterFlags(fs, s)
	return fs
}

func TestResolveFlagsOverrideFile(t *testing.T) {
	path := writeFile(t, "world:\n  seed: 99\n  generator: flat\nstreaming:\n  render_distance: 12\n")

	s := Default()
	fs := newFlagSet(s)
	if err := fs.Parse([]string{"-seed", "5", "-render-distance", "80"}); err != nil {
		t.Fatal(err)
	}
	if err := Resolve(fs, s, path); err != nil {
		t.Fatal(err)
	}

	if s.World.Seed != 5 {
		t.Errorf("seed = %d, want flag value 5", s.World.Seed)
	}
	if s.World.Generator != "flat" {
		t.Errorf("generator = %q, want file value", s.World.Generator)
	}
	if s.Streaming.RenderDistance != MaxRenderDistance {
		t.Errorf("render distance = %d, want clamped flag value", s.Streaming.RenderDistance)
	}
}

func TestResolveWithoutFile(t *testing.T) {
	s := Default()
	fs := newFlagSet(s)
	if err := fs.Parse([]string{"-generator", "caves"}); err != nil {
		t.Fatal(err)
	}
	if err := Resolve(fs, s, ""); !errors.Is(err, ErrInvalid) {
		t.Fatalf("got %v, want ErrInvalid", err)
	}
}

func TestExplicit(t *testing.T) {
	fs := newFlagSet(Default())
	if err := fs.Parse([]string{"-workers", "3"}); err != nil {
		t.Fatal(err)
	}
	got := Explicit(fs)
	if !got["workers"] || len(got) != 1 {
		t.Fatalf("explicit = %v", got)
	}
}
