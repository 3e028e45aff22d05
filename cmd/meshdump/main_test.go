package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"blockworld/internal/config"
	"blockworld/internal/world"
)

func testSettings() *config.Settings {
	s := config.Default()
	s.World.Generator = "flat"
	s.World.ChunkWidth = 4
	s.World.ChunkHeight = 8
	s.World.MaxHeight = 4
	s.Streaming.RenderDistance = 1
	s.Streaming.Workers = 2
	return s
}

func TestRunWritesObj(t *testing.T) {
	out := filepath.Join(t.TempDir(), "dump.obj")
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := run(context.Background(), testSettings(), world.ChunkCoord{}, out, log); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(raw), "\no chunk_"); got != 9 {
		t.Fatalf("objects in obj = %d, want 9", got)
	}
}

func TestReportSaved(t *testing.T) {
	r := Report{Chunks: 1, Quads: 25, Naive: 100, Triangles: 50}
	if got := r.String(); !strings.Contains(got, "saved=75.0%") {
		t.Fatalf("report = %q", got)
	}
	r.Unknown = map[world.Material]int{77: 1}
	if got := r.String(); !strings.Contains(got, "unknown=map[material(77):1]") {
		t.Fatalf("report = %q", got)
	}
}
