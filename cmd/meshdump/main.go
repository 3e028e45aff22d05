// Command meshdump builds the chunks around the origin without a window,
// reports how much greedy meshing saved over one quad per face, and
// optionally writes the meshes as a Wavefront OBJ file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blockworld/internal/config"
	"blockworld/internal/export"
	"blockworld/internal/meshing"
	"blockworld/internal/profiling"
	"blockworld/internal/streaming"
	"blockworld/internal/world"
)

func main() {
	settings := config.Default()
	configPath := flag.String("config", "", "YAML settings file")
	out := flag.String("out", "", "write an OBJ file (.zst suffix compresses)")
	cx := flag.Int("x", 0, "center chunk X")
	cz := flag.Int("z", 0, "center chunk Z")
	config.RegisterFlags(flag.CommandLine, settings)
	flag.Parse()

	if err := config.Resolve(flag.CommandLine, settings, *configPath); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: settings.Level()}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, settings, world.ChunkCoord{X: *cx, Z: *cz}, *out, log); err != nil {
		log.Error("meshdump failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, s *config.Settings, center world.ChunkCoord, out string, log *slog.Logger) error {
	store, err := streaming.NewStoreFromSettings(s, nil, log)
	if err != nil {
		return err
	}
	defer store.Close()

	coords := streaming.NewScheduler(store, s.Streaming.RenderDistance, nil).Visible(center)

	start := time.Now()
	if err := store.Prime(ctx, coords); err != nil {
		return err
	}
	log.Info("built chunks", "chunks", len(coords), "took", time.Since(start).Round(time.Millisecond))

	report := summarize(store, coords)
	fmt.Println(report)
	log.Debug("profile", "top", profiling.TopN(5))

	if out == "" {
		return nil
	}
	w, err := export.Create(out)
	if err != nil {
		return err
	}
	sum, err := export.WriteOBJ(w, export.Collect(store, coords))
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	log.Info("wrote obj", "path", out, "objects", sum.Objects, "vertices", sum.Vertices, "triangles", sum.Triangles)
	return nil
}

// Report compares greedy output with naive per-face meshing.
type Report struct {
	Chunks    int
	Quads     int
	Naive     int
	Triangles int
	Unknown   map[world.Material]int
}

func (r Report) String() string {
	saved := 0.0
	if r.Naive > 0 {
		saved = 100 * (1 - float64(r.Quads)/float64(r.Naive))
	}
	s := fmt.Sprintf("chunks=%d quads=%d naive=%d triangles=%d saved=%.1f%%",
		r.Chunks, r.Quads, r.Naive, r.Triangles, saved)
	if len(r.Unknown) > 0 {
		s += fmt.Sprintf(" unknown=%v", r.Unknown)
	}
	return s
}

func summarize(store *streaming.Store, coords []world.ChunkCoord) Report {
	r := Report{Unknown: make(map[world.Material]int)}
	for _, c := range coords {
		ch, ok := store.Chunk(c)
		if !ok {
			continue
		}
		grid, _ := ch.Snapshot()
		r.Chunks++
		r.Naive += meshing.NaiveQuadCount(grid, store.Catalog())

		m, ok := store.MeshFor(c)
		if !ok {
			continue
		}
		r.Quads += m.QuadCount()
		r.Triangles += m.TriangleCount()
		for _, id := range m.Unknown {
			r.Unknown[id]++
		}
	}
	return r
}
