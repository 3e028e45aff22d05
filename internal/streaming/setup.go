package streaming

import (
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"blockworld/internal/config"
	"blockworld/internal/registry"
	"blockworld/internal/world"
)

// NewStoreFromSettings builds the catalog, terrain generator and build
// limiter described by s and returns a store using them.
func NewStoreFromSettings(s *config.Settings, backend MeshBackend, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cat := registry.Default()
	if s.Catalog != "" {
		var err error
		cat, err = registry.LoadFile(s.Catalog)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
	}

	gen, err := world.NewGenerator(s.World.Generator, s.World.Seed, world.NoiseOptions{
		Scale:     s.World.Scale,
		MaxHeight: s.World.MaxHeight,
		Octaves:   s.World.Octaves,
	})
	if err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if s.Streaming.BuildsPerSecond > 0 {
		burst := max(s.Streaming.BuildBurst, 1)
		limiter = rate.NewLimiter(rate.Limit(s.Streaming.BuildsPerSecond), burst)
	}

	logger.Info("world ready",
		"generator", s.World.Generator,
		"seed", s.World.Seed,
		"blocks", cat.Len(),
		"catalog", cat.Digest()[:12],
		"chunk", fmt.Sprintf("%dx%d", s.World.ChunkWidth, s.World.ChunkHeight),
	)

	return NewStore(Options{
		Catalog:     cat,
		Generator:   gen,
		ChunkWidth:  s.World.ChunkWidth,
		ChunkHeight: s.World.ChunkHeight,
		Workers:     s.Streaming.Workers,
		QueueSize:   s.Streaming.QueueSize,
		Limiter:     limiter,
		Backend:     backend,
		Logger:      logger,
	}), nil
}
