package game

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"blockworld/internal/config"
	"blockworld/internal/export"
	"blockworld/internal/graphics"
	"blockworld/internal/input"
	"blockworld/internal/profiling"
	"blockworld/internal/streaming"
	"blockworld/internal/world"
)

// ExportPath is where the export key writes the visible chunks.
const ExportPath = "blockworld-export.obj.zst"

// fastMultiplier scales camera speed while the fast key is held.
const fastMultiplier = 4

type Session struct {
	Window    *glfw.Window
	Settings  *config.Settings
	Store     *streaming.Store
	Scheduler *streaming.Scheduler
	Renderer  *graphics.ChunkRenderer
	Camera    *graphics.Camera

	log *slog.Logger

	cursorGrabbed bool
	lastFrame     streaming.FrameStats

	Frames           int
	LastFPSCheckTime time.Time
}

// NewSession creates the renderer and store, builds the spawn area
// synchronously and places the camera above the terrain at the origin.
func NewSession(window *glfw.Window, s *config.Settings, logger *slog.Logger) (*Session, error) {
	sess := &Session{
		Window:           window,
		Settings:         s,
		log:              logger,
		cursorGrabbed:    true,
		LastFPSCheckTime: time.Now(),
	}

	// The renderer needs the catalog the store loads; create the store with
	// a late-bound backend and attach the renderer afterwards.
	backend := &lateBackend{}
	store, err := streaming.NewStoreFromSettings(s, backend, logger)
	if err != nil {
		return nil, err
	}
	r, err := graphics.NewChunkRenderer(store.Catalog(), store.ChunkWidth(), store.ChunkHeight())
	if err != nil {
		store.Close()
		return nil, err
	}
	backend.MeshBackend = r

	sess.Store = store
	sess.Renderer = r
	sess.Scheduler = streaming.NewScheduler(store, s.Streaming.RenderDistance, r)

	width, height := window.GetSize()
	sess.Camera = graphics.NewCamera(width, height)
	sess.Camera.FOV = s.Camera.FOV
	sess.Camera.FarPlane = float32((s.Streaming.RenderDistance + 2) * store.ChunkWidth() * 2)

	if err := sess.primeSpawn(); err != nil {
		logger.Warn("spawn area incomplete", "error", err)
	}
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		gl.Viewport(0, 0, int32(w), int32(h))
		sess.Camera.SetViewport(w, h)
	})
	return sess, nil
}

// lateBackend forwards to a backend that is set after the store exists.
type lateBackend struct {
	streaming.MeshBackend
}

func (s *Session) primeSpawn() error {
	// Keep the synchronous part small; the scheduler streams the rest.
	radius := min(2, s.Scheduler.Radius())
	visible := streaming.NewScheduler(s.Store, radius, nil).Visible(world.ChunkCoord{})
	start := time.Now()
	err := s.Store.Prime(context.Background(), visible)
	s.log.Info("spawn area built", "chunks", len(visible), "took", time.Since(start).Round(time.Millisecond))

	ground := s.Store.HighestSolid(0, 0)
	s.Camera.Position = mgl32.Vec3{0.5, float32(ground) + 3, 0.5}
	return err
}

func (s *Session) Cleanup() {
	s.Store.Close()
	s.Renderer.Dispose()
}

// Update applies input to the camera and settings for this frame.
func (s *Session) Update(dt float64, im *input.InputManager) {
	defer profiling.Track("session.Update")()

	s.handleInputActions(im)
	if !s.cursorGrabbed {
		return
	}

	dx, dy := im.CursorDelta()
	s.Camera.Look(float32(dx), float32(dy), s.Settings.Camera.Sensitivity)

	var forward, right, up float32
	if im.IsActive(input.ActionMoveForward) {
		forward++
	}
	if im.IsActive(input.ActionMoveBackward) {
		forward--
	}
	if im.IsActive(input.ActionMoveRight) {
		right++
	}
	if im.IsActive(input.ActionMoveLeft) {
		right--
	}
	if im.IsActive(input.ActionMoveUp) {
		up++
	}
	if im.IsActive(input.ActionMoveDown) {
		up--
	}
	speed := s.Settings.Camera.Speed * float32(dt)
	if im.IsActive(input.ActionFast) {
		speed *= fastMultiplier
	}
	s.Camera.Move(forward*speed, right*speed, up*speed)
}

func (s *Session) handleInputActions(im *input.InputManager) {
	if im.JustPressed(input.ActionQuit) {
		s.Window.SetShouldClose(true)
	}
	if im.JustPressed(input.ActionReleaseCursor) && s.cursorGrabbed {
		s.setCursorGrabbed(false)
	}
	if im.JustPressed(input.ActionGrabCursor) && !s.cursorGrabbed {
		s.setCursorGrabbed(true)
		im.ResetCursor()
	}
	if im.JustPressed(input.ActionToggleWireframe) {
		s.Renderer.Wireframe = !s.Renderer.Wireframe
	}
	if im.JustPressed(input.ActionRadiusUp) {
		s.setRadius(s.Scheduler.Radius() + 1)
	}
	if im.JustPressed(input.ActionRadiusDown) {
		s.setRadius(s.Scheduler.Radius() - 1)
	}
	if im.JustPressed(input.ActionExport) {
		if err := s.exportVisible(ExportPath); err != nil {
			s.log.Error("export failed", "path", ExportPath, "error", err)
		}
	}
}

func (s *Session) setCursorGrabbed(grabbed bool) {
	s.cursorGrabbed = grabbed
	if grabbed {
		s.Window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	} else {
		s.Window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	}
}

func (s *Session) setRadius(r int) {
	s.Scheduler.SetRadius(r)
	s.Camera.FarPlane = float32((s.Scheduler.Radius() + 2) * s.Store.ChunkWidth() * 2)
	s.log.Info("render distance", "chunks", s.Scheduler.Radius())
}

func (s *Session) exportVisible(path string) error {
	center := world.ChunkCoordAt(s.Camera.Position, s.Store.ChunkWidth())
	placed := export.Collect(s.Store, s.Scheduler.Visible(center))

	w, err := export.Create(path)
	if err != nil {
		return err
	}
	sum, err := export.WriteOBJ(w, placed)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	s.log.Info("exported chunks", "path", path, "objects", sum.Objects, "triangles", sum.Triangles)
	return nil
}

// Render installs finished builds, streams chunks around the camera and
// draws them.
func (s *Session) Render() {
	gl.ClearColor(0.53, 0.81, 0.92, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	s.Store.DrainCompleted()

	s.Renderer.Begin(s.Camera.ViewMatrix(), s.Camera.ProjectionMatrix())
	s.lastFrame = s.Scheduler.Update(s.Camera.Position)
	s.Renderer.End()

	s.Frames++
	if time.Since(s.LastFPSCheckTime) >= time.Second {
		st := s.Store.Stats()
		s.Window.SetTitle(fmt.Sprintf("%s | %d fps | chunk %v | %d/%d drawn | %d in flight",
			s.Settings.Window.Title, s.Frames, s.lastFrame.Center, s.Renderer.Drawn, st.Meshed, st.InFlight))
		s.log.Debug("streaming",
			"fps", s.Frames,
			"active", st.Active,
			"meshed", st.Meshed,
			"queued", st.Queued,
			"stale", st.Stale,
			"orphaned", st.Orphaned,
			"failed", st.Failed,
			"throttled", st.Throttled,
			"queue_full", st.QueueFull,
			"culled", s.Renderer.Culled,
		)
		s.Frames = 0
		s.LastFPSCheckTime = time.Now()
	}
}
