package game

import (
	"log/slog"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"blockworld/internal/input"
	"blockworld/internal/profiling"
)

// slowFrame is the processing time above which a frame is logged with its
// most expensive profiled sections.
const slowFrame = 16 * time.Millisecond

type App struct {
	window       *glfw.Window
	inputManager *input.InputManager
	session      *Session
	log          *slog.Logger

	fpsLimiter *FPSLimiter
	lastTime   time.Time
}

func NewApp(window *glfw.Window, im *input.InputManager, session *Session, maxFPS int, logger *slog.Logger) *App {
	return &App{
		window:       window,
		inputManager: im,
		session:      session,
		log:          logger,
		fpsLimiter:   NewFPSLimiter(maxFPS),
		lastTime:     time.Now(),
	}
}

// Run drives frames until the window is closed, then releases the session.
func (a *App) Run() {
	defer a.session.Cleanup()
	for !a.window.ShouldClose() {
		a.tick()
	}
}

func (a *App) tick() {
	profiling.ResetFrame()
	startTick := time.Now() // Measure pure processing time
	dt := startTick.Sub(a.lastTime).Seconds()
	a.lastTime = startTick

	func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()

	a.session.Update(dt, a.inputManager)
	a.session.Render()

	func() { defer profiling.Track("glfw.SwapBuffers")(); a.window.SwapBuffers() }()

	// Check if frame took too long
	if d := time.Since(startTick); d > slowFrame {
		a.log.Debug("slow frame", "took", d.Round(time.Microsecond), "top", profiling.TopN(5))
	}

	a.inputManager.PostUpdate() // Clear "JustPressed" flags

	a.fpsLimiter.Wait()
}
