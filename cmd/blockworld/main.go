package main

import (
	"flag"
	"log/slog"
	"os"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"blockworld/internal/config"
	"blockworld/internal/game"
	"blockworld/internal/input"
)

func init() {
	// GL and glfw calls must stay on the main thread
	runtime.LockOSThread()
}

func main() {
	settings := config.Default()
	configPath := flag.String("config", "", "YAML settings file")
	config.RegisterFlags(flag.CommandLine, settings)
	flag.Parse()

	if err := config.Resolve(flag.CommandLine, settings, *configPath); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: settings.Level()}))

	if err := glfw.Init(); err != nil {
		log.Error("glfw init", "error", err)
		os.Exit(1)
	}
	defer glfw.Terminate()

	window, err := game.SetupWindow(settings.Window)
	if err != nil {
		log.Error("create window", "error", err)
		os.Exit(1)
	}

	im := input.NewInputManager()
	im.Attach(window)

	session, err := game.NewSession(window, settings, log)
	if err != nil {
		log.Error("start session", "error", err)
		os.Exit(1)
	}

	game.NewApp(window, im, session, settings.Window.MaxFPS, log).Run()
}
