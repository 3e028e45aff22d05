package input

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func TestKeyEdgesAndHold(t *testing.T) {
	im := NewInputManager()

	im.HandleKeyEvent(glfw.KeyW, glfw.Press)
	if !im.IsActive(ActionMoveForward) || !im.JustPressed(ActionMoveForward) {
		t.Fatal("W press not reported")
	}
	im.PostUpdate()
	if !im.IsActive(ActionMoveForward) || im.JustPressed(ActionMoveForward) {
		t.Fatal("held key should stay active without a new edge")
	}

	im.HandleKeyEvent(glfw.KeyW, glfw.Release)
	if im.IsActive(ActionMoveForward) || !im.JustReleased(ActionMoveForward) {
		t.Fatal("W release not reported")
	}
}

func TestAlternateBindingsShareAction(t *testing.T) {
	im := NewInputManager()
	im.HandleKeyEvent(glfw.KeyUp, glfw.Press)
	if !im.IsActive(ActionMoveForward) {
		t.Fatal("arrow key should move forward")
	}
	im.UnbindKey(glfw.KeyUp)
	im.HandleKeyEvent(glfw.KeyUp, glfw.Release)
	if !im.IsActive(ActionMoveForward) {
		t.Fatal("unbound key must not change state")
	}
}

func TestMouseButtonGrabsCursor(t *testing.T) {
	im := NewInputManager()
	im.HandleMouseButtonEvent(glfw.MouseButtonLeft, glfw.Press)
	if !im.JustPressed(ActionGrabCursor) {
		t.Fatal("left click not mapped")
	}
}

func TestCursorDelta(t *testing.T) {
	im := NewInputManager()
	im.HandleCursorEvent(100, 100)
	if dx, dy := im.CursorDelta(); dx != 0 || dy != 0 {
		t.Fatalf("first event should only record position, got %v,%v", dx, dy)
	}
	im.HandleCursorEvent(110, 95)
	im.HandleCursorEvent(115, 90)
	if dx, dy := im.CursorDelta(); dx != 15 || dy != -10 {
		t.Fatalf("delta = %v,%v", dx, dy)
	}
	im.PostUpdate()
	if dx, dy := im.CursorDelta(); dx != 0 || dy != 0 {
		t.Fatalf("delta after PostUpdate = %v,%v", dx, dy)
	}
	im.ResetCursor()
	im.HandleCursorEvent(0, 0)
	if dx, dy := im.CursorDelta(); dx != 0 || dy != 0 {
		t.Fatalf("delta after reset = %v,%v", dx, dy)
	}
}
