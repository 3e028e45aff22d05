package input

import (
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Action represents a logical game action, not a physical key
type Action int

// Action constants using iota
const (
	ActionMoveForward Action = iota
	ActionMoveBackward
	ActionMoveLeft
	ActionMoveRight
	ActionMoveUp
	ActionMoveDown
	ActionFast
	ActionReleaseCursor
	ActionGrabCursor
	ActionQuit
	ActionToggleWireframe
	ActionRadiusUp
	ActionRadiusDown
	ActionExport
	ActionCount // Sentinel value for array sizing
)

// InputManager manages keyboard and mouse input state and maps physical keys/buttons to logical actions
type InputManager struct {
	mu sync.RWMutex

	// Key to action mapping (one key can map to multiple actions)
	keyToActions map[glfw.Key][]Action

	// Mouse button to action mapping
	mouseButtonToActions map[glfw.MouseButton][]Action

	// Current frame state (indexed by Action)
	currentState [ActionCount]bool

	// Just pressed/released flags (reset each frame)
	justPressed  [ActionCount]bool
	justReleased [ActionCount]bool

	// Accumulated cursor movement since the last PostUpdate
	lastX, lastY float64
	dx, dy       float64
	haveCursor   bool
}

// NewInputManager creates a new InputManager with default key bindings
func NewInputManager() *InputManager {
	im := &InputManager{
		keyToActions:         make(map[glfw.Key][]Action),
		mouseButtonToActions: make(map[glfw.MouseButton][]Action),
	}

	// Set default key bindings
	im.BindKey(glfw.KeyW, ActionMoveForward)
	im.BindKey(glfw.KeyS, ActionMoveBackward)
	im.BindKey(glfw.KeyA, ActionMoveLeft)
	im.BindKey(glfw.KeyD, ActionMoveRight)
	im.BindKey(glfw.KeyUp, ActionMoveForward)
	im.BindKey(glfw.KeyDown, ActionMoveBackward)
	im.BindKey(glfw.KeyLeft, ActionMoveLeft)
	im.BindKey(glfw.KeyRight, ActionMoveRight)
	im.BindKey(glfw.KeySpace, ActionMoveUp)
	im.BindKey(glfw.KeyLeftShift, ActionMoveDown)
	im.BindKey(glfw.KeyLeftControl, ActionFast)
	im.BindKey(glfw.KeyEscape, ActionReleaseCursor)
	im.BindKey(glfw.KeyQ, ActionQuit)
	im.BindKey(glfw.KeyF, ActionToggleWireframe)
	im.BindKey(glfw.KeyEqual, ActionRadiusUp)
	im.BindKey(glfw.KeyKPAdd, ActionRadiusUp)
	im.BindKey(glfw.KeyMinus, ActionRadiusDown)
	im.BindKey(glfw.KeyKPSubtract, ActionRadiusDown)
	im.BindKey(glfw.KeyO, ActionExport)

	// Clicking into the window grabs the cursor again
	im.BindMouseButton(glfw.MouseButtonLeft, ActionGrabCursor)

	return im
}

// BindKey binds a physical key to a logical action
// Multiple keys can be bound to the same action (e.g., WASD and arrow keys)
func (im *InputManager) BindKey(key glfw.Key, action Action) {
	im.mu.Lock()
	defer im.mu.Unlock()

	if action < 0 || action >= ActionCount {
		return
	}

	im.keyToActions[key] = append(im.keyToActions[key], action)
}

// UnbindKey removes all action bindings for a key
func (im *InputManager) UnbindKey(key glfw.Key) {
	im.mu.Lock()
	defer im.mu.Unlock()

	delete(im.keyToActions, key)
}

// BindMouseButton binds a mouse button to a logical action
func (im *InputManager) BindMouseButton(button glfw.MouseButton, action Action) {
	im.mu.Lock()
	defer im.mu.Unlock()

	if action < 0 || action >= ActionCount {
		return
	}

	im.mouseButtonToActions[button] = append(im.mouseButtonToActions[button], action)
}

// UnbindMouseButton removes all action bindings for a mouse button
func (im *InputManager) UnbindMouseButton(button glfw.MouseButton) {
	im.mu.Lock()
	defer im.mu.Unlock()

	delete(im.mouseButtonToActions, button)
}

// HandleKeyEvent processes a key event and updates internal state
// This can be called from a custom key callback
func (im *InputManager) HandleKeyEvent(key glfw.Key, action glfw.Action) {
	im.mu.RLock()
	actions, exists := im.keyToActions[key]
	im.mu.RUnlock()

	if !exists {
		return
	}

	isPressed := action == glfw.Press || action == glfw.Repeat

	im.mu.Lock()
	for _, act := range actions {
		if act >= 0 && act < ActionCount {
			// Detect edges immediately when event arrives
			if isPressed && !im.currentState[act] {
				im.justPressed[act] = true
			}
			if !isPressed && im.currentState[act] {
				im.justReleased[act] = true
			}
			im.currentState[act] = isPressed
		}
	}
	im.mu.Unlock()
}

// HandleMouseButtonEvent processes a mouse button event and updates internal state
// This can be called from a custom mouse button callback
func (im *InputManager) HandleMouseButtonEvent(button glfw.MouseButton, action glfw.Action) {
	im.mu.RLock()
	actions, exists := im.mouseButtonToActions[button]
	im.mu.RUnlock()

	if !exists {
		return
	}

	isPressed := action == glfw.Press

	im.mu.Lock()
	for _, act := range actions {
		if act >= 0 && act < ActionCount {
			// Detect edges immediately when event arrives
			if isPressed && !im.currentState[act] {
				im.justPressed[act] = true
			}
			if !isPressed && im.currentState[act] {
				im.justReleased[act] = true
			}
			im.currentState[act] = isPressed
		}
	}
	im.mu.Unlock()
}

// HandleCursorEvent accumulates cursor movement. The first event after
// creation or ResetCursor only records the position.
func (im *InputManager) HandleCursorEvent(x, y float64) {
	im.mu.Lock()
	defer im.mu.Unlock()

	if im.haveCursor {
		im.dx += x - im.lastX
		im.dy += y - im.lastY
	}
	im.lastX, im.lastY = x, y
	im.haveCursor = true
}

// ResetCursor forgets the last cursor position, e.g. after the cursor mode changes.
func (im *InputManager) ResetCursor() {
	im.mu.Lock()
	defer im.mu.Unlock()
	im.haveCursor = false
	im.dx, im.dy = 0, 0
}

// CursorDelta returns the cursor movement accumulated this frame.
func (im *InputManager) CursorDelta() (dx, dy float64) {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.dx, im.dy
}

// Attach installs key, mouse button and cursor callbacks on window.
// This should be called once during initialization
func (im *InputManager) Attach(window *glfw.Window) {
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		im.HandleKeyEvent(key, action)
	})
	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		im.HandleMouseButtonEvent(button, action)
	})
	window.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		im.HandleCursorEvent(x, y)
	})
}

// PostUpdate must be called at the end of each frame to update edge detection states
// This should be called after all input checks are done
func (im *InputManager) PostUpdate() {
	im.mu.Lock()
	defer im.mu.Unlock()

	// Reset edge flags and cursor movement
	for i := range ActionCount {
		im.justPressed[i] = false
		im.justReleased[i] = false
	}
	im.dx, im.dy = 0, 0
}

// IsActive returns true if the action is currently being held down
func (im *InputManager) IsActive(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}

	im.mu.RLock()
	defer im.mu.RUnlock()

	return im.currentState[action]
}

// JustPressed returns true only if the action was pressed in the current frame
func (im *InputManager) JustPressed(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}

	im.mu.RLock()
	defer im.mu.RUnlock()

	return im.justPressed[action]
}

// JustReleased returns true only if the action was released in the current frame
func (im *InputManager) JustReleased(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}

	im.mu.RLock()
	defer im.mu.RUnlock()

	return im.justReleased[action]
}
