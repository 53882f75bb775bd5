// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/scenedemo/internal/engine/camera"
)

// Event types for game use
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Repeat bool
	Width  int
	Height int
	MouseX int
	MouseY int
	RelX   int
	RelY   int
	Wheel  float32
	Button uint8
}

// Input tracks held keys and buttons across frames and per-frame presses,
// mouse motion and wheel.
type Input struct {
	events []Event

	held    map[sdl.Scancode]bool
	buttons map[uint8]bool

	pressed []sdl.Scancode
	relX    float32
	relY    float32
	wheel   float32
	quit    bool
	resized bool
	width   int
	height  int
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events:  make([]Event, 0, 16),
		held:    make(map[sdl.Scancode]bool),
		buttons: make(map[uint8]bool),
	}
}

// BeginFrame clears per-frame state. Held keys and buttons persist.
func (i *Input) BeginFrame() {
	i.events = i.events[:0]
	i.pressed = i.pressed[:0]
	i.relX, i.relY, i.wheel = 0, 0, 0
	i.resized = false
}

// Update polls pending SDL events without blocking and applies them.
// Returns true if the game should quit.
func (i *Input) Update() bool {
	i.BeginFrame()
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if e, ok := translate(event); ok {
			i.Apply(e)
		}
	}
	return i.quit
}

func translate(event sdl.Event) (Event, bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return Event{Type: EventQuit}, true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			return Event{Type: EventWindowResize, Width: int(e.Data1), Height: int(e.Data2)}, true
		}

	case *sdl.KeyboardEvent:
		typ := EventKeyUp
		if e.Type == sdl.KEYDOWN {
			typ = EventKeyDown
		}
		return Event{Type: typ, Key: e.Keysym.Scancode, Repeat: e.Repeat != 0}, true

	case *sdl.MouseMotionEvent:
		return Event{
			Type:   EventMouseMove,
			MouseX: int(e.X),
			MouseY: int(e.Y),
			RelX:   int(e.XRel),
			RelY:   int(e.YRel),
		}, true

	case *sdl.MouseButtonEvent:
		typ := EventMouseUp
		if e.Type == sdl.MOUSEBUTTONDOWN {
			typ = EventMouseDown
		}
		return Event{Type: typ, MouseX: int(e.X), MouseY: int(e.Y), Button: e.Button}, true

	case *sdl.MouseWheelEvent:
		return Event{Type: EventMouseWheel, Wheel: float32(e.Y)}, true
	}
	return Event{}, false
}

// Apply folds one event into the input state.
func (i *Input) Apply(e Event) {
	i.events = append(i.events, e)
	switch e.Type {
	case EventQuit:
		i.quit = true
	case EventWindowResize:
		i.resized = true
		i.width, i.height = e.Width, e.Height
	case EventKeyDown:
		if !e.Repeat {
			i.pressed = append(i.pressed, e.Key)
		}
		i.held[e.Key] = true
	case EventKeyUp:
		delete(i.held, e.Key)
	case EventMouseMove:
		i.relX += float32(e.RelX)
		i.relY += float32(e.RelY)
	case EventMouseDown:
		i.buttons[e.Button] = true
	case EventMouseUp:
		delete(i.buttons, e.Button)
	case EventMouseWheel:
		i.wheel += e.Wheel
	}
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed reports whether scancode went down this frame. Auto-repeat
// does not count.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, k := range i.pressed {
		if k == scancode {
			return true
		}
	}
	return false
}

// IsKeyHeld reports whether scancode is currently down.
func (i *Input) IsKeyHeld(scancode sdl.Scancode) bool {
	return i.held[scancode]
}

// IsButtonHeld reports whether a mouse button is currently down.
func (i *Input) IsButtonHeld(button uint8) bool {
	return i.buttons[button]
}

// MouseDelta returns the relative mouse motion accumulated this frame.
func (i *Input) MouseDelta() (float32, float32) {
	return i.relX, i.relY
}

// Wheel returns the scroll accumulated this frame.
func (i *Input) Wheel() float32 { return i.wheel }

// Quit reports whether a quit request was seen.
func (i *Input) Quit() bool { return i.quit }

// Resized returns the new drawable size if the window was resized this frame.
func (i *Input) Resized() (w, h int, ok bool) {
	return i.width, i.height, i.resized
}

// Controls maps WASD, Space and Left Shift to movement axes, and mouse motion
// to look while the right button is held.
func (i *Input) Controls() camera.Controls {
	var c camera.Controls
	c.Forward = axis(i.held[sdl.SCANCODE_W], i.held[sdl.SCANCODE_S])
	c.Right = axis(i.held[sdl.SCANCODE_D], i.held[sdl.SCANCODE_A])
	c.Up = axis(i.held[sdl.SCANCODE_SPACE], i.held[sdl.SCANCODE_LSHIFT])
	if i.buttons[sdl.BUTTON_RIGHT] {
		c.LookX, c.LookY = i.relX, i.relY
	}
	c.Zoom = i.wheel
	return c
}

func axis(pos, neg bool) float32 {
	var v float32
	if pos {
		v++
	}
	if neg {
		v--
	}
	return v
}
