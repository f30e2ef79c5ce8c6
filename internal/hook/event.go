package hook

// Direction is the transition a key event reports.
type Direction int

const (
	Pressed Direction = iota
	Released
)

func (d Direction) String() string {
	if d == Released {
		return "UP"
	}
	return "DOWN"
}

// KeyEvent is delivered to keyboard subscribers.
//
// Suppress is written by subscribers, not read: setting it to true keeps
// the key from reaching the rest of the hook chain and the focused
// application. Once any subscriber sets it, the event stays suppressed.
type KeyEvent struct {
	VirtualKey uint32
	Modifiers  Modifiers
	Direction  Direction
	Suppress   bool

	ScanCode uint32
	Injected bool
	Time     uint32
}

// PointerEvent is delivered to pointer subscribers. X and Y are absolute
// screen coordinates and may be negative on multi-monitor desktops.
type PointerEvent struct {
	X, Y int32
}

// KeyHandler observes a key event. It may set ev.Suppress.
type KeyHandler func(ev *KeyEvent)

// PointerHandler observes a pointer motion event.
type PointerHandler func(ev PointerEvent)
