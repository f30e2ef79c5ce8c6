// Package hook installs system-wide low-level keyboard and pointer hooks
// and delivers normalized events to subscribers.
//
// The OS invokes a hook callback without any caller context, so each event
// class has one stable, non-capturing entry point that finds its owner
// through a Router. Subscribers run synchronously on the OS hook thread:
// they must return quickly and hand any real work to another goroutine.
//
// Platform support:
// - Windows: SetWindowsHookEx with WH_KEYBOARD_LL / WH_MOUSE_LL
// - Everything else: Install returns ErrNotSupported
package hook

import (
	"errors"
	"log/slog"
)

// Class identifies the kind of events a hook intercepts.
type Class int

const (
	// ClassKeyboard intercepts key transitions.
	ClassKeyboard Class = iota
	// ClassPointer intercepts pointer motion.
	ClassPointer

	numClasses
)

func (c Class) String() string {
	switch c {
	case ClassKeyboard:
		return "keyboard"
	case ClassPointer:
		return "pointer"
	default:
		return "unknown"
	}
}

// Handle is the opaque identifier the OS returns for an installed hook.
// The zero Handle means "not installed".
type Handle uintptr

// Win32 message identifiers delivered as wParam to low-level hooks.
const (
	wmKeyDown    = 0x0100
	wmKeyUp      = 0x0101
	wmSysKeyDown = 0x0104
	wmSysKeyUp   = 0x0105
	wmMouseMove  = 0x0200
)

// Flags from KBDLLHOOKSTRUCT.flags.
const (
	llkhfInjected = 0x10
	llkhfUp       = 0x80
)

// KeyboardRecord is the decoded raw record behind a keyboard callback.
type KeyboardRecord struct {
	VKCode   uint32
	ScanCode uint32
	Flags    uint32
	Time     uint32
}

// PointerRecord is the decoded raw record behind a pointer callback.
type PointerRecord struct {
	X, Y      int32
	MouseData uint32
	Flags     uint32
	Time      uint32
}

// KeyStater reports the live, asynchronous state of a virtual key.
type KeyStater interface {
	KeyDown(vk uint32) bool
}

// System is the OS event-hook API the subsystem consumes.
//
// Install binds the stable entry point for class and returns its handle.
// Uninstall surrenders a handle; unknown handles are a no-op.
// CallNext must be used on every callback path that does not consume the
// event. The record readers decode the memory behind a callback's lParam.
type System interface {
	KeyStater

	Install(class Class) (Handle, error)
	Uninstall(h Handle) error
	CallNext(h Handle, code int32, wParam, lParam uintptr) uintptr

	KeyboardRecord(lParam uintptr) (KeyboardRecord, error)
	PointerRecord(lParam uintptr) (PointerRecord, error)
}

var (
	// ErrNotSupported is returned by Install on platforms without
	// low-level hooks.
	ErrNotSupported = errors.New("global input hooks are not supported on this platform")

	// ErrAlreadyInstalled is returned when another instance of the same
	// class already owns the hook.
	ErrAlreadyInstalled = errors.New("a hook of this class is already installed")

	// ErrBadRecord is returned when the raw record behind a callback cannot
	// be read.
	ErrBadRecord = errors.New("unreadable hook record")

	// ErrInCallback is returned when Uninstall is called from inside the
	// hook callback it would tear down.
	ErrInCallback = errors.New("cannot uninstall a hook from inside its own callback")
)

// Fault describes a subscriber panic recovered at the dispatch boundary.
type Fault struct {
	Class      Class
	Subscriber int
	Value      any
	Stack      []byte
}

// FaultHandler receives recovered subscriber faults. It runs on the hook
// thread and must not block.
type FaultHandler func(Fault)

type options struct {
	logger     *slog.Logger
	onFault    FaultHandler
	systemKeys bool
}

// Option configures a Keyboard or Pointer.
type Option func(*options)

// WithLogger sets the logger used for fault and lifecycle diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithFaultHandler registers a callback for recovered subscriber panics.
func WithFaultHandler(h FaultHandler) Option {
	return func(o *options) {
		o.onFault = h
	}
}

// WithSystemKeys also classifies WM_SYSKEYDOWN/WM_SYSKEYUP, which Windows
// sends instead of WM_KEYDOWN/WM_KEYUP while Alt is held or for F10.
// Keyboard only; ignored by Pointer.
func WithSystemKeys() Option {
	return func(o *options) {
		o.systemKeys = true
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
