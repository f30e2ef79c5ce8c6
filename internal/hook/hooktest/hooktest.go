// Package hooktest provides an in-memory hook.System for testing code that
// subscribes to keyboard and pointer hooks.
package hooktest

import (
	"sync"

	"github.com/aayushbajaj/hooktrace/internal/hook"
)

const (
	wmKeyDown   = 0x0100
	wmKeyUp     = 0x0101
	wmMouseMove = 0x0200
)

// Forwarded is what the fake next hook returns.
const Forwarded = 0

// Consumed is what a keyboard callback returns when a subscriber
// suppressed the event.
const Consumed = 1

// System is a fake OS hook API. Callbacks are simulated with Press,
// Release and Move, which go through the Router exactly as the OS entry
// points do.
type System struct {
	mu       sync.Mutex
	next     hook.Handle
	live     map[hook.Handle]hook.Class
	held     map[uint32]bool
	seq      uintptr
	keyboard map[uintptr]hook.KeyboardRecord
	pointer  map[uintptr]hook.PointerRecord
	nexts    int

	// InstallErr, when set, fails every Install.
	InstallErr error
}

// New returns an empty fake System.
func New() *System {
	return &System{
		next:     0x100,
		live:     make(map[hook.Handle]hook.Class),
		held:     make(map[uint32]bool),
		keyboard: make(map[uintptr]hook.KeyboardRecord),
		pointer:  make(map[uintptr]hook.PointerRecord),
	}
}

// NewRouter returns a fake System and a Router bound to it.
func NewRouter() (*System, *hook.Router) {
	s := New()
	return s, hook.NewRouter(s)
}

func (s *System) Install(class hook.Class) (hook.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.InstallErr != nil {
		return 0, s.InstallErr
	}
	s.next++
	s.live[s.next] = class
	return s.next, nil
}

func (s *System) Uninstall(h hook.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.live, h)
	return nil
}

func (s *System) CallNext(hook.Handle, int32, uintptr, uintptr) uintptr {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nexts++
	return Forwarded
}

func (s *System) KeyDown(vk uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held[vk]
}

func (s *System) KeyboardRecord(lParam uintptr) (hook.KeyboardRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.keyboard[lParam]
	if !ok {
		return rec, hook.ErrBadRecord
	}
	return rec, nil
}

func (s *System) PointerRecord(lParam uintptr) (hook.PointerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.pointer[lParam]
	if !ok {
		return rec, hook.ErrBadRecord
	}
	return rec, nil
}

// Live returns how many hooks of class c are installed.
func (s *System) Live(c hook.Class) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, lc := range s.live {
		if lc == c {
			n++
		}
	}
	return n
}

// NextCalls returns how many events were passed down the hook chain.
func (s *System) NextCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nexts
}

// Hold sets the live state of a key, as seen by modifier resolution.
func (s *System) Hold(vk uint32, down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held[vk] = down
}

// Press simulates a key-down callback and returns the callback result.
func (s *System) Press(r *hook.Router, vk uint32) uintptr {
	return r.DispatchKeyboard(0, wmKeyDown, s.keyRecord(vk))
}

// Release simulates a key-up callback and returns the callback result.
func (s *System) Release(r *hook.Router, vk uint32) uintptr {
	return r.DispatchKeyboard(0, wmKeyUp, s.keyRecord(vk))
}

// Move simulates a pointer motion callback.
func (s *System) Move(r *hook.Router, x, y int32) uintptr {
	s.mu.Lock()
	s.seq++
	lParam := s.seq
	s.pointer[lParam] = hook.PointerRecord{X: x, Y: y}
	s.mu.Unlock()
	return r.DispatchPointer(0, wmMouseMove, lParam)
}

func (s *System) keyRecord(vk uint32) uintptr {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.keyboard[s.seq] = hook.KeyboardRecord{VKCode: vk}
	return s.seq
}
