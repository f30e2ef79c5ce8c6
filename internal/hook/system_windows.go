//go:build windows

package hook

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procSetWindowsHookExW   = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procGetAsyncKeyState    = user32.NewProc("GetAsyncKeyState")
	procGetMessageW         = user32.NewProc("GetMessageW")
	procPeekMessageW        = user32.NewProc("PeekMessageW")
	procTranslateMessage    = user32.NewProc("TranslateMessage")
	procDispatchMessageW    = user32.NewProc("DispatchMessageW")
	procPostThreadMessageW  = user32.NewProc("PostThreadMessageW")
)

const (
	whKeyboardLL = 13
	whMouseLL    = 14

	wmQuit     = 0x0012
	pmNoRemove = 0x0000

	loopStopTimeout = 2 * time.Second
)

// kbdLLHookStruct mirrors KBDLLHOOKSTRUCT.
type kbdLLHookStruct struct {
	vkCode      uint32
	scanCode    uint32
	flags       uint32
	time        uint32
	dwExtraInfo uintptr
}

type point struct {
	x int32
	y int32
}

// msLLHookStruct mirrors MSLLHOOKSTRUCT.
type msLLHookStruct struct {
	pt          point
	mouseData   uint32
	flags       uint32
	time        uint32
	dwExtraInfo uintptr
}

// winMsg mirrors MSG. The layout must match the Win32 binary layout.
type winMsg struct {
	hWnd     uintptr
	message  uint32
	wParam   uintptr
	lParam   uintptr
	time     uint32
	pt       point
	lPrivate uint32
}

// The entry points are created once and never released, so the address
// handed to SetWindowsHookExW stays valid for the life of the process.
var (
	keyboardEntry = sync.OnceValue(func() uintptr { return syscall.NewCallback(keyboardProc) })
	pointerEntry  = sync.OnceValue(func() uintptr { return syscall.NewCallback(pointerProc) })
)

func keyboardProc(code int, wParam, lParam uintptr) uintptr {
	return DefaultRouter().DispatchKeyboard(int32(code), wParam, lParam)
}

func pointerProc(code int, wParam, lParam uintptr) uintptr {
	return DefaultRouter().DispatchPointer(int32(code), wParam, lParam)
}

// hookLoop is the OS-locked goroutine that owns one installed hook.
// Low-level hooks are called through the installing thread's message
// queue, so that thread must keep pumping messages.
type hookLoop struct {
	class    Class
	threadID uint32
	done     chan struct{}
	unhooked releaser
}

// unhook removes h once, whichever of the loop exit and Uninstall gets
// there first.
func (l *hookLoop) unhook(h Handle) error {
	return l.unhooked.release(func() error { return unhook(h) })
}

type loopReady struct {
	handle   Handle
	threadID uint32
	err      error
}

type winSystem struct {
	mu    sync.Mutex
	loops map[Handle]*hookLoop
}

func newPlatformSystem() System {
	return &winSystem{loops: make(map[Handle]*hookLoop)}
}

func (s *winSystem) Install(class Class) (Handle, error) {
	if err := user32.Load(); err != nil {
		return 0, fmt.Errorf("user32.dll is unavailable: %w", err)
	}

	var idHook int
	var entry uintptr
	switch class {
	case ClassKeyboard:
		idHook, entry = whKeyboardLL, keyboardEntry()
	case ClassPointer:
		idHook, entry = whMouseLL, pointerEntry()
	default:
		return 0, fmt.Errorf("unknown hook class %d", class)
	}

	loop := &hookLoop{class: class, done: make(chan struct{})}
	readyCh := make(chan loopReady, 1)
	go loop.run(idHook, entry, readyCh)

	ready := <-readyCh
	if ready.err != nil {
		return 0, ready.err
	}
	loop.threadID = ready.threadID

	s.mu.Lock()
	s.loops[ready.handle] = loop
	s.mu.Unlock()
	return ready.handle, nil
}

func (s *winSystem) Uninstall(h Handle) error {
	s.mu.Lock()
	loop, ok := s.loops[h]
	if ok && windows.GetCurrentThreadId() == loop.threadID {
		s.mu.Unlock()
		return ErrInCallback
	}
	delete(s.loops, h)
	s.mu.Unlock()
	if !ok {
		return nil
	}

	stopErr := postQuit(loop.threadID)
	if stopErr != nil {
		// Unhooking works from any thread; the loop goroutine is left to
		// exit with the process.
		if err := loop.unhook(h); err != nil {
			return errors.Join(stopErr, err)
		}
		return nil
	}

	timer := time.NewTimer(loopStopTimeout)
	defer timer.Stop()
	select {
	case <-loop.done:
		return loop.unhook(h)
	case <-timer.C:
		slog.Warn("[hook] message loop stop timed out, unhooking directly",
			"class", loop.class, "threadID", loop.threadID)
		return loop.unhook(h)
	}
}

func (s *winSystem) CallNext(h Handle, code int32, wParam, lParam uintptr) uintptr {
	ret, _, _ := procCallNextHookEx.Call(uintptr(h), uintptr(code), wParam, lParam)
	return ret
}

func (s *winSystem) KeyDown(vk uint32) bool {
	ret, _, _ := procGetAsyncKeyState.Call(uintptr(vk))
	return ret&0x8000 != 0
}

// KeyboardRecord copies the KBDLLHOOKSTRUCT behind lParam. A fault while
// reading is turned into ErrBadRecord rather than crashing the hook thread.
func (s *winSystem) KeyboardRecord(lParam uintptr) (rec KeyboardRecord, err error) {
	if lParam == 0 {
		return rec, ErrBadRecord
	}
	defer debug.SetPanicOnFault(debug.SetPanicOnFault(true))
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrBadRecord, r)
		}
	}()

	raw := *(*kbdLLHookStruct)(unsafe.Pointer(lParam))
	return KeyboardRecord{
		VKCode:   raw.vkCode,
		ScanCode: raw.scanCode,
		Flags:    raw.flags,
		Time:     raw.time,
	}, nil
}

// PointerRecord copies the MSLLHOOKSTRUCT behind lParam.
func (s *winSystem) PointerRecord(lParam uintptr) (rec PointerRecord, err error) {
	if lParam == 0 {
		return rec, ErrBadRecord
	}
	defer debug.SetPanicOnFault(debug.SetPanicOnFault(true))
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrBadRecord, r)
		}
	}()

	raw := *(*msLLHookStruct)(unsafe.Pointer(lParam))
	return PointerRecord{
		X:         raw.pt.x,
		Y:         raw.pt.y,
		MouseData: raw.mouseData,
		Flags:     raw.flags,
		Time:      raw.time,
	}, nil
}

func (l *hookLoop) run(idHook int, entry uintptr, readyCh chan<- loopReady) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(l.done)

	threadID := windows.GetCurrentThreadId()

	// PeekMessageW creates the thread message queue so PostThreadMessageW
	// in Uninstall can deliver WM_QUIT.
	var qmsg winMsg
	procPeekMessageW.Call(uintptr(unsafe.Pointer(&qmsg)), 0, 0, 0, pmNoRemove)

	var module windows.Handle
	if err := windows.GetModuleHandleEx(0, nil, &module); err != nil {
		readyCh <- loopReady{err: fmt.Errorf("GetModuleHandleEx: %w", err)}
		return
	}

	h, _, callErr := procSetWindowsHookExW.Call(uintptr(idHook), entry, uintptr(module), 0)
	if h == 0 {
		readyCh <- loopReady{err: fmt.Errorf("SetWindowsHookExW(%s): %w", l.class, lastError(callErr, "SetWindowsHookExW failed"))}
		return
	}
	readyCh <- loopReady{handle: Handle(h), threadID: threadID}

	defer func() {
		if err := l.unhook(Handle(h)); err != nil {
			slog.Error("[hook] UnhookWindowsHookEx on loop exit failed", "class", l.class, "error", err)
		}
	}()

	for {
		var msg winMsg
		ret, _, err := procGetMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
		switch int32(ret) {
		case -1:
			slog.Warn("[hook] GetMessageW failed, exiting loop", "class", l.class, "error", err)
			return
		case 0:
			return
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&msg)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&msg)))
	}
}

func unhook(h Handle) error {
	ret, _, err := procUnhookWindowsHookEx.Call(uintptr(h))
	if ret != 0 {
		return nil
	}
	return fmt.Errorf("UnhookWindowsHookEx: %w", lastError(err, "UnhookWindowsHookEx failed"))
}

func postQuit(threadID uint32) error {
	if threadID == 0 {
		return errors.New("cannot post WM_QUIT: threadID is 0")
	}
	ret, _, err := procPostThreadMessageW.Call(uintptr(threadID), wmQuit, 0, 0)
	if ret != 0 {
		return nil
	}
	return fmt.Errorf("PostThreadMessageW: %w", lastError(err, "PostThreadMessageW failed"))
}

func lastError(err error, fallback string) error {
	if errno, ok := err.(syscall.Errno); ok && errno == 0 {
		return errors.New(fallback)
	}
	if err == nil {
		return errors.New(fallback)
	}
	return err
}
