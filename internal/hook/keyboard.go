package hook

import "sync/atomic"

// Keyboard owns the low-level keyboard hook and its subscribers.
type Keyboard struct {
	installer

	down atomic.Pointer[[]KeyHandler]
	up   atomic.Pointer[[]KeyHandler]
}

// NewKeyboard creates an uninstalled keyboard hook routed through r.
func NewKeyboard(r *Router, opts ...Option) *Keyboard {
	k := &Keyboard{}
	k.init(ClassKeyboard, r, opts)
	return k
}

// Install registers the hook with the OS. Installing an installed
// instance is a no-op; installing while another Keyboard owns the hook
// fails with ErrAlreadyInstalled.
func (k *Keyboard) Install() error {
	return k.install(k)
}

// Uninstall removes the hook. It is safe to call when not installed.
// It must not be called from a subscriber.
func (k *Keyboard) Uninstall() error {
	return k.uninstall(k)
}

// OnKeyDown subscribes h to key presses. Subscribers run in the order they
// were added, on the OS hook thread.
func (k *Keyboard) OnKeyDown(h KeyHandler) {
	if h != nil {
		appendHandler(&k.down, &k.mu, h)
	}
}

// OnKeyUp subscribes h to key releases.
func (k *Keyboard) OnKeyUp(h KeyHandler) {
	if h != nil {
		appendHandler(&k.up, &k.mu, h)
	}
}

func (k *Keyboard) classify(wParam uintptr) (Direction, bool) {
	switch wParam {
	case wmKeyDown:
		return Pressed, true
	case wmKeyUp:
		return Released, true
	case wmSysKeyDown:
		return Pressed, k.opts.systemKeys
	case wmSysKeyUp:
		return Released, k.opts.systemKeys
	}
	return 0, false
}

// process builds the event for one callback and fans it out. It reports
// whether any subscriber asked to suppress the key.
func (k *Keyboard) process(wParam, lParam uintptr) (suppress bool) {
	defer func() {
		if r := recover(); r != nil {
			k.faults.Add(1)
			k.opts.logger.Error("[hook] keyboard callback panicked", "panic", r)
			suppress = false
		}
	}()

	dir, ok := k.classify(wParam)
	if !ok {
		return false
	}

	rec, err := k.router.sys.KeyboardRecord(lParam)
	if err != nil {
		k.badRecords.Add(1)
		k.opts.logger.Debug("[hook] skipping unreadable keyboard record", "error", err)
		return false
	}

	ev := KeyEvent{
		VirtualKey: rec.VKCode,
		Modifiers:  CurrentModifiers(k.router.sys),
		Direction:  dir,
		ScanCode:   rec.ScanCode,
		Injected:   rec.Flags&llkhfInjected != 0,
		Time:       rec.Time,
	}

	handlers := loadHandlers(&k.down)
	if dir == Released {
		handlers = loadHandlers(&k.up)
	}

	k.dispatched.Add(1)
	for i, h := range handlers {
		k.invoke(i, func() { h(&ev) })
		if ev.Suppress {
			suppress = true
		}
	}
	if suppress {
		k.suppressed.Add(1)
	}
	return suppress
}
