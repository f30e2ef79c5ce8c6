package hook

import "sync/atomic"

// Pointer owns the low-level pointer hook and its motion subscribers.
type Pointer struct {
	installer

	move atomic.Pointer[[]PointerHandler]
}

// NewPointer creates an uninstalled pointer hook routed through r.
func NewPointer(r *Router, opts ...Option) *Pointer {
	p := &Pointer{}
	p.init(ClassPointer, r, opts)
	return p
}

// Install registers the hook with the OS.
func (p *Pointer) Install() error {
	return p.install(p)
}

// Uninstall removes the hook. It is safe to call when not installed.
func (p *Pointer) Uninstall() error {
	return p.uninstall(p)
}

// OnMove subscribes h to pointer motion.
func (p *Pointer) OnMove(h PointerHandler) {
	if h != nil {
		appendHandler(&p.move, &p.mu, h)
	}
}

func (p *Pointer) process(wParam, lParam uintptr) {
	defer func() {
		if r := recover(); r != nil {
			p.faults.Add(1)
			p.opts.logger.Error("[hook] pointer callback panicked", "panic", r)
		}
	}()

	if wParam != wmMouseMove {
		return
	}
	rec, err := p.router.sys.PointerRecord(lParam)
	if err != nil {
		p.badRecords.Add(1)
		p.opts.logger.Debug("[hook] skipping unreadable pointer record", "error", err)
		return
	}

	ev := PointerEvent{X: rec.X, Y: rec.Y}
	p.dispatched.Add(1)
	for i, h := range loadHandlers(&p.move) {
		p.invoke(i, func() { h(ev) })
	}
}
