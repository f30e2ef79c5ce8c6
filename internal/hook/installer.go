package hook

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// Stats counts what an instance's callback has done since it was created.
type Stats struct {
	Dispatched uint64
	Suppressed uint64
	Faults     uint64
	BadRecords uint64
}

// installer holds the handle lifecycle and dispatch bookkeeping shared by
// Keyboard and Pointer.
type installer struct {
	class  Class
	router *Router
	opts   options

	mu     sync.Mutex // serializes Install/Uninstall and subscription
	handle atomic.Uintptr

	dispatched atomic.Uint64
	suppressed atomic.Uint64
	faults     atomic.Uint64
	badRecords atomic.Uint64
}

func (b *installer) init(class Class, r *Router, opts []Option) {
	b.class = class
	b.router = r
	b.opts = buildOptions(opts)
}

// Class returns the event class this instance hooks.
func (b *installer) Class() Class {
	return b.class
}

// Handle returns the OS handle, or zero when not installed.
func (b *installer) Handle() Handle {
	return Handle(b.handle.Load())
}

// Installed reports whether the hook is currently registered with the OS.
func (b *installer) Installed() bool {
	return b.Handle() != 0
}

// Stats returns a snapshot of the dispatch counters.
func (b *installer) Stats() Stats {
	return Stats{
		Dispatched: b.dispatched.Load(),
		Suppressed: b.suppressed.Load(),
		Faults:     b.faults.Load(),
		BadRecords: b.badRecords.Load(),
	}
}

func (b *installer) install(self Instance) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.Installed() {
		return nil
	}
	if err := b.router.Register(self); err != nil {
		return fmt.Errorf("install %s hook: %w", b.class, err)
	}

	h, err := b.router.sys.Install(b.class)
	if err != nil || h == 0 {
		b.router.Release(self)
		if err == nil {
			err = errors.New("OS returned a null hook handle")
		}
		return fmt.Errorf("install %s hook: %w", b.class, err)
	}
	b.handle.Store(uintptr(h))
	b.opts.logger.Info("[hook] installed", "class", b.class, "handle", uintptr(h))
	return nil
}

func (b *installer) uninstall(self Instance) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	h := b.Handle()
	if h == 0 {
		return nil
	}

	err := b.router.sys.Uninstall(h)
	if errors.Is(err, ErrInCallback) {
		return err
	}
	// The handle is surrendered even when the OS reports a failure: it is
	// never retried, so a second Uninstall stays a no-op.
	b.handle.Store(0)
	b.router.Release(self)
	if err != nil {
		b.opts.logger.Warn("[hook] uninstall reported an error", "class", b.class, "error", err)
		return fmt.Errorf("uninstall %s hook: %w", b.class, err)
	}
	b.opts.logger.Info("[hook] uninstalled", "class", b.class)
	return nil
}

// invoke runs one subscriber, converting a panic into a reported Fault so
// the callback always returns to the OS.
func (b *installer) invoke(idx int, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			b.faults.Add(1)
			f := Fault{Class: b.class, Subscriber: idx, Value: r, Stack: debug.Stack()}
			b.opts.logger.Error("[hook] subscriber panicked",
				"class", b.class, "subscriber", idx, "panic", r)
			b.reportFault(f)
		}
	}()
	fn()
}

func (b *installer) reportFault(f Fault) {
	if b.opts.onFault == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			b.opts.logger.Error("[hook] fault handler panicked", "class", b.class, "panic", r)
		}
	}()
	b.opts.onFault(f)
}

// appendHandler copy-on-writes a subscriber list so dispatch can read a
// snapshot without locking.
func appendHandler[H any](list *atomic.Pointer[[]H], mu *sync.Mutex, h H) {
	mu.Lock()
	defer mu.Unlock()

	var next []H
	if cur := list.Load(); cur != nil {
		next = make([]H, len(*cur), len(*cur)+1)
		copy(next, *cur)
	}
	next = append(next, h)
	list.Store(&next)
}

func loadHandlers[H any](list *atomic.Pointer[[]H]) []H {
	if cur := list.Load(); cur != nil {
		return *cur
	}
	return nil
}
