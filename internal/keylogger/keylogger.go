// Package keylogger turns keyboard hook events into timestamped log
// entries delivered over a channel.
package keylogger

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aayushbajaj/hooktrace/internal/hook"
	"github.com/aayushbajaj/hooktrace/internal/vkey"
)

// DefaultBuffer is the entry channel capacity used when Options.Buffer is 0.
const DefaultBuffer = 1000

// Entry is one logged key transition.
type Entry struct {
	Time       time.Time
	Direction  hook.Direction
	VirtualKey uint32
	Modifiers  hook.Modifiers
	Blocked    bool
	Injected   bool
}

// String renders the entry as "[15:04:05.000] DOWN: Ctrl+A".
func (e Entry) String() string {
	s := fmt.Sprintf("[%s] %s: %s", e.Time.Format("15:04:05.000"), e.Direction, vkey.Format(e.VirtualKey, e.Modifiers))
	if e.Blocked {
		s += " (blocked)"
	}
	return s
}

// Options configures a Keylogger.
type Options struct {
	// Block lists virtual keys whose events are suppressed.
	Block []uint32
	// Buffer is the entry channel capacity.
	Buffer int
	// SkipRepeats drops auto-repeat key-downs while a key is held.
	SkipRepeats bool
	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

// Keylogger subscribes to a Keyboard and forwards entries without ever
// blocking the hook thread: when the channel is full the entry is dropped.
type Keylogger struct {
	block       map[uint32]struct{}
	skipRepeats bool
	now         func() time.Time

	mu      sync.Mutex
	ch      chan Entry
	out     <-chan Entry
	held    map[uint32]bool
	dropped atomic.Uint64
}

// Attach subscribes a new Keylogger to kb's key-down and key-up events.
func Attach(kb *hook.Keyboard, opts Options) *Keylogger {
	if opts.Buffer <= 0 {
		opts.Buffer = DefaultBuffer
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	l := &Keylogger{
		block:       make(map[uint32]struct{}, len(opts.Block)),
		skipRepeats: opts.SkipRepeats,
		now:         opts.Now,
		ch:          make(chan Entry, opts.Buffer),
		held:        make(map[uint32]bool),
	}
	l.out = l.ch
	for _, vk := range opts.Block {
		l.block[vk] = struct{}{}
	}

	kb.OnKeyDown(l.handle)
	kb.OnKeyUp(l.handle)
	return l
}

// Entries returns the channel entries are delivered on. It is closed by Stop.
func (l *Keylogger) Entries() <-chan Entry {
	return l.out
}

// Dropped returns how many entries were discarded because the channel
// was full.
func (l *Keylogger) Dropped() uint64 {
	return l.dropped.Load()
}

// Stop closes the entry channel. Events arriving afterwards are ignored
// and no longer blocked.
func (l *Keylogger) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ch != nil {
		close(l.ch)
		l.ch = nil
	}
}

// Reset forgets which keys are held. Call it when the hook is removed, since
// releases that happen while unhooked are never seen.
func (l *Keylogger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.held)
}

func (l *Keylogger) handle(ev *hook.KeyEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ch == nil {
		return
	}

	_, blocked := l.block[ev.VirtualKey]
	if blocked {
		ev.Suppress = true
	}

	if ev.Direction == hook.Released {
		delete(l.held, ev.VirtualKey)
	} else {
		repeat := l.held[ev.VirtualKey]
		l.held[ev.VirtualKey] = true
		if repeat && l.skipRepeats {
			return
		}
	}

	entry := Entry{
		Time:       l.now(),
		Direction:  ev.Direction,
		VirtualKey: ev.VirtualKey,
		Modifiers:  ev.Modifiers,
		Blocked:    blocked,
		Injected:   ev.Injected,
	}
	select {
	case l.ch <- entry:
	default:
		l.dropped.Add(1)
	}
}
