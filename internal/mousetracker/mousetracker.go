// Package mousetracker turns pointer hook events into movements with the
// distance travelled since the previous sample.
package mousetracker

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/aayushbajaj/hooktrace/internal/hook"
)

// DefaultBuffer is the movement channel capacity used when buffer is 0.
const DefaultBuffer = 1000

// DefaultPPI is the pixel density assumed when converting distances.
const DefaultPPI = 100.0

// Movement is a pointer position with the Euclidean distance from the
// previous one.
type Movement struct {
	X, Y     int32
	Distance float64
}

// Tracker subscribes to a Pointer and forwards movements. Like the hook
// thread it runs on, it never blocks: movements that do not fit in the
// channel are dropped.
type Tracker struct {
	mu           sync.Mutex
	ch           chan Movement
	out          <-chan Movement
	lastX, lastY int32
	initialized  bool
	total        float64
	dropped      atomic.Uint64
}

// Attach subscribes a new Tracker to p's motion events.
func Attach(p *hook.Pointer, buffer int) *Tracker {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	t := &Tracker{ch: make(chan Movement, buffer)}
	t.out = t.ch
	p.OnMove(t.handle)
	return t
}

// Movements returns the channel movements are delivered on. It is closed
// by Stop.
func (t *Tracker) Movements() <-chan Movement {
	return t.out
}

// Dropped returns how many movements were discarded because the channel
// was full.
func (t *Tracker) Dropped() uint64 {
	return t.dropped.Load()
}

// Total returns the distance travelled since the tracker was attached or
// last reset, in pixels.
func (t *Tracker) Total() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// Reset forgets the last position and the running total. The next sample
// starts a new path.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.initialized = false
	t.total = 0
}

// Stop closes the movement channel.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ch != nil {
		close(t.ch)
		t.ch = nil
	}
	t.initialized = false
}

func (t *Tracker) handle(ev hook.PointerEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ch == nil {
		return
	}

	first := !t.initialized
	var distance float64
	if !first {
		dx := float64(ev.X) - float64(t.lastX)
		dy := float64(ev.Y) - float64(t.lastY)
		distance = math.Sqrt(dx*dx + dy*dy)
	}
	t.initialized = true
	t.lastX, t.lastY = ev.X, ev.Y

	// The first sample carries the starting position; later ones are only
	// sent when the pointer actually moved.
	if !first && distance == 0 {
		return
	}
	t.total += distance

	select {
	case t.ch <- Movement{X: ev.X, Y: ev.Y, Distance: distance}:
	default:
		t.dropped.Add(1)
	}
}

// PixelsToInches converts a pixel distance using ppi, or DefaultPPI when
// ppi is not positive.
func PixelsToInches(pixels, ppi float64) float64 {
	if ppi <= 0 {
		ppi = DefaultPPI
	}
	return pixels / ppi
}

// PixelsToFeet converts a pixel distance to feet.
func PixelsToFeet(pixels, ppi float64) float64 {
	return PixelsToInches(pixels, ppi) / 12.0
}
