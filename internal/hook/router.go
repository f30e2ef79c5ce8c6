package hook

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// Instance is an installable hook owner registered with a Router.
type Instance interface {
	Class() Class
	Handle() Handle
}

type slot struct {
	inst Instance
}

// Router maps each event class to the instance that currently owns its
// hook. The OS callback carries no context pointer, so the stable entry
// points look their owner up here.
//
// Writes are serialized; reads from the callback are lock-free.
type Router struct {
	sys System

	mu    sync.Mutex
	slots [numClasses]atomic.Pointer[slot]
}

// NewRouter returns a Router that installs hooks through sys.
// Tests pass a fake System and drive the dispatch methods directly.
//
// A class of sys has one owner across every Router built on it. The
// platform System is private to DefaultRouter, since its entry points
// always dispatch there.
func NewRouter(sys System) *Router {
	return &Router{sys: sys}
}

var defaultRouter = sync.OnceValue(func() *Router {
	return NewRouter(newPlatformSystem())
})

// DefaultRouter returns the process-wide Router bound to the platform's
// hook API. The platform entry points dispatch through it.
func DefaultRouter() *Router {
	return defaultRouter()
}

type claimKey struct {
	sys   System
	class Class
}

// claims records which Router owns each class of each System.
var claims = struct {
	sync.Mutex
	m map[claimKey]*Router
}{m: make(map[claimKey]*Router)}

// claim takes class c of r's System for r. Systems whose dynamic type
// cannot be a map key are not tracked.
func (r *Router) claim(c Class) bool {
	if !reflect.TypeOf(r.sys).Comparable() {
		return true
	}
	key := claimKey{sys: r.sys, class: c}
	claims.Lock()
	defer claims.Unlock()
	if owner, ok := claims.m[key]; ok && owner != r {
		return false
	}
	claims.m[key] = r
	return true
}

func (r *Router) unclaim(c Class) {
	if !reflect.TypeOf(r.sys).Comparable() {
		return
	}
	key := claimKey{sys: r.sys, class: c}
	claims.Lock()
	defer claims.Unlock()
	if claims.m[key] == r {
		delete(claims.m, key)
	}
}

// Register makes inst the owner of its class. It fails with
// ErrAlreadyInstalled if a different instance already owns the class,
// here or on another Router sharing the System. Registering the current
// owner again is a no-op.
func (r *Router) Register(inst Instance) error {
	c := inst.Class()
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur := r.slots[c].Load(); cur != nil {
		if cur.inst == inst {
			return nil
		}
		return ErrAlreadyInstalled
	}
	if !r.claim(c) {
		return ErrAlreadyInstalled
	}
	r.slots[c].Store(&slot{inst: inst})
	return nil
}

// Release clears inst's class if inst is its current owner and reports
// whether it did.
func (r *Router) Release(inst Instance) bool {
	c := inst.Class()
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.slots[c].Load()
	if cur == nil || cur.inst != inst {
		return false
	}
	r.slots[c].Store(nil)
	r.unclaim(c)
	return true
}

// Current returns the owner of class c, or nil.
func (r *Router) Current(c Class) Instance {
	if c < 0 || c >= numClasses {
		return nil
	}
	if s := r.slots[c].Load(); s != nil {
		return s.inst
	}
	return nil
}

// forward passes an event down the hook chain using the current owner's
// handle, or a null handle when the class has no owner.
func (r *Router) forward(c Class, code int32, wParam, lParam uintptr) uintptr {
	var h Handle
	if inst := r.Current(c); inst != nil {
		h = inst.Handle()
	}
	return r.sys.CallNext(h, code, wParam, lParam)
}

// DispatchKeyboard is the body of the keyboard hook callback. It returns 1
// when a subscriber consumed the event and the next hook's result otherwise.
func (r *Router) DispatchKeyboard(code int32, wParam, lParam uintptr) uintptr {
	if code >= 0 {
		if kb, ok := r.Current(ClassKeyboard).(*Keyboard); ok && kb.process(wParam, lParam) {
			return 1
		}
	}
	return r.forward(ClassKeyboard, code, wParam, lParam)
}

// DispatchPointer is the body of the pointer hook callback. Motion is
// never consumed.
func (r *Router) DispatchPointer(code int32, wParam, lParam uintptr) uintptr {
	if code >= 0 {
		if p, ok := r.Current(ClassPointer).(*Pointer); ok {
			p.process(wParam, lParam)
		}
	}
	return r.forward(ClassPointer, code, wParam, lParam)
}
