package hook

import "sync"

// releaser runs a release function at most once and keeps its result, so
// every caller sees the outcome of the single real call.
type releaser struct {
	once sync.Once
	err  error
}

func (r *releaser) release(fn func() error) error {
	r.once.Do(func() { r.err = fn() })
	return r.err
}
