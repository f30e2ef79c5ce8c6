package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aayushbajaj/hooktrace/internal/config"
	"github.com/aayushbajaj/hooktrace/internal/hook"
	"github.com/aayushbajaj/hooktrace/internal/keylogger"
	"github.com/aayushbajaj/hooktrace/internal/mousetracker"
)

// capture owns the hooks and the feeds attached to them. It satisfies
// tui.Toggler.
type capture struct {
	kb  *hook.Keyboard
	ptr *hook.Pointer

	keys   *keylogger.Keylogger
	moves  *mousetracker.Tracker
	logger *slog.Logger
}

func newCapture(r *hook.Router, cfg *config.Config, logger *slog.Logger) (*capture, error) {
	block, err := cfg.BlockedKeys()
	if err != nil {
		return nil, err
	}

	opts := []hook.Option{
		hook.WithLogger(logger),
		hook.WithFaultHandler(func(f hook.Fault) {
			logger.Error("[capture] subscriber fault", "class", f.Class, "subscriber", f.Subscriber, "stack", string(f.Stack))
		}),
	}
	if cfg.SystemKeys {
		opts = append(opts, hook.WithSystemKeys())
	}

	c := &capture{logger: logger}
	if cfg.Keyboard {
		c.kb = hook.NewKeyboard(r, opts...)
		c.keys = keylogger.Attach(c.kb, keylogger.Options{
			Block:       block,
			Buffer:      cfg.Buffer,
			SkipRepeats: cfg.SkipRepeats,
		})
	}
	if cfg.Pointer {
		c.ptr = hook.NewPointer(r, opts...)
		c.moves = mousetracker.Attach(c.ptr, cfg.Buffer)
	}
	return c, nil
}

// Enable installs every configured hook. If one fails, the others are
// removed again so capture is all or nothing.
func (c *capture) Enable() error {
	if c.kb != nil {
		if err := c.kb.Install(); err != nil {
			return err
		}
	}
	if c.ptr != nil {
		if err := c.ptr.Install(); err != nil {
			if c.kb != nil {
				if uerr := c.kb.Uninstall(); uerr != nil {
					err = errors.Join(err, uerr)
				}
			}
			return err
		}
	}
	c.logger.Info("[capture] enabled")
	return nil
}

// Disable removes every installed hook.
func (c *capture) Disable() error {
	var errs []error
	if c.kb != nil {
		if err := c.kb.Uninstall(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.ptr != nil {
		if err := c.ptr.Uninstall(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.keys != nil {
		c.keys.Reset()
	}
	c.logger.Info("[capture] disabled")
	return errors.Join(errs...)
}

// Enabled reports whether any hook is installed.
func (c *capture) Enabled() bool {
	return (c.kb != nil && c.kb.Installed()) || (c.ptr != nil && c.ptr.Installed())
}

func (c *capture) entries() <-chan keylogger.Entry {
	if c.keys == nil {
		return nil
	}
	return c.keys.Entries()
}

func (c *capture) movements() <-chan mousetracker.Movement {
	if c.moves == nil {
		return nil
	}
	return c.moves.Movements()
}

// Close disables capture and closes the feeds.
func (c *capture) Close() error {
	err := c.Disable()
	if c.keys != nil {
		c.keys.Stop()
		if n := c.keys.Dropped(); n > 0 {
			c.logger.Warn("[capture] keystroke entries dropped", "count", n)
		}
	}
	if c.moves != nil {
		c.moves.Stop()
		if n := c.moves.Dropped(); n > 0 {
			c.logger.Warn("[capture] pointer movements dropped", "count", n)
		}
	}
	if err != nil {
		return fmt.Errorf("close capture: %w", err)
	}
	return nil
}

// stats returns the hook counters for the configured classes.
func (c *capture) stats() (kb, ptr hook.Stats) {
	if c.kb != nil {
		kb = c.kb.Stats()
	}
	if c.ptr != nil {
		ptr = c.ptr.Stats()
	}
	return kb, ptr
}
