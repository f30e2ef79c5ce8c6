package hook

import "strings"

// Modifiers is the set of modifier keys held while a key event occurred.
type Modifiers uint8

const (
	ModNone    Modifiers = 0
	ModAlt     Modifiers = 1
	ModControl Modifiers = 2
	ModShift   Modifiers = 4
	ModWin     Modifiers = 8
)

// Virtual key codes read by CurrentModifiers.
const (
	vkShift   = 0x10
	vkControl = 0x11
	vkMenu    = 0x12
	vkLWin    = 0x5B
	vkRWin    = 0x5C
)

// Has reports whether every modifier in mod is set.
func (m Modifiers) Has(mod Modifiers) bool {
	return m&mod == mod
}

// String renders the set as "Ctrl+Alt+Shift+Win", in that order.
func (m Modifiers) String() string {
	if m == ModNone {
		return ""
	}
	var parts []string
	if m.Has(ModControl) {
		parts = append(parts, "Ctrl")
	}
	if m.Has(ModAlt) {
		parts = append(parts, "Alt")
	}
	if m.Has(ModShift) {
		parts = append(parts, "Shift")
	}
	if m.Has(ModWin) {
		parts = append(parts, "Win")
	}
	return strings.Join(parts, "+")
}

// CurrentModifiers queries the live key state for Shift, Control, Alt and
// both Windows keys. The raw keyboard record carries no modifier state, so
// this is a point-in-time read that can race slightly with the event itself.
func CurrentModifiers(ks KeyStater) Modifiers {
	var m Modifiers
	if ks.KeyDown(vkControl) {
		m |= ModControl
	}
	if ks.KeyDown(vkMenu) {
		m |= ModAlt
	}
	if ks.KeyDown(vkShift) {
		m |= ModShift
	}
	if ks.KeyDown(vkLWin) || ks.KeyDown(vkRWin) {
		m |= ModWin
	}
	return m
}
