// Package vkey names Windows virtual-key codes.
package vkey

import (
	"sort"
	"strconv"
	"strings"

	"github.com/aayushbajaj/hooktrace/internal/hook"
	"github.com/sahilm/fuzzy"
)

// Key is a named virtual-key code.
type Key struct {
	Code uint32
	Name string
}

var names = map[uint32]string{
	0x01: "LButton",
	0x02: "RButton",
	0x03: "Cancel",
	0x04: "MButton",
	0x05: "XButton1",
	0x06: "XButton2",
	0x08: "Back",
	0x09: "Tab",
	0x0C: "Clear",
	0x0D: "Return",
	0x10: "ShiftKey",
	0x11: "ControlKey",
	0x12: "Menu",
	0x13: "Pause",
	0x14: "Capital",
	0x1B: "Escape",
	0x1C: "IMEConvert",
	0x1D: "IMENonconvert",
	0x20: "Space",
	0x21: "PageUp",
	0x22: "Next",
	0x23: "End",
	0x24: "Home",
	0x25: "Left",
	0x26: "Up",
	0x27: "Right",
	0x28: "Down",
	0x29: "Select",
	0x2A: "Print",
	0x2B: "Execute",
	0x2C: "PrintScreen",
	0x2D: "Insert",
	0x2E: "Delete",
	0x2F: "Help",
	0x5B: "LWin",
	0x5C: "RWin",
	0x5D: "Apps",
	0x5F: "Sleep",
	0x6A: "Multiply",
	0x6B: "Add",
	0x6C: "Separator",
	0x6D: "Subtract",
	0x6E: "Decimal",
	0x6F: "Divide",
	0x90: "NumLock",
	0x91: "Scroll",
	0xA0: "LShiftKey",
	0xA1: "RShiftKey",
	0xA2: "LControlKey",
	0xA3: "RControlKey",
	0xA4: "LMenu",
	0xA5: "RMenu",
	0xA6: "BrowserBack",
	0xA7: "BrowserForward",
	0xA8: "BrowserRefresh",
	0xA9: "BrowserStop",
	0xAA: "BrowserSearch",
	0xAB: "BrowserFavorites",
	0xAC: "BrowserHome",
	0xAD: "VolumeMute",
	0xAE: "VolumeDown",
	0xAF: "VolumeUp",
	0xB0: "MediaNextTrack",
	0xB1: "MediaPreviousTrack",
	0xB2: "MediaStop",
	0xB3: "MediaPlayPause",
	0xB4: "LaunchMail",
	0xB5: "SelectMedia",
	0xB6: "LaunchApplication1",
	0xB7: "LaunchApplication2",
	0xBA: "Oem1",
	0xBB: "Oemplus",
	0xBC: "Oemcomma",
	0xBD: "OemMinus",
	0xBE: "OemPeriod",
	0xBF: "OemQuestion",
	0xC0: "Oemtilde",
	0xDB: "OemOpenBrackets",
	0xDC: "OemPipe",
	0xDD: "OemCloseBrackets",
	0xDE: "OemQuotes",
	0xDF: "Oem8",
	0xE2: "OemBackslash",
	0xE5: "ProcessKey",
	0xF6: "Attn",
	0xF7: "Crsel",
	0xF8: "Exsel",
	0xF9: "EraseEof",
	0xFA: "Play",
	0xFB: "Zoom",
	0xFD: "Pa1",
	0xFE: "OemClear",
}

// byName holds lowercased names, plus a few common aliases.
var byName map[string]uint32

// sorted is the key table ordered by code.
var sorted []Key

func init() {
	for c := 'A'; c <= 'Z'; c++ {
		names[uint32(c)] = string(c)
	}
	for d := uint32(0); d <= 9; d++ {
		names[0x30+d] = "D" + strconv.Itoa(int(d))
		names[0x60+d] = "NumPad" + strconv.Itoa(int(d))
	}
	for f := uint32(1); f <= 24; f++ {
		names[0x6F+f] = "F" + strconv.Itoa(int(f))
	}

	byName = make(map[string]uint32, len(names)+8)
	sorted = make([]Key, 0, len(names))
	for code, name := range names {
		byName[strings.ToLower(name)] = code
		sorted = append(sorted, Key{Code: code, Name: name})
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Code < sorted[j].Code })

	for alias, code := range map[string]uint32{
		"enter":     0x0D,
		"esc":       0x1B,
		"backspace": 0x08,
		"capslock":  0x14,
		"pagedown":  0x22,
		"ctrl":      0x11,
		"alt":       0x12,
		"shift":     0x10,
	} {
		byName[alias] = code
	}
}

// Name returns the display name of vk. Codes without a name render as
// their decimal value.
func Name(vk uint32) string {
	if n, ok := names[vk]; ok {
		return n
	}
	return strconv.FormatUint(uint64(vk), 10)
}

// Format renders a key with its held modifiers, for example "Ctrl+Shift+A".
func Format(vk uint32, mods hook.Modifiers) string {
	if mods == hook.ModNone {
		return Name(vk)
	}
	return mods.String() + "+" + Name(vk)
}

// Lookup resolves a key name (case-insensitive), a common alias, or a
// numeric code in decimal or 0x-prefixed hex.
func Lookup(name string) (uint32, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, false
	}
	if code, ok := byName[strings.ToLower(name)]; ok {
		return code, true
	}
	if n, err := strconv.ParseUint(name, 0, 8); err == nil && n > 0 {
		return uint32(n), true
	}
	return 0, false
}

// All returns every named key ordered by code.
func All() []Key {
	out := make([]Key, len(sorted))
	copy(out, sorted)
	return out
}

type keySource []Key

func (s keySource) String(i int) string { return s[i].Name }
func (s keySource) Len() int            { return len(s) }

// Search fuzzy-matches query against key names, best match first.
// An empty query returns every key.
func Search(query string) []Key {
	if strings.TrimSpace(query) == "" {
		return All()
	}
	matches := fuzzy.FindFrom(query, keySource(sorted))
	out := make([]Key, 0, len(matches))
	for _, m := range matches {
		out = append(out, sorted[m.Index])
	}
	return out
}
