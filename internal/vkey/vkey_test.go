package vkey

import (
	"testing"

	"github.com/aayushbajaj/hooktrace/internal/hook"
)

func TestName(t *testing.T) {
	tests := []struct {
		vk   uint32
		want string
	}{
		{0x41, "A"},
		{0x5A, "Z"},
		{0x30, "D0"},
		{0x39, "D9"},
		{0x1B, "Escape"},
		{0x0D, "Return"},
		{0x20, "Space"},
		{0x70, "F1"},
		{0x87, "F24"},
		{0x60, "NumPad0"},
		{0xA0, "LShiftKey"},
		{0x5B, "LWin"},
		{0x07, "7"},
		{0xFF, "255"},
	}

	for _, tt := range tests {
		if got := Name(tt.vk); got != tt.want {
			t.Errorf("Name(%#x) = %q, want %q", tt.vk, got, tt.want)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		vk   uint32
		mods hook.Modifiers
		want string
	}{
		{"no modifiers", 0x41, hook.ModNone, "A"},
		{"control", 0x41, hook.ModControl, "Ctrl+A"},
		{"shift", 0x41, hook.ModShift, "Shift+A"},
		{"all in canonical order", 0x1B, hook.ModWin | hook.ModShift | hook.ModAlt | hook.ModControl, "Ctrl+Alt+Shift+Win+Escape"},
		{"alt and win", 0x09, hook.ModAlt | hook.ModWin, "Alt+Win+Tab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.vk, tt.mods); got != tt.want {
				t.Errorf("Format = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name   string
		want   uint32
		wantOK bool
	}{
		{"A", 0x41, true},
		{"a", 0x41, true},
		{"escape", 0x1B, true},
		{"Esc", 0x1B, true},
		{"enter", 0x0D, true},
		{"  F12 ", 0x7B, true},
		{"0x1B", 0x1B, true},
		{"65", 0x41, true},
		{"", 0, false},
		{"0", 0, false},
		{"256", 0, false},
		{"nosuchkey", 0, false},
	}

	for _, tt := range tests {
		got, ok := Lookup(tt.name)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Lookup(%q) = (%#x, %v), want (%#x, %v)", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestAllIsSortedAndComplete(t *testing.T) {
	all := All()
	if len(all) != len(names) {
		t.Fatalf("All returned %d keys, want %d", len(all), len(names))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Code >= all[i].Code {
			t.Fatalf("All not sorted at %d: %#x then %#x", i, all[i-1].Code, all[i].Code)
		}
	}

	all[0].Name = "mutated"
	if All()[0].Name == "mutated" {
		t.Error("All should return a copy")
	}
}

func TestSearch(t *testing.T) {
	got := Search("esc")
	if len(got) == 0 {
		t.Fatal("Search(esc) returned nothing")
	}
	if got[0].Name != "Escape" {
		t.Errorf("best match = %q, want Escape", got[0].Name)
	}

	for _, k := range Search("shft") {
		if k.Name == "A" {
			t.Errorf("Search(shft) should not match %q", k.Name)
		}
	}

	if n := len(Search("")); n != len(names) {
		t.Errorf("empty Search returned %d keys, want all %d", n, len(names))
	}
	if n := len(Search("zzzzqqq")); n != 0 {
		t.Errorf("Search(zzzzqqq) returned %d keys, want 0", n)
	}
}
