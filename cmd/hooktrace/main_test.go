package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aayushbajaj/hooktrace/internal/config"
	"github.com/aayushbajaj/hooktrace/internal/hook"
	"github.com/aayushbajaj/hooktrace/internal/hook/hooktest"
	"github.com/aayushbajaj/hooktrace/pkg/stats"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRootCmdExists(t *testing.T) {
	if rootCmd == nil {
		t.Fatal("rootCmd should not be nil")
	}

	if rootCmd.Use != "hooktrace" {
		t.Errorf("rootCmd.Use = %q, want 'hooktrace'", rootCmd.Use)
	}

	if rootCmd.Short == "" {
		t.Error("rootCmd.Short should not be empty")
	}
}

func TestRootCmdHasSubcommands(t *testing.T) {
	cmdNames := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		cmdNames[cmd.Name()] = true
	}

	for _, name := range []string{"watch", "keys", "config"} {
		if !cmdNames[name] {
			t.Errorf("rootCmd should have subcommand %q", name)
		}
	}
}

func TestFlags(t *testing.T) {
	tests := []struct {
		name      string
		flag      string
		shorthand string
		persist   bool
	}{
		{"config", "config", "c", true},
		{"block", "block", "b", true},
		{"log level", "log-level", "", true},
		{"no keyboard", "no-keyboard", "", true},
		{"no pointer", "no-pointer", "", true},
		{"system keys", "system-keys", "", true},
		{"theme", "theme", "t", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := rootCmd.Flags()
			if tt.persist {
				flags = rootCmd.PersistentFlags()
			}
			f := flags.Lookup(tt.flag)
			if f == nil {
				t.Fatalf("rootCmd should have a %q flag", tt.flag)
			}
			if f.Shorthand != tt.shorthand {
				t.Errorf("%s shorthand = %q, want %q", tt.flag, f.Shorthand, tt.shorthand)
			}
		})
	}

	if f := watchCmd.Flags().Lookup("moves"); f == nil || f.Shorthand != "m" || f.DefValue != "false" {
		t.Error("watchCmd should have a 'moves' flag, shorthand m, default false")
	}
	if configCmd.Flags().Lookup("init") == nil {
		t.Error("configCmd should have an 'init' flag")
	}
}

func TestListKeys(t *testing.T) {
	var buf bytes.Buffer
	if err := listKeys(&buf, "escape"); err != nil {
		t.Fatalf("listKeys failed: %v", err)
	}
	first := strings.SplitN(buf.String(), "\n", 2)[0]
	if first != "0x1B   27  Escape" {
		t.Errorf("first line = %q", first)
	}

	if err := listKeys(io.Discard, "zzzzqqq"); err == nil {
		t.Error("listKeys should fail when nothing matches")
	}
}

func TestLoadConfigAppliesFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("block = [\"F1\"]\nlog_level = \"warn\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HOOKTRACE_LOG_LEVEL", "")

	configPath = path
	noPointer = true
	flags := rootCmd.PersistentFlags()
	if err := flags.Set("block", "Escape"); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		configPath = ""
		noPointer = false
		block = nil
		flags.Lookup("block").Changed = false
	})

	cfg, err := loadConfig(flags)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Pointer {
		t.Error("--no-pointer should disable the pointer hook")
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want file value warn", cfg.LogLevel)
	}
	if len(cfg.Block) != 2 || cfg.Block[0] != "F1" || cfg.Block[1] != "Escape" {
		t.Errorf("Block = %v, want [F1 Escape]", cfg.Block)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("block = [\"NotAKey\"]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	configPath = path
	t.Cleanup(func() { configPath = "" })

	if _, err := loadConfig(rootCmd.PersistentFlags()); err == nil || !strings.Contains(err.Error(), "NotAKey") {
		t.Errorf("loadConfig error = %v, want it to name the bad key", err)
	}
}

func TestConfigCommandSeesPersistentFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("HOOKTRACE_LOG_LEVEL", "")

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"config", "--config", path, "--block", "Escape", "--log-level", "debug"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		configPath = ""
		logLevel = ""
		block = nil
		pf := rootCmd.PersistentFlags()
		pf.Lookup("config").Changed = false
		pf.Lookup("block").Changed = false
		pf.Lookup("log-level").Changed = false
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("config command failed: %v", err)
	}
	got := buf.String()
	for _, want := range []string{`"Escape"`, `log_level = "debug"`} {
		if !strings.Contains(got, want) {
			t.Errorf("config output missing %s:\n%s", want, got)
		}
	}
}

func newTestCapture(t *testing.T, cfg *config.Config) (*capture, *hooktest.System, *hook.Router) {
	t.Helper()
	sys, r := hooktest.NewRouter()
	c, err := newCapture(r, cfg, discardLogger())
	if err != nil {
		t.Fatalf("newCapture failed: %v", err)
	}
	return c, sys, r
}

func TestCaptureToggle(t *testing.T) {
	c, sys, _ := newTestCapture(t, config.Default())

	if c.Enabled() {
		t.Fatal("capture should start disabled")
	}
	if err := c.Enable(); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	if !c.Enabled() || sys.Live(hook.ClassKeyboard) != 1 || sys.Live(hook.ClassPointer) != 1 {
		t.Error("Enable should install both hooks")
	}
	if err := c.Disable(); err != nil {
		t.Fatalf("Disable failed: %v", err)
	}
	if c.Enabled() || sys.Live(hook.ClassKeyboard) != 0 || sys.Live(hook.ClassPointer) != 0 {
		t.Error("Disable should remove both hooks")
	}
}

func TestCaptureReenableForgetsHeldKeys(t *testing.T) {
	cfg := config.Default()
	cfg.SkipRepeats = true
	c, sys, r := newTestCapture(t, cfg)

	if err := c.Enable(); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	sys.Press(r, 0x41)
	if err := c.Disable(); err != nil {
		t.Fatalf("Disable failed: %v", err)
	}
	// A is released while unhooked, then pressed again.
	if err := c.Enable(); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	sys.Press(r, 0x41)

	if got := len(c.entries()); got != 2 {
		t.Errorf("buffered %d entries, want both presses", got)
	}
}

func TestCaptureEnableIsAllOrNothing(t *testing.T) {
	c, sys, r := newTestCapture(t, config.Default())

	// Another pointer owns the class, so the second install fails.
	other := hook.NewPointer(r, hook.WithLogger(discardLogger()))
	if err := other.Install(); err != nil {
		t.Fatal(err)
	}

	err := c.Enable()
	if !errors.Is(err, hook.ErrAlreadyInstalled) {
		t.Fatalf("Enable error = %v, want ErrAlreadyInstalled", err)
	}
	if c.Enabled() || sys.Live(hook.ClassKeyboard) != 0 {
		t.Error("a failed Enable should roll back the keyboard hook")
	}
}

func TestCaptureKeyboardOnly(t *testing.T) {
	cfg := config.Default()
	cfg.Pointer = false
	c, sys, _ := newTestCapture(t, cfg)

	if err := c.Enable(); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	if sys.Live(hook.ClassPointer) != 0 {
		t.Error("pointer hook should not be installed")
	}
	if c.movements() != nil {
		t.Error("disabled pointer should have no feed")
	}
}

func TestRunWatch(t *testing.T) {
	cfg := config.Default()
	cfg.Block = []string{"Escape"}
	c, sys, r := newTestCapture(t, cfg)
	if err := c.Enable(); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}

	sys.Hold(0x11, true)
	sys.Press(r, 0x41)
	sys.Hold(0x11, false)
	if ret := sys.Press(r, 0x1B); ret != hooktest.Consumed {
		t.Errorf("blocked key returned %d, want consumed", ret)
	}
	sys.Move(r, 0, 0)
	sys.Move(r, 30, 40)

	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	var out bytes.Buffer
	session := stats.NewSession(time.Now())
	if err := runWatch(context.Background(), &out, c, session, true); err != nil {
		t.Fatalf("runWatch failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{"DOWN: Ctrl+A", "DOWN: Escape (blocked)", "MOVE: X: 30, Y: 40"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	sum := session.Summary(time.Now(), 5)
	if sum.Pressed != 2 || sum.Blocked != 1 || sum.Distance != 50 {
		t.Errorf("summary = %+v, want 2 pressed, 1 blocked, 50px", sum)
	}
}

func TestRunWatchStopsOnCancel(t *testing.T) {
	c, _, _ := newTestCapture(t, config.Default())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- runWatch(ctx, io.Discard, c, stats.NewSession(time.Now()), false) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("runWatch = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runWatch did not stop after cancel")
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	sum := stats.Summary{
		Pressed:  1500,
		Released: 999,
		Blocked:  2,
		Distance: 1234,
		TopKeys:  []stats.KeyCount{{VirtualKey: 0x45, Count: 300}},
	}
	printSummary(&buf, sum, hook.Stats{Faults: 1}, hook.Stats{})

	got := buf.String()
	for _, want := range []string{"1.5K down", "999 up", "2 blocked", "1234 px", "E (300)", "Faults:    1"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
}

func TestShowConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hooktrace", "config.toml")
	configPath = path
	configInit = true
	t.Cleanup(func() {
		configPath = ""
		configInit = false
	})

	var buf bytes.Buffer
	if err := showConfig(rootCmd.PersistentFlags(), &buf); err != nil {
		t.Fatalf("showConfig failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file not written: %v", err)
	}
	if !strings.Contains(buf.String(), "history = 500") {
		t.Errorf("output should include the effective config:\n%s", buf.String())
	}

	if err := showConfig(rootCmd.PersistentFlags(), io.Discard); err == nil {
		t.Error("--init should refuse to overwrite an existing file")
	}
}
