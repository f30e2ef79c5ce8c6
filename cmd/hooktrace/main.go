package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/aayushbajaj/hooktrace/internal/config"
	"github.com/aayushbajaj/hooktrace/internal/hook"
	"github.com/aayushbajaj/hooktrace/internal/logging"
	"github.com/aayushbajaj/hooktrace/internal/tui"
	"github.com/aayushbajaj/hooktrace/internal/vkey"
	"github.com/aayushbajaj/hooktrace/pkg/stats"
)

var (
	// Global flags
	configPath string
	logLevel   string
	block      []string
	noKeyboard bool
	noPointer  bool
	systemKeys bool

	// Flags for root command
	theme string

	// Flags for watch command
	watchMoves bool

	// Flags for config command
	configInit bool
)

var rootCmd = &cobra.Command{
	Use:   "hooktrace",
	Short: "Watch system-wide keyboard and pointer input",
	Long: `A live viewer for global keyboard and pointer hooks. Shows every key
transition with its modifiers and the current pointer position, and can
block listed keys from reaching other applications.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runViewer(cmd.Flags())
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream captured input to stdout until interrupted",
	Long: `Stream captured input to stdout until SIGINT or SIGTERM.

Examples:
  hooktrace watch                    # Key transitions only
  hooktrace watch --moves            # Include pointer movement
  hooktrace watch --block Escape     # Swallow Escape system-wide`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatchCommand(cmd.Flags(), cmd.OutOrStdout())
	},
}

var keysCmd = &cobra.Command{
	Use:   "keys [query]",
	Short: "List virtual key names, or fuzzy-search them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := ""
		if len(args) == 1 {
			query = args[0]
		}
		return listKeys(cmd.OutOrStdout(), query)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showConfig(cmd.Flags(), cmd.OutOrStdout())
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "Path to config file (default ~/.config/hooktrace/config.toml)")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringSliceVarP(&block, "block", "b", nil, "Key names to block system-wide (repeatable)")
	pf.BoolVar(&noKeyboard, "no-keyboard", false, "Do not hook the keyboard")
	pf.BoolVar(&noPointer, "no-pointer", false, "Do not hook the pointer")
	pf.BoolVar(&systemKeys, "system-keys", false, "Also capture Alt-modified (system) key messages")

	rootCmd.Flags().StringVarP(&theme, "theme", "t", "", "Viewer color theme")
	watchCmd.Flags().BoolVarP(&watchMoves, "moves", "m", false, "Print pointer movements")
	configCmd.Flags().BoolVar(&configInit, "init", false, "Write the default config file if none exists")

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies command-line overrides.
// flags is the running command's flag set, which includes the inherited
// persistent flags.
func loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("block") {
		cfg.Block = append(cfg.Block, block...)
	}
	if noKeyboard {
		cfg.Keyboard = false
	}
	if noPointer {
		cfg.Pointer = false
	}
	if systemKeys {
		cfg.SystemKeys = true
	}
	if theme != "" {
		cfg.Theme = theme
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func openLogger(cfg *config.Config) (*slog.Logger, func() error, error) {
	dir := cfg.LogDir
	if dir == "" {
		dataDir, err := config.DataDir()
		if err != nil {
			return nil, nil, err
		}
		dir = filepath.Join(dataDir, "logs")
	}
	return logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Dir: dir})
}

// startCapture loads configuration, opens the log and enables capture on
// the platform hook router.
func startCapture(flags *pflag.FlagSet) (*capture, *config.Config, func(), error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, nil, nil, err
	}
	logger, closeLog, err := openLogger(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open log: %w", err)
	}
	slog.SetDefault(logger)

	c, err := newCapture(hook.DefaultRouter(), cfg, logger)
	if err != nil {
		closeLog()
		return nil, nil, nil, err
	}
	if err := c.Enable(); err != nil {
		c.Close()
		closeLog()
		return nil, nil, nil, fmt.Errorf("failed to start capture: %w", err)
	}

	cleanup := func() {
		if err := c.Close(); err != nil {
			logger.Error("[main] shutdown", "error", err)
		}
		closeLog()
	}
	return c, cfg, cleanup, nil
}

func runViewer(flags *pflag.FlagSet) error {
	c, cfg, cleanup, err := startCapture(flags)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := tui.SetTheme(cfg.Theme); err != nil {
		return err
	}

	p := tea.NewProgram(tui.New(tui.Options{
		Capture:   c,
		Entries:   c.entries(),
		Movements: c.movements(),
		History:   cfg.History,
	}), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func runWatchCommand(flags *pflag.FlagSet, out io.Writer) error {
	c, _, cleanup, err := startCapture(flags)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session := stats.NewSession(time.Now())
	if err := runWatch(ctx, out, c, session, watchMoves); err != nil {
		return err
	}

	kb, ptr := c.stats()
	printSummary(out, session.Summary(time.Now(), 5), kb, ptr)
	return nil
}

// runWatch prints feed output until ctx is done or every feed is closed.
func runWatch(ctx context.Context, out io.Writer, c *capture, session *stats.Session, moves bool) error {
	entries := c.entries()
	movements := c.movements()

	for entries != nil || movements != nil {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-entries:
			if !ok {
				entries = nil
				continue
			}
			session.RecordKey(stats.Stroke{
				VirtualKey: e.VirtualKey,
				Pressed:    e.Direction == hook.Pressed,
				Blocked:    e.Blocked,
				Injected:   e.Injected,
				Time:       e.Time,
			})
			if _, err := fmt.Fprintln(out, e.String()); err != nil {
				return err
			}
		case mv, ok := <-movements:
			if !ok {
				movements = nil
				continue
			}
			session.RecordMove(mv.Distance)
			if !moves {
				continue
			}
			if _, err := fmt.Fprintf(out, "[%s] MOVE: X: %d, Y: %d\n", time.Now().Format("15:04:05.000"), mv.X, mv.Y); err != nil {
				return err
			}
		}
	}
	return nil
}

func printSummary(out io.Writer, sum stats.Summary, kb, ptr hook.Stats) {
	fmt.Fprintln(out, "📊 Session")
	fmt.Fprintln(out, "────────────────────")
	fmt.Fprintf(out, "Keys:      %s down, %s up, %s blocked\n",
		stats.FormatCount(sum.Pressed), stats.FormatCount(sum.Released), stats.FormatCount(sum.Blocked))
	fmt.Fprintf(out, "Pointer:   %.0f px\n", sum.Distance)
	if len(sum.TopKeys) > 0 {
		top := make([]string, len(sum.TopKeys))
		for i, k := range sum.TopKeys {
			top[i] = fmt.Sprintf("%s (%s)", vkey.Name(k.VirtualKey), stats.FormatCount(k.Count))
		}
		fmt.Fprintf(out, "Top keys:  %s\n", strings.Join(top, ", "))
	}
	if faults := kb.Faults + ptr.Faults; faults > 0 {
		fmt.Fprintf(out, "Faults:    %d (see log)\n", faults)
	}
}

func listKeys(out io.Writer, query string) error {
	keys := vkey.Search(query)
	if len(keys) == 0 {
		return fmt.Errorf("no key matches %q", query)
	}
	for _, k := range keys {
		if _, err := fmt.Fprintf(out, "0x%02X  %3d  %s\n", k.Code, k.Code, k.Name); err != nil {
			return err
		}
	}
	return nil
}

func showConfig(flags *pflag.FlagSet, out io.Writer) error {
	if configInit {
		path := configPath
		if path == "" {
			p, err := config.Path()
			if err != nil {
				return err
			}
			path = p
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}
		if err := config.Default().Save(path); err != nil {
			return err
		}
		fmt.Fprintf(out, "# wrote %s\n", path)
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	return cfg.Write(out)
}
