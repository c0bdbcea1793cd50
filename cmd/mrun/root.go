package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/flashingpumpkin/mrun/internal/config"
	mrunerrors "github.com/flashingpumpkin/mrun/internal/errors"
	"github.com/flashingpumpkin/mrun/internal/logger"
	"github.com/flashingpumpkin/mrun/internal/output"
	"github.com/flashingpumpkin/mrun/internal/registry"
	"github.com/flashingpumpkin/mrun/internal/runner"
	"github.com/flashingpumpkin/mrun/internal/tasks"
	"github.com/flashingpumpkin/mrun/internal/tui"
	"github.com/flashingpumpkin/mrun/internal/ui"
)

var (
	// Flag variables
	manifestPath  string
	configFile    string
	workingDir    string
	shell         string
	binDir        string
	retryInterval time.Duration
	maxAttempts   int
	killAfter     int
	minimal       bool
	theme         string
	logFile       string
	logLevel      string
	listTasks     bool
)

var rootCmd = &cobra.Command{
	Use:   "mrun [flags] <task> [<task> ...]",
	Short: "Run several project tasks side by side",
	Long: `mrun runs the named tasks concurrently, each in its own process group,
and shows the output of every task in its own pane.

Tasks are the "scripts" of package.json, plus the [tasks] table of
.mrun.toml. node_modules/.bin is prepended to PATH for every task.

Press q, esc or ctrl+c (or send SIGINT, SIGTERM or SIGHUP) to stop. mrun
keeps signalling the remaining process groups until all of them have exited.

CONFIGURATION FILE

mrun reads .mrun.toml from the working directory when present. Use --config
to specify a different path. Flags take precedence over the file.`,
	Args:          cobra.ArbitraryArgs,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runMrun,
}

func init() {
	rootCmd.Flags().StringVarP(&manifestPath, "manifest", "m", config.DefaultManifest, "Package manifest providing the task scripts")
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to config file (default: .mrun.toml)")
	rootCmd.Flags().StringVarP(&workingDir, "working-dir", "d", ".", "Project directory tasks run in")
	rootCmd.Flags().StringVar(&shell, "shell", "", "Shell that interprets task commands (default: /bin/sh, cmd.exe on Windows)")
	rootCmd.Flags().StringVar(&binDir, "bin-dir", config.DefaultBinDir, "Directory prepended to PATH for every task")
	rootCmd.Flags().DurationVar(&retryInterval, "retry-interval", config.DefaultRetryInterval, "Delay between termination signal rounds")
	rootCmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "Give up after this many signal rounds (0 = never)")
	rootCmd.Flags().IntVar(&killAfter, "kill-after", 0, "Send SIGKILL after this many SIGTERM rounds (0 = never)")
	rootCmd.Flags().BoolVar(&minimal, "minimal", false, "Use plain line output (no panes)")
	rootCmd.Flags().StringVar(&theme, "theme", "auto", "Pane colour theme: auto, dark, light")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "Also write logs to this file")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default: $MRUN_LOG_LEVEL or warn)")
	rootCmd.Flags().BoolVar(&listTasks, "list", false, "List the available tasks and exit")
}

func runMrun(cmd *cobra.Command, args []string) error {
	explicit := make(map[string]bool)
	cmd.Flags().Visit(func(f *pflag.Flag) { explicit[f.Name] = true })

	cfg := &config.Config{
		WorkingDir:    workingDir,
		ManifestPath:  manifestPath,
		ConfigPath:    configFile,
		Shell:         shell,
		BinDir:        binDir,
		RetryInterval: retryInterval,
		MaxAttempts:   maxAttempts,
		KillAfter:     killAfter,
		Minimal:       minimal,
		Theme:         theme,
		LogFile:       logFile,
		LogLevel:      logLevel,
	}

	fileConfig, err := loadFileConfig(cfg)
	if err != nil {
		return err
	}
	fileConfig.Apply(cfg, explicit)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	reg, err := loadRegistry(cfg, fileConfig)
	if err != nil {
		return err
	}

	if listTasks {
		return printTasks(cmd.OutOrStdout(), reg)
	}
	if len(args) == 0 {
		return &mrunerrors.UsageError{Msg: "no tasks given"}
	}

	ts, err := tasks.Resolve(args, reg, tasks.BinDir(cfg.WorkingDir, cfg.BinDir), os.Environ())
	if err != nil {
		return err
	}

	var logOut io.Writer
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	log := logger.Init(cfg.LogLevel, logOut)
	log.Debug("resolved tasks", slog.Any("tasks", args), slog.String("working_dir", cfg.WorkingDir))

	useTUI := shouldUseTUI(cfg.Minimal)
	var surface ui.Surface
	if useTUI {
		surface = tui.New("mrun: "+strings.Join(args, " "), tui.Theme(cfg.Theme))
	} else {
		surface = output.New(cmd.OutOrStdout())
	}

	r := runner.New(cfg, surface)
	r.SetLogger(log)
	r.SetCompleteWhenIdle(!useTUI)

	if useTUI {
		// Log records would corrupt the alternate screen.
		logger.Suspend()
		sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		sp.Suffix = " stopping tasks"
		r.OnShutdown(func() {
			logger.Resume()
			if term.IsTerminal(int(os.Stderr.Fd())) {
				sp.Start()
			}
		})
		defer sp.Stop()
	}

	stop := forwardSignals(r.Trigger)
	defer stop()

	if err := r.Run(cmd.Context(), ts); err != nil {
		return err
	}
	if ts, ok := surface.(*tui.Surface); ok {
		if err := ts.Err(); err != nil {
			log.Warn("terminal display failed", slog.Any("error", err))
		}
	}
	return nil
}

// loadFileConfig reads the config file named by cfg.ConfigPath, or the
// default .mrun.toml in the working directory. An explicitly named file must exist.
func loadFileConfig(cfg *config.Config) (*config.FileConfig, error) {
	if cfg.ConfigPath == "" {
		fc, err := config.LoadFileConfig(cfg.WorkingDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		return fc, nil
	}

	fc, err := config.LoadFileConfigFrom(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", cfg.ConfigPath, err)
	}
	if fc == nil {
		return nil, fmt.Errorf("config file not found: %s", cfg.ConfigPath)
	}
	return fc, nil
}

// loadRegistry merges the manifest scripts with the [tasks] table of the config file.
func loadRegistry(cfg *config.Config, fc *config.FileConfig) (registry.Registry, error) {
	path := cfg.ManifestPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.WorkingDir, path)
	}

	reg, err := registry.LoadManifest(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	if fc != nil {
		reg = reg.Merge(fc.Tasks)
	}
	return reg, nil
}

// printTasks writes the registry as an aligned name/command table.
func printTasks(w io.Writer, reg registry.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, name := range reg.Names() {
		fmt.Fprintf(tw, "%s\t%s\n", name, reg[name])
	}
	return tw.Flush()
}

func shouldUseTUI(minimal bool) bool {
	// Explicit minimal flag disables TUI
	if minimal {
		return false
	}

	// CI environment disables TUI
	if os.Getenv("CI") != "" {
		return false
	}

	// Non-interactive terminal disables TUI
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}

	return true
}
