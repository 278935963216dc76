package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/atomikpanda/spiderling/internal/audit"
	"github.com/atomikpanda/spiderling/internal/color"
	"github.com/atomikpanda/spiderling/internal/config"
	"github.com/atomikpanda/spiderling/internal/logger"
	"github.com/atomikpanda/spiderling/internal/runner"
)

var (
	configFile string
	verbose    bool
	tick       time.Duration
	logLevel   string
	logFormat  string
)

func main() {
	color.Init()
	root := buildRoot()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildRoot() *cobra.Command {
	root := &cobra.Command{
		Use:   "spiderling",
		Short: "A tick-driven action runner for robots",
		Long: `spiderling runs robot routines described in a YAML file. Each routine is
compiled into a tree of actions and driven one tick at a time on simulated
hardware until it finishes.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&configFile, "config", "c", "spiderling.yaml", "path to config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every step and show step trees")
	root.PersistentFlags().DurationVar(&tick, "tick", 0, "tick interval (overrides SPIDERLING_TICK)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "DEBUG, INFO, WARN or ERROR (overrides SPIDERLING_LOG_LEVEL)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "", "CONSOLE or JSON (overrides SPIDERLING_LOG_FORMAT)")

	root.AddCommand(
		runCmd(),
		listCmd(),
		validateCmd(),
		logCmd(),
	)

	return root
}

// loadConfig parses the config file.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config %q: %w", configFile, err)
	}
	return cfg, nil
}

// loadSettings reads the environment and applies flag overrides.
func loadSettings() (config.Settings, error) {
	s, err := config.LoadSettings()
	if err != nil {
		return config.Settings{}, err
	}
	if tick != 0 {
		if tick < 0 {
			return config.Settings{}, fmt.Errorf("--tick must be positive, got %s", tick)
		}
		s.Tick = tick
	}
	if logLevel != "" {
		s.LogLevel = logLevel
	}
	if verbose && logLevel == "" {
		s.LogLevel = "DEBUG"
	}
	if logFormat != "" {
		s.LogFormat = logFormat
	}
	return s, nil
}

// --- run ---------------------------------------------------------------------

func runCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "run [routine]",
		Short: "Run a routine until it finishes",
		Long: `Builds the named routine and ticks it until every step has finished.
With no routine name and an interactive terminal, a picker is shown.
Ctrl-C interrupts the routine; running steps are still ended so that
motors stop.`,
		Example: `  spiderling run raise_arm
  spiderling run patrol --timeout 30s
  spiderling run --tick 5ms -v`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			s, err := loadSettings()
			if err != nil {
				return err
			}
			logger.Init(s.LogLevel, logger.ParseFormat(s.LogFormat))

			var name string
			if len(args) == 1 {
				name = args[0]
			} else if name, err = pickRoutine(cfg); err != nil {
				return err
			}

			r, err := runner.New(cfg, s.Tick)
			if err != nil {
				return err
			}
			r.Timeout = timeout
			r.History = s.HistoryPath

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			res, err := r.Run(ctx, name)
			printResult(cmd.OutOrStdout(), res)
			return err
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "interrupt the routine after this long (0 = no limit)")
	return cmd
}

// pickRoutine asks the user to choose a routine. It needs an interactive
// terminal on stdin.
func pickRoutine(cfg config.Config) (string, error) {
	names := cfg.RoutineNames()
	if len(names) == 0 {
		return "", errors.New("config has no routines")
	}
	if !isTerminal(os.Stdin) {
		return "", errors.New("routine name required (stdin is not a terminal)")
	}

	var choice string
	err := huh.NewSelect[string]().
		Title("Routine to run").
		Options(huh.NewOptions(names...)...).
		Value(&choice).
		Run()
	if err != nil {
		return "", fmt.Errorf("pick routine: %w", err)
	}
	return choice, nil
}

func isTerminal(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}

func printResult(w io.Writer, res runner.Result) {
	if res.RunID == "" {
		return
	}
	outcome := string(res.Outcome)
	fmt.Fprintf(w, "%s %s  %s  reason=%s ticks=%d elapsed=%s\n",
		color.Bold(res.Routine),
		color.Dim(res.RunID[:8]),
		color.Outcome(outcome, outcome),
		res.Reason, res.Ticks, res.Elapsed.Round(time.Millisecond))
}

// --- list --------------------------------------------------------------------

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List devices and routines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, color.Bold("Devices"))
			if len(cfg.Devices) == 0 {
				fmt.Fprintln(out, color.Dim("  (none)"))
			}
			for _, d := range cfg.Devices {
				fmt.Fprintf(out, "  %-16s %s\n", d.Name(), color.Dim(d.Type()))
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, color.Bold("Routines"))
			if len(cfg.Routines) == 0 {
				fmt.Fprintln(out, color.Dim("  (none)"))
			}
			for _, rt := range cfg.Routines {
				line := fmt.Sprintf("  %-16s %d steps", color.Cyan(rt.Name), len(rt.Steps))
				if rt.Description != "" {
					line += "  " + color.Dim(rt.Description)
				}
				fmt.Fprintln(out, line)
				if verbose {
					printSteps(out, rt.Steps, 2)
				}
			}
			return nil
		},
	}
}

func printSteps(w io.Writer, steps []config.Step, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, s := range steps {
		fmt.Fprintf(w, "%s- %s\n", indent, s.Describe())
		printSteps(w, s.Children(), depth+1)
	}
}

// --- validate ----------------------------------------------------------------

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the config and build every routine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			s, err := loadSettings()
			if err != nil {
				return err
			}
			r, err := runner.New(cfg, s.Tick)
			if err != nil {
				return err
			}
			for _, rt := range cfg.Routines {
				if _, err := r.Build(rt); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d devices, %d routines\n",
				color.Green("ok"), configFile, len(cfg.Devices), len(cfg.Routines))
			return nil
		},
	}
}

// --- log ---------------------------------------------------------------------

func logCmd() *cobra.Command {
	var routineFilter string
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the run history",
		Example: `  spiderling log
  spiderling log --routine raise_arm
  spiderling log --limit 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			entries, err := audit.Read(s.HistoryPath, routineFilter, limit)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "(no history entries)")
				return nil
			}

			fmt.Fprintln(out, color.Bold(fmt.Sprintf("%-20s  %-16s  %-11s  %-11s  %6s  %s",
				"TIME", "ROUTINE", "OUTCOME", "REASON", "TICKS", "ELAPSED")))
			fmt.Fprintln(out, color.Dim(strings.Repeat("-", 84)))
			for _, e := range entries {
				ts := e.Time.Local().Format(time.DateTime)
				outcome := color.Outcome(e.Outcome, fmt.Sprintf("%-11s", e.Outcome))
				fmt.Fprintf(out, "%-20s  %-16s  %s  %-11s  %6d  %s\n",
					ts, e.Routine, outcome, e.Reason, e.Ticks, e.Elapsed.Round(time.Millisecond))
				if e.Error != "" {
					fmt.Fprintf(out, "  %s\n", color.Red(e.Error))
				}
			}
			fmt.Fprintf(out, "\nhistory: %s\n", s.HistoryPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&routineFilter, "routine", "", "filter history by routine name")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of entries to show")
	return cmd
}
