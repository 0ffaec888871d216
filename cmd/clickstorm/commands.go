package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/clickstorm/internal/app"
	"github.com/dshills/clickstorm/internal/config"
	"github.com/dshills/clickstorm/internal/input/mouse"
	"github.com/dshills/clickstorm/internal/input/terminal"
	"github.com/dshills/clickstorm/internal/logging"
	"github.com/dshills/clickstorm/internal/replay"
)

// rootFlags are shared by every subcommand.
type rootFlags struct {
	configPath string
	logLevel   string
	logFile    string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "clickstorm",
		Short: "Mouse click and double-click detection",
		Long: `clickstorm turns raw mouse button transitions into click and
double-click gestures using per-button timing windows.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file path")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flags.logFile, "log-file", "", "Write logs to this file instead of stderr")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newRunCmd(flags))
	root.AddCommand(newReplayCmd(flags))
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "clickstorm %s\n", version)
			fmt.Fprintf(out, "Commit: %s\n", commit)
			fmt.Fprintf(out, "Built: %s\n", date)
		},
	}
}

func newRunCmd(flags *rootFlags) *cobra.Command {
	var (
		recordPath string
		watch      bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Detect clicks from the terminal mouse",
		Long: `Start a full-screen session that reports clicks and double clicks
made with the terminal mouse. Left, middle and right buttons are always
reported; back and forward only on terminals that send extra buttons.
Press q, Esc or Ctrl-C to exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			// The screen owns stderr while running, so logs are dropped
			// unless they go to a file.
			var logger *zap.Logger
			if flags.logFile != "" {
				var closeLog func()
				if logger, closeLog, err = newLogger(cfg, flags); err != nil {
					return err
				}
				defer closeLog()
			}

			var rec *replay.Recorder
			if recordPath != "" {
				rec = replay.NewRecorder()
			}

			term, err := terminal.NewTerminal()
			if err != nil {
				return fmt.Errorf("failed to create terminal: %w", err)
			}
			if err := term.Init(); err != nil {
				return fmt.Errorf("failed to initialize terminal: %w", err)
			}

			application, err := app.New(term, app.Options{
				ConfigPath:  flags.configPath,
				Config:      cfg,
				WatchConfig: watch,
				Logger:      logger,
				Display:     term,
				Recorder:    rec,
			})
			if err != nil {
				term.Shutdown()
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			runErr := application.Run(ctx)
			term.Shutdown()

			if errors.Is(runErr, app.ErrQuit) {
				runErr = nil
			}
			if rec != nil {
				if err := writeRecording(recordPath, rec); err != nil && runErr == nil {
					runErr = err
				}
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&recordPath, "record", "", "Save the session's transitions as a replay log")
	cmd.Flags().BoolVar(&watch, "watch", true, "Reload the config file when it changes")
	return cmd
}

func newReplayCmd(flags *rootFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "replay <log.yaml>",
		Short: "Print the gestures found in a recorded transition log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("invalid format %q (must be text or json)", format)
			}

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			logger, closeLog, err := newLogger(cfg, flags)
			if err != nil {
				return err
			}
			defer closeLog()

			log, err := replay.LoadFile(args[0])
			if err != nil {
				return err
			}
			reg, err := cfg.Registry()
			if err != nil {
				return err
			}

			p := mouse.NewPipeline(reg, mouse.WithLogger(logging.L(logger, "replay")))
			frames, err := replay.Run(cmd.Context(), p, log)
			if err != nil {
				return err
			}

			logger.Info("replay finished",
				zap.String(logging.KeySession, p.ID()),
				zap.String(logging.KeyPath, args[0]),
				zap.Int("cycles", len(log.Cycles)),
				zap.Int("gestures", len(replay.Gestures(frames))),
			)

			if format == "json" {
				return replay.WriteJSON(cmd.OutOrStdout(), frames)
			}
			return replay.WriteText(cmd.OutOrStdout(), frames)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text or json)")
	return cmd
}

// loadConfig loads the config file and applies the --log-level override.
func loadConfig(flags *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// newLogger builds the logger described by cfg, writing to --log-file when
// set. The returned func flushes and closes it.
func newLogger(cfg *config.Config, flags *rootFlags) (*zap.Logger, func(), error) {
	var out io.Writer = os.Stderr
	var file *os.File
	if flags.logFile != "" {
		f, err := os.OpenFile(flags.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out, file = f, f
	}

	logger := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: out,
	})
	return logger, func() {
		_ = logger.Sync()
		if file != nil {
			_ = file.Close()
		}
	}, nil
}

// writeRecording saves rec to path.
func writeRecording(path string, rec *replay.Recorder) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create recording: %w", err)
	}
	if _, err := rec.WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write recording: %w", err)
	}
	return f.Close()
}
