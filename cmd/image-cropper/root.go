package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	imagecropper "github.com/menta2k/image-cropper"
	"github.com/menta2k/image-cropper/internal/config"
	"github.com/menta2k/image-cropper/internal/utils"
)

// configEnv names the environment variable holding the config file path
const configEnv = "IMAGE_CROPPER_CONFIG"

// app is the state shared by all subcommands
type app struct {
	configPath string
	verbose    bool

	cfg     *config.Config
	logger  *slog.Logger
	logFile io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "image-cropper",
		Short: "Crop, rotate and straighten images with fixed aspect ratios",
		Long: `image-cropper applies crop edits to images from the command line.

Edits are resolved by the same geometry engine an interactive editor uses: fixed
ratios, quarter turns, straightening, flips and restored normalized crops. Only
the final crop touches pixels.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logFile != nil {
				_ = a.logFile.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (json or yaml), defaults to $"+configEnv+" or "+config.GetConfigPath())
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Verbose logging")

	cmd.AddCommand(newCropCmd(a))
	cmd.AddCommand(newRatiosCmd(a))
	cmd.AddCommand(newConfigCmd(a))

	return cmd
}

// resolveConfigPath returns the config file to load, or "" to use the defaults
func (a *app) resolveConfigPath() string {
	if a.configPath != "" {
		return a.configPath
	}
	if p := os.Getenv(configEnv); p != "" {
		return p
	}
	if p := config.GetConfigPath(); utils.FileExists(p) {
		return p
	}
	return ""
}

func (a *app) setup() error {
	cfg := config.Default()
	if path := a.resolveConfigPath(); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.cfg = cfg

	logger, closer, err := newLogger(cfg.Log, a.verbose)
	if err != nil {
		return err
	}
	a.logger = logger
	a.logFile = closer
	imagecropper.SetLogger(logger)
	return nil
}

// newLogger writes text logs to stderr and, when configured, to a rotating log file
func newLogger(cfg config.LogConfig, verbose bool) (*slog.Logger, io.Closer, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}
	if verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	var closer io.Closer
	if cfg.File != "" {
		if err := utils.EnsureDir(filepath.Dir(cfg.File)); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10, // MB
			MaxBackups: 2,
			MaxAge:     28, // days
			Compress:   true,
		}
		w = io.MultiWriter(os.Stderr, lj)
		closer = lj
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closer, nil
}
