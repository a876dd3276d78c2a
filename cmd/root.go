// Package cmd wires the photo-curator command line.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"photo-curator/internal/conf"
	"photo-curator/internal/logger"
)

// app is shared by every subcommand.
type app struct {
	v          *viper.Viper
	configFile string
	envFile    string

	settings *conf.Settings
	log      *slog.Logger
	closeLog func() error
}

// RootCommand creates and returns the root command
func RootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:           "photo-curator",
		Short:         "Curate a date-partitioned photo library",
		Long:          "photo-curator moves annotated photos from _import into year/month/day folders, generates thumbnails and records them in a catalog.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	if err := setupFlags(rootCmd, a); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(
		initCommand(a),
		watchCommand(a),
		importCommand(a),
		processCommand(a),
		promoteCommand(a),
		renameCommand(a),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// init creates the library and does not need a valid config yet
		if cmd.Name() == "init" {
			return nil
		}
		return a.initialize()
	}
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if a.closeLog != nil {
			return a.closeLog()
		}
		return nil
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, a *app) error {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "Config file (default ./photo-curator.yaml or ~/.config/photo-curator/photo-curator.yaml)")
	pf.StringVar(&a.envFile, "env-file", ".env", "Environment file loaded before reading PHOTO_CURATOR_* variables")
	pf.String("root", "", "Media root directory")
	pf.Int("interval", 0, "Minutes between import batches")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-format", "", "Log format: text, json")

	return bindFlags(a.v, pf, map[string]string{
		"media_root":    "root",
		"poll_interval": "interval",
		"log.level":     "log-level",
		"log.format":    "log-format",
	})
}

// bindFlags binds each config key to the named flag in fs.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet, bindings map[string]string) error {
	for key, name := range bindings {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", name, err)
		}
	}
	return nil
}

// initialize loads settings and installs the process logger.
func (a *app) initialize() error {
	settings, err := conf.Load(a.v, conf.Options{
		ConfigFile:  a.configFile,
		SearchPaths: conf.DefaultSearchPaths(),
		EnvFile:     a.envFile,
	})
	if err != nil {
		return err
	}
	a.settings = settings

	l, closeFn, err := logger.New(logger.Options{
		Level:      settings.Log.Level,
		Format:     settings.Log.Format,
		File:       settings.Log.File,
		MaxSizeMB:  settings.Log.MaxSizeMB,
		MaxBackups: settings.Log.MaxBackups,
		MaxAgeDays: settings.Log.MaxAgeDays,
	})
	if err != nil {
		return err
	}
	slog.SetDefault(l)
	a.log = l
	a.closeLog = closeFn

	if used := a.v.ConfigFileUsed(); used != "" {
		l.Debug("config loaded", "file", used)
	}
	return nil
}
