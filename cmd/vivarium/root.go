package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/vivarium/internal/cli"
	"github.com/aretw0/vivarium/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "vivarium",
	Short: "Vivarium runs hierarchical multi-timestep simulations",
	Long: `Vivarium composes processes over a shared hierarchical state tree and
advances them together, each at its own timestep.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")
	rootCmd.PersistentFlags().Bool("debug", false, "Log every process update, batch and tick")
}

// loadSettings reads the settings file named by args, if any, and applies
// the flags the user set on top of it.
func loadSettings(cmd *cobra.Command, args []string) (config.Settings, error) {
	s := config.Default()
	if len(args) > 0 {
		loaded, err := config.Load(args[0])
		if err != nil {
			return config.Settings{}, err
		}
		s = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("composite") {
		s.Composite, _ = flags.GetString("composite")
	}
	if flags.Changed("total-time") {
		s.TotalTime, _ = flags.GetFloat64("total-time")
	}
	if flags.Changed("timestep") {
		s.Timestep, _ = flags.GetFloat64("timestep")
	}
	if flags.Changed("id") {
		s.ExperimentID, _ = flags.GetString("id")
	}
	if flags.Changed("emitter") {
		s.Emitter.Type, _ = flags.GetString("emitter")
	}
	if flags.Changed("emitter-path") {
		s.Emitter.Path, _ = flags.GetString("emitter-path")
	}
	if flags.Changed("emitter-address") {
		s.Emitter.Address, _ = flags.GetString("emitter-address")
	}
	if flags.Changed("emitter-prefix") {
		s.Emitter.Prefix, _ = flags.GetString("emitter-prefix")
	}
	if flags.Changed("log-level") {
		s.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		s.Log.Format, _ = flags.GetString("log-format")
	}
	return s, s.Validate()
}

func addSettingsFlags(cmd *cobra.Command) {
	cmd.Flags().String("composite", "", "Composite to run (see 'vivarium composites')")
	cmd.Flags().Float64("total-time", 0, "Simulated time to run for")
	cmd.Flags().Float64("timestep", 0, "Length of one tick")
	cmd.Flags().String("id", "", "Experiment id (default: a random UUID)")
	cmd.Flags().String("emitter", "", "Emitter: print, null, timeseries, file or redis")
	cmd.Flags().String("emitter-path", "", "Directory of the file emitter")
	cmd.Flags().String("emitter-address", "", "Address of the redis emitter")
	cmd.Flags().String("emitter-prefix", "", "Key prefix of the redis emitter")
}

func createLogger(cmd *cobra.Command, s config.Settings) (*slog.Logger, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	return cli.CreateLogger(s.Log, debug, os.Stderr)
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
