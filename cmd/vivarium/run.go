package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/vivarium/internal/cli"
	"github.com/aretw0/vivarium/internal/presentation/tui"
	"github.com/aretw0/vivarium/pkg/adapters/memory"
	"github.com/aretw0/vivarium/pkg/ports"
)

var runCmd = &cobra.Command{
	Use:   "run [settings.yaml]",
	Short: "Run a composite to completion",
	Long: `Builds the composite named by the settings file or --composite and runs it
for the total time, emitting records into the configured emitter. On a terminal
a summary of the emitted state is printed at the end.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd, args)
		if err != nil {
			return err
		}
		logger, err := createLogger(cmd, settings)
		if err != nil {
			return err
		}
		debug, _ := cmd.Flags().GetBool("debug")
		quiet, _ := cmd.Flags().GetBool("quiet")
		interactive := isTerminal() && !quiet

		if interactive {
			tui.PrintBanner(os.Stdout)
		}

		sink, err := cli.OpenSink(settings.Emitter, os.Stdout)
		if err != nil {
			return err
		}
		defer sink.Close()

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		result, err := cli.Run(sigCtx, sink, cli.RunOptions{
			Settings: settings,
			Debug:    debug,
			Logger:   logger,
		})
		if sig := sigCtx.Signal(); sig != nil {
			cli.PrintSystemMessage(os.Stdout, "Interrupted by %v at time %g.", sig, result.Time)
			return nil
		}
		if err != nil {
			return err
		}

		if interactive && sink.Source != nil {
			return printSummary(cmd, sink.Source, result)
		}
		if !quiet {
			cli.PrintSystemMessage(os.Stderr, "Experiment %s finished at time %g.", result.ExperimentID, result.Time)
		}
		return nil
	},
}

func printSummary(cmd *cobra.Command, source ports.HistorySource, result cli.Result) error {
	history, err := source.History(cmd.Context())
	if err != nil {
		return err
	}
	rendered, err := tui.Summary{
		ExperimentID: result.ExperimentID,
		Composite:    result.Composite,
		Time:         result.Time,
		Series:       memory.PathTimeseries(history),
	}.Render()
	if err != nil {
		return err
	}
	fmt.Print(rendered)
	return nil
}

func init() {
	rootCmd.AddCommand(runCmd)
	addSettingsFlags(runCmd)
	runCmd.Flags().BoolP("quiet", "q", false, "Skip the banner and the summary")
}
