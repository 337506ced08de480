package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/vivarium/internal/config"
	"github.com/aretw0/vivarium/internal/presentation/graph"
	"github.com/aretw0/vivarium/pkg/composites"
)

var topologyCmd = &cobra.Command{
	Use:   "topology [composite|settings.yaml]",
	Short: "Print the process wiring of a composite",
	Long: `Prints how the processes of a composite are wired to the state tree, as a
Mermaid flowchart or as YAML. The argument is a composite name or a settings
file; the composite config of a settings file is honoured.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		name := config.Default().Composite
		var compositeConfig map[string]any
		if len(args) > 0 {
			name = args[0]
			if settings, err := config.Load(args[0]); err == nil {
				name, compositeConfig = settings.Composite, settings.Config
			}
		}

		c, err := composites.Build(name, compositeConfig, nil)
		if err != nil {
			return err
		}

		switch format {
		case "mermaid":
			fmt.Print(graph.GenerateMermaid(c.Blueprint.Processes, c.Blueprint.Topology))
		case "yaml":
			out, err := graph.YAML(c.Blueprint.Topology)
			if err != nil {
				return err
			}
			fmt.Print(out)
		default:
			return fmt.Errorf("unknown format %q (want mermaid or yaml)", format)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(topologyCmd)
	topologyCmd.Flags().StringP("format", "f", "mermaid", "Output format: mermaid or yaml")
}
