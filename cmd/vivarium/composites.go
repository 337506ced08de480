package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aretw0/vivarium/pkg/composites"
)

var compositesCmd = &cobra.Command{
	Use:   "composites",
	Short: "List the ready-made composites",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, name := range composites.Names() {
			c, err := composites.Build(name, nil, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\n", name, c.Description)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(compositesCmd)
}
