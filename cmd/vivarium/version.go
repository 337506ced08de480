package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/vivarium"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of vivarium",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("vivarium version %s\n", strings.TrimSpace(vivarium.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
