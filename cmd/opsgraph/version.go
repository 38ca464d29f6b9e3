package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opsgraph/opsgraph"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of opsgraph",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("opsgraph version %s\n", strings.TrimSpace(opsgraph.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
