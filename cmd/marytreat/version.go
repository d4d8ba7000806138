package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/marytreat"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of marytreat",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("marytreat version %s\n", strings.TrimSpace(marytreat.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
