package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aretw0/marytreat"
	"github.com/aretw0/marytreat/pkg/core"
)

var checkJSON bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "List topics with missing titles, short descriptions or draft comments",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		dir := projectDir()
		cfg, opts := loadConfig(dir)

		summaries, err := marytreat.Check(context.Background(), dir, cfg.Map, opts...)
		if err != nil {
			fatal("Failed to check project", err)
		}

		issues := []core.Issue{}
		for _, s := range summaries {
			issues = append(issues, s.Issues()...)
		}

		if checkJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(issues); err != nil {
				fatal("Failed to encode JSON", err)
			}
		} else {
			for _, issue := range issues {
				fmt.Printf("%s %s", color.YellowString("%-18s", issue.Kind), issue.Path)
				if issue.Detail != "" {
					fmt.Printf(" (%s)", issue.Detail)
				}
				fmt.Println()
			}
			if len(issues) == 0 {
				fmt.Println(color.GreenString("%d topics, no issues", len(summaries)))
			}
		}

		if len(issues) > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Output in JSON format")
}
