package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/marytreat"
)

var rootTitle string

var shortdescsCmd = &cobra.Command{
	Use:   "shortdescs",
	Short: "Fill boilerplate short descriptions",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		p, _ := openProject(ctx)

		changed, err := p.ApplyBoilerplateShortdescs(ctx)
		if err != nil {
			fatal("Failed to apply short descriptions", err)
		}
		if len(changed) > 0 {
			commit(ctx, p, marytreat.CommitTypeDocs, "add boilerplate short descriptions")
			fmt.Println(strings.Join(changed, "\n"))
		}
		fmt.Printf("Updated %d topics.\n", len(changed))
	},
}

var castCmd = &cobra.Command{
	Use:   "cast",
	Short: "Convert Word topics to concept, task or reference",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runCount("cast topics", marytreat.CommitTypeRefactor, (*marytreat.Project).CastFromWord)
	},
}

var wrapImagesCmd = &cobra.Command{
	Use:   "wrap-images",
	Short: "Wrap bare images in figures",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runCount("wrap images in figures", marytreat.CommitTypeFix, (*marytreat.Project).WrapImages)
	},
}

var deleteTaskContextCmd = &cobra.Command{
	Use:   "delete-task-context",
	Short: "Remove the context section of procedure topics",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runCount("delete task contexts", marytreat.CommitTypeFix, (*marytreat.Project).DeleteTaskContext)
	},
}

var rootConceptCmd = &cobra.Command{
	Use:   "root-concept",
	Short: "Nest every topic of the map under a new root concept",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		p, cfg := openProject(ctx)

		title := cfg.RootConceptTitle
		if rootTitle != "" {
			title = rootTitle
		}

		if err := p.CreateRootConcept(ctx, title); err != nil {
			fatal("Failed to create root concept", err)
		}
		commit(ctx, p, marytreat.CommitTypeFeat, "add root concept")
		fmt.Printf("Created root concept %q.\n", title)
	},
}

// runCount opens the project, runs op and commits when op changed files.
func runCount(subject, ctype string, op func(*marytreat.Project, context.Context) (int, error)) {
	ctx := context.Background()
	p, _ := openProject(ctx)

	n, err := op(p, ctx)
	if err != nil {
		fatal("Failed to "+subject, err)
	}
	if n > 0 {
		commit(ctx, p, ctype, subject)
	}
	fmt.Printf("Changed %d topics.\n", n)
}

func init() {
	rootCmd.AddCommand(shortdescsCmd)
	rootCmd.AddCommand(castCmd)
	rootCmd.AddCommand(wrapImagesCmd)
	rootCmd.AddCommand(deleteTaskContextCmd)
	rootCmd.AddCommand(rootConceptCmd)
	rootConceptCmd.Flags().StringVar(&rootTitle, "title", "", "Title of the root concept (default: root_concept_title from config)")
}
