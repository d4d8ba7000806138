package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/marytreat"
)

var imagePrefix string

var renameCmd = &cobra.Command{
	Use:   "rename",
	Short: "Rename topic files after their titles",
	Long: `Rename every concept, task and reference after its title, prefixed by
its outputclass. Links, the map and ISH files follow the new names.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		p, _ := openProject(ctx)

		n, err := p.RenameTopics(ctx)
		if err != nil {
			fatal("Failed to rename topics", err)
		}
		if n > 0 {
			commit(ctx, p, marytreat.CommitTypeRefactor, fmt.Sprintf("rename %d topics", n))
		}
		fmt.Printf("Renamed %d topics.\n", n)
	},
}

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "Rename images after their figure titles",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		p, cfg := openProject(ctx)

		prefix := cfg.ImagePrefix
		if imagePrefix != "" {
			prefix = imagePrefix
		}

		n, err := p.RenameImages(ctx, prefix)
		if err != nil {
			fatal("Failed to rename images", err)
		}
		if n > 0 {
			commit(ctx, p, marytreat.CommitTypeRefactor, fmt.Sprintf("rename %d images", n))
		}
		fmt.Printf("Renamed %d images.\n", n)
	},
}

func init() {
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(imagesCmd)
	imagesCmd.Flags().StringVar(&imagePrefix, "prefix", "", "Product prefix of image names (default: image_prefix from config)")
}
