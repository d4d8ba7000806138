package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/marytreat"
)

var (
	verbose bool
	dirFlag string
	mapFlag string
	noGit   bool
	message string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "marytreat",
	Short: "Post-process DITA projects exported from Word or a CMS",
	Long: `MaryTreat renames topics and images after their titles, fills boilerplate
short descriptions, casts Word topics to DITA types and keeps the map and
ISH files in step. Inside a Git work tree every operation ends with a commit.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&dirFlag, "dir", "C", "", "Project folder (default: discovered from the working directory)")
	rootCmd.PersistentFlags().StringVar(&mapFlag, "map", "", "Ditamap relative to the project folder (default: the only one)")
	rootCmd.PersistentFlags().BoolVar(&noGit, "no-git", false, "Do not stage or commit changes")
	rootCmd.PersistentFlags().StringVarP(&message, "message", "m", "", "Commit message (default: generated from the operation)")
}

// projectDir returns the --dir flag or the project root above the working directory.
func projectDir() string {
	if dirFlag != "" {
		return dirFlag
	}
	cwd, err := os.Getwd()
	if err != nil {
		fatal("Failed to get CWD", err)
	}
	root, err := marytreat.FindRoot(cwd)
	if err != nil {
		return cwd
	}
	return root
}

// loadConfig reads the project configuration and applies the global flags.
func loadConfig(dir string) (marytreat.Config, []marytreat.Option) {
	cfg, err := marytreat.LoadConfig(dir)
	if err != nil {
		fatal("Failed to load config", err)
	}
	if mapFlag != "" {
		cfg.Map = mapFlag
	}
	opts := append(cfg.Options(), marytreat.WithLogger(slog.Default()))
	if noGit {
		opts = append(opts, marytreat.WithVersioning(false))
	}
	return cfg, opts
}

// openProject loads the project the command works on.
func openProject(ctx context.Context) (*marytreat.Project, marytreat.Config) {
	dir := projectDir()
	cfg, opts := loadConfig(dir)
	p, err := marytreat.Open(ctx, dir, cfg.Map, opts...)
	if err != nil {
		fatal("Failed to open project", err)
	}
	return p, cfg
}

// commit records the changes of an operation.
func commit(ctx context.Context, p *marytreat.Project, ctype, subject string) {
	msg := marytreat.FormatCommitMessage(ctype, "dita", subject, "")
	if message != "" {
		msg = marytreat.AppendFooter(message)
	}
	if err := p.Commit(ctx, msg); err != nil {
		fatal("Failed to commit", err)
	}
}
