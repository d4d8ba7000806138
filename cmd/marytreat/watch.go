package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aretw0/marytreat"
	mtlifecycle "github.com/aretw0/marytreat/pkg/adapters/lifecycle"
	"github.com/aretw0/marytreat/pkg/core"
)

var watchPattern string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Report issues of topics as they change",
	Long: `Watch the project folder and re-check the map whenever a topic or the
map changes. Stops on Ctrl+C.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		dir := projectDir()
		cfg, opts := loadConfig(dir)
		if watchPattern != "" {
			cfg.WatchPattern = watchPattern
		}
		opts = append(opts, marytreat.WithVersioning(false), marytreat.WithWatcherErrorHandler(func(err error) {
			slog.Error("watcher error", "error", err)
		}))

		store, err := marytreat.Init(ctx, dir, opts...)
		if err != nil {
			fatal("Failed to open project folder", err)
		}
		w, ok := store.(core.Watchable)
		if !ok {
			fatal("Failed to watch", errors.New("store cannot be watched"))
		}
		events, err := w.Watch(ctx, cfg.WatchPattern)
		if err != nil {
			fatal("Failed to watch", err)
		}

		src := mtlifecycle.NewSource(events, func(e core.Event) bool {
			ext := path.Ext(e.Path)
			return ext == ".dita" || ext == ".ditamap"
		})
		if err := src.Start(ctx); err != nil {
			fatal("Failed to watch", err)
		}

		fmt.Printf("Watching %s (%s)\n", dir, cfg.WatchPattern)
		for e := range src.Events() {
			fmt.Println(color.CyanString("%s", e))
			summaries, err := marytreat.Check(ctx, dir, cfg.Map, marytreat.WithStore(store))
			if err != nil {
				slog.Warn("check failed", "error", err)
				continue
			}
			for _, s := range summaries {
				for _, issue := range s.Issues() {
					fmt.Printf("  %s %s\n", color.YellowString("%-18s", issue.Kind), issue.Path)
				}
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchPattern, "pattern", "", "Glob of watched files (default: watch_pattern from config)")
}
