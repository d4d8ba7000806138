package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aretw0/marytreat/pkg/releasenotes"
)

var (
	notesFile  string
	noSemver   bool
	draftFrom  string
	draftTo    string
	draftWrite bool
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Work with the Markdown release notes",
}

var notesLintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Check the release notes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		file, title := notesPath()
		doc, err := readNotes(file, false)
		if err != nil {
			fatal("Failed to read release notes", err)
		}

		opts := releasenotes.DefaultLintOptions()
		opts.Title = title
		opts.Semver = !noSemver
		opts.Descending = !noSemver

		problems := releasenotes.Lint(doc, opts)
		for _, p := range problems {
			fmt.Printf("%s:%s\n", file, color.RedString("%s", p))
		}
		if len(problems) > 0 {
			os.Exit(1)
		}
		fmt.Println(color.GreenString("%d versions, no problems", len(doc.Versions)))
	},
}

var notesFmtCmd = &cobra.Command{
	Use:   "fmt",
	Short: "Rewrite the release notes in canonical form",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		file, _ := notesPath()
		doc, err := readNotes(file, false)
		if err != nil {
			fatal("Failed to read release notes", err)
		}
		if err := writeNotes(file, doc); err != nil {
			fatal("Failed to write release notes", err)
		}
	},
}

var notesAddCmd = &cobra.Command{
	Use:   "add <version> <entry>",
	Short: "Add an entry to a version, creating the version on top if needed",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		file, title := notesPath()
		doc, err := readNotes(file, true)
		if err != nil {
			fatal("Failed to read release notes", err)
		}
		if doc.Title == "" {
			doc.Title = title
		}
		if err := doc.AddEntry(args[0], args[1]); err != nil {
			fatal("Failed to add entry", err)
		}
		if err := writeNotes(file, doc); err != nil {
			fatal("Failed to write release notes", err)
		}
	},
}

var notesDraftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Draft a version from the Git history",
	Long: `Draft a version whose entries are the commit subjects between --from
(exclusive) and --to. The draft is printed, or added on top of the release
notes with --write.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		file, title := notesPath()
		v, err := releasenotes.Draft(projectDir(), draftFrom, draftTo)
		if err != nil {
			fatal("Failed to draft release notes", err)
		}
		if len(v.Entries) == 0 {
			fatal("Failed to draft release notes", errors.New("no commits in range"))
		}

		if !draftWrite {
			if err := releasenotes.Render(os.Stdout, &releasenotes.Document{Title: title, Versions: []releasenotes.Version{*v}}); err != nil {
				fatal("Failed to render draft", err)
			}
			return
		}

		doc, err := readNotes(file, true)
		if err != nil {
			fatal("Failed to read release notes", err)
		}
		if doc.Title == "" {
			doc.Title = title
		}
		if doc.Version(v.Name) != nil {
			fatal("Failed to add draft", fmt.Errorf("version %s already exists", v.Name))
		}
		for _, e := range v.Entries {
			if err := doc.AddEntry(v.Name, e); err != nil {
				fatal("Failed to add draft", err)
			}
		}
		if err := writeNotes(file, doc); err != nil {
			fatal("Failed to write release notes", err)
		}
		fmt.Printf("Added %s with %d entries.\n", v.Name, len(v.Entries))
	},
}

// notesPath returns the release notes file and its expected title.
func notesPath() (string, string) {
	dir := projectDir()
	cfg, _ := loadConfig(dir)
	if notesFile != "" {
		return notesFile, cfg.ReleaseNotesTitle
	}
	return filepath.Join(dir, cfg.ReleaseNotesFile), cfg.ReleaseNotesTitle
}

func readNotes(file string, allowMissing bool) (*releasenotes.Document, error) {
	f, err := os.Open(file)
	if allowMissing && os.IsNotExist(err) {
		return &releasenotes.Document{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return releasenotes.Parse(f)
}

func writeNotes(file string, doc *releasenotes.Document) error {
	var buf bytes.Buffer
	if err := releasenotes.Render(&buf, doc); err != nil {
		return err
	}
	return os.WriteFile(file, buf.Bytes(), 0644)
}

func init() {
	rootCmd.AddCommand(notesCmd)
	notesCmd.AddCommand(notesLintCmd, notesFmtCmd, notesAddCmd, notesDraftCmd)
	notesCmd.PersistentFlags().StringVarP(&notesFile, "file", "f", "", "Release notes file (default: release_notes_file from config)")
	notesLintCmd.Flags().BoolVar(&noSemver, "no-semver", false, "Allow version names that are not semantic versions")
	notesDraftCmd.Flags().StringVar(&draftFrom, "from", "", "Previous release ref (exclusive)")
	notesDraftCmd.Flags().StringVar(&draftTo, "to", "HEAD", "Release ref")
	notesDraftCmd.Flags().BoolVarP(&draftWrite, "write", "w", false, "Add the draft to the release notes file")
}
