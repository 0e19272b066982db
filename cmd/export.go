package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ashwanth2007/TheVibeCoders/internal/db"
	"github.com/ashwanth2007/TheVibeCoders/internal/export"
	"github.com/ashwanth2007/TheVibeCoders/internal/project"
)

var (
	exportOutput  string
	exportInclude []string
	exportExclude []string
)

var exportCmd = &cobra.Command{
	Use:   "export <project-id>",
	Short: "Export a project's current version as a zip archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		database, err := db.Open(filepath.Join(cfg.DataDir, "vibe.db"))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		store := project.NewStore(database)
		p, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		entry, ok := p.History.Current()
		if !ok {
			return fmt.Errorf("project %s has no files yet", p.Name)
		}

		include := exportInclude
		if len(include) == 0 {
			include = cfg.Export.Include
		}
		exclude := exportExclude
		if len(exclude) == 0 {
			exclude = cfg.Export.Exclude
		}

		out := exportOutput
		if out == "" {
			out = strings.ReplaceAll(p.Name, " ", "-") + ".zip"
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		defer f.Close()

		if err := export.Archive(f, entry.Files, include, exclude); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Exported %d files to %s\n", len(entry.Files.Filtered(include, exclude)), out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output zip path (default: <project-name>.zip)")
	exportCmd.Flags().StringSliceVar(&exportInclude, "include", nil, "glob patterns of files to include")
	exportCmd.Flags().StringSliceVar(&exportExclude, "exclude", nil, "glob patterns of files to exclude")
	rootCmd.AddCommand(exportCmd)
}
