package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ashwanth2007/TheVibeCoders/internal/db"
	"github.com/ashwanth2007/TheVibeCoders/internal/mcp"
	"github.com/ashwanth2007/TheVibeCoders/internal/project"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server on stdio",
	Long:  `Exposes the project store to AI agents over the Model Context Protocol: listing, searching, reading files, resolving previews and generating apps.`,
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

		// Generation and search are optional over MCP; their tools report
		// a configuration error when the keys are missing.
		gen, err := createGenerateService(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: generation disabled: %v\n", err)
			gen = nil
		}
		index, err := createSearchIndex(cfg)
		if err != nil {
			return fmt.Errorf("creating search index: %w", err)
		}
		if index != nil {
			if err := reindexProjects(cmd.Context(), store, index); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: indexing projects: %v\n", err)
			}
		}

		mcp.Version = Version
		srv := mcp.NewServer(store, index, gen)

		fmt.Fprintln(os.Stderr, "vibe MCP server listening on stdio")
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
