package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ashwanth2007/TheVibeCoders/internal/db"
	"github.com/ashwanth2007/TheVibeCoders/internal/project"
	"github.com/ashwanth2007/TheVibeCoders/internal/search"
	"github.com/ashwanth2007/TheVibeCoders/internal/server"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the vibe studio server",
	Long:  `Starts the local studio server: project REST API, live preview sandbox, semantic search and the studio websocket.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serverPort != 0 {
			cfg.Port = serverPort
		}

		gen, err := createGenerateService(cfg)
		if err != nil {
			return fmt.Errorf("creating generation service: %w", err)
		}

		index, err := createSearchIndex(cfg)
		if err != nil {
			return fmt.Errorf("creating search index: %w", err)
		}
		if index == nil {
			fmt.Fprintln(os.Stderr, "Warning: OPENAI_API_KEY not set; project search is disabled")
		}

		dbPath := filepath.Join(cfg.DataDir, "vibe.db")
		database, err := db.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		srv := server.New(server.Config{
			Port:     cfg.Port,
			DataDir:  cfg.DataDir,
			AllowAll: cfg.AllowAll,
		}, database, gen, index)

		// Index existing projects so search works from the first request.
		if index != nil {
			if err := reindexProjects(cmd.Context(), srv.Projects(), index); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: indexing projects: %v\n", err)
			}
		}

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "vibe studio v%s starting on port %d\n", Version, cfg.Port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "  Provider: %s (%s)\n", cfg.Provider, cfg.Model)

		return srv.Start()
	},
}

// reindexProjects loads every stored project into the search index.
func reindexProjects(ctx context.Context, projects *project.Store, index *search.Store) error {
	summaries, err := projects.List(ctx)
	if err != nil {
		return err
	}
	for _, sum := range summaries {
		p, err := projects.Get(ctx, sum.ID)
		if err != nil {
			return err
		}
		if err := index.IndexProject(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serverCmd)
}
