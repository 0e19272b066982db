package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ashwanth2007/TheVibeCoders/internal/apply"
	"github.com/ashwanth2007/TheVibeCoders/internal/db"
	"github.com/ashwanth2007/TheVibeCoders/internal/generate"
	"github.com/ashwanth2007/TheVibeCoders/internal/history"
	"github.com/ashwanth2007/TheVibeCoders/internal/progress"
	"github.com/ashwanth2007/TheVibeCoders/internal/project"
	"github.com/ashwanth2007/TheVibeCoders/internal/studio"
	"github.com/ashwanth2007/TheVibeCoders/internal/vfs"
)

var newOutputDir string

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Generate a new app from the terminal",
	Long:  `Prompts for a name and a description, generates the app, records it as version 1 and writes the files to disk.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		gen, err := createGenerateService(cfg)
		if err != nil {
			return err
		}

		namePrompt := promptui.Prompt{
			Label: "Project name",
			Validate: func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("name must not be empty")
				}
				return nil
			},
		}
		name, err := namePrompt.Run()
		if err != nil {
			return fmt.Errorf("name prompt: %w", err)
		}

		instructionPrompt := promptui.Prompt{
			Label: "Describe the app",
			Validate: func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("description must not be empty")
				}
				return nil
			},
		}
		instruction, err := instructionPrompt.Run()
		if err != nil {
			return fmt.Errorf("description prompt: %w", err)
		}

		database, err := db.Open(filepath.Join(cfg.DataDir, "vibe.db"))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		store := project.NewStore(database)
		ctx := cmd.Context()

		p, err := store.Create(ctx, name, instruction)
		if err != nil {
			return fmt.Errorf("creating project: %w", err)
		}

		fmt.Fprintln(os.Stderr, "Generating...")
		resp, err := gen.Generate(ctx, generate.Request{Instruction: instruction})
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "\n%s\n\n", resp.Plan)

		if err := runApply(ctx, store, p.ID, resp, instruction); err != nil {
			return err
		}

		outDir := newOutputDir
		if outDir == "" {
			outDir = name
		}
		if err := writeFiles(outDir, resp); err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "\nCreated project %s (id: %s), files in %s/\n", name, p.ID, outDir)
		fmt.Fprintf(os.Stderr, "Run `vibe server` and open the studio to keep iterating.\n")
		return nil
	},
}

// storeCommitter commits an apply target straight into a stored project's
// history.
type storeCommitter struct {
	store     *project.Store
	projectID string
}

func (c *storeCommitter) Commit(ctx context.Context, files vfs.FileSet, prompt string) (history.Entry, error) {
	p, err := c.store.Get(ctx, c.projectID)
	if err != nil {
		return history.Entry{}, err
	}
	entry := p.History.Append(files, prompt)
	return entry, c.store.SaveHistory(ctx, c.projectID, p.History)
}

// runApply records version 1 through the apply engine so the terminal
// shows the same per-file progress the studio animates.
func runApply(ctx context.Context, store *project.Store, projectID string, resp *generate.Response, instruction string) error {
	editor := studio.NewEditorBuffers()
	committer := &storeCommitter{store: store, projectID: projectID}
	reporter := progress.NewReporter()

	engine := apply.NewEngine(editor, committer, nil, progress.ApplyListener(reporter), cliApplyOptions())
	session, err := engine.Begin(ctx, resp.Files, instruction)
	if err != nil {
		return err
	}
	session.Wait()
	return nil
}

// cliApplyOptions shortens the reveal timings; the terminal shows a bar,
// not a typewriter.
func cliApplyOptions() apply.Options {
	opts := apply.DefaultOptions()
	opts.BaseDuration = opts.BaseDuration / 7
	opts.PerRune = 0
	opts.MaxFileDuration = opts.BaseDuration
	return opts
}

// writeFiles materializes the generated file set under dir.
func writeFiles(dir string, resp *generate.Response) error {
	for _, f := range resp.Files {
		path := filepath.Join(dir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(f.Content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}

func init() {
	newCmd.Flags().StringVarP(&newOutputDir, "output", "o", "", "directory to write the files to (default: the project name)")
	rootCmd.AddCommand(newCmd)
}
