package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "vibe",
	Short: "AI-assisted web app studio with live preview",
	Long: `Vibe turns plain-language instructions into complete multi-file web
apps. It runs a local studio where every change is generated by AI,
animated into the editor, previewed live in a sandbox and recorded as a
version you can undo, redo or restore.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".vibecoders.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
