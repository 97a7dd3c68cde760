package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "panelbabel",
		Short: "Comic and manga page translation tool powered by Gemini",
		Long: `Panelbabel extracts page images from comics and manga in many formats
(PDF, EPUB, CBZ, Kindle AZW3/MOBI, raw images) and translates every
speech bubble with a vision LLM, preserving bounding boxes.

It runs as an HTTP API (serve) or as a one-shot CLI pipeline (translate).`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newTranslateCmd())

	return cmd
}
