package cmd

import (
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"

	"github.com/panelbabel/panelbabel/internal/export"
	"github.com/panelbabel/panelbabel/internal/gemini"
	"github.com/panelbabel/panelbabel/internal/ingest"
	"github.com/panelbabel/panelbabel/internal/languages"
	"github.com/panelbabel/panelbabel/internal/pages"
	"github.com/panelbabel/panelbabel/internal/scheduler"
	"github.com/panelbabel/panelbabel/internal/session"
	"github.com/panelbabel/panelbabel/internal/translate"
	"github.com/spf13/cobra"
)

func newTranslateCmd() *cobra.Command {
	var (
		language     string
		report       bool
		dataset      string
		contextTitle string
		contextInfo  string
	)

	cmd := &cobra.Command{
		Use:   "translate <files...>",
		Short: "Translate comic/manga files and export the results",
		Long: `Extracts page images from the given files (PDF, EPUB, CBZ, AZW3/MOBI,
raw images), translates every page with Gemini, and writes the results.`,
		Example: `  # Translate a volume to English and write a YAML report
  panelbabel translate volume1.pdf --report

  # Translate to Brazilian Portuguese with a known series glossary
  panelbabel translate chapter*.cbz --language pt-br \
    --context-title "One Piece" --context-info "Luffy, Zoro, Nami..."

  # Build a translation-memory dataset
  panelbabel translate book.azw3 --dataset pairs.parquet`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, ok := languages.ByCode(language)
			if !ok {
				return fmt.Errorf("unsupported language code %q", language)
			}

			slog.Info("Starting translation run", "files", len(args), "language", lang.Name)

			// Read inputs up front so missing files fail fast
			files := make([]ingest.InputFile, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				files = append(files, ingest.InputFile{
					Name:        filepath.Base(path),
					ContentType: mime.TypeByExtension(filepath.Ext(path)),
					Data:        data,
				})
			}

			store := pages.NewStore()
			sess := session.New(store, gemini.New())
			sess.SetLanguage(lang.Name)
			if contextTitle != "" {
				sess.SetContext(&translate.SeriesContext{Title: contextTitle, Info: contextInfo})
			}

			ctx := cmd.Context()
			dispatcher := ingest.NewDispatcher(store, func(message string) {
				slog.Warn(message)
			})
			dispatcher.Ingest(ctx, files)
			if store.Len() == 0 {
				return fmt.Errorf("no pages extracted from input files")
			}
			slog.Info("Extraction complete", "pages", store.Len())

			// Run the bulk loop to completion
			bulk := scheduler.NewBulk(sess)
			bulk.Start(ctx)
			bulk.Wait()

			records := store.Snapshot()
			complete := store.CountByStatus(pages.StatusComplete)
			failed := store.CountByStatus(pages.StatusError)
			slog.Info("Translation run finished", "pages", len(records), "complete", complete, "failed", failed)

			if report {
				path, err := export.SaveReport(modelForReport(), lang.Name, contextTitle, records)
				if err != nil {
					return fmt.Errorf("failed to save report: %w", err)
				}
				fmt.Printf("\nReport saved to: %s\n", path)
			}
			if dataset != "" {
				if err := export.SaveDataset(dataset, lang.Name, records); err != nil {
					return fmt.Errorf("failed to save dataset: %w", err)
				}
				fmt.Printf("Dataset saved to: %s\n", dataset)
			}
			if failed > 0 {
				return fmt.Errorf("%d page(s) failed to translate", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "en", "Target language code (en, es-la, pt-br, fr, de, jp, ...)")
	cmd.Flags().BoolVar(&report, "report", false, "Write a YAML report under reports/")
	cmd.Flags().StringVar(&dataset, "dataset", "", "Write a Parquet dataset of translation pairs to this path")
	cmd.Flags().StringVar(&contextTitle, "context-title", "", "Series title for the translation glossary")
	cmd.Flags().StringVar(&contextInfo, "context-info", "", "Series terminology and tone notes")

	return cmd
}

func modelForReport() string {
	if m := os.Getenv("PANELBABEL_MODEL"); m != "" {
		return m
	}
	return "gemini-2.5-flash"
}
