package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/panelbabel/panelbabel/internal/gemini"
	"github.com/panelbabel/panelbabel/internal/handlers"
	"github.com/panelbabel/panelbabel/internal/imagegen"
	"github.com/panelbabel/panelbabel/internal/pages"
	"github.com/panelbabel/panelbabel/internal/scheduler"
	"github.com/panelbabel/panelbabel/internal/session"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the translation API server",
		Long: `Starts the Panelbabel HTTP API on the specified port.

The API accepts comic/manga files (PDF, EPUB, CBZ, AZW3/MOBI, images),
extracts page images, and translates them with Gemini.`,
		Example: `  # Start server on default port 8888
  panelbabel serve

  # Start server on custom port
  panelbabel serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			collaborator := gemini.New()
			sess := session.New(pages.NewStore(), collaborator)
			bulk := scheduler.NewBulk(sess)

			var generator *imagegen.Generator
			if key := os.Getenv("GEMINI_API_KEY"); key != "" {
				generator = imagegen.New(collaborator, imagegen.NewEnvKeySelector(key))
			}

			handler := handlers.New(sess, bulk, generator, collaborator)

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/pages", handler.HandlePages)
			mux.HandleFunc("/api/pages/", handler.HandlePageDetail)
			mux.HandleFunc("/api/pages/select", handler.HandleSelect)
			mux.HandleFunc("/api/translate/bulk", handler.HandleBulk)
			mux.HandleFunc("/api/context/detect", handler.HandleContextDetect)
			mux.HandleFunc("/api/context", handler.HandleContext)
			mux.HandleFunc("/api/language", handler.HandleLanguage)
			mux.HandleFunc("/api/generate", handler.HandleGenerate)
			mux.HandleFunc("/api/chat", handler.HandleChat)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Panelbabel API available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")

	return cmd
}
