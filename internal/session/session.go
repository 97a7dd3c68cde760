package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panelbabel/panelbabel/internal/pages"
	"github.com/panelbabel/panelbabel/internal/translate"
)

// translateTimeout caps a single collaborator round trip. Ingestion has
// no timeout; this is the only one in the pipeline.
const translateTimeout = 60 * time.Second

// DefaultLanguage is the target language used until the user picks one.
const DefaultLanguage = "English"

// Session ties together the page store, the optional series context,
// and the target language for one translation sitting. All page state
// mutations triggered by translation go through here.
type Session struct {
	store      *pages.Store
	translator translate.Translator

	mu       sync.RWMutex
	seriesCx *translate.SeriesContext
	language string
}

func New(store *pages.Store, translator translate.Translator) *Session {
	return &Session{
		store:      store,
		translator: translator,
		language:   DefaultLanguage,
	}
}

// Store exposes the underlying page store.
func (s *Session) Store() *pages.Store {
	return s.store
}

// TranslatePage runs the collaborator against one page and records the
// outcome. The page is claimed atomically up front, so duplicate
// triggers (the UI and the bulk loop racing on the same page, or
// repeated requests) collapse to one collaborator call; the losers
// return without doing anything.
func (s *Session) TranslatePage(ctx context.Context, id string) {
	if !s.store.BeginAnalyzing(id) {
		return
	}
	page, ok := s.store.Get(id)
	if !ok {
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, translateTimeout)
	defer cancel()

	result, err := s.translator.TranslatePage(callCtx, page.ImageData, page.MIMEType, s.contextString(), s.Language())
	if err != nil {
		slog.Warn("Page translation failed", "page", id, "source", page.SourceName, "error", err)
		s.store.Update(id, pages.PatchError("Translation failed. Click to retry."))
		return
	}
	s.store.Update(id, pages.PatchComplete(result))
	slog.Info("Page translated", "page", id, "source", page.SourceName, "bubbles", len(result.Bubbles))
}

// DetectContext identifies the series from the given page and fills in
// the series context via a search-grounded lookup.
func (s *Session) DetectContext(ctx context.Context, pageID string) (*translate.SeriesContext, error) {
	page, ok := s.store.Get(pageID)
	if !ok {
		return nil, fmt.Errorf("page %s not found", pageID)
	}

	title, err := s.translator.IdentifySeries(ctx, page.ImageData, page.MIMEType)
	if err != nil {
		return nil, fmt.Errorf("failed to identify series: %w", err)
	}
	sc, err := s.translator.SearchSeriesContext(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch series context: %w", err)
	}
	s.SetContext(sc)
	return sc, nil
}

// SetContext installs a series context (detected or manually entered).
func (s *Session) SetContext(sc *translate.SeriesContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seriesCx = sc
}

// Context returns the current series context, or nil.
func (s *Session) Context() *translate.SeriesContext {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seriesCx
}

// ClearContext drops the series context.
func (s *Session) ClearContext() {
	s.SetContext(nil)
}

// SetLanguage changes the target language for subsequent translations.
func (s *Session) SetLanguage(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.language = name
}

// Language returns the current target language.
func (s *Session) Language() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.language
}

// contextString renders the series context as the auxiliary prompt
// block passed to every translation call.
func (s *Session) contextString() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.seriesCx == nil {
		return ""
	}
	return fmt.Sprintf("Series Title: %s\nKey Context & Terminology:\n%s", s.seriesCx.Title, s.seriesCx.Info)
}
