package translate

import "context"

// BoundingBox frames a detected text region, normalized to a 0-1000
// coordinate space regardless of the source image dimensions.
type BoundingBox struct {
	YMin int `json:"ymin" yaml:"ymin"`
	XMin int `json:"xmin" yaml:"xmin"`
	YMax int `json:"ymax" yaml:"ymax"`
	XMax int `json:"xmax" yaml:"xmax"`
}

// Bubble is one translated text element on a page: a speech bubble,
// narration box, or sound effect.
type Bubble struct {
	ID             string       `json:"id" yaml:"id"`
	OriginalText   string       `json:"original_text" yaml:"originaltext"`
	TranslatedText string       `json:"translated_text" yaml:"translatedtext"`
	Speaker        string       `json:"speaker,omitempty" yaml:"speaker,omitempty"`
	Box            *BoundingBox `json:"bounding_box,omitempty" yaml:"boundingbox,omitempty"`
}

// PageAnalysis is the structured result of translating one page.
type PageAnalysis struct {
	Summary string   `json:"summary" yaml:"summary"`
	Bubbles []Bubble `json:"bubbles" yaml:"bubbles"`
}

// Source attributes a piece of series context to a web page.
type Source struct {
	URI   string `json:"uri" yaml:"uri"`
	Title string `json:"title" yaml:"title"`
}

// SeriesContext is optional glossary/lore text that conditions every
// translation call so character names and terminology stay consistent
// across pages of the same work.
type SeriesContext struct {
	Title   string   `json:"title" yaml:"title"`
	Info    string   `json:"info" yaml:"info"`
	Sources []Source `json:"sources" yaml:"sources"`
}

// Translator is the external translation collaborator. Implementations
// perform the actual model calls; callers only manage per-page state
// around them.
type Translator interface {
	// TranslatePage analyzes one page image and returns the structured
	// translation. seriesContext may be empty.
	TranslatePage(ctx context.Context, image []byte, mimeType, seriesContext, targetLanguage string) (*PageAnalysis, error)

	// IdentifySeries guesses the series title shown on a page image.
	IdentifySeries(ctx context.Context, image []byte, mimeType string) (string, error)

	// SearchSeriesContext looks up plot, character, and terminology
	// information for a series title using search grounding.
	SearchSeriesContext(ctx context.Context, title string) (*SeriesContext, error)
}
