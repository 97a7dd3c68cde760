package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/panelbabel/panelbabel/internal/translate"
	"google.golang.org/api/option"
)

const (
	defaultModel      = "gemini-2.5-flash"
	defaultChatModel  = "gemini-3-pro-preview"
	defaultImageModel = "gemini-3-pro-image-preview"

	// unknownSeries is the identification fallback when the model is
	// unsure or unreachable.
	unknownSeries = "Unknown Series"
)

// Gemini is the translation collaborator backed by Google Gemini.
type Gemini struct{}

// New returns a new Gemini collaborator.
func New() *Gemini {
	return &Gemini{}
}

func apiKey() (string, error) {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		return "", fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}
	return key, nil
}

func modelName() string {
	if m := os.Getenv("PANELBABEL_MODEL"); m != "" {
		return m
	}
	return defaultModel
}

func newClient(ctx context.Context) (*genai.Client, error) {
	key, err := apiKey()
	if err != nil {
		return nil, err
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(key))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return client, nil
}

// translationSchema mirrors the analysis result the prompt asks for:
// a summary plus one object per visual bubble, with the bounding box
// as a [ymin, xmin, ymax, xmax] array on a 0-1000 scale.
func translationSchema(targetLanguage string) *genai.Schema {
	bubble := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"id":           {Type: genai.TypeString, Description: "Unique identifier for the bubble, e.g. 'b1'"},
			"originalText": {Type: genai.TypeString, Description: "The original text detected."},
			"translatedText": {
				Type:        genai.TypeString,
				Description: fmt.Sprintf("The %s translation of the text.", targetLanguage),
			},
			"speaker": {Type: genai.TypeString, Description: "Inferred speaker or 'SFX' for sound effects."},
			"boundingBox": {
				Type:        genai.TypeArray,
				Description: "The bounding box of the text bubble in [ymin, xmin, ymax, xmax] format, normalized to 0-1000. It must be TIGHT around the text.",
				Items:       &genai.Schema{Type: genai.TypeInteger},
			},
		},
		Required: []string{"id", "originalText", "translatedText", "boundingBox"},
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": {Type: genai.TypeString, Description: "A brief summary of what is happening in this page."},
			"bubbles": {
				Type:        genai.TypeArray,
				Items:       bubble,
				Description: "List of all text bubbles and sound effects detected.",
			},
		},
		Required: []string{"summary", "bubbles"},
	}
}

func buildTranslationPrompt(seriesContext, targetLanguage string) string {
	var sb strings.Builder
	sb.WriteString("You are an expert Manga Translator and Localizer.\n\n")
	fmt.Fprintf(&sb, "TARGET LANGUAGE: %s\n\n", targetLanguage)
	if seriesContext != "" {
		sb.WriteString("=== SERIES CONTEXT & GLOSSARY ===\n")
		sb.WriteString(seriesContext)
		sb.WriteString("\n=================================\n")
		sb.WriteString("INSTRUCTION:\n")
		sb.WriteString("- You MUST use the character names and terminology provided in the context above.\n")
		sb.WriteString("- Match the tone described in the context.\n\n")
	}
	sb.WriteString("TASK:\n")
	sb.WriteString("Analyze the provided manga page image.\n")
	sb.WriteString("1. Detect ALL text elements: speech bubbles, narration boxes, floating text, and sound effects (SFX).\n")
	fmt.Fprintf(&sb, "2. Extract original text and translate to %s.\n", targetLanguage)
	sb.WriteString("3. Return STRICT JSON.\n\n")
	sb.WriteString("CRITICAL RULES - READ CAREFULLY:\n")
	sb.WriteString("1. **ONE VISUAL BUBBLE = ONE JSON OBJECT**.\n")
	sb.WriteString("   - NEVER merge text from multiple bubbles into a single result, even if they form one sentence.\n")
	sb.WriteString("   - If a character says \"Hello...\" in one bubble and \"...world\" in another, output TWO separate objects with their own bounding boxes.\n")
	sb.WriteString("2. **PRECISE BOUNDING BOXES**:\n")
	sb.WriteString("   - Coordinates [ymin, xmin, ymax, xmax] (0-1000 scale) must frame the TEXT closely, not the whole white bubble space.\n")
	sb.WriteString("3. **SFX & SIDE TEXT**:\n")
	sb.WriteString("   - Include small handwriting and sound effects. Label speaker as \"SFX\" for sound effects.\n")
	sb.WriteString("4. **NO HALLUCINATIONS**:\n")
	sb.WriteString("   - Do not invent text that isn't visually present.\n")
	return sb.String()
}

type wireBubble struct {
	ID             string `json:"id"`
	OriginalText   string `json:"originalText"`
	TranslatedText string `json:"translatedText"`
	Speaker        string `json:"speaker"`
	BoundingBox    []int  `json:"boundingBox"`
}

type wireAnalysis struct {
	Summary string       `json:"summary"`
	Bubbles []wireBubble `json:"bubbles"`
}

// TranslatePage sends one page image to Gemini and decodes the
// structured translation result.
func (g *Gemini) TranslatePage(ctx context.Context, image []byte, mimeType, seriesContext, targetLanguage string) (*translate.PageAnalysis, error) {
	client, err := newClient(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	model := client.GenerativeModel(modelName())
	model.SetTemperature(0.4)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = translationSchema(targetLanguage)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(fmt.Sprintf(
			"You are a professional manga translator. You provide accurate translations in %s. You NEVER merge distinct text bubbles. Each visual text area gets its own bounding box.",
			targetLanguage))},
	}

	resp, err := model.GenerateContent(ctx,
		genai.Blob{MIMEType: mimeType, Data: image},
		genai.Text(buildTranslationPrompt(seriesContext, targetLanguage)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate translation: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	var wire wireAnalysis
	if err := json.Unmarshal([]byte(cleanJSON(text)), &wire); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w", err)
	}

	result := &translate.PageAnalysis{Summary: wire.Summary, Bubbles: make([]translate.Bubble, 0, len(wire.Bubbles))}
	for _, b := range wire.Bubbles {
		bubble := translate.Bubble{
			ID:             b.ID,
			OriginalText:   b.OriginalText,
			TranslatedText: b.TranslatedText,
			Speaker:        b.Speaker,
		}
		if len(b.BoundingBox) == 4 {
			bubble.Box = &translate.BoundingBox{
				YMin: b.BoundingBox[0],
				XMin: b.BoundingBox[1],
				YMax: b.BoundingBox[2],
				XMax: b.BoundingBox[3],
			}
		}
		result.Bubbles = append(result.Bubbles, bubble)
	}
	return result, nil
}

// IdentifySeries asks Gemini to name the series shown on a page.
// Returns "Unknown Series" when the model is unsure or the call fails,
// so the follow-up context search still runs with a generic title.
func (g *Gemini) IdentifySeries(ctx context.Context, image []byte, mimeType string) (string, error) {
	client, err := newClient(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel(modelName())
	resp, err := model.GenerateContent(ctx,
		genai.Blob{MIMEType: mimeType, Data: image},
		genai.Text("Identify the manga series shown in this image. Return ONLY the exact title of the series. If you cannot identify it with certainty, return 'Unknown Series'."),
	)
	if err != nil {
		slog.Warn("Series identification failed, using fallback title", "error", err)
	}
	return seriesTitle(responseText(resp), err), nil
}

// seriesTitle maps an identification outcome to a usable title: call
// failures and blank responses both degrade to the generic fallback
// instead of aborting context detection.
func seriesTitle(title string, err error) string {
	if err != nil {
		return unknownSeries
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return unknownSeries
	}
	return title
}

// SearchSeriesContext fetches plot, character, and terminology notes
// for a series title, grounded with Google Search. Attribution comes
// from the response's citation metadata.
func (g *Gemini) SearchSeriesContext(ctx context.Context, title string) (*translate.SeriesContext, error) {
	client, err := newClient(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	model := client.GenerativeModel(modelName())
	model.Tools = []*genai.Tool{{GoogleSearchRetrieval: &genai.GoogleSearchRetrieval{}}}

	prompt := fmt.Sprintf(`Search for the manga series %q. Provide a structured summary including:
1. A brief plot summary (max 2 sentences).
2. A list of main character names with their official localized spellings.
3. Key terminology, specific glossary terms, or lore definitions.
4. The genre and general tone (e.g., comedic, dark, formal).
Keep the total output under 400 words.`, title)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to search series context: %w", err)
	}

	info := responseText(resp)
	if info == "" {
		info = "No context found."
	}

	sc := &translate.SeriesContext{Title: title, Info: info, Sources: []translate.Source{}}
	if len(resp.Candidates) > 0 && resp.Candidates[0].CitationMetadata != nil {
		for _, cs := range resp.Candidates[0].CitationMetadata.CitationSources {
			if cs.URI == nil || *cs.URI == "" {
				continue
			}
			sc.Sources = append(sc.Sources, translate.Source{URI: *cs.URI, Title: *cs.URI})
		}
	}
	return sc, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String()
}

// cleanJSON strips markdown code fences some responses wrap around
// JSON payloads despite the response MIME type.
func cleanJSON(text string) string {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}
