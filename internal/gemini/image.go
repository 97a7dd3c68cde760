package gemini

import (
	"context"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
)

// GenerateImage produces an image for the given prompt at a requested
// output size (1K, 2K, or 4K). The response may interleave text and
// image parts; the first inline image wins. Returns the raw bytes and
// their mime type.
func (g *Gemini) GenerateImage(ctx context.Context, prompt, size string) ([]byte, string, error) {
	client, err := newClient(ctx)
	if err != nil {
		return nil, "", err
	}
	defer client.Close()

	name := os.Getenv("PANELBABEL_IMAGE_MODEL")
	if name == "" {
		name = defaultImageModel
	}
	model := client.GenerativeModel(name)

	full := fmt.Sprintf("%s\n\nRender the image at %s resolution with a 1:1 aspect ratio.", prompt, size)
	resp, err := model.GenerateContent(ctx, genai.Text(full))
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate image: %w", err)
	}

	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if blob, ok := part.(genai.Blob); ok && len(blob.Data) > 0 {
				mimeType := blob.MIMEType
				if mimeType == "" {
					mimeType = "image/png"
				}
				return blob.Data, mimeType, nil
			}
		}
	}
	return nil, "", fmt.Errorf("no image data found in response")
}
