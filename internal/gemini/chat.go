package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
)

// Chat is a streaming conversation with the assistant model. One chat
// holds its own client so history survives across turns; callers must
// Close it when done.
type Chat struct {
	client  *genai.Client
	session *genai.ChatSession
}

// NewChat opens a chat session with the anime/manga assistant persona.
func (g *Gemini) NewChat(ctx context.Context) (*Chat, error) {
	client, err := newClient(ctx)
	if err != nil {
		return nil, err
	}

	name := os.Getenv("PANELBABEL_CHAT_MODEL")
	if name == "" {
		name = defaultChatModel
	}
	model := client.GenerativeModel(name)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(
			"You are a knowledgeable anime and manga assistant. You help users find series, understand lore, and discuss plot points. Be enthusiastic and helpful.")},
	}
	return &Chat{client: client, session: model.StartChat()}, nil
}

// Send streams one user message. onChunk is invoked for each response
// fragment as it arrives and may be nil; the full reply is returned.
func (c *Chat) Send(ctx context.Context, message string, onChunk func(string)) (string, error) {
	iter := c.session.SendMessageStream(ctx, genai.Text(message))
	var full string
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return full, fmt.Errorf("chat stream failed: %w", err)
		}
		chunk := responseText(resp)
		if chunk == "" {
			continue
		}
		full += chunk
		if onChunk != nil {
			onChunk(chunk)
		}
	}
	return full, nil
}

// Close releases the underlying client.
func (c *Chat) Close() {
	c.client.Close()
}
