// Package imagegen produces standalone images from text prompts. The
// feature is gated on an explicitly selected API key rather than any
// ambient credential.
package imagegen

import (
	"context"
	"fmt"
)

// Sizes supported for generated output.
const (
	Size1K = "1K"
	Size2K = "2K"
	Size4K = "4K"
)

// KeySelector is the capability that decides whether image generation
// is available. Callers inject it; there is no global fallback.
type KeySelector interface {
	// HasKey reports whether a usable key is already selected.
	HasKey() bool
	// SelectKey attempts to select a key, returning an error when none
	// is available.
	SelectKey(ctx context.Context) error
}

// Backend produces image bytes for a prompt at a requested size.
type Backend interface {
	GenerateImage(ctx context.Context, prompt, size string) ([]byte, string, error)
}

// Generator wraps a backend behind the key-selection gate.
type Generator struct {
	backend Backend
	keys    KeySelector
}

func New(backend Backend, keys KeySelector) *Generator {
	return &Generator{backend: backend, keys: keys}
}

// Available reports whether generation can run right now.
func (g *Generator) Available() bool {
	return g.keys.HasKey()
}

// Generate produces one image. The key gate runs first: if no key is
// selected yet, selection is attempted before any model call.
func (g *Generator) Generate(ctx context.Context, prompt, size string) ([]byte, string, error) {
	if prompt == "" {
		return nil, "", fmt.Errorf("prompt is required")
	}
	switch size {
	case Size1K, Size2K, Size4K:
	case "":
		size = Size1K
	default:
		return nil, "", fmt.Errorf("unsupported size %q, expected 1K, 2K, or 4K", size)
	}

	if !g.keys.HasKey() {
		if err := g.keys.SelectKey(ctx); err != nil {
			return nil, "", fmt.Errorf("image generation unavailable: %w", err)
		}
	}
	return g.backend.GenerateImage(ctx, prompt, size)
}

// EnvKeySelector gates on a static key known at construction, the
// server's own credential.
type EnvKeySelector struct {
	key string
}

func NewEnvKeySelector(key string) *EnvKeySelector {
	return &EnvKeySelector{key: key}
}

func (s *EnvKeySelector) HasKey() bool {
	return s.key != ""
}

func (s *EnvKeySelector) SelectKey(ctx context.Context) error {
	if s.key == "" {
		return fmt.Errorf("no API key configured")
	}
	return nil
}
