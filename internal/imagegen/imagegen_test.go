package imagegen

import (
	"context"
	"errors"
	"testing"
)

type fakeBackend struct {
	calls int
	data  []byte
	mime  string
	err   error

	lastPrompt string
	lastSize   string
}

func (f *fakeBackend) GenerateImage(ctx context.Context, prompt, size string) ([]byte, string, error) {
	f.calls++
	f.lastPrompt = prompt
	f.lastSize = size
	return f.data, f.mime, f.err
}

func TestGenerate(t *testing.T) {
	backend := &fakeBackend{data: []byte{1, 2, 3}, mime: "image/png"}
	g := New(backend, NewEnvKeySelector("key-123"))

	if !g.Available() {
		t.Fatal("Expected generator to be available with a key")
	}

	data, mime, err := g.Generate(context.Background(), "a cat in space", Size2K)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(data) != 3 || mime != "image/png" {
		t.Errorf("Unexpected result: %v %s", data, mime)
	}
	if backend.lastSize != Size2K {
		t.Errorf("Expected size 2K passed through, got %q", backend.lastSize)
	}
}

func TestGenerateValidation(t *testing.T) {
	backend := &fakeBackend{data: []byte{1}, mime: "image/png"}
	g := New(backend, NewEnvKeySelector("key-123"))

	if _, _, err := g.Generate(context.Background(), "", Size1K); err == nil {
		t.Error("Expected error for empty prompt")
	}
	if _, _, err := g.Generate(context.Background(), "x", "8K"); err == nil {
		t.Error("Expected error for unsupported size")
	}

	// Empty size defaults to 1K
	if _, _, err := g.Generate(context.Background(), "x", ""); err != nil {
		t.Fatalf("Generate with default size failed: %v", err)
	}
	if backend.lastSize != Size1K {
		t.Errorf("Expected default size 1K, got %q", backend.lastSize)
	}
}

func TestGenerateWithoutKey(t *testing.T) {
	backend := &fakeBackend{}
	g := New(backend, NewEnvKeySelector(""))

	if g.Available() {
		t.Error("Expected generator unavailable without a key")
	}
	_, _, err := g.Generate(context.Background(), "a cat", Size1K)
	if err == nil {
		t.Fatal("Expected error without a key")
	}
	if backend.calls != 0 {
		t.Errorf("Backend must not be called without a key, got %d calls", backend.calls)
	}
}

type flakySelector struct {
	selected bool
	err      error
}

func (s *flakySelector) HasKey() bool { return s.selected }
func (s *flakySelector) SelectKey(ctx context.Context) error {
	if s.err != nil {
		return s.err
	}
	s.selected = true
	return nil
}

func TestGenerateSelectsKeyOnDemand(t *testing.T) {
	backend := &fakeBackend{data: []byte{1}, mime: "image/png"}
	sel := &flakySelector{}
	g := New(backend, sel)

	if _, _, err := g.Generate(context.Background(), "x", Size1K); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !sel.selected {
		t.Error("Expected key selection to run before the model call")
	}

	sel2 := &flakySelector{err: errors.New("no keys")}
	g2 := New(backend, sel2)
	if _, _, err := g2.Generate(context.Background(), "x", Size1K); err == nil {
		t.Error("Expected error when selection fails")
	}
}
