package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

// Mock TextGenerator
type mockGenerator struct {
	mu         sync.Mutex
	reply      string
	err        error
	calls      int
	lastPrompt string
}

func (m *mockGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastPrompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func TestReply_ContextualSkipsGenerator(t *testing.T) {
	gen := &mockGenerator{reply: "should not be used"}
	svc := NewAssistantService(gen)

	resp := svc.Reply(context.Background(), "How do I sell my plastic?")
	if resp.Source != "contextual" {
		t.Errorf("expected contextual source, got %s", resp.Source)
	}
	if resp.Reply == "" {
		t.Error("expected a canned reply")
	}
	if gen.calls != 0 {
		t.Errorf("generator should not be called, got %d calls", gen.calls)
	}
}

func TestReply_GeneratedWithPersonaPrompt(t *testing.T) {
	gen := &mockGenerator{reply: "Composting takes weeks."}
	svc := NewAssistantService(gen)

	resp := svc.Reply(context.Background(), "How long does composting take?")
	if resp.Source != "generated" {
		t.Errorf("expected generated source, got %s", resp.Source)
	}
	if resp.Reply != "Composting takes weeks." {
		t.Errorf("unexpected reply: %q", resp.Reply)
	}
	if !strings.Contains(gen.lastPrompt, "Limbi") {
		t.Errorf("prompt missing persona context: %q", gen.lastPrompt)
	}
	if !strings.HasSuffix(gen.lastPrompt, "How long does composting take?") {
		t.Errorf("prompt missing user question: %q", gen.lastPrompt)
	}
}

func TestReply_GeneratorFailureFallsBack(t *testing.T) {
	gen := &mockGenerator{err: errors.New("quota exceeded")}
	svc := NewAssistantService(gen)

	resp := svc.Reply(context.Background(), "How long does composting take?")
	if resp.Source != "fallback" {
		t.Errorf("expected fallback source, got %s", resp.Source)
	}
	if resp.Reply != assistantFallbackReply {
		t.Errorf("unexpected fallback reply: %q", resp.Reply)
	}
}
