package generation

import (
	"context"
	"strings"
	"testing"
)

func TestNewGeminiGeneratorRequiresKey(t *testing.T) {
	_, err := NewGeminiGenerator(context.Background(), "", "", nil)
	if err == nil {
		t.Fatal("expected error for empty API key")
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt(Request{
		Topic:          "Hiking Gear",
		ComponentID:    "intro-text",
		Header:         "Why Gear Matters",
		Preface:        "Our store has served hikers since 1987.",
		SectionContext: "section 2 of 4; previous section: \"History\"",
	})

	for _, want := range []string{"Hiking Gear", "intro-text", "Why Gear Matters", "section 2 of 4", "since 1987", "without repeating"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildPromptMinimal(t *testing.T) {
	prompt := buildPrompt(Request{Topic: "Hiking Gear", ComponentID: "faq"})
	if strings.Contains(prompt, "Section header") || strings.Contains(prompt, "page so far") {
		t.Errorf("minimal request produced optional sections:\n%s", prompt)
	}
}
