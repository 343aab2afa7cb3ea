package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"persona-tutor/internal/models"
)

func testProfile() models.Profile {
	return models.Profile{
		Subject: models.SubjectMachineLearning,
		Level:   models.LevelAdvanced,
		Style:   models.StyleMathematical,
	}
}

func TestPromptBuilder_Conversation(t *testing.T) {
	b, err := NewPromptBuilder("")
	if err != nil {
		t.Fatalf("failed to load default prompts: %v", err)
	}

	got := b.Conversation(testProfile(), "what is a gradient?")("User: hi\nAssistant: hello\n")
	want := "Tutor in Machine Learning for Advanced. Style: Mathematical. History: User: hi\nAssistant: hello\n. Input: what is a gradient?"
	if got != want {
		t.Fatalf("unexpected prompt:\n%q\nwant\n%q", got, want)
	}
}

func TestPromptBuilder_PlaceholdersInInputAreNotExpanded(t *testing.T) {
	b, _ := NewPromptBuilder("")

	got := b.Conversation(testProfile(), "print {history} and {subject}")("")
	if !strings.HasSuffix(got, "Input: print {history} and {subject}") {
		t.Fatalf("input text was rewritten: %q", got)
	}
}

func TestPromptBuilder_QuizGeneration(t *testing.T) {
	b, _ := NewPromptBuilder("")

	got := b.QuizGeneration(testProfile(), "Recursion")
	want := "Generate a new set of random 5-questions quiz on Recursion for a Advanced learner in Machine Learning. Provide questions and options only."
	if got != want {
		t.Fatalf("unexpected prompt:\n%q\nwant\n%q", got, want)
	}
}

func TestPromptBuilder_QuizEvaluation(t *testing.T) {
	b, _ := NewPromptBuilder("")

	quiz := models.QuizState{Topic: "Recursion", QuizBody: "Q1. What is a base case?", LastTopic: "Recursion"}
	got := b.QuizEvaluation(quiz, "1) the stopping condition")

	for _, part := range []string{
		"Topic: Recursion.",
		"Quiz: Q1. What is a base case?.",
		"User Answers: 1) the stopping condition.",
		"score out of 10",
		"explanation with the correct answer",
		"score is below 6",
	} {
		if !strings.Contains(got, part) {
			t.Errorf("evaluation prompt missing %q:\n%s", part, got)
		}
	}
}

func TestNewPromptBuilder_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.yaml")
	content := "conversation: \"{subject}|{input}\"\nquiz_generation: \"{count} on {topic}\"\nquiz_evaluation: \"{answers}\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write prompts: %v", err)
	}

	b, err := NewPromptBuilder(path)
	if err != nil {
		t.Fatalf("failed to load prompts: %v", err)
	}
	if got := b.QuizGeneration(testProfile(), "Trees"); got != "5 on Trees" {
		t.Fatalf("unexpected prompt %q", got)
	}
}

func TestNewPromptBuilder_RejectsIncompleteFile(t *testing.T) {
	if _, err := parsePromptTemplates([]byte("conversation: \"x\"\n")); err == nil {
		t.Fatal("expected error for missing templates")
	}
	if _, err := NewPromptBuilder(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
