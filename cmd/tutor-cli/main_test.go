package main

import (
	"context"
	"testing"
	"time"

	"persona-tutor/internal/models"
	"persona-tutor/internal/services"
	"persona-tutor/internal/session"
)

type stubProvider struct{ reply string }

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Generate(ctx context.Context, prompt string, opts services.CallOptions) (any, error) {
	return p.reply, nil
}

type stubRunner struct{ code string }

func (r *stubRunner) Run(ctx context.Context, code string) (string, error) {
	r.code = code
	return "ok\n", nil
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		cmd  string
		rest string
	}{
		{"what is recursion?", "", "what is recursion?"},
		{"/quiz  Binary Trees ", "quiz", "Binary Trees"},
		{"/CLEAR", "clear", ""},
		{"/run 1 0", "run", "1 0"},
	}

	for _, tc := range tests {
		cmd, rest := parseCommand(tc.line)
		if cmd != tc.cmd || rest != tc.rest {
			t.Errorf("%q: expected (%q, %q), got (%q, %q)", tc.line, tc.cmd, tc.rest, cmd, rest)
		}
	}
}

func TestParseProfileArgs(t *testing.T) {
	current := models.DefaultProfile()

	got, err := parseProfileArgs("subject=machine learning level=Advanced", current)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := models.Profile{Subject: models.SubjectMachineLearning, Level: models.LevelAdvanced, Style: models.StyleCodeFirst}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	for _, bad := range []string{"subject=Chemistry", "mood=happy", "Advanced"} {
		if _, err := parseProfileArgs(bad, current); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}

func TestParseSnippetKey(t *testing.T) {
	key, err := parseSnippetKey("3 1")
	if err != nil || key != (models.SnippetKey{MessageIndex: 3, SnippetIndex: 1}) {
		t.Fatalf("unexpected result %+v, %v", key, err)
	}
	if _, err := parseSnippetKey("3"); err == nil {
		t.Fatal("expected error for missing snippet index")
	}
}

func TestParseEditArgs(t *testing.T) {
	tests := []struct {
		args string
		key  models.SnippetKey
		code string
		ok   bool
	}{
		{"1 0 print(2)", models.SnippetKey{MessageIndex: 1, SnippetIndex: 0}, "print(2)", true},
		{`3 1 x = 1\nprint(x + 1)`, models.SnippetKey{MessageIndex: 3, SnippetIndex: 1}, "x = 1\nprint(x + 1)", true},
		{"1  0   print( 'a  b' )", models.SnippetKey{MessageIndex: 1, SnippetIndex: 0}, "  print( 'a  b' )", true},
		{"1 0", models.SnippetKey{}, "", false},
		{"1 x print(2)", models.SnippetKey{}, "", false},
		{"", models.SnippetKey{}, "", false},
	}

	for _, tc := range tests {
		t.Run(tc.args, func(t *testing.T) {
			key, code, err := parseEditArgs(tc.args)
			if !tc.ok {
				if err == nil {
					t.Fatal("expected usage error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if key != tc.key || code != tc.code {
				t.Errorf("expected %+v %q, got %+v %q", tc.key, tc.code, key, code)
			}
		})
	}
}

func TestHandle_EditThenRun(t *testing.T) {
	prompts, err := services.NewPromptBuilder("")
	if err != nil {
		t.Fatalf("failed to load prompts: %v", err)
	}
	runner := &stubRunner{}
	provider := &stubProvider{reply: "Try this:\n```python\nprint(1)\n```\n"}
	ctrl := session.NewController(session.NewStore(time.Hour), services.NewCompletionClient(provider), prompts, runner, nil,
		session.Options{Model: "openai/gpt-oss-120b", Temperature: 0.3, DefaultAPIKey: "gsk_test"})
	c := &cli{ctrl: ctrl, id: ctrl.CreateSession().ID, profile: models.DefaultProfile()}

	c.handle("/page tutor", models.PageHome)
	c.handle("show me", models.PageTutor)
	if !c.handle(`/edit 1 0 print(2)\nprint(3)`, models.PageTutor) {
		t.Fatal("edit ended the session")
	}

	snippets, err := ctrl.Snippets(c.id, 1)
	if err != nil || len(snippets) != 1 {
		t.Fatalf("expected one snippet, got %v, %v", snippets, err)
	}
	if snippets[0].Code != "print(2)\nprint(3)" || !snippets[0].Edited {
		t.Fatalf("edit not stored: %+v", snippets[0])
	}

	c.handle("/run 1 0", models.PageTutor)
	if runner.code != "print(2)\nprint(3)" {
		t.Errorf("expected the edited code to run, got %q", runner.code)
	}
}
