package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"persona-tutor/internal/config"
	"persona-tutor/internal/models"
	"persona-tutor/internal/sandbox"
	"persona-tutor/internal/services"
	"persona-tutor/internal/session"
)

type cli struct {
	ctrl    *session.Controller
	id      uuid.UUID
	apiKey  string
	profile models.Profile
}

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("✗ Invalid configuration: %v", err)
	}

	provider, err := services.NewProvider(cfg.LLMProvider, services.Endpoints{
		GroqBaseURL:    cfg.GroqBaseURL,
		GeminiEndpoint: cfg.GeminiEndpoint,
	})
	if err != nil {
		log.Fatalf("✗ %v", err)
	}
	prompts, err := services.NewPromptBuilder(cfg.PromptsPath)
	if err != nil {
		log.Fatalf("✗ %v", err)
	}
	runner, closeRunner, err := sandbox.NewRunner(cfg.SandboxBackend, cfg.SandboxPython, cfg.SandboxImage, cfg.SandboxTimeout)
	if err != nil {
		log.Fatalf("✗ %v", err)
	}
	defer closeRunner()

	ctrl := session.NewController(session.NewStore(cfg.SessionTTL), services.NewCompletionClient(provider), prompts, runner, nil, session.Options{
		Model:         cfg.LLMModel,
		Temperature:   cfg.LLMTemperature,
		DefaultAPIKey: cfg.LLMAPIKey,
		Language:      cfg.SandboxLanguage,
	})

	c := &cli{ctrl: ctrl, id: ctrl.CreateSession().ID, profile: models.DefaultProfile()}
	c.run(bufio.NewReader(os.Stdin))
}

func (c *cli) run(reader *bufio.Reader) {
	printHeader()
	printHelp()
	c.showHome()

	for {
		page := models.PageHome
		if view, err := c.ctrl.View(c.id); err == nil {
			page = view.Page
		}
		printPrompt(string(page))

		line, err := reader.ReadString('\n')
		if err != nil {
			printGoodbye()
			return
		}
		if !c.handle(strings.TrimSpace(line), page) {
			printGoodbye()
			return
		}
	}
}

// handle executes one input line and reports whether to keep going.
func (c *cli) handle(line string, page models.Page) bool {
	if line == "" {
		return true
	}

	cmd, rest := parseCommand(line)
	ctx := context.Background()

	switch cmd {
	case "":
		if page != models.PageTutor {
			printInfo("Switch to the tutor page (/page tutor) to chat.")
			return true
		}
		resp, err := c.ctrl.Chat(ctx, c.id, c.apiKey, c.profile, rest)
		if err != nil {
			printError(err.Error())
			return true
		}
		printReply(resp.Reply)
		for _, s := range resp.Snippets {
			printInfo(fmt.Sprintf("%s available: /run %d %d, /edit %d %d <code>", s.Label,
				s.MessageIndex, s.SnippetIndex, s.MessageIndex, s.SnippetIndex))
		}

	case "page":
		p, ok := models.ParsePage(rest)
		if !ok {
			printError("Unknown page. Use home, tutor or quiz.")
			return true
		}
		if err := c.ctrl.SelectPage(c.id, p); err != nil {
			printError(err.Error())
			return true
		}
		if p == models.PageHome {
			c.showHome()
		}

	case "key":
		c.apiKey = rest
		printSuccess("API key set")

	case "profile":
		profile, err := parseProfileArgs(rest, c.profile)
		if err != nil {
			printError(err.Error())
			return true
		}
		c.profile = profile
		printSuccess(fmt.Sprintf("Profile: %s, %s, %s", profile.Subject, profile.Level, profile.Style))

	case "clear":
		if err := c.ctrl.ClearHistory(c.id); err != nil {
			printError(err.Error())
			return true
		}
		printSuccess("History cleared")

	case "quiz":
		quiz, err := c.ctrl.GenerateQuiz(ctx, c.id, c.apiKey, c.profile, rest)
		if err != nil {
			printError(err.Error())
			return true
		}
		printReply(quiz.QuizBody)

	case "answer":
		eval, err := c.ctrl.SubmitAnswers(ctx, c.id, c.apiKey, rest)
		if err != nil {
			printError(err.Error())
			return true
		}
		printSuccess(eval.Heading)
		fmt.Println(eval.Evaluation)
		fmt.Println()

	case "snippets":
		idx, err := strconv.Atoi(rest)
		if err != nil {
			printError("Usage: /snippets <message>")
			return true
		}
		snippets, err := c.ctrl.Snippets(c.id, idx)
		if err != nil {
			printError(err.Error())
			return true
		}
		for _, s := range snippets {
			printInfo(s.Label)
			fmt.Println(s.Code)
		}

	case "edit":
		key, code, err := parseEditArgs(rest)
		if err != nil {
			printError(err.Error())
			return true
		}
		snippet, err := c.ctrl.EditSnippet(c.id, key, code)
		if err != nil {
			printError(err.Error())
			return true
		}
		printSuccess(snippet.Label + " updated")
		fmt.Println(snippet.Code)

	case "run":
		key, err := parseSnippetKey(rest)
		if err != nil {
			printError(err.Error())
			return true
		}
		out, err := c.ctrl.RunSnippet(ctx, c.id, key, nil)
		if err != nil {
			printError(err.Error())
			return true
		}
		fmt.Print(out.Output)

	case "help":
		printHelp()

	case "exit", "quit":
		return false

	default:
		printError("Unknown command /" + cmd + ". Type /help.")
	}
	return true
}

func (c *cli) showHome() {
	printSuccess("Welcome to your AI Personalized Tutor")
	fmt.Println("Hello learner! This application is your dedicated space for mastering your Learning. Happy Learning!")
	printInfo("1. Set your Groq API Key with /key.")
	printInfo("2. Choose a page with /page tutor or /page quiz.")
	fmt.Println()
}

// parseCommand splits "/cmd rest" into its parts. Plain text yields an empty
// command and the whole line.
func parseCommand(line string) (string, string) {
	if !strings.HasPrefix(line, "/") {
		return "", line
	}
	cmd, rest, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	return strings.ToLower(cmd), strings.TrimSpace(rest)
}

func parseProfileArgs(args string, current models.Profile) (models.Profile, error) {
	req := models.ProfileRequest{
		Subject: string(current.Subject),
		Level:   string(current.Level),
		Style:   string(current.Style),
	}
	// Values may contain spaces ("Machine Learning"), so split on the keys.
	for _, part := range splitAssignments(args) {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return current, fmt.Errorf("expected key=value, got %q", part)
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "subject":
			req.Subject = strings.TrimSpace(value)
		case "level":
			req.Level = strings.TrimSpace(value)
		case "style":
			req.Style = strings.TrimSpace(value)
		default:
			return current, fmt.Errorf("unknown profile field %q", key)
		}
	}

	profile, fields := models.ParseProfile(req)
	for _, field := range []string{"subject", "level", "style"} {
		if msg, ok := fields[field]; ok {
			return current, fmt.Errorf("%s: %s", field, msg)
		}
	}
	return profile, nil
}

func splitAssignments(args string) []string {
	var parts []string
	for _, word := range strings.Fields(args) {
		if strings.Contains(word, "=") || len(parts) == 0 {
			parts = append(parts, word)
			continue
		}
		parts[len(parts)-1] += " " + word
	}
	return parts
}

func parseSnippetKey(args string) (models.SnippetKey, error) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return models.SnippetKey{}, fmt.Errorf("usage: /run <message> <snippet>")
	}
	msg, err1 := strconv.Atoi(fields[0])
	snip, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil {
		return models.SnippetKey{}, fmt.Errorf("usage: /run <message> <snippet>")
	}
	return models.SnippetKey{MessageIndex: msg, SnippetIndex: snip}, nil
}

// parseEditArgs reads "<message> <snippet> <code>". The code is kept as typed
// except that a literal \n becomes a line break.
func parseEditArgs(args string) (models.SnippetKey, string, error) {
	usage := fmt.Errorf("usage: /edit <message> <snippet> <code>")

	msg, rest, _ := strings.Cut(args, " ")
	snip, code, ok := strings.Cut(strings.TrimLeft(rest, " "), " ")
	if !ok || code == "" {
		return models.SnippetKey{}, "", usage
	}
	key, err := parseSnippetKey(msg + " " + snip)
	if err != nil {
		return models.SnippetKey{}, "", usage
	}
	return key, strings.ReplaceAll(code, `\n`, "\n"), nil
}
