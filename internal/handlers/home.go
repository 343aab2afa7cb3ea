package handlers

import (
	"net/http"

	"persona-tutor/internal/models"
)

var homeContent = models.HomeContent{
	Title:    "👋 Welcome to your AI Personalized Tutor",
	Greeting: "Hello **learner**! This application is your dedicated space for mastering your Learning.Happy Learning!",
	Features: []string{
		"🎓 Tutor Chat: Engage in a deep technical conversation. The AI adapts to your skill level and preferred style.",
		"📝 Quiz Room: Test your knowledge! Generate custom quizzes and get them evaluated instantly by the AI.",
		"🛠️ Code Sandbox: Run and edit Python code snippets directly within the chat.",
	},
	Steps: []string{
		"Enter your Groq API Key in the sidebar.",
		"Choose a page from the navigation menu above to begin your journey.",
	},
}

type modelInfo interface {
	Model() string
	ProviderName() string
}

type HomeHandler struct {
	info modelInfo
}

func NewHomeHandler(info modelInfo) *HomeHandler {
	return &HomeHandler{info: info}
}

func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, homeContent)
}

// Options lists the selector values a client should offer. The first entry of
// each list is the default.
func (h *HomeHandler) Options(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.OptionsResponse{
		Pages:    models.Pages,
		Subjects: models.Subjects,
		Levels:   models.Levels,
		Styles:   models.Styles,
		Model:    h.info.Model(),
		Provider: h.info.ProviderName(),
	})
}
