package main

import (
	"fmt"

	"github.com/fatih/color"
)

func printSuccess(message string) {
	green := color.New(color.FgGreen, color.Bold)
	green.Printf("✓ %s\n", message)
}

func printError(message string) {
	red := color.New(color.FgRed, color.Bold)
	red.Printf("✗ %s\n", message)
}

func printInfo(message string) {
	yellow := color.New(color.FgYellow)
	yellow.Printf("ℹ %s\n", message)
}

func printHeader() {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Println("╔══════════════════════════════════════════════════════════════╗")
	cyan.Println("║                 🚀 AI Persona Tutor                          ║")
	cyan.Println("╚══════════════════════════════════════════════════════════════╝")
	fmt.Println()
}

func printHelp() {
	green := color.New(color.FgGreen, color.Bold)
	white := color.New(color.FgWhite)

	green.Println("┌─ Commands ──────────────────────────────────────────────────┐")
	white.Println("│ /page home|tutor|quiz     switch page                       │")
	white.Println("│ /key <api key>            set the API key for this run      │")
	white.Println("│ /profile subject=.. level=.. style=..                       │")
	white.Println("│ /clear                    clear chat history                │")
	white.Println("│ /quiz <topic>             generate a quiz                   │")
	white.Println("│ /answer <answers>         submit answers for evaluation     │")
	white.Println("│ /snippets <message>       list code widgets of a message    │")
	white.Println("│ /edit <message> <snippet> <code>  edit a code widget        │")
	white.Println("│ /run <message> <snippet>  run a code widget                 │")
	white.Println("│ /help, /exit                                                │")
	white.Println("│ anything else on the tutor page is sent to the tutor        │")
	green.Println("└─────────────────────────────────────────────────────────────┘")
	fmt.Println()
}

func printPrompt(page string) {
	blue := color.New(color.FgBlue, color.Bold)
	blue.Printf("tutor[%s]> ", page)
}

func printReply(text string) {
	cyan := color.New(color.FgCyan)
	cyan.Println("Tutor:")
	fmt.Println(text)
	fmt.Println()
}

func printGoodbye() {
	green := color.New(color.FgGreen, color.Bold)
	green.Println("Happy Learning! 👋")
}
