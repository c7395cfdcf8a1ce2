package main

import (
	"flag"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"kira-rag/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var serverURL string
	flag.StringVar(&serverURL, "server", "http://localhost:8000", "Base URL of the query service")
	flag.Parse()

	apiKey := os.Getenv("KIRA_API_SECRET")
	if apiKey == "" {
		log.Fatal("KIRA_API_SECRET not set")
	}

	client := tui.NewClient(serverURL, apiKey, 0)
	if _, err := tea.NewProgram(tui.New(client)).Run(); err != nil {
		log.Fatal(err)
	}
}
