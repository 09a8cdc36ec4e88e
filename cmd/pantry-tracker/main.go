package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/pantrykit/pantry-tracker/internal/enrichment"
	"github.com/pantrykit/pantry-tracker/internal/llm"
	"github.com/pantrykit/pantry-tracker/internal/mealplan"
	"github.com/pantrykit/pantry-tracker/internal/pantry"
	"github.com/pantrykit/pantry-tracker/internal/parsing"
	"github.com/pantrykit/pantry-tracker/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("pantry-tracker")
	var (
		port         = fs.IntLong("port", 8080, "HTTP server port")
		dbPath       = fs.StringLong("db", "pantry-tracker.db", "Database file path")
		provider     = fs.StringLong("provider", "gemini", "Model provider: 'gemini' or 'ollama'")
		geminiKey    = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel  = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL    = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaVision = fs.StringLong("ollama-vision-model", "llava", "Ollama vision model for receipt transcription")
		ollamaText   = fs.StringLong("ollama-text-model", "llama3", "Ollama text model for normalization and details")
		stoplistPath = fs.StringLong("stoplist", "", "YAML file with extra receipt boilerplate terms (optional)")
		authUser     = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass     = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		showVersion  = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("PANTRY_TRACKER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Initialize database
	slog.Info("Initializing database...")
	db, err := pantry.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize model collaborators based on provider
	var (
		extractor scanning.Extractor
		completer llm.Completer
	)
	switch *provider {
	case "gemini":
		// Get Gemini API key from flag or environment
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini...", "model", *geminiModel)
		extractor, err = scanning.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini extractor", "error", err)
			os.Exit(1)
		}
		completer, err = llm.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini completer", "error", err)
			os.Exit(1)
		}
	case "ollama":
		slog.Info("Initializing Ollama...", "url", *ollamaURL, "vision_model", *ollamaVision, "text_model", *ollamaText)
		extractor, err = scanning.NewOllama(*ollamaURL, *ollamaVision)
		if err != nil {
			slog.Error("Failed to initialize Ollama extractor", "error", err)
			os.Exit(1)
		}
		completer, err = llm.NewOllama(*ollamaURL, *ollamaText)
		if err != nil {
			slog.Error("Failed to initialize Ollama completer", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Invalid provider", "provider", *provider, "valid", "gemini or ollama")
		os.Exit(1)
	}
	defer extractor.Close()
	defer completer.Close()

	// Load the receipt boilerplate stoplist
	stoplist := parsing.NewStoplist()
	if *stoplistPath != "" {
		stoplist, err = parsing.LoadStoplist(*stoplistPath)
		if err != nil {
			slog.Error("Failed to load stoplist", "path", *stoplistPath, "error", err)
			os.Exit(1)
		}
	}

	// Wire the enrichment pipeline and service
	enricher := enrichment.NewEnricher(
		stoplist,
		enrichment.NewLLMNormalizer(completer),
		enrichment.NewLLMDetailSource(completer),
		db,
	)
	generator := mealplan.NewGenerator(completer)
	service := pantry.NewService(db, extractor, enricher, generator)

	// Initialize server
	basicAuth := pantry.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := pantry.NewServer(service, basicAuth)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
