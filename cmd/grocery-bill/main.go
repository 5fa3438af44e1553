package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/Coder-God2901/UiPath-Hackathon-AiChef/internal/analysis"
	"github.com/Coder-God2901/UiPath-Hackathon-AiChef/internal/classify"
	"github.com/Coder-God2901/UiPath-Hackathon-AiChef/internal/extraction"
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

	fs := ff.NewFlagSet("grocery-bill")
	var (
		port           = fs.IntLong("port", 8080, "HTTP server port")
		uploadsPath    = fs.StringLong("uploads", "./data/sample_bills", "Directory for uploaded bills")
		outputsPath    = fs.StringLong("outputs", "./data/outputs", "Directory for export artifacts")
		tesseractPath  = fs.StringLong("tesseract", "tesseract", "Tesseract binary name or path")
		tesseractLang  = fs.StringLong("tesseract-lang", "eng", "Tesseract language")
		ocrTimeout     = fs.DurationLong("ocr-timeout", 2*time.Minute, "Timeout per OCR invocation")
		classifierType = fs.StringLong("classifier", "gemini", "Classifier type: 'gemini' or 'ollama'")
		geminiKey      = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel    = fs.StringLong("gemini-model", "gemini-1.5-flash", "Google Gemini model name")
		ollamaURL      = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel    = fs.StringLong("ollama-model", "llama3", "Ollama model name")
		showVersion    = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("GROCERY_BILL"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	classifier, err := newClassifier(*classifierType, *geminiKey, *geminiModel, *ollamaURL, *ollamaModel)
	if err != nil {
		slog.Error("Failed to initialize classifier", "error", err)
		os.Exit(1)
	}
	defer classifier.Close()

	extractor := extraction.NewTesseract(extraction.Config{
		Tesseract: *tesseractPath,
		Language:  *tesseractLang,
		Timeout:   *ocrTimeout,
	})

	slog.Info("Initializing storage...")
	uploads, err := analysis.NewLocalStorage(*uploadsPath)
	if err != nil {
		slog.Error("Failed to initialize upload storage", "error", err)
		os.Exit(1)
	}
	outputs, err := analysis.NewLocalStorage(*outputsPath)
	if err != nil {
		slog.Error("Failed to initialize output storage", "error", err)
		os.Exit(1)
	}

	service := analysis.NewService(extractor, classifier, uploads, outputs)
	server := analysis.NewServer(service)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}

// newClassifier wires the configured LLM provider
func newClassifier(classifierType, geminiKey, geminiModel, ollamaURL, ollamaModel string) (classify.Classifier, error) {
	switch classifierType {
	case "gemini":
		apiKey := geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("gemini API key is required: set --gemini-key flag or GEMINI_API_KEY environment variable")
		}
		slog.Info("Initializing Gemini classifier...", "model", geminiModel)
		return classify.NewGemini(apiKey, geminiModel)
	case "ollama":
		slog.Info("Initializing Ollama classifier...", "url", ollamaURL, "model", ollamaModel)
		return classify.NewOllama(ollamaURL, ollamaModel)
	default:
		return nil, fmt.Errorf("invalid classifier type %q: valid types are gemini or ollama", classifierType)
	}
}
