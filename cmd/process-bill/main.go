package main

import (
	_ "embed"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/Coder-God2901/UiPath-Hackathon-AiChef/internal/classify"
	"github.com/Coder-God2901/UiPath-Hackathon-AiChef/internal/extraction"
	"github.com/Coder-God2901/UiPath-Hackathon-AiChef/internal/parsing"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

// The CLI writes a single JSON object to stdout: either {"items": [...]}
// or {"error": "..."}, never both, and nothing else goes to stdout.

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("process-bill")
	var (
		tesseractPath  = fs.StringLong("tesseract", "tesseract", "Tesseract binary name or path")
		tesseractLang  = fs.StringLong("tesseract-lang", "eng", "Tesseract language")
		ocrTimeout     = fs.DurationLong("ocr-timeout", 2*time.Minute, "Timeout per OCR invocation")
		classifierType = fs.StringLong("classifier", "gemini", "Classifier type: 'gemini' or 'ollama'")
		geminiKey      = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel    = fs.StringLong("gemini-model", "gemini-1.5-flash", "Google Gemini model name")
		ollamaURL      = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel    = fs.StringLong("ollama-model", "llama3", "Ollama model name")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("GROCERY_BILL"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		emitError(fmt.Sprintf("parsing flags: %v", err))
	}

	args := fs.GetArgs()
	if len(args) < 1 {
		emitError("No file path provided.")
	}
	filePath := args[0]

	data, err := os.ReadFile(filePath)
	if err != nil {
		emitError(fmt.Sprintf("reading file: %v", err))
	}

	classifier, err := newClassifier(*classifierType, *geminiKey, *geminiModel, *ollamaURL, *ollamaModel)
	if err != nil {
		emitError(err.Error())
	}
	defer classifier.Close()

	extractor := extraction.NewTesseract(extraction.Config{
		Tesseract: *tesseractPath,
		Language:  *tesseractLang,
		Timeout:   *ocrTimeout,
	})

	ctx := context.Background()
	contentType := contentTypeForExt(filepath.Ext(filePath))

	rawText, err := extractor.Extract(ctx, data, contentType)
	if err != nil {
		emitError(err.Error())
	}

	// Classifier failures degrade to an empty item list, matching the web
	// pipeline: the CLI still emits a valid "items" result.
	items, err := classifier.Classify(ctx, parsing.Lines(rawText))
	if err != nil {
		slog.Warn("Classification degraded to empty result", "file", filePath, "error", err)
		items = nil
	}
	if items == nil {
		items = []classify.Item{}
	}

	emit(map[string]any{"items": items})
}

// emit writes the result JSON to stdout
func emit(result map[string]any) {
	out, err := json.Marshal(result)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error encoding result: %v\n", err)
		os.Exit(1)
	}
	os.Stdout.Write(out)
	os.Stdout.Write([]byte("\n"))
}

// emitError writes an error JSON object to stdout and exits non-zero
func emitError(message string) {
	emit(map[string]any{"error": message})
	os.Exit(1)
}

func contentTypeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
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
		return classify.NewGemini(apiKey, geminiModel)
	case "ollama":
		return classify.NewOllama(ollamaURL, ollamaModel)
	default:
		return nil, fmt.Errorf("invalid classifier type %q: valid types are gemini or ollama", classifierType)
	}
}
