package extraction

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrUnsupportedFormat means the document is neither a recognizable
	// image nor a PDF.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrExtraction means the recognition engine failed or returned
	// nothing usable.
	ErrExtraction = errors.New("text extraction failed")
)

// Extractor defines the interface for converting a document into raw text.
type Extractor interface {
	// Extract runs text recognition on an uploaded document. The input
	// bytes are never mutated.
	Extract(ctx context.Context, data []byte, contentType string) (string, error)
}

// A PDF text layer shorter than this is treated as unusable (image-only
// PDFs often still carry a few stray glyphs).
const minTextLayerLen = 32

// Config holds the recognition engine settings. Binary path and language
// are injected at construction, never hardcoded.
type Config struct {
	Tesseract string        // binary name or absolute path; if empty -> "tesseract"
	Language  string        // default "eng"
	Timeout   time.Duration // per engine invocation, default 2m
}

// Tesseract implements the Extractor interface by shelling out to the
// tesseract binary, rasterizing PDFs page by page first.
type Tesseract struct {
	cfg    Config
	runner Runner

	// PDF collaborators, swappable in tests
	textLayer   func(data []byte) (string, bool)
	renderPages func(data []byte) ([][]byte, error)
}

// NewTesseract creates a new Tesseract extractor
func NewTesseract(cfg Config) *Tesseract {
	return newTesseract(cfg, execRunner{})
}

// NewTesseractWithRunner creates a Tesseract extractor with a custom
// command runner for testing.
func NewTesseractWithRunner(cfg Config, runner Runner) *Tesseract {
	return newTesseract(cfg, runner)
}

func newTesseract(cfg Config, runner Runner) *Tesseract {
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &Tesseract{
		cfg:         cfg,
		runner:      runner,
		textLayer:   pdfTextLayer,
		renderPages: pdfToImages,
	}
}

// Extract converts an image or multi-page PDF into plain text.
func (t *Tesseract) Extract(ctx context.Context, data []byte, contentType string) (string, error) {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))

	var text string
	var err error
	switch {
	case mimeType == "application/pdf" || isPDFFormat(data):
		text, err = t.extractPDF(ctx, data)
	default:
		text, err = t.extractImage(ctx, data, mimeType)
	}
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: engine returned no text", ErrExtraction)
	}
	return text, nil
}

// extractPDF prefers the embedded text layer; image-only PDFs fall back to
// rendering each page and recognizing it separately. Page texts are
// concatenated in page order.
func (t *Tesseract) extractPDF(ctx context.Context, data []byte) (string, error) {
	if text, ok := t.textLayer(data); ok && len(strings.TrimSpace(text)) >= minTextLayerLen {
		slog.Debug("Using PDF text layer", "bytes", len(text))
		return text, nil
	}

	pages, err := t.renderPages(data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	var b strings.Builder
	for n, page := range pages {
		pageText, err := t.recognize(ctx, page)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %w", ErrExtraction, n+1, err)
		}
		b.WriteString(pageText)
	}
	return b.String(), nil
}

func (t *Tesseract) extractImage(ctx context.Context, data []byte, mimeType string) (string, error) {
	pngData, err := imageToPNG(data, mimeType)
	if err != nil {
		if errors.Is(err, ErrUnsupportedFormat) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	text, err := t.recognize(ctx, pngData)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	return text, nil
}

// recognize writes the PNG to a temp file and runs
// `tesseract <file> stdout -l <lang>` on it.
func (t *Tesseract) recognize(ctx context.Context, pngData []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	tmp, err := os.CreateTemp("", "bill-page-*.png")
	if err != nil {
		return "", fmt.Errorf("creating temp image: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(pngData); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing temp image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing temp image: %w", err)
	}

	out, errb, err := t.runner.Run(ctx, t.cfg.Tesseract, tmp.Name(), "stdout", "-l", t.cfg.Language)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 1<<10))
	}
	return string(out), nil
}

// pdfTextLayer attempts embedded text extraction; ok reports whether the
// document parsed at all, the caller judges whether the text is usable.
func pdfTextLayer(data []byte) (text string, ok bool) {
	defer func() {
		// the pdf package panics on some malformed documents
		if r := recover(); r != nil {
			slog.Warn("PDF text layer extraction panicked", "panic", r)
			text, ok = "", false
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", false
	}
	reader, err := r.GetPlainText()
	if err != nil {
		return "", false
	}
	out, err := io.ReadAll(reader)
	if err != nil {
		return "", false
	}
	return string(out), true
}
