package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Coder-God2901/UiPath-Hackathon-AiChef/internal/classify"
	"github.com/Coder-God2901/UiPath-Hackathon-AiChef/internal/extraction"
	"github.com/Coder-God2901/UiPath-Hackathon-AiChef/internal/parsing"
)

// IDGenerator generates unique IDs for analyses
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type uuidIDGenerator struct{}

func (uuidIDGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service runs the extraction -> parsing -> classification pipeline for
// uploaded bills and writes the export artifacts.
type Service struct {
	extractor   extraction.Extractor
	classifier  classify.Classifier
	uploads     Storage
	outputs     Storage
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(extractor extraction.Extractor, classifier classify.Classifier, uploads, outputs Storage) *Service {
	return &Service{
		extractor:   extractor,
		classifier:  classifier,
		uploads:     uploads,
		outputs:     outputs,
		idGenerator: uuidIDGenerator{},
		timeSource:  defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(extractor extraction.Extractor, classifier classify.Classifier, uploads, outputs Storage, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		extractor:   extractor,
		classifier:  classifier,
		uploads:     uploads,
		outputs:     outputs,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// sanitizeFilename cleans up a filename by removing special characters and truncating length
func sanitizeFilename(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filepath.Base(filename), ext)

	// Keep only alphanumeric, spaces, hyphens, and underscores
	reg := regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	base = reg.ReplaceAllString(base, "")

	reg = regexp.MustCompile(`\s+`)
	base = reg.ReplaceAllString(base, " ")
	base = strings.TrimSpace(base)

	maxLen := 50
	if len(base) > maxLen {
		base = base[:maxLen]
	}

	if base == "" {
		base = "bill"
	}

	return base + ext
}

// ProcessBill saves an uploaded bill, runs the pipeline on it, and writes
// the CSV/JSON/XLSX export artifacts.
//
// Extraction failures halt the pipeline and are surfaced to the caller.
// Classification failures never do: they degrade to an empty item list
// with Degraded set.
func (s *Service) ProcessBill(ctx context.Context, filename string, data []byte, contentType string) (*Analysis, error) {
	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	cleanFilename := sanitizeFilename(filename)

	savedPath, err := s.uploads.Save(fmt.Sprintf("%s_%s", id, cleanFilename), data)
	if err != nil {
		return nil, fmt.Errorf("saving upload: %w", err)
	}

	rawText, err := s.extractor.Extract(ctx, data, contentType)
	if err != nil {
		slog.Error("Failed to extract text from bill",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		// Clean up the saved upload since extraction failed
		s.deleteUpload(savedPath)
		return nil, fmt.Errorf("extracting text: %w", err)
	}

	parsed := parsing.Parse(rawText)

	// The parser output pre-filters the prompt when it found priced items;
	// otherwise the raw candidate lines go to the model so it still sees
	// everything on unusual receipts.
	promptLines := parsedLines(parsed)
	if len(promptLines) == 0 {
		promptLines = parsing.Lines(rawText)
	}

	items := []classify.Item{}
	degraded := false
	classified, err := s.classifier.Classify(ctx, promptLines)
	if err != nil {
		slog.Warn("Classification degraded to empty result",
			"filename", filename,
			"lines", len(promptLines),
			"error", err,
		)
		degraded = true
	} else if classified != nil {
		items = classified
	}

	base := strings.TrimSuffix(cleanFilename, filepath.Ext(cleanFilename))
	analysis := &Analysis{
		ID:        id,
		Filename:  savedPath,
		Items:     items,
		Parsed:    parsed,
		Degraded:  degraded,
		CSVFile:   base + csvSuffix,
		JSONFile:  base + jsonSuffix,
		XLSXFile:  base + xlsxSuffix,
		CreatedAt: now,
	}

	if err := s.writeExports(analysis); err != nil {
		s.deleteUpload(savedPath)
		return nil, err
	}

	return analysis, nil
}

func (s *Service) deleteUpload(savedPath string) {
	if err := s.uploads.Delete(savedPath); err != nil {
		slog.Warn("Failed to clean up saved upload", "filename", savedPath, "error", err)
	}
}

// Download returns the contents of a previously written export artifact.
func (s *Service) Download(filename string) ([]byte, error) {
	data, err := s.outputs.Get(filename)
	if err != nil {
		return nil, fmt.Errorf("getting export file: %w", err)
	}
	return data, nil
}

func parsedLines(items []parsing.ParsedItem) []string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s %.2f", item.Name, item.Price))
	}
	return lines
}

func (s *Service) writeExports(analysis *Analysis) error {
	csvData, err := csvExport(analysis.Items)
	if err != nil {
		return fmt.Errorf("rendering csv export: %w", err)
	}
	jsonData, err := jsonExport(analysis.Items)
	if err != nil {
		return fmt.Errorf("rendering json export: %w", err)
	}
	xlsxData, err := xlsxExport(analysis.Items)
	if err != nil {
		return fmt.Errorf("rendering xlsx export: %w", err)
	}

	if _, err := s.outputs.Save(analysis.CSVFile, csvData); err != nil {
		return fmt.Errorf("saving csv export: %w", err)
	}
	if _, err := s.outputs.Save(analysis.JSONFile, jsonData); err != nil {
		return fmt.Errorf("saving json export: %w", err)
	}
	if _, err := s.outputs.Save(analysis.XLSXFile, xlsxData); err != nil {
		return fmt.Errorf("saving xlsx export: %w", err)
	}
	return nil
}
