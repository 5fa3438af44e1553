package analysis

import (
	"time"

	"github.com/Coder-God2901/UiPath-Hackathon-AiChef/internal/classify"
	"github.com/Coder-God2901/UiPath-Hackathon-AiChef/internal/parsing"
)

// Analysis is the result of running one uploaded bill through the pipeline.
type Analysis struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`

	// Items is the classifier output, in model response order. Always
	// non-nil; empty when nothing was recognized or classification
	// degraded.
	Items []classify.Item `json:"items"`

	// Parsed holds the heuristic line-parser output for display. Not
	// authoritative; the classifier makes the final call.
	Parsed []parsing.ParsedItem `json:"parsed_items,omitempty"`

	// Degraded is set when the classifier call or its response decoding
	// failed and the empty item list reflects that failure rather than a
	// genuinely empty receipt.
	Degraded bool `json:"degraded"`

	CSVFile   string    `json:"csv_file"`
	JSONFile  string    `json:"json_file"`
	XLSXFile  string    `json:"xlsx_file"`
	CreatedAt time.Time `json:"created_at"`
}
