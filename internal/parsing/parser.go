package parsing

import (
	"regexp"
	"strconv"
	"strings"
)

// ParsedItem is a single priced line recovered from receipt text.
type ParsedItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// itemPattern matches a line ending in a price with exactly two decimal
// digits; everything before the final whitespace run is the item name.
var itemPattern = regexp.MustCompile(`^(.*?)\s+([0-9]+\.[0-9]{2})$`)

// excludeKeywords mark receipt bookkeeping lines (totals, taxes, register
// metadata) that match the price pattern but are not purchased items.
// Matched as substrings of the uppercased line.
var excludeKeywords = []string{"TOTAL", "SUBTOTAL", "TAX", "TEND", "CHANGE", "ID", "REF", "CODE"}

// Lines splits raw receipt text into trimmed, non-empty candidate lines in
// source order.
func Lines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// Parse filters raw receipt text down to candidate item/price pairs.
//
// This is a best-effort heuristic: lines that don't carry a recognizable
// trailing price, or that contain a bookkeeping keyword, are silently
// dropped. False positives and negatives are acceptable since the AI
// classifier makes the final call.
func Parse(text string) []ParsedItem {
	var items []ParsedItem
	for _, line := range Lines(text) {
		m := itemPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if containsExcludedKeyword(line) {
			continue
		}
		price, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		items = append(items, ParsedItem{
			Name:  strings.TrimSpace(m[1]),
			Price: price,
		})
	}
	return items
}

func containsExcludedKeyword(line string) bool {
	upper := strings.ToUpper(line)
	for _, kw := range excludeKeywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}
