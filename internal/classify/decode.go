package classify

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	// ErrNoJSONArray means the model reply contained no bracket-delimited
	// array at all.
	ErrNoJSONArray = errors.New("no JSON array found in response")

	// ErrInvalidJSON means a bracket-delimited span was found but did not
	// parse as a JSON array of objects.
	ErrInvalidJSON = errors.New("invalid JSON array in response")
)

// itemSchema validates a single decoded record: non-empty item_name and a
// numeric quantity >= 0. Records failing this are dropped at the boundary.
var itemSchema = jsonschema.MustCompileString("item.schema.json", `{
	"type": "object",
	"properties": {
		"item_name": {"type": "string", "minLength": 1},
		"quantity": {"type": "number", "minimum": 0}
	},
	"required": ["item_name", "quantity"]
}`)

// decodeItems recovers a list of items from a free-form model reply.
//
// The reply is not assumed to be pure JSON: markdown fences are stripped,
// then the span between the first '[' and the last ']' is parsed as a JSON
// array. Missing quantities default to 1. Records violating the schema are
// dropped, not fatal.
func decodeItems(text string) ([]Item, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "[")
	if start == -1 {
		return nil, ErrNoJSONArray
	}
	end := strings.LastIndex(text, "]")
	if end == -1 || end < start {
		return nil, ErrNoJSONArray
	}
	text = text[start : end+1]

	var raw []map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}

	items := make([]Item, 0, len(raw))
	for _, record := range raw {
		if name, ok := record["item_name"].(string); ok {
			record["item_name"] = strings.TrimSpace(name)
		}
		if _, ok := record["quantity"]; !ok {
			record["quantity"] = float64(1)
		}
		if err := itemSchema.Validate(record); err != nil {
			slog.Warn("Dropping invalid item from model response", "record", record, "error", err)
			continue
		}
		items = append(items, Item{
			ItemName: record["item_name"].(string),
			Quantity: record["quantity"].(float64),
		})
	}
	return items, nil
}
