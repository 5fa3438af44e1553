package classify

import (
	"fmt"
	"strings"
)

// billAnalysisPrompt is the shared instruction template used by all LLM
// providers. The raw receipt lines are substituted into the %s slot.
const billAnalysisPrompt = `You are an expert at analyzing grocery store receipts. Your task is to extract only the food items, ingredients, and their quantities from the following text. Ignore all other information like store details, transaction numbers, dates, taxes, and totals.

List the items in a JSON format. Each object in the list should have 'item_name' and 'quantity'. If the quantity is not specified, assume 1. The quantity should be a number.

Example format:
[
  {"item_name": "Large Eggs", "quantity": 12},
  {"item_name": "Milk", "quantity": 1},
  {"item_name": "Chicken Breast", "quantity": 2}
]

Do not include any text before or after the JSON array.
Do not use markdown code blocks.

Raw receipt text:
---
%s
---`

// buildPrompt joins the candidate lines into one text block and embeds it
// into the instruction template.
func buildPrompt(lines []string) string {
	return fmt.Sprintf(billAnalysisPrompt, strings.Join(lines, "\n"))
}
