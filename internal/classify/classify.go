package classify

import "context"

// Item is a single classified grocery item from the language model.
type Item struct {
	ItemName string  `json:"item_name"`
	Quantity float64 `json:"quantity"`
}

// Classifier defines the interface for AI receipt-line classification.
type Classifier interface {
	// Classify sends candidate receipt lines to the language model and
	// returns the food items it recognized, in response order.
	Classify(ctx context.Context, lines []string) ([]Item, error)
	// Close closes the classifier and releases resources
	Close() error
}
