// Package sheets mirrors transactions into a spreadsheet for owners who keep
// their own reports there.
package sheets

import (
	"context"

	"budget/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionExporter keeps one spreadsheet row per transaction id.
	TransactionExporter interface {
		// Upsert writes t, replacing the existing row for t.ID if any.
		Upsert(ctx context.Context, t core.Transaction) error
		// Remove clears the row for id. A missing row is not an error.
		Remove(ctx context.Context, id string) error
	}
)

// Header is the first row of an exported sheet.
var Header = []string{"id", "user_id", "date", "type", "category", "amount", "created_at"}
