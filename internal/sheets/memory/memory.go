package memory

import (
	"context"
	"sort"
	"sync"

	"budget/internal/core"
	"budget/internal/sheets"
)

// Exporter keeps exported rows in memory, keyed by transaction id.
type Exporter struct {
	mu   sync.Mutex
	rows map[string]core.Transaction
}

var _ sheets.TransactionExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{rows: make(map[string]core.Transaction)}
}

func (e *Exporter) Upsert(_ context.Context, t core.Transaction) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows[t.ID] = t
	return nil
}

func (e *Exporter) Remove(_ context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.rows, id)
	return nil
}

// Rows returns the exported transactions ordered by id.
func (e *Exporter) Rows() []core.Transaction {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]core.Transaction, 0, len(e.rows))
	for _, t := range e.rows {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
