package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/ledger"
	"budget/internal/storage"
)

// EventPublisher announces transaction changes. *amqp.Client satisfies it.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, event *amqp.TransactionEvent) error
}

// TransactionInput is the user-editable part of a transaction.
type TransactionInput struct {
	Kind     core.Kind
	Category string
	Amount   core.Money
	Date     core.Date
}

func (in TransactionInput) update() storage.TransactionUpdate {
	return storage.TransactionUpdate{
		Kind:     in.Kind,
		Category: strings.TrimSpace(in.Category),
		Amount:   in.Amount,
		Date:     in.Date,
	}
}

// Breakdown is the expense split shown in the category chart.
type Breakdown struct {
	Total  core.Money
	Slices []ledger.Slice
}

// TransactionService orchestrates transaction writes across the store and
// the event publisher.
type TransactionService struct {
	store     storage.TransactionStore
	publisher EventPublisher
	now       func() time.Time
	newID     func() string
}

// NewTransactionService wires a store and an optional publisher. Pass a nil
// publisher to run without events.
func NewTransactionService(store storage.TransactionStore, publisher EventPublisher) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (s *TransactionService) List(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (s *TransactionService) Get(ctx context.Context, ownerID, id string) (core.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, ownerID, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// Create saves a new transaction and publishes transaction.created.
func (s *TransactionService) Create(ctx context.Context, ownerID string, in TransactionInput) (core.Transaction, error) {
	t := in.update().Apply(core.Transaction{
		ID:        s.newID(),
		OwnerID:   ownerID,
		CreatedAt: s.now().UTC(),
	})
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	saved, err := s.store.InsertTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.publish(ctx, amqp.EventTransactionCreated, saved.ID, ownerID)
	return saved, nil
}

// Update replaces the editable fields of an owned transaction.
func (s *TransactionService) Update(ctx context.Context, ownerID, id string, in TransactionInput) (core.Transaction, error) {
	u := in.update()
	if err := u.Apply(core.Transaction{ID: id, OwnerID: ownerID}).Validate(); err != nil {
		return core.Transaction{}, err
	}

	saved, err := s.store.UpdateTransaction(ctx, ownerID, id, u)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	s.publish(ctx, amqp.EventTransactionUpdated, saved.ID, ownerID)
	return saved, nil
}

func (s *TransactionService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.store.DeleteTransaction(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.publish(ctx, amqp.EventTransactionDeleted, id, ownerID)
	return nil
}

// Stats summarises every transaction of the owner.
func (s *TransactionService) Stats(ctx context.Context, ownerID string) (ledger.Summary, error) {
	txs, err := s.List(ctx, ownerID)
	if err != nil {
		return ledger.Summary{}, err
	}
	return ledger.Summarize(txs), nil
}

func (s *TransactionService) Breakdown(ctx context.Context, ownerID string) (Breakdown, error) {
	txs, err := s.List(ctx, ownerID)
	if err != nil {
		return Breakdown{}, err
	}
	slices := ledger.GroupByCategory(txs)
	var total int64
	for _, sl := range slices {
		total += sl.Amount.Cents
	}
	return Breakdown{Total: core.Money{Cents: total}, Slices: slices}, nil
}

// publish never fails the caller: the row is already stored.
func (s *TransactionService) publish(ctx context.Context, event amqp.EventType, id, ownerID string) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Event publisher not configured, skipping event",
			"component", "transaction",
			"event", event,
			"transaction_id", id)
		return
	}

	if err := s.publisher.PublishTransactionEvent(ctx, amqp.NewTransactionEvent(event, id, ownerID)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"component", "transaction",
			"event", event,
			"transaction_id", id,
			"error", err)
	}
}
