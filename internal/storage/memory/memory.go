package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"budget/internal/core"
	"budget/internal/storage"
)

// Store keeps everything in process memory. It is used for local
// development and tests; data is lost on restart.
type Store struct {
	mu           sync.RWMutex
	transactions map[string]core.Transaction
	budgets      map[string]core.BudgetDoc
	profiles     map[string]core.Profile
	now          func() time.Time
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		transactions: make(map[string]core.Transaction),
		budgets:      make(map[string]core.BudgetDoc),
		profiles:     make(map[string]core.Profile),
		now:          time.Now,
	}
}

type seedTransaction struct {
	ID       string     `json:"id"`
	UserID   string     `json:"user_id"`
	Type     string     `json:"type"`
	Category string     `json:"category"`
	Amount   core.Money `json:"amount"`
	Date     core.Date  `json:"date"`
}

// NewFromFile seeds the store from a JSON array of transactions. A missing
// file yields an empty store.
func NewFromFile(path string) (*Store, error) {
	s := New()
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var seeds []seedTransaction
	if err := json.Unmarshal(b, &seeds); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	for i, st := range seeds {
		kind, err := core.ParseKind(st.Type)
		if err != nil {
			return nil, fmt.Errorf("seed %d: %w", i, err)
		}
		t := core.Transaction{
			ID:       st.ID,
			OwnerID:  st.UserID,
			Kind:     kind,
			Category: st.Category,
			Amount:   st.Amount,
			Date:     st.Date,
		}
		if t.ID == "" {
			t.ID = fmt.Sprintf("seed-%d", i+1)
		}
		if _, err := s.InsertTransaction(context.Background(), t); err != nil {
			return nil, fmt.Errorf("seed %d: %w", i, err)
		}
	}
	return s, nil
}

func (s *Store) ListTransactions(_ context.Context, ownerID string) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Transaction, 0)
	for _, t := range s.transactions {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, ownerID, id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transactions[id]
	if !ok || t.OwnerID != ownerID {
		return core.Transaction{}, storage.ErrNotFound
	}
	return t, nil
}

func (s *Store) InsertTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if t.ID == "" {
		return core.Transaction{}, fmt.Errorf("insert transaction: missing id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.transactions[t.ID]; exists {
		return core.Transaction{}, fmt.Errorf("insert transaction: duplicate id %s", t.ID)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now().UTC()
	}
	s.transactions[t.ID] = t
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, ownerID, id string, u storage.TransactionUpdate) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[id]
	if !ok || t.OwnerID != ownerID {
		return core.Transaction{}, storage.ErrNotFound
	}
	updated := u.Apply(t)
	if err := updated.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.transactions[id] = updated
	return updated, nil
}

func (s *Store) DeleteTransaction(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[id]
	if !ok || t.OwnerID != ownerID {
		return storage.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) GetBudget(_ context.Context, ownerID string) (core.BudgetDoc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.budgets[ownerID]
	if !ok {
		return core.BudgetDoc{}, storage.ErrNotFound
	}
	return cloneBudget(doc), nil
}

func (s *Store) UpsertBudget(_ context.Context, doc core.BudgetDoc) (core.BudgetDoc, error) {
	if doc.OwnerID == "" {
		return core.BudgetDoc{}, core.ErrMissingOwner
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	doc = cloneBudget(doc)
	doc.CreatedAt = now
	if existing, ok := s.budgets[doc.OwnerID]; ok {
		doc.CreatedAt = existing.CreatedAt
	}
	doc.UpdatedAt = now
	s.budgets[doc.OwnerID] = doc
	return cloneBudget(doc), nil
}

func (s *Store) GetProfile(_ context.Context, ownerID string) (core.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[ownerID]
	if !ok {
		return core.Profile{}, storage.ErrNotFound
	}
	return p, nil
}

func (s *Store) UpsertProfile(_ context.Context, p core.Profile) (core.Profile, error) {
	if p.OwnerID == "" {
		return core.Profile{}, core.ErrMissingOwner
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p.UpdatedAt = s.now().UTC()
	s.profiles[p.OwnerID] = p
	return p, nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func cloneBudget(doc core.BudgetDoc) core.BudgetDoc {
	doc.Categories = append([]core.CategoryBudget(nil), doc.Categories...)
	return doc
}
