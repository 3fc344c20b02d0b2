package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"budget/internal/storage"
	"budget/internal/storage/storagetest"
)

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		return New()
	})
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()

	// Missing file -> empty store
	s, err := NewFromFile(filepath.Join(dir, "missing.json"))
	if err != nil {
		t.Fatalf("missing seed file: %v", err)
	}
	if list, _ := s.ListTransactions(context.Background(), "demo"); len(list) != 0 {
		t.Fatalf("expected empty store, got %d rows", len(list))
	}

	seed := `[
		{"user_id":"demo","type":"income","amount":1000,"date":"2024-01-01"},
		{"id":"x1","user_id":"demo","type":"expense","category":"Food & Dining","amount":"150.00","date":"2024-01-02"}
	]`
	path := filepath.Join(dir, "seed.json")
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s, err = NewFromFile(path)
	if err != nil {
		t.Fatalf("NewFromFile: %v", err)
	}
	list, err := s.ListTransactions(context.Background(), "demo")
	if err != nil || len(list) != 2 {
		t.Fatalf("expected 2 seeded rows, got %d (err=%v)", len(list), err)
	}
	if list[0].ID != "x1" || list[0].Amount.Cents != 15000 {
		t.Fatalf("unexpected first row: %+v", list[0])
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`[{"user_id":"demo","type":"transfer","amount":1,"date":"2024-01-01"}]`), 0o644); err != nil {
		t.Fatalf("write bad seed: %v", err)
	}
	if _, err := NewFromFile(bad); err == nil {
		t.Fatal("expected error for invalid kind in seed")
	}
}
